package serial

import (
	"fmt"

	tarm "github.com/tarm/serial"
	bugst "go.bug.st/serial"

	"github.com/robotalks/sparki.go/pkg/comm"
)

// OpenBugst opens a port with go.bug.st/serial, 8N1.
func OpenBugst(name string, opts comm.PortOptions) (comm.Port, error) {
	mode := &bugst.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := bugst.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	if err := port.SetReadTimeout(opts.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return port, nil
}

// tarmPort adapts github.com/tarm/serial which can neither discard
// input alone nor drain output.
type tarmPort struct {
	*tarm.Port
}

// ResetInputBuffer implements comm.Port. Output is discarded as well.
func (p *tarmPort) ResetInputBuffer() error {
	return p.Port.Flush()
}

// Drain implements comm.Port, writes are unbuffered.
func (p *tarmPort) Drain() error {
	return nil
}

// OpenTarm opens a port with github.com/tarm/serial, 8N1.
func OpenTarm(name string, opts comm.PortOptions) (comm.Port, error) {
	port, err := tarm.OpenPort(&tarm.Config{
		Name:        name,
		Baud:        opts.BaudRate,
		ReadTimeout: opts.Timeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return &tarmPort{Port: port}, nil
}
