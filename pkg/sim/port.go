package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/robotalks/sparki.go/pkg/comm"
)

// ErrPortClosed is returned by a closed Port.
var ErrPortClosed = errors.New("sim: port closed")

// Port is an in-memory serial link to a Device.
type Port struct {
	dev     *Device
	timeout time.Duration

	lock   sync.Mutex
	closed bool
}

// OpenPort implements comm.Opener, the name is ignored.
func (d *Device) OpenPort(name string, opts comm.PortOptions) (comm.Port, error) {
	return d.Open(opts.Timeout), nil
}

// Open opens a link with the read timeout.
func (d *Device) Open(timeout time.Duration) *Port {
	return &Port{dev: d, timeout: timeout}
}

func (p *Port) isClosed() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.closed
}

// Read implements io.Reader. Sync is returned while the
// device has nothing else to send.
func (p *Port) Read(b []byte) (int, error) {
	if p.isClosed() {
		return 0, ErrPortClosed
	}
	if len(b) == 0 {
		return 0, nil
	}
	d := p.dev
	d.lock.Lock()
	if !d.powered {
		d.lock.Unlock()
		time.Sleep(p.timeout)
		return 0, nil
	}
	if len(d.out) > 0 {
		n := copy(b, d.out)
		d.out = d.out[n:]
		d.lock.Unlock()
		return n, nil
	}
	d.lock.Unlock()
	b[0] = comm.Sync
	return 1, nil
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	if p.isClosed() {
		return 0, ErrPortClosed
	}
	p.dev.Receive(b)
	return len(b), nil
}

// ResetInputBuffer implements comm.Port.
func (p *Port) ResetInputBuffer() error {
	if p.isClosed() {
		return ErrPortClosed
	}
	p.dev.Output()
	return nil
}

// Drain implements comm.Port.
func (p *Port) Drain() error {
	return nil
}

// Close implements io.Closer.
func (p *Port) Close() error {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()
	return nil
}
