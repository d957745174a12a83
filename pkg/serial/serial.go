// Package serial opens the links a Sparki can be reached over:
// native serial ports, websocket tunnels and the simulator.
package serial

import (
	"fmt"
	"strings"
	"sync"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/config"
	"github.com/robotalks/sparki.go/pkg/logging"
	"github.com/robotalks/sparki.go/pkg/sim"
)

// SimScheme prefixes simulator port names, e.g. sim://1.1.4.
const SimScheme = "sim:"

// DefaultSimVersion is simulated when sim: names no version.
const DefaultSimVersion = "1.1.4"

// Opener implements comm.Opener for every supported kind of port.
type Opener struct {
	Logger logging.Logger

	lock sync.Mutex
	sims map[string]*sim.Device
}

// NewOpener creates an Opener.
func NewOpener(logger logging.Logger) *Opener {
	if logger == nil {
		logger = logging.Discard
	}
	return &Opener{Logger: logger}
}

// IsWebsocket checks for a ws:// or wss:// URL.
func IsWebsocket(name string) bool {
	return strings.HasPrefix(name, "ws://") || strings.HasPrefix(name, "wss://")
}

// IsSim checks for a simulator port name.
func IsSim(name string) bool {
	return strings.HasPrefix(name, SimScheme)
}

// SimVersion extracts the firmware version of a simulator port name.
func SimVersion(name string) string {
	version := strings.TrimPrefix(strings.TrimPrefix(name, SimScheme), "//")
	if version == "" {
		return DefaultSimVersion
	}
	return version
}

// Sim returns the simulated device for a firmware version, the same
// device is used every time the port is opened.
func (o *Opener) Sim(version string) *sim.Device {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.sims == nil {
		o.sims = make(map[string]*sim.Device)
	}
	dev, ok := o.sims[version]
	if !ok {
		dev = sim.NewDevice(version)
		if o.Logger != nil {
			dev.Logger = o.Logger
		}
		o.sims[version] = dev
	}
	return dev
}

// OpenPort implements comm.Opener.
func (o *Opener) OpenPort(name string, opts comm.PortOptions) (comm.Port, error) {
	if o.Logger != nil {
		o.Logger.Logf(logging.Debug, "opening %s (driver %s, %d baud, timeout %v)",
			name, opts.Driver, opts.BaudRate, opts.Timeout)
	}
	switch {
	case IsWebsocket(name):
		return OpenWebsocket(name, opts)
	case IsSim(name):
		return o.Sim(SimVersion(name)).OpenPort(name, opts)
	}
	switch opts.Driver {
	case "", config.DriverBugst:
		return OpenBugst(name, opts)
	case config.DriverTarm:
		return OpenTarm(name, opts)
	default:
		return nil, fmt.Errorf("unknown serial driver %q", opts.Driver)
	}
}
