package comm

import (
	"io"
	"os"
	"time"
)

// DefaultBaudRate is the rate the firmware listens on.
const DefaultBaudRate = 9600

// Port is an open serial endpoint.
// Read must return within the timeout it was opened with,
// returning 0 bytes (or a timeout error) if nothing arrived.
type Port interface {
	io.ReadWriteCloser
	// ResetInputBuffer discards received but unread bytes.
	ResetInputBuffer() error
	// Drain blocks until all written bytes are transmitted.
	Drain() error
}

// PortOptions configures a port being opened.
type PortOptions struct {
	BaudRate int
	Timeout  time.Duration
	Driver   string
}

// Opener opens ports by name.
type Opener interface {
	OpenPort(name string, opts PortOptions) (Port, error)
}

// OpenPortFunc is the func form of Opener.
type OpenPortFunc func(name string, opts PortOptions) (Port, error)

// OpenPort implements Opener.
func (f OpenPortFunc) OpenPort(name string, opts PortOptions) (Port, error) {
	return f(name, opts)
}

// Transport wraps the single open Port.
// It isn't safe for concurrent use, the Dispatcher serializes access.
type Transport struct {
	Opener  Opener
	Options PortOptions

	name string
	port Port
	buf  [1]byte
}

// NewTransport creates a Transport.
func NewTransport(opener Opener, opts PortOptions) *Transport {
	if opts.BaudRate == 0 {
		opts.BaudRate = DefaultBaudRate
	}
	return &Transport{Opener: opener, Options: opts}
}

// Name returns the name of the last opened port.
func (t *Transport) Name() string {
	return t.name
}

// IsOpen indicates if a port is open.
func (t *Transport) IsOpen() bool {
	return t.port != nil
}

// Open opens a port, closing the current one first.
func (t *Transport) Open(name string) error {
	t.Close()
	port, err := t.Opener.OpenPort(name, t.Options)
	if err != nil {
		return err
	}
	t.name, t.port = name, port
	return nil
}

// Reopen closes and opens the last port again.
func (t *Transport) Reopen() error {
	if t.name == "" {
		return ErrNotConnected
	}
	return t.Open(t.name)
}

// Close closes the port. It's safe to call more than once.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	port := t.port
	t.port = nil
	return port.Close()
}

// ReadByte implements io.ByteReader.
// It returns ErrReadTimeout if nothing arrived within the timeout.
func (t *Transport) ReadByte() (byte, error) {
	if t.port == nil {
		return 0, ErrNotConnected
	}
	n, err := t.port.Read(t.buf[:])
	if n > 0 {
		return t.buf[0], nil
	}
	if err == nil || os.IsTimeout(err) {
		return 0, ErrReadTimeout
	}
	return 0, err
}

// Write implements io.Writer.
func (t *Transport) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrNotConnected
	}
	return t.port.Write(p)
}

// Flush blocks until written bytes are transmitted.
func (t *Transport) Flush() error {
	if t.port == nil {
		return ErrNotConnected
	}
	return t.port.Drain()
}

// DiscardInput drops buffered input.
func (t *Transport) DiscardInput() error {
	if t.port == nil {
		return ErrNotConnected
	}
	return t.port.ResetInputBuffer()
}
