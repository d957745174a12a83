package comm

import (
	"errors"
	"sync"
	"time"

	"github.com/robotalks/sparki.go/pkg/logging"
)

// DefaultSettleDelay is slept after every command is written.
const DefaultSettleDelay = 10 * time.Millisecond

// CommandObserver is notified after a command is written.
type CommandObserver interface {
	CommandSent(Command)
}

// CommandSentFunc is func type of CommandObserver.
type CommandSentFunc func(Command)

// CommandSent implements CommandObserver.
func (f CommandSentFunc) CommandSent(cmd Command) {
	f(cmd)
}

// Dispatcher sends commands one at a time.
type Dispatcher struct {
	Transport   *Transport
	Sync        *Synchronizer
	Logger      logging.Logger
	SettleDelay time.Duration

	// Identify is the handshake opcode. A sync failure while sending it is
	// never recovered by reconnecting.
	Identify Opcode
	// Stop is sent before reporting an oversized command.
	Stop Opcode
	// Untracked opcodes are not kept in history.
	Untracked map[Opcode]bool
	// Validate rejects commands the device wouldn't understand.
	Validate func(Command) error
	// OnReconnect runs the handshake on a reopened port.
	OnReconnect func(*Conn) error
	Observer    CommandObserver

	lock     sync.Mutex
	quiet    bool
	conn     Conn
	histLock sync.RWMutex
	history  []Command
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(t *Transport, s *Synchronizer) *Dispatcher {
	d := &Dispatcher{
		Transport:   t,
		Sync:        s,
		Logger:      logging.Discard,
		SettleDelay: DefaultSettleDelay,
	}
	d.conn.d = d
	return d
}

// Conn is the exclusive access to the link handed out by Do.
type Conn struct {
	d *Dispatcher
}

// Do runs fn with exclusive access to the link. Commands and their
// responses exchanged inside fn are never interleaved with others.
func (d *Dispatcher) Do(fn func(*Conn) error) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return fn(&d.conn)
}

// Send sends a single command.
func (d *Dispatcher) Send(cmd Command) error {
	return d.Do(func(c *Conn) error {
		return c.Send(cmd)
	})
}

// Open opens the named port.
func (d *Dispatcher) Open(name string) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if err := d.Transport.Open(name); err != nil {
		d.Sync.SetState(StateDisconnected)
		return err
	}
	d.Sync.SetState(StateAwaitingSync)
	return nil
}

// Close closes the port.
func (d *Dispatcher) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	err := d.Transport.Close()
	d.Sync.SetState(StateDisconnected)
	return err
}

// IsOpen indicates if the port is open.
func (d *Dispatcher) IsOpen() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.Transport.IsOpen()
}

// History returns a copy of all commands sent.
func (d *Dispatcher) History() []Command {
	d.histLock.RLock()
	defer d.histLock.RUnlock()
	return append([]Command(nil), d.history...)
}

// ClearHistory empties the history.
func (d *Dispatcher) ClearHistory() {
	d.histLock.Lock()
	d.history = nil
	d.histLock.Unlock()
}

func (d *Dispatcher) record(cmd Command) {
	if d.Untracked[cmd.Opcode] {
		return
	}
	d.histLock.Lock()
	d.history = append(d.history, cmd)
	d.histLock.Unlock()
}

func (d *Dispatcher) send(cmd Command) error {
	if !d.Transport.IsOpen() {
		d.Logger.Logf(logging.Critical, "Sparki is not connected, connect first")
		return ErrNotConnected
	}
	if _, err := cmd.Tokens(); err != nil {
		return err
	}
	if d.Validate != nil {
		if err := d.Validate(cmd); err != nil {
			return err
		}
	}
	d.record(cmd)
	d.Logger.Logf(logging.Debug, "sending %s", cmd)

	frames, err := cmd.Encode()
	if err != nil {
		if errors.Is(err, ErrMessageTooLong) && d.Stop != 0 && cmd.Opcode != d.Stop {
			d.Logger.Logf(logging.Critical, "%v, stopping Sparki", err)
			if serr := d.send(NewCommand(d.Stop)); serr != nil {
				d.Logger.Logf(logging.Critical, "stop failed: %v", serr)
			}
		}
		return err
	}

	if err = d.synchronize(cmd); err != nil {
		return err
	}

	d.Sync.SetState(StateTransmitting)
	for _, frame := range frames {
		if _, err = d.Transport.Write(frame); err != nil {
			return err
		}
	}
	if err = d.Transport.Flush(); err != nil {
		return err
	}
	if d.SettleDelay > 0 {
		time.Sleep(d.SettleDelay)
	}
	d.Sync.SetState(StateAwaitingSync)
	if o := d.Observer; o != nil {
		o.CommandSent(cmd)
	}
	return nil
}

func (d *Dispatcher) synchronize(cmd Command) error {
	err := d.Sync.Wait(d.Transport)
	if err == nil {
		return nil
	}
	if cmd.Opcode == d.Identify {
		return d.lost(err)
	}
	d.Logger.Logf(logging.Warn, "no sync from Sparki (%v), reconnecting", err)
	if err = d.reconnect(); err != nil {
		var lost *ConnectionLostError
		if errors.As(err, &lost) {
			return err
		}
		return d.lost(err)
	}
	if err = d.Sync.Wait(d.Transport); err != nil {
		return d.lost(err)
	}
	d.Logger.Logf(logging.Info, "reconnected to %s", d.Transport.Name())
	return nil
}

func (d *Dispatcher) reconnect() error {
	if err := d.Transport.Reopen(); err != nil {
		return err
	}
	if fn := d.OnReconnect; fn != nil {
		return fn(&d.conn)
	}
	return nil
}

// SetQuiet leaves the troubleshooting checklist to the caller when
// the link is lost.
func (d *Dispatcher) SetQuiet(quiet bool) {
	d.lock.Lock()
	d.quiet = quiet
	d.lock.Unlock()
}

func (d *Dispatcher) lost(err error) error {
	d.Sync.SetState(StateUnrecoverable)
	if !d.quiet {
		d.Logger.Logf(logging.Always, "%s", Troubleshooting)
	}
	return &ConnectionLostError{Port: d.Transport.Name(), Err: err}
}

// Send sends a command within the exchange.
func (c *Conn) Send(cmd Command) error {
	return c.d.send(cmd)
}

// SendCommand is a shortcut of Send(NewCommand(op, args...)).
func (c *Conn) SendCommand(op Opcode, args ...interface{}) error {
	return c.d.send(NewCommand(op, args...))
}

// replyReader stops a reply lost among Sync bytes after the sync window.
type replyReader struct {
	t        *Transport
	deadline time.Time
}

func (r *replyReader) ReadByte() (byte, error) {
	if !time.Now().Before(r.deadline) {
		return 0, ErrReadTimeout
	}
	return r.t.ReadByte()
}

// ReadString reads one token.
func (c *Conn) ReadString() (string, error) {
	tok, err := ReadToken(&replyReader{t: c.d.Transport, deadline: time.Now().Add(c.d.Sync.Window())})
	if err != nil {
		c.d.Logger.Logf(logging.Error, "error reading from Sparki: %v", err)
		return "", err
	}
	c.d.Logger.Logf(logging.Debug, "received %q", tok)
	return tok, nil
}

// ReadInt reads one integer token.
func (c *Conn) ReadInt() (int, error) {
	tok, err := c.ReadString()
	if err != nil {
		return -1, err
	}
	return ParseInt(tok)
}

// ReadFloat reads one float token.
func (c *Conn) ReadFloat() (float64, error) {
	tok, err := c.ReadString()
	if err != nil {
		return -1, err
	}
	return ParseFloat(tok)
}

// ReadChar reads one character token.
func (c *Conn) ReadChar() (rune, error) {
	tok, err := c.ReadString()
	if err != nil {
		return 0, err
	}
	return ParseChar(tok)
}
