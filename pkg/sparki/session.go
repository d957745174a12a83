// Package sparki is the Myro style API of a Sparki robot reached over
// a serial link. A Session owns the connection, the negotiated firmware
// profile and the bookkeeping the robot can't report by itself.
package sparki

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/config"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/framework"
	"github.com/robotalks/sparki.go/pkg/logging"
	"github.com/robotalks/sparki.go/pkg/serial"
)

// LibraryVersion is reported by Versions.
const LibraryVersion = "1.0.0"

// Info is a snapshot of a Session.
type Info struct {
	ID          string           `json:"id"`
	Port        string           `json:"port,omitempty"`
	Connected   bool             `json:"connected"`
	Version     string           `json:"version,omitempty"`
	Profile     firmware.Profile `json:"profile"`
	Known       bool             `json:"known"`
	Name        string           `json:"name,omitempty"`
	ConnectedAt time.Time        `json:"connected_at,omitempty"`
}

// Observer watches a Session. The callbacks run while the link is
// held and must not call back into the Session.
type Observer interface {
	SessionChanged(Info)
	CommandSent(comm.Command)
}

// Session is the connection to one robot.
type Session struct {
	ID     string
	Config *config.Config
	Logger logging.Logger
	// Sleep waits for the estimated completion of motions.
	Sleep func(time.Duration)
	Now   func() time.Time

	dispatcher *comm.Dispatcher

	lock        sync.RWMutex
	observers   []Observer
	port        string
	connected   bool
	version     firmware.Version
	profile     firmware.Profile
	known       bool
	connectedAt time.Time
	name        string
	pose        Pose
	cmMoved     float64
	moving      bool
	lcdColor    int

	keepalive       *framework.Runner
	cancelKeepalive context.CancelFunc
}

// NewSession creates a Session. The opener defaults to serial.NewOpener.
func NewSession(conf *config.Config, opener comm.Opener, logger logging.Logger) *Session {
	if conf == nil {
		conf = config.NewConfig()
	}
	if logger == nil {
		logger = logging.Discard
	}
	if opener == nil {
		opener = serial.NewOpener(logger)
	}
	transport := comm.NewTransport(opener, comm.PortOptions{
		BaudRate: conf.BaudRate,
		Timeout:  conf.Timeout,
		Driver:   conf.Driver,
	})
	d := comm.NewDispatcher(transport, comm.NewSynchronizer(conf.Timeout, conf.Retries, conf.LoopWait))
	d.Logger = logger
	d.SettleDelay = conf.SettleDelay
	d.Identify = firmware.Init
	d.Stop = firmware.Stop
	d.Untracked = map[comm.Opcode]bool{firmware.Noop: true}
	d.Validate = firmware.Validate

	s := &Session{
		ID:         uuid.New().String(),
		Config:     conf,
		Logger:     logger,
		Sleep:      time.Sleep,
		Now:        time.Now,
		dispatcher: d,
	}
	d.OnReconnect = s.handshake
	d.Observer = comm.CommandSentFunc(s.commandSent)
	return s
}

// AddObserver registers an Observer.
func (s *Session) AddObserver(o Observer) {
	s.lock.Lock()
	s.observers = append(s.observers, o)
	s.lock.Unlock()
}

// SetStateNotifier watches the sync state of the link.
func (s *Session) SetStateNotifier(n comm.StateNotifier) {
	s.dispatcher.Sync.SetNotifier(n)
}

// Connect opens the port and identifies the firmware. It returns false
// without an error if the robot didn't answer with a version.
func (s *Session) Connect(port string) (bool, error) {
	return s.connect(port, false)
}

func (s *Session) connect(port string, auto bool) (bool, error) {
	if s.IsConnected() || s.dispatcher.IsOpen() {
		if err := s.Disconnect(); err != nil {
			s.Logger.Logf(logging.Warn, "disconnect before connecting: %v", err)
		}
	}

	name := s.Config.ResolvePort(port)
	if name != port {
		s.Logger.Logf(logging.Info, "port %s is %s", port, name)
	}
	if err := s.open(name); err != nil {
		if auto {
			s.Logger.Logf(logging.Info, "unable to open %s: %v", name, err)
		} else {
			s.Logger.Logf(logging.Critical, "unable to open %s: %v", name, err)
			s.Logger.Logf(logging.Always, "%s", comm.Troubleshooting)
		}
		return false, &comm.ConnectError{Port: name, Err: err}
	}

	var raw string
	err := s.dispatcher.Do(func(c *comm.Conn) (err error) {
		if err = c.SendCommand(firmware.Init); err != nil {
			return
		}
		raw, err = c.ReadString()
		return
	})
	if err != nil && !errors.Is(err, comm.ErrReadTimeout) {
		s.dispatcher.Close()
		return false, err
	}
	if raw = strings.TrimSpace(raw); raw == "" {
		s.Logger.Logf(logging.Error, "no firmware version from %s", name)
		s.dispatcher.Close()
		return false, nil
	}

	profile, known := firmware.Lookup(raw)
	s.Logger.Logf(logging.Always, "sparki.go %s, Sparki firmware %s", LibraryVersion, raw)
	if !known {
		s.Logger.Logf(logging.Warn, "unknown firmware version %s, functionality may be limited", raw)
	}

	s.lock.Lock()
	s.port = name
	s.connected = true
	s.version = firmware.ParseVersion(raw)
	s.profile = profile
	s.known = known
	s.connectedAt = s.Now()
	s.name = DefaultName
	s.lcdColor = LCDBlack
	s.lock.Unlock()

	if profile.EEPROM {
		if _, err := s.fetchName(); err != nil {
			s.Logger.Logf(logging.Warn, "unable to read robot name: %v", err)
		}
	}
	s.startKeepalive(s.Config.Keepalive)
	s.notify()
	return true, nil
}

// ConnectAuto tries every candidate port of the platform and keeps the
// first robot that answers.
func (s *Session) ConnectAuto() (string, error) {
	ports, err := serial.Candidates(runtime.GOOS)
	if err != nil {
		return "", err
	}
	return s.ConnectFirst(ports...)
}

// ConnectFirst tries ports in order and keeps the first robot that
// answers. The troubleshooting checklist is logged once if none does.
func (s *Session) ConnectFirst(ports ...string) (string, error) {
	s.dispatcher.SetQuiet(true)
	defer s.dispatcher.SetQuiet(false)
	for _, port := range ports {
		s.Logger.Logf(logging.Info, "trying %s", port)
		ok, err := s.connect(port, true)
		if err == nil && ok {
			s.Logger.Logf(logging.Always, "Sparki found on %s", port)
			return port, nil
		}
		if err != nil {
			s.Logger.Logf(logging.Info, "%s: %v", port, err)
		}
	}
	s.Logger.Logf(logging.Always, "%s", comm.Troubleshooting)
	return "", ErrNotFound
}

func (s *Session) open(name string) error {
	tries := s.Config.OpenRetries
	if tries < 1 {
		tries = 1
	}
	var err error
	for n := 0; n < tries; n++ {
		if err = s.dispatcher.Open(name); err == nil {
			return nil
		}
		s.Logger.Logf(logging.Warn, "open %s failed (%d/%d): %v", name, n+1, tries, err)
	}
	return err
}

// handshake identifies the firmware again after the port is reopened
// and restarts the uptime clock.
func (s *Session) handshake(c *comm.Conn) error {
	if err := c.SendCommand(firmware.Init); err != nil {
		return err
	}
	raw, err := c.ReadString()
	if err != nil {
		return err
	}
	if raw = strings.TrimSpace(raw); raw == "" {
		return ErrNoVersion
	}
	profile, known := firmware.Lookup(raw)

	s.lock.Lock()
	previous := s.version.Raw
	s.version = firmware.ParseVersion(raw)
	s.profile = profile
	s.known = known
	s.connectedAt = s.Now()
	s.lock.Unlock()

	if raw != previous {
		s.Logger.Logf(logging.Warn, "firmware reported %q after reconnecting, expected %q", raw, previous)
		if !known {
			s.Logger.Logf(logging.Warn, "unknown firmware version %s, functionality may be limited", raw)
		}
		s.notify()
	}
	return nil
}

// Disconnect closes the port and forgets the firmware. Pose
// bookkeeping survives.
func (s *Session) Disconnect() error {
	var errs framework.AggregatedError
	errs.Add(s.stopKeepalive())
	if s.dispatcher.IsOpen() {
		errs.Add(s.dispatcher.Close())
	}

	s.lock.Lock()
	was := s.connected
	s.port = ""
	s.connected = false
	s.version = firmware.Version{}
	s.profile = firmware.Profile{}
	s.known = false
	s.connectedAt = time.Time{}
	s.name = ""
	s.moving = false
	s.lock.Unlock()

	if was {
		s.notify()
	}
	return errs.Aggregate()
}

func (s *Session) startKeepalive(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	runner := framework.NewRunnerWith(ctx)
	runner.Logger = s.Logger
	runner.Go(NewKeepalive(s, interval))
	s.lock.Lock()
	s.keepalive, s.cancelKeepalive = runner, cancel
	s.lock.Unlock()
}

func (s *Session) stopKeepalive() error {
	s.lock.Lock()
	runner, cancel := s.keepalive, s.cancelKeepalive
	s.keepalive, s.cancelKeepalive = nil, nil
	s.lock.Unlock()
	if runner == nil {
		return nil
	}
	cancel()
	return runner.Wait()
}

// IsConnected indicates a robot was identified on the port.
func (s *Session) IsConnected() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.connected
}

// Port returns the connected port name.
func (s *Session) Port() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.port
}

// Versions returns the library version and the firmware version,
// the latter is empty when not connected.
func (s *Session) Versions() (string, string) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return LibraryVersion, s.version.Raw
}

// Profile returns the capabilities of the connected firmware.
func (s *Session) Profile() firmware.Profile {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.profile
}

// Uptime returns the time since connecting, or -1 if not connected.
func (s *Session) Uptime() time.Duration {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if !s.connected {
		return -1
	}
	return s.Now().Sub(s.connectedAt)
}

// History returns every command sent, except keepalives.
func (s *Session) History() []comm.Command {
	return s.dispatcher.History()
}

// SyncState returns the state of the link.
func (s *Session) SyncState() comm.SyncState {
	return s.dispatcher.Sync.State()
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.info()
}

func (s *Session) info() Info {
	return Info{
		ID:          s.ID,
		Port:        s.port,
		Connected:   s.connected,
		Version:     s.version.Raw,
		Profile:     s.profile,
		Known:       s.known,
		Name:        s.name,
		ConnectedAt: s.connectedAt,
	}
}

func (s *Session) notify() {
	s.lock.RLock()
	info := s.info()
	observers := append([]Observer(nil), s.observers...)
	s.lock.RUnlock()
	for _, o := range observers {
		o.SessionChanged(info)
	}
}

func (s *Session) commandSent(cmd comm.Command) {
	s.lock.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.lock.RUnlock()
	for _, o := range observers {
		o.CommandSent(cmd)
	}
}

// require checks the session is connected and the firmware has the features.
func (s *Session) require(op string, features ...firmware.Feature) error {
	s.lock.RLock()
	connected, profile, version := s.connected, s.profile, s.version.Raw
	s.lock.RUnlock()
	if !connected {
		s.Logger.Logf(logging.Critical, "Sparki is not connected, connect first")
		return comm.ErrNotConnected
	}
	for _, f := range features {
		if !profile.Has(f) {
			s.Logger.Logf(logging.Critical, "%s is not supported by firmware %s", op, version)
			return &CapabilityError{Operation: op, Feature: f, Version: version}
		}
	}
	return nil
}

func (s *Session) send(op comm.Opcode, args ...interface{}) error {
	return s.dispatcher.Send(comm.NewCommand(op, args...))
}

// sendAndWait keeps the link until wait returns. The firmware sends no
// Sync while it executes a timed command.
func (s *Session) sendAndWait(wait func(), op comm.Opcode, args ...interface{}) error {
	return s.dispatcher.Do(func(c *comm.Conn) error {
		if err := c.SendCommand(op, args...); err != nil {
			return err
		}
		wait()
		return nil
	})
}

func (s *Session) query(op comm.Opcode, read func(*comm.Conn) error, args ...interface{}) error {
	return s.dispatcher.Do(func(c *comm.Conn) error {
		if err := c.SendCommand(op, args...); err != nil {
			return err
		}
		return read(c)
	})
}

func (s *Session) queryInts(op comm.Opcode, vals []int) error {
	return s.query(op, func(c *comm.Conn) (err error) {
		for n := range vals {
			if vals[n], err = c.ReadInt(); err != nil {
				return
			}
		}
		return
	})
}

func (s *Session) queryFloats(op comm.Opcode, vals []float64) error {
	return s.query(op, func(c *comm.Conn) (err error) {
		for n := range vals {
			if vals[n], err = c.ReadFloat(); err != nil {
				return
			}
		}
		return
	})
}

func (s *Session) wait(seconds float64) {
	if seconds > 0 {
		s.Sleep(time.Duration(seconds * float64(time.Second)))
	}
}

func (s *Session) clamp(what string, v, lo, hi float64) float64 {
	if v < lo || v > hi {
		s.Logger.Logf(logging.Warn, "%s %v is out of range [%v, %v]", what, v, lo, hi)
		if v < lo {
			return lo
		}
		return hi
	}
	return v
}

func (s *Session) clampInt(what string, v, lo, hi int) int {
	return int(s.clamp(what, float64(v), float64(lo), float64(hi)))
}
