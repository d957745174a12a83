package comm

import (
	"sync"
	"time"
)

// SyncState indicates the state of communication.
type SyncState int

const (
	// StateDisconnected means no port is open.
	StateDisconnected SyncState = iota
	// StateAwaitingSync means the host is waiting for the device to be idle.
	StateAwaitingSync
	// StateReady means a Sync was received and a command can be sent.
	StateReady
	// StateTransmitting means command tokens are being written.
	StateTransmitting
	// StateUnrecoverable means the link failed even after reconnecting.
	StateUnrecoverable
)

var syncStateNames = map[SyncState]string{
	StateDisconnected:  "disconnected",
	StateAwaitingSync:  "awaiting-sync",
	StateReady:         "ready",
	StateTransmitting:  "transmitting",
	StateUnrecoverable: "unrecoverable",
}

// String implements fmt.Stringer.
func (s SyncState) String() string {
	if name, ok := syncStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// StateNotifier is called when the sync state changed.
type StateNotifier interface {
	StateChanged(SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(state SyncState) {
	f(state)
}

// Synchronizer waits for the device to signal readiness.
type Synchronizer struct {
	// Timeout is the duration of one attempt, it should match
	// the read timeout of the port.
	Timeout time.Duration
	// Retries is the number of attempts before giving up.
	Retries int
	// LoopWait is slept between reads.
	LoopWait time.Duration

	notifier StateNotifier
	state    SyncState
	lock     sync.RWMutex
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(timeout time.Duration, retries int, loopWait time.Duration) *Synchronizer {
	return &Synchronizer{Timeout: timeout, Retries: retries, LoopWait: loopWait}
}

// State gets the state.
func (s *Synchronizer) State() SyncState {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// Window is the total time Wait waits for Sync.
func (s *Synchronizer) Window() time.Duration {
	retries := s.Retries
	if retries < 1 {
		retries = 1
	}
	return s.Timeout * time.Duration(retries)
}

// Wait discards buffered input and reads until a Sync byte arrives.
// Anything else read meanwhile is noise and ignored. The deadline is
// checked before each read, so Wait returns ErrSyncTimeout no earlier
// than Window and no later than Window plus one read timeout.
func (s *Synchronizer) Wait(t *Transport) error {
	s.SetState(StateAwaitingSync)
	if err := t.DiscardInput(); err != nil {
		return err
	}
	deadline := time.Now().Add(s.Window())
	for {
		if !time.Now().Before(deadline) {
			return ErrSyncTimeout
		}
		b, err := t.ReadByte()
		if err == nil && b == Sync {
			s.SetState(StateReady)
			return nil
		}
		if err != nil && err != ErrReadTimeout {
			return err
		}
		if s.LoopWait > 0 {
			time.Sleep(s.LoopWait)
		}
	}
}

// SetNotifier replaces the state notifier, nil removes it.
func (s *Synchronizer) SetNotifier(n StateNotifier) {
	s.lock.Lock()
	s.notifier = n
	s.lock.Unlock()
}

// SetState sets the state and notifies on change.
func (s *Synchronizer) SetState(state SyncState) {
	var notifier StateNotifier
	s.lock.Lock()
	if s.state != state {
		s.state = state
		notifier = s.notifier
	}
	s.lock.Unlock()
	if notifier != nil {
		notifier.StateChanged(state)
	}
}
