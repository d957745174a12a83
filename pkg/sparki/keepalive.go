package sparki

import (
	"context"
	"errors"
	"time"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/logging"
)

// Keepalive intervals.
const (
	DefaultKeepalive = 10 * time.Second
	MinKeepalive     = 3 * time.Second
	MaxKeepalive     = 60 * time.Second
)

// Keepalive sends Noop periodically so an idle Bluetooth link
// isn't dropped.
type Keepalive struct {
	Session  *Session
	Interval time.Duration
}

// NewKeepalive creates a Keepalive with the interval clamped
// to [MinKeepalive, MaxKeepalive].
func NewKeepalive(s *Session, interval time.Duration) *Keepalive {
	switch {
	case interval <= 0:
		interval = DefaultKeepalive
	case interval < MinKeepalive:
		interval = MinKeepalive
	case interval > MaxKeepalive:
		interval = MaxKeepalive
	}
	return &Keepalive{Session: s, Interval: interval}
}

// Name implements framework.Named.
func (k *Keepalive) Name() string {
	return "keepalive"
}

// Run implements framework.Runnable. It returns when ctx is done,
// the session disconnects or the connection is lost.
func (k *Keepalive) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !k.Session.IsConnected() {
			return nil
		}
		err := k.Session.Noop()
		if err == nil {
			continue
		}
		var lost *comm.ConnectionLostError
		if errors.As(err, &lost) || errors.Is(err, comm.ErrNotConnected) {
			k.Session.Logger.Logf(logging.Error, "keepalive stopped: %v", err)
			return err
		}
		k.Session.Logger.Logf(logging.Warn, "keepalive: %v", err)
	}
}
