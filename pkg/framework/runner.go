package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/robotalks/sparki.go/pkg/logging"
)

// ErrForcedExit is returned by Wait after a second interrupt.
var ErrForcedExit = errors.New("forced exit")

// Runner runs Runnables in goroutines and collects their errors.
type Runner struct {
	Context context.Context
	Logger  logging.Logger

	count  int
	errCh  chan error
	exitCh chan struct{}
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner whose Runnables stop with ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		Logger:  logging.Discard,
		errCh:   make(chan error, 1),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM, and makes Wait
// return on the second one.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	r.Context = ctx
	go func() {
		<-sigCh
		r.Logger.Logf(logging.Always, "stopping")
		cancel()
		<-sigCh
		r.Logger.Logf(logging.Error, "stop requested again, exiting")
		close(r.exitCh)
	}()
	return r
}

// Go starts runnables with the runner context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := strconv.Itoa(r.count)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.count++
		go func(runnable Runnable, name string) {
			r.Logger.Logf(logging.Debug, "%s started", name)
			err := runnable.Run(r.Context)
			r.Logger.Logf(logging.Debug, "%s stopped: %v", name, err)
			r.errCh <- err
		}(runnable, name)
	}
	return r
}

// Wait waits for every Runnable. Cancellation isn't an error.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for n := 0; n < r.count; n++ {
		select {
		case <-r.exitCh:
			return ErrForcedExit
		case err := <-r.errCh:
			if !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// RunWithCloser runs fn until it returns or ctx is done, in which case
// closer is closed to make fn return. closer is always closed.
func RunWithCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		closer.Close()
		return err
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return ctx.Err()
	}
}
