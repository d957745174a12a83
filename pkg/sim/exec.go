package sim

import (
	"sync"

	"github.com/robotalks/sparki.go/pkg/comm"
)

// ExecListener listens for executed commands.
type ExecListener interface {
	CommandExecuted(comm.Command, State)
}

// ExecListenerFunc is the func form of ExecListener.
type ExecListenerFunc func(comm.Command, State)

// CommandExecuted implements ExecListener.
func (f ExecListenerFunc) CommandExecuted(cmd comm.Command, state State) {
	f(cmd, state)
}

// ExecCaster provides a subscriber and implements
// listener to cast notifcations.
type ExecCaster struct {
	listeners []ExecListener
	lock      sync.RWMutex
}

// SubscribeExec adds a listener.
func (c *ExecCaster) SubscribeExec(ln ExecListener) {
	c.lock.Lock()
	c.listeners = append(c.listeners, ln)
	c.lock.Unlock()
}

// CommandExecuted implements ExecListener.
func (c *ExecCaster) CommandExecuted(cmd comm.Command, state State) {
	c.lock.RLock()
	listeners := c.listeners
	c.lock.RUnlock()
	for _, ln := range listeners {
		ln.CommandExecuted(cmd, state)
	}
}
