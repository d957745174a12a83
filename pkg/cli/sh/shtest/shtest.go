// Package shtest runs shell commands against a simulated Sparki.
package shtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sparki.go/pkg/cli/sh"
	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/config"
	"github.com/robotalks/sparki.go/pkg/logging"
	"github.com/robotalks/sparki.go/pkg/serial"
	"github.com/robotalks/sparki.go/pkg/sim"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

// Env is a shell connected to a simulated device.
type Env struct {
	Shell  *sh.Shell
	Device *sim.Device
	Log    *logging.Recorder
}

// New connects a shell to a simulated device running version.
// Motions don't sleep.
func New(t testing.TB, version string) *Env {
	conf := config.NewConfig()
	conf.Timeout = 5 * time.Millisecond
	conf.Retries = 2
	conf.LoopWait = 0
	conf.SettleDelay = 0
	conf.OpenRetries = 1
	conf.Keepalive = 0

	env := &Env{Log: &logging.Recorder{}}
	opener := serial.NewOpener(nil)
	session := sparki.NewSession(conf, opener, env.Log)
	session.Sleep = func(time.Duration) {}
	env.Shell = &sh.Shell{Config: conf, Session: session}
	t.Cleanup(func() { session.Disconnect() })

	ok, err := session.Connect("sim://" + version)
	require.NoError(t, err)
	require.True(t, ok)
	env.Device = opener.Sim(version)
	return env
}

// Run calls fn with args.
func (e *Env) Run(fn sh.CmdFunc, args ...string) (interface{}, error) {
	return fn(e.Shell, args)
}

// Last returns the last command sent.
func (e *Env) Last() comm.Command {
	history := e.Shell.Session.History()
	if len(history) == 0 {
		return comm.Command{}
	}
	return history[len(history)-1]
}
