package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/config"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/framework"
	"github.com/robotalks/sparki.go/pkg/logging"
	"github.com/robotalks/sparki.go/pkg/sim"
)

var (
	listenAddr = ":8090"
	version    = "1.1.4"
	interval   = sim.DefaultIdleInterval
	name       = ""
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "Websocket listen address.")
	flag.StringVar(&version, "firmware", version, "Simulated firmware version.")
	flag.DurationVar(&interval, "interval", interval, "Output interval.")
	flag.StringVar(&name, "name", name, "Robot name stored in EEPROM.")
	config.SetupFlags()
}

func main() {
	flag.Parse()
	conf := config.Default()
	logger := conf.NewLogger()

	if _, known := firmware.Lookup(version); !known {
		logger.Logf(logging.Warn, "firmware %q is unknown, simulating with the conservative profile", version)
	}
	dev := sim.NewDevice(version)
	dev.Logger = logger
	if name != "" {
		dev.SetName(name)
	}
	dev.SubscribeExec(sim.ExecListenerFunc(func(cmd comm.Command, state sim.State) {
		logger.Logf(logging.Debug, "exec %s at (%.1f, %.1f) heading %.1f",
			cmd, state.Pose.X, state.Pose.Y, state.Pose.Heading())
	}))

	mux := http.NewServeMux()
	mux.Handle("/", dev.Handler(interval))
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Fatalln(err)
	}
	logger.Logf(logging.Always, "sparki %s simulated at ws://%s/", version, ln.Addr())

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	runner := framework.NewRunner()
	runner.Logger = logger
	runner.HandleSignals().Go(framework.RunFunc(func(ctx context.Context) error {
		return framework.RunWithCloser(ctx, server, func() error {
			return server.Serve(ln)
		})
	}))
	if err := runner.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalln(err)
	}
}
