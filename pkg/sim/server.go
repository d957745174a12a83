package sim

import (
	"io"
	"time"

	"golang.org/x/net/websocket"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/logging"
)

// DefaultIdleInterval is the pace of Sync while idle over websocket.
const DefaultIdleInterval = 10 * time.Millisecond

// Serve runs the protocol over a websocket until the connection fails.
// Output is sent every interval, a single Sync when there is none.
func (d *Device) Serve(ws *websocket.Conn, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultIdleInterval
	}
	ws.PayloadType = websocket.BinaryFrame
	errCh := make(chan error, 1)
	go func() {
		for {
			var pkt []byte
			if err := websocket.Message.Receive(ws, &pkt); err != nil {
				errCh <- err
				return
			}
			d.Receive(pkt)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			return err
		case <-ticker.C:
			if !d.Powered() {
				continue
			}
			out := d.Output()
			if len(out) == 0 {
				out = []byte{comm.Sync}
			}
			if err := websocket.Message.Send(ws, out); err != nil {
				return err
			}
		}
	}
}

// Handler serves the device to websocket clients.
func (d *Device) Handler(interval time.Duration) websocket.Handler {
	return func(ws *websocket.Conn) {
		defer ws.Close()
		d.Logger.Logf(logging.Info, "sim: client %s connected", ws.Request().RemoteAddr)
		if err := d.Serve(ws, interval); err != nil && err != io.EOF {
			d.Logger.Logf(logging.Warn, "sim: client %s: %v", ws.Request().RemoteAddr, err)
		}
	}
}
