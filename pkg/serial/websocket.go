package serial

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/robotalks/sparki.go/pkg/comm"
)

// ErrClosed is returned by a closed websocket port.
var ErrClosed = errors.New("websocket port closed")

// WebsocketPort tunnels the serial stream over a websocket,
// every message carries raw bytes.
type WebsocketPort struct {
	conn    *websocket.Conn
	timeout time.Duration
	recvCh  chan []byte
	doneCh  chan struct{}
	closeCh chan struct{}

	lock    sync.Mutex
	pending []byte
	err     error
	closed  bool
}

// OpenWebsocket dials a websocket serial tunnel.
func OpenWebsocket(rawURL string, opts comm.PortOptions) (comm.Port, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(rawURL, "", origin)
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}
	return NewWebsocketPort(conn, opts.Timeout), nil
}

// NewWebsocketPort wraps an established connection.
func NewWebsocketPort(conn *websocket.Conn, timeout time.Duration) *WebsocketPort {
	conn.PayloadType = websocket.BinaryFrame
	p := &WebsocketPort{
		conn:    conn,
		timeout: timeout,
		recvCh:  make(chan []byte, 64),
		doneCh:  make(chan struct{}),
		closeCh: make(chan struct{}),
	}
	go p.receive()
	return p
}

func (p *WebsocketPort) receive() {
	defer close(p.doneCh)
	for {
		var pkt []byte
		if err := websocket.Message.Receive(p.conn, &pkt); err != nil {
			p.lock.Lock()
			p.err = err
			p.lock.Unlock()
			return
		}
		select {
		case p.recvCh <- pkt:
		case <-p.closeCh:
			return
		}
	}
}

// Read implements io.Reader. It returns 0 bytes if nothing
// arrived within the timeout.
func (p *WebsocketPort) Read(b []byte) (int, error) {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return 0, ErrClosed
	}
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		p.lock.Unlock()
		return n, nil
	}
	p.lock.Unlock()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case pkt := <-p.recvCh:
		n := copy(b, pkt)
		if n < len(pkt) {
			p.lock.Lock()
			p.pending = append(p.pending, pkt[n:]...)
			p.lock.Unlock()
		}
		return n, nil
	case <-p.doneCh:
		p.lock.Lock()
		defer p.lock.Unlock()
		return 0, p.err
	case <-timer.C:
		return 0, nil
	}
}

// Write implements io.Writer.
func (p *WebsocketPort) Write(b []byte) (int, error) {
	if err := websocket.Message.Send(p.conn, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// ResetInputBuffer implements comm.Port.
func (p *WebsocketPort) ResetInputBuffer() error {
	p.lock.Lock()
	p.pending = nil
	p.lock.Unlock()
	for {
		select {
		case <-p.recvCh:
		default:
			return nil
		}
	}
}

// Drain implements comm.Port, messages are sent synchronously.
func (p *WebsocketPort) Drain() error {
	return nil
}

// Close implements io.Closer.
func (p *WebsocketPort) Close() error {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return nil
	}
	p.closed = true
	close(p.closeCh)
	p.lock.Unlock()
	return p.conn.Close()
}
