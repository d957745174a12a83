package comm

import (
	"errors"
	"sync"
	"time"
)

// fakePort emulates the firmware side closely enough for the host logic:
// it replies to known tokens and emits Sync while idle when sync is set.
type fakePort struct {
	lock    sync.Mutex
	timeout time.Duration
	sync    bool
	replies map[string][]string
	out     []byte
	dec     Decoder
	tokens  []string
	resets  int
	closed  bool
}

func newFakePort(sync bool) *fakePort {
	return &fakePort{sync: sync, timeout: 5 * time.Millisecond, replies: make(map[string][]string)}
}

func (p *fakePort) reply(tok string, reply ...string) *fakePort {
	p.replies[tok] = reply
	return p
}

func (p *fakePort) setSync(sync bool) {
	p.lock.Lock()
	p.sync = sync
	p.lock.Unlock()
}

func (p *fakePort) received() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.tokens...)
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return 0, errors.New("closed")
	}
	if len(p.out) > 0 {
		b[0], p.out = p.out[0], p.out[1:]
		p.lock.Unlock()
		return 1, nil
	}
	emit := p.sync
	p.lock.Unlock()
	if emit {
		b[0] = Sync
		return 1, nil
	}
	time.Sleep(p.timeout)
	return 0, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, c := range b {
		if tok, ok := p.dec.Parse(c); ok {
			p.tokens = append(p.tokens, tok)
			for _, r := range p.replies[tok] {
				p.out = append(p.out, r...)
				p.out = append(p.out, Terminator)
			}
		}
	}
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.lock.Lock()
	p.out = nil
	p.resets++
	p.lock.Unlock()
	return nil
}

func (p *fakePort) Drain() error {
	return nil
}

type fakeOpener struct {
	ports  []*fakePort
	names  []string
	opened int
	err    error
}

func (o *fakeOpener) OpenPort(name string, opts PortOptions) (Port, error) {
	if o.err != nil {
		return nil, o.err
	}
	index := o.opened
	if index >= len(o.ports) {
		index = len(o.ports) - 1
	}
	o.opened++
	o.names = append(o.names, name)
	port := o.ports[index]
	port.lock.Lock()
	port.closed = false
	if opts.Timeout > 0 {
		port.timeout = opts.Timeout
	}
	port.lock.Unlock()
	return port, nil
}
