package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/robotalks/sparki.go/pkg/bridge"
	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/logging"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

// Topic suffixes under <prefix><robot>/.
const (
	MetaTopic   = "meta"
	EventsTopic = "events"
)

// ConnectTimeout bounds waiting for the broker in Start.
const ConnectTimeout = 5 * time.Second

// Sink accepts publications, Queue is the usual one.
type Sink interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher implements sparki.Observer and publishes:
//   <robot>/meta    retained JSON of sparki.Info, cleared by the will
//   <robot>/events  bridge.Event in protobuf wire format
type Publisher struct {
	Sink    Sink
	RobotID string
	Logger  logging.Logger
	Now     func() time.Time

	queue   *Queue
	lock    sync.Mutex
	session string
}

// MachineRobotID derives a robot ID from the host machine ID.
func MachineRobotID() string {
	id, err := machineid.ProtectedID("sparki.go")
	if err != nil {
		return "sparki"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// NewPublisher creates a Publisher connected through a new Queue.
// An empty robotID uses MachineRobotID.
func NewPublisher(brokerURL, robotID string, logger logging.Logger) (*Publisher, error) {
	if robotID == "" {
		robotID = MachineRobotID()
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+robotID+"/"+MetaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("sparki:" + robotID)
	}
	q := NewQueue(opts, topicPrefix, logger)
	return &Publisher{
		Sink:    q,
		RobotID: robotID,
		Logger:  q.Logger,
		Now:     time.Now,
		queue:   q,
	}, nil
}

// Start connects to the broker.
func (p *Publisher) Start() error {
	if p.queue == nil {
		return nil
	}
	token := p.queue.Connect()
	if !token.WaitTimeout(ConnectTimeout) {
		return fmt.Errorf("timeout connecting MQTT broker")
	}
	return token.Error()
}

// Close clears the retained meta and disconnects.
func (p *Publisher) Close() error {
	token := p.Sink.PubWith(p.topic(MetaTopic), nil, 1, true)
	if p.queue == nil {
		return nil
	}
	token.WaitTimeout(time.Second)
	return p.queue.Close()
}

// Attach observes s.
func (p *Publisher) Attach(s *sparki.Session) {
	p.lock.Lock()
	p.session = s.ID
	p.lock.Unlock()
	s.AddObserver(p)
}

// SessionChanged implements sparki.Observer.
func (p *Publisher) SessionChanged(info sparki.Info) {
	meta, err := json.Marshal(&info)
	if err != nil {
		p.Logger.Logf(logging.Error, "encode session info: %v", err)
		return
	}
	p.lock.Lock()
	p.session = info.ID
	p.lock.Unlock()
	p.Sink.PubWith(p.topic(MetaTopic), meta, 1, true)
	p.publish(bridge.InfoEvent(info, p.Now()))
}

// CommandSent implements sparki.Observer.
func (p *Publisher) CommandSent(cmd comm.Command) {
	p.lock.Lock()
	session := p.session
	p.lock.Unlock()
	p.publish(bridge.CommandEvent(session, cmd, p.Now()))
}

// publish doesn't wait for the broker, observers run while the link is held.
func (p *Publisher) publish(e *bridge.Event) {
	payload, err := e.Marshal()
	if err != nil {
		p.Logger.Logf(logging.Error, "encode %s event: %v", e.Kind, err)
		return
	}
	p.Sink.PubWith(p.topic(EventsTopic), payload, 0, false)
}

func (p *Publisher) topic(suffix string) string {
	return p.RobotID + "/" + suffix
}
