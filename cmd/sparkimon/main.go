package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/sparki.go/pkg/bridge"
	"github.com/robotalks/sparki.go/pkg/bridge/mqtt"
	"github.com/robotalks/sparki.go/pkg/logging"
)

var (
	mqttURL = "mqtt://localhost:1883/sparki/"
)

func init() {
	if val := os.Getenv("SPARKI_BRIDGE_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL, logging.Glog{})
	if err != nil {
		log.Fatalln(err)
	}
	if tok := q.Connect(); tok.Wait() && tok.Error() != nil {
		log.Fatalln(tok.Error())
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+mqtt.MetaTopic):
			if len(payload) == 0 {
				log.Printf("%s: gone", topic)
				return
			}
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/"+mqtt.EventsTopic):
			event, err := bridge.UnmarshalEvent(payload)
			if err != nil {
				log.Printf("%s: bad event: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, event)
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	<-(chan struct{})(nil)
}
