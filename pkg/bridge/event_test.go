package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

var eventTime = time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

func TestInfoEvent(t *testing.T) {
	profile, _ := firmware.Lookup("1.1.4")
	e := InfoEvent(sparki.Info{
		ID:        "s1",
		Port:      "/dev/rfcomm0",
		Connected: true,
		Version:   "1.1.4",
		Profile:   profile,
		Known:     true,
		Name:      "Sparki",
	}, eventTime)
	require.Equal(t, KindConnected, e.Kind)
	require.Equal(t, "s1", e.Session)
	require.Equal(t, "1.1.4", e.Data["version"])
	require.Equal(t, []interface{}{"accelerometer", "magnetometer", "EEPROM", "extended LCD", "noop"}, e.Data["features"])

	e = InfoEvent(sparki.Info{ID: "s1"}, eventTime)
	require.Equal(t, KindDisconnected, e.Kind)
	require.Equal(t, map[string]interface{}{"connected": false}, e.Data)
}

func TestCommandEvent(t *testing.T) {
	e := CommandEvent("s1", comm.NewCommand(firmware.Motors, 100, -100, 1.5), eventTime)
	require.Equal(t, KindCommand, e.Kind)
	require.Equal(t, firmware.Motors.String(), e.Data["opcode"])
	require.Equal(t, []interface{}{"100", "-100", "1.5"}, e.Data["args"])
}

func TestEventRoundTrip(t *testing.T) {
	e := &Event{
		Kind:    KindCommand,
		Session: "s1",
		Time:    eventTime,
		Data: map[string]interface{}{
			"opcode": "z",
			"count":  3,
			"ok":     true,
			"none":   nil,
			"nested": map[string]interface{}{"x": 1.5},
			"list":   []interface{}{"a", 2},
		},
	}
	payload, err := e.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalEvent(payload)
	require.NoError(t, err)
	require.Equal(t, e.Kind, decoded.Kind)
	require.Equal(t, e.Session, decoded.Session)
	require.True(t, e.Time.Equal(decoded.Time))
	require.Equal(t, map[string]interface{}{
		"opcode": "z",
		"count":  3.0,
		"ok":     true,
		"none":   nil,
		"nested": map[string]interface{}{"x": 1.5},
		"list":   []interface{}{"a", 2.0},
	}, decoded.Data)
}

func TestEventJSON(t *testing.T) {
	e := &Event{Kind: KindConnected, Session: "s1", Time: eventTime, Data: map[string]interface{}{"port": "sim"}}
	out, err := e.JSON()
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Equal(t, "connected", parsed["kind"])
	require.Equal(t, map[string]interface{}{"port": "sim"}, parsed["data"])
	require.Equal(t, "2024-03-01T12:30:00.0000005Z", parsed["time"])
}

func TestEventErrors(t *testing.T) {
	e := &Event{Kind: KindCommand, Data: map[string]interface{}{"bad": struct{}{}}}
	_, err := e.Marshal()
	require.Error(t, err)

	_, err = UnmarshalEvent([]byte{0xff})
	require.Error(t, err)

	empty, err := (&Event{}).Marshal()
	require.NoError(t, err)
	_, err = UnmarshalEvent(empty)
	require.Error(t, err)
}

func TestEventString(t *testing.T) {
	e := &Event{Kind: KindCommand, Session: "s1", Data: map[string]interface{}{"opcode": "z", "args": []interface{}{"1"}}}
	require.Equal(t, "[s1] command args=[1] opcode=z", e.String())
}
