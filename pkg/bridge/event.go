// Package bridge turns session activity into telemetry events.
package bridge

import (
	"fmt"
	"sort"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

// Event kinds.
const (
	KindConnected    = "connected"
	KindDisconnected = "disconnected"
	KindCommand      = "command"
)

// Event is one telemetry record. Data holds JSON compatible values,
// numbers decode as float64.
type Event struct {
	Kind    string
	Session string
	Time    time.Time
	Data    map[string]interface{}
}

// InfoEvent reports a connect or disconnect.
func InfoEvent(info sparki.Info, t time.Time) *Event {
	kind := KindDisconnected
	if info.Connected {
		kind = KindConnected
	}
	data := map[string]interface{}{
		"connected": info.Connected,
	}
	if info.Connected {
		features := make([]interface{}, 0, 6)
		for _, f := range info.Profile.Features() {
			features = append(features, f.String())
		}
		data["port"] = info.Port
		data["version"] = info.Version
		data["known"] = info.Known
		data["name"] = info.Name
		data["features"] = features
	}
	return &Event{Kind: kind, Session: info.ID, Time: t, Data: data}
}

// CommandEvent reports a command written to the robot.
func CommandEvent(session string, cmd comm.Command, t time.Time) *Event {
	data := map[string]interface{}{
		"opcode": cmd.Opcode.String(),
	}
	if tokens, err := cmd.Tokens(); err == nil {
		args := make([]interface{}, 0, len(tokens)-1)
		for _, tok := range tokens[1:] {
			args = append(args, tok)
		}
		data["args"] = args
	}
	return &Event{Kind: KindCommand, Session: session, Time: t, Data: data}
}

// Proto converts the event into a protobuf Struct.
func (e *Event) Proto() (*structpb.Struct, error) {
	data, err := toStruct(e.Data)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":    stringValue(e.Kind),
		"session": stringValue(e.Session),
		"time":    stringValue(e.Time.UTC().Format(time.RFC3339Nano)),
		"data":    {Kind: &structpb.Value_StructValue{StructValue: data}},
	}}, nil
}

// Marshal encodes the event in protobuf wire format.
func (e *Event) Marshal() ([]byte, error) {
	pb, err := e.Proto()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pb)
}

// JSON renders the event as JSON.
func (e *Event) JSON() (string, error) {
	pb, err := e.Proto()
	if err != nil {
		return "", err
	}
	return (&jsonpb.Marshaler{}).MarshalToString(pb)
}

// String implements fmt.Stringer.
func (e *Event) String() string {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := fmt.Sprintf("[%s] %s", e.Session, e.Kind)
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%v", k, e.Data[k])
	}
	return s
}

// EventFromProto converts a protobuf Struct back into an Event.
func EventFromProto(pb *structpb.Struct) (*Event, error) {
	e := &Event{
		Kind:    pb.Fields["kind"].GetStringValue(),
		Session: pb.Fields["session"].GetStringValue(),
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("event without kind")
	}
	if ts := pb.Fields["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid event time %q: %w", ts, err)
		}
		e.Time = t
	}
	if data := pb.Fields["data"].GetStructValue(); data != nil {
		e.Data = fromStruct(data)
	}
	return e, nil
}

// UnmarshalEvent decodes an event in protobuf wire format.
func UnmarshalEvent(payload []byte) (*Event, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(payload, &pb); err != nil {
		return nil, err
	}
	return EventFromProto(&pb)
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(m))}
	for k, v := range m {
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		s.Fields[k] = val
	}
	return s, nil
}

func toValue(v interface{}) (*structpb.Value, error) {
	switch v := v.(type) {
	case nil:
		return &structpb.Value{Kind: &structpb.Value_NullValue{}}, nil
	case bool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}, nil
	case int:
		return numberValue(float64(v)), nil
	case int64:
		return numberValue(float64(v)), nil
	case float32:
		return numberValue(float64(v)), nil
	case float64:
		return numberValue(v), nil
	case string:
		return stringValue(v), nil
	case fmt.Stringer:
		return stringValue(v.String()), nil
	case []interface{}:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(v))}
		for n, item := range v {
			val, err := toValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", n, err)
			}
			list.Values = append(list.Values, val)
		}
		return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: list}}, nil
	case map[string]interface{}:
		s, err := toStruct(v)
		if err != nil {
			return nil, err
		}
		return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: s}}, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func numberValue(f float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: f}}
}

func fromStruct(s *structpb.Struct) map[string]interface{} {
	m := make(map[string]interface{}, len(s.Fields))
	for k, v := range s.Fields {
		m[k] = fromValue(v)
	}
	return m
}

func fromValue(v *structpb.Value) interface{} {
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return k.BoolValue
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_ListValue:
		items := make([]interface{}, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			items = append(items, fromValue(item))
		}
		return items
	case *structpb.Value_StructValue:
		return fromStruct(k.StructValue)
	}
	return nil
}
