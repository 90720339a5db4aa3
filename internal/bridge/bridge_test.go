package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dsaviz/dsaviz/internal/engine"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	hub := NewHub(func() *engine.Engine { return engine.NewEngine() }, nil)
	return NewSession(hub, nil, "test-session", hub.newEngine())
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func decodeState(t *testing.T, msg *Message) StatePayload {
	t.Helper()
	if msg.Type != TypeState {
		t.Fatalf("reply type = %q (%s), want state", msg.Type, msg.Payload)
	}
	var st StatePayload
	if err := json.Unmarshal(msg.Payload, &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func decodeError(t *testing.T, msg *Message) string {
	t.Helper()
	if msg.Type != TypeError {
		t.Fatalf("reply type = %q, want error", msg.Type)
	}
	var p ErrorPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatal(err)
	}
	return p.Message
}

func TestHandleAction(t *testing.T) {
	s := newTestSession(t)
	reply := s.Handle(&Message{
		Type:    TypeAction,
		Seq:     3,
		Payload: payload(t, engine.Action{Op: "createArray", Size: 4}),
	})
	st := decodeState(t, reply)
	if reply.Seq != 3 || reply.SessionID != "test-session" {
		t.Errorf("reply header = %+v", reply)
	}
	if st.ID == "" || !st.CanUndo || len(st.Commands) == 0 {
		t.Errorf("state = id %q canUndo %v commands %d", st.ID, st.CanUndo, len(st.Commands))
	}
	if st.Info != "Added array #1 (size 4)" {
		t.Errorf("info = %q", st.Info)
	}
}

func TestHandleRejection(t *testing.T) {
	s := newTestSession(t)
	reply := s.Handle(&Message{
		Type:    TypeAction,
		Payload: payload(t, engine.Action{Op: "createArray", Size: 0}),
	})
	if got := decodeError(t, reply); got != "Please enter a size between 1 and 20" {
		t.Errorf("error = %q", got)
	}
}

func TestHandleMalformed(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"unknown type", Message{Type: "gossip"}},
		{"bad action", Message{Type: TypeAction, Payload: json.RawMessage(`[1,2]`)}},
		{"bad event", Message{Type: TypeEvent, Payload: payload(t, engine.EventPayload{Type: "teleport"})}},
		{"bad edit", Message{Type: TypeEdit, Payload: payload(t, EditPayload{Op: "explode"})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			decodeError(t, s.Handle(&tt.msg))
		})
	}
}

func messageSeries(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	labels := map[string]bool{}
	for _, f := range families {
		if f.GetName() != "dsaviz_bridge_messages_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "type" {
					labels[l.GetValue()] = true
				}
			}
		}
	}
	return labels
}

func TestUnknownTypesShareOneSeries(t *testing.T) {
	s := newTestSession(t)
	for i := range 200 {
		reply := s.Handle(&Message{Type: fmt.Sprintf("junk-%d", i)})
		if reply.Type != TypeError {
			t.Fatalf("junk-%d reply = %q, want error", i, reply.Type)
		}
	}
	s.Handle(&Message{Type: TypeSync})

	labels := messageSeries(t)
	for l := range labels {
		switch l {
		case TypeAction, TypeEvent, TypeEdit, TypeSync, "unknown":
		default:
			t.Errorf("unexpected message label %q", l)
		}
	}
	if !labels["unknown"] || !labels[TypeSync] {
		t.Errorf("labels = %v, want unknown and sync", labels)
	}
}

func TestHandleEditFlow(t *testing.T) {
	s := newTestSession(t)
	s.Handle(&Message{Type: TypeAction, Payload: payload(t, engine.Action{Op: "createArray", Size: 3})})

	// Cell 0 of the first array sits at pixels 90..150, 120..165.
	st := decodeState(t, s.Handle(&Message{
		Type:    TypeEvent,
		Payload: payload(t, engine.EventPayload{Type: "doubleClick", X: 120, Y: 140}),
	}))
	if st.Editor == nil {
		t.Fatal("no editor after double click")
	}
	if st.Editor.Rect.X != 90 || st.Editor.Rect.W != 60 {
		t.Errorf("editor rect = %+v", st.Editor.Rect)
	}

	s.Handle(&Message{Type: TypeEdit, Payload: payload(t, EditPayload{Op: "value", Value: "5"})})
	st = decodeState(t, s.Handle(&Message{Type: TypeEdit, Payload: payload(t, EditPayload{Op: "commit"})}))
	if st.Editor != nil {
		t.Error("editor still open after commit")
	}
	s.View(func(e *engine.Engine) {
		if got := e.State().Arrays[0].Values[0]; got != "5" {
			t.Errorf("cell 0 = %q, want 5", got)
		}
	})
}

func TestHandleContextMenuPrompt(t *testing.T) {
	s := newTestSession(t)
	s.Handle(&Message{Type: TypeAction, Payload: payload(t, engine.Action{Op: "createArray", Size: 3})})
	st := decodeState(t, s.Handle(&Message{
		Type:    TypeEvent,
		Payload: payload(t, engine.EventPayload{Type: "contextMenu", X: 120, Y: 140}),
	}))
	if st.Prompt == nil || st.Prompt.Action != "highlight" || st.Prompt.Index != 0 {
		t.Errorf("prompt = %+v", st.Prompt)
	}
}

func TestNewHandlerOriginPatterns(t *testing.T) {
	h := NewHandler(nil, []string{"http://localhost:5173", "example.com"})
	want := []string{"localhost:5173", "example.com"}
	if strings.Join(h.originPatterns, ",") != strings.Join(want, ",") {
		t.Errorf("patterns = %q, want %q", h.originPatterns, want)
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub(func() *engine.Engine { return engine.NewEngine() }, nil)
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(NewHandler(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() Message {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatal(err)
		}
		return m
	}

	welcome := read()
	if welcome.Type != TypeWelcome || welcome.SessionID == "" {
		t.Fatalf("first message = %+v", welcome)
	}
	if initial := read(); initial.Type != TypeState {
		t.Fatalf("second message type = %q", initial.Type)
	}
	if _, ok := hub.Lookup(welcome.SessionID); !ok {
		t.Error("session not registered")
	}

	msg, _ := json.Marshal(Message{
		Type:    TypeAction,
		Seq:     1,
		Payload: payload(t, engine.Action{Op: "addStructure", Type: "graph", Size: 4}),
	})
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply := read()
	if reply.Type != TypeState || reply.Seq != 1 {
		t.Errorf("reply = %+v", reply)
	}
}
