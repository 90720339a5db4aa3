package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/metrics"
	"github.com/dsaviz/dsaviz/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Session is one connected host and the engine it drives. Messages from
// the host are handled in order on the read goroutine; mu also lets the
// HTTP export path read the engine safely.
type Session struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	mu     sync.Mutex
	engine *engine.Engine
}

func NewSession(hub *Hub, conn *websocket.Conn, id string, eng *engine.Engine) *Session {
	return &Session{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: hub.logger.With("session", id),
		engine: eng,
	}
}

func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.hub.Unregister(s)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			s.logger.Debug("read error", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("invalid message", "error", err)
			s.Send(errorMessage(0, "invalid message"))
			continue
		}

		s.Send(s.Handle(&msg))
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				s.logger.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal message", "error", err)
		return
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn("session send buffer full, dropping message")
	}
}

// closeSend closes the outgoing queue, which ends WritePump. Later sends
// are dropped.
func (s *Session) closeSend() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// Handle applies one host message to the engine and returns the reply:
// the new state, or an error payload.
func (s *Session) Handle(msg *Message) *Message {
	metrics.MessageReceived(messageLabel(msg.Type))

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		id     string
		prompt *engine.Prompt
		err    error
	)
	switch msg.Type {
	case TypeAction:
		var a engine.Action
		if err := json.Unmarshal(msg.Payload, &a); err != nil {
			return errorMessage(msg.Seq, "invalid action payload")
		}
		var res engine.Result
		res, err = s.engine.Do(a)
		id = res.ID
	case TypeEvent:
		var p engine.EventPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorMessage(msg.Seq, "invalid event payload")
		}
		ev, perr := p.Event()
		if perr != nil {
			return errorMessage(msg.Seq, perr.Error())
		}
		var out engine.Outcome
		out, err = s.engine.HandleEvent(ev)
		prompt = out.Prompt
	case TypeEdit:
		var p EditPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorMessage(msg.Seq, "invalid edit payload")
		}
		switch p.Op {
		case "value":
			s.engine.SetEditValue(p.Value)
		case "commit":
			err = s.engine.CommitEdit()
		case "cancel":
			s.engine.CancelEdit()
		default:
			return errorMessage(msg.Seq, "unknown edit op "+p.Op)
		}
	case TypeSync:
	default:
		s.logger.Warn("unknown message type", "type", msg.Type)
		return errorMessage(msg.Seq, "unknown message type "+msg.Type)
	}

	if err != nil {
		var rej *store.RejectionError
		if !errors.As(err, &rej) {
			s.logger.Debug("message failed", "type", msg.Type, "error", err)
		}
		return errorMessage(msg.Seq, store.UserMessage(err))
	}

	return s.stateMessage(msg.Seq, id, prompt)
}

// stateMessage snapshots the engine for the host. Callers hold mu.
func (s *Session) stateMessage(seq int64, id string, prompt *engine.Prompt) *Message {
	e := s.engine
	p := StatePayload{
		Commands: e.DrawCommands(),
		Viewport: e.Viewport(),
		Display:  e.Display(),
		Info:     e.Info(),
		CanUndo:  e.CanUndo(),
		CanRedo:  e.CanRedo(),
		Prompt:   prompt,
		ID:       id,
	}
	if r, ok := e.SelectionBounds(); ok {
		p.Selection = &r
	}
	if ed, ok := e.Editing(); ok {
		if r, ok := e.EditorRect(); ok {
			p.Editor = &EditorPayload{Rect: r, Value: ed.Value}
		}
	}
	payload, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("marshal state", "error", err)
		return errorMessage(seq, "internal error")
	}
	return &Message{Type: TypeState, SessionID: s.ID, Seq: seq, Payload: payload}
}

// View runs fn with exclusive access to the session's engine.
func (s *Session) View(fn func(e *engine.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

func errorMessage(seq int64, msg string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Message: msg})
	return &Message{Type: TypeError, Seq: seq, Payload: payload}
}
