package bridge

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/metrics"
)

// EngineFactory builds the engine for a new session.
type EngineFactory func() *engine.Engine

// Hub is the registry of open sessions. Each session owns its engine;
// the hub only tracks them so other handlers can find a session by id.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	register   chan *Session
	unregister chan *Session
	done       chan struct{}
	stopOnce   sync.Once

	newEngine EngineFactory
	logger    *slog.Logger
}

func NewHub(newEngine EngineFactory, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
		newEngine:  newEngine,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.addSession(s)
		case s := <-h.unregister:
			h.removeSession(s)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every session's send queue.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.done:
	}
}

func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Lookup returns the open session with the given id.
func (h *Hub) Lookup(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// ExportScene returns the export scene of an open session.
func (h *Hub) ExportScene(id string) (*engine.SceneGraph, bool) {
	s, ok := h.Lookup(id)
	if !ok {
		return nil, false
	}
	var sg *engine.SceneGraph
	s.View(func(e *engine.Engine) { sg = e.ExportScene() })
	return sg, true
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	metrics.SessionOpened()

	s.View(func(e *engine.Engine) {
		payload, _ := json.Marshal(WelcomePayload{SessionID: s.ID, Limits: e.Limits()})
		s.Send(&Message{Type: TypeWelcome, SessionID: s.ID, Payload: payload})
		s.Send(s.stateMessage(0, "", nil))
	})

	h.logger.Info("session opened", "session", s.ID)
}

func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.ID)
	s.closeSend()
	h.mu.Unlock()
	metrics.SessionClosed()

	h.logger.Info("session closed", "session", s.ID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.closeSend()
		delete(h.sessions, id)
		metrics.SessionClosed()
	}
}
