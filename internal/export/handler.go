package export

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/metrics"
)

const maxDimension = 4096

// SceneSource finds the scene of a live session.
type SceneSource interface {
	ExportScene(sessionID string) (*engine.SceneGraph, bool)
}

type Handler struct {
	scenes   SceneSource
	defaults Options
	logger   *slog.Logger
}

func NewHandler(scenes SceneSource, defaults Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{scenes: scenes, defaults: defaults, logger: logger}
}

// ExportPNG serves GET /export/{sessionId}.png. Optional w and h query
// parameters override the configured image size.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	sg, ok := h.scenes.ExportScene(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	opts := h.defaults
	if opts.Width, ok = dimension(r, "w", opts.Width); !ok {
		http.Error(w, "invalid width", http.StatusBadRequest)
		return
	}
	if opts.Height, ok = dimension(r, "h", opts.Height); !ok {
		http.Error(w, "invalid height", http.StatusBadRequest)
		return
	}

	timer := metrics.ExportTimer()
	var buf bytes.Buffer
	err := WritePNG(&buf, sg, opts)
	timer.ObserveDuration()
	if err != nil {
		h.logger.Error("export png", "session", sessionID, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", `inline; filename="`+sessionID+`.png"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("write png", "error", err)
	}
}

func dimension(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxDimension {
		return 0, false
	}
	return n, true
}
