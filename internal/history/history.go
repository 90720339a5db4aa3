// Package history keeps a bounded, linear log of state snapshots with a
// cursor for undo and redo.
package history

import (
	"bytes"
	"fmt"

	"github.com/dsaviz/dsaviz/internal/document"
)

// Snapshot is one recorded state with its canonical encoding.
type Snapshot struct {
	State       document.State
	encoding    []byte
	fingerprint uint64
}

func newSnapshot(s document.State) (Snapshot, error) {
	fp, enc, err := s.Fingerprint()
	if err != nil {
		return Snapshot{}, fmt.Errorf("fingerprint state: %w", err)
	}
	return Snapshot{State: s.Clone(), encoding: enc, fingerprint: fp}, nil
}

func (s Snapshot) equal(o Snapshot) bool {
	return s.fingerprint == o.fingerprint && bytes.Equal(s.encoding, o.encoding)
}

// History is a linear undo log. Recording after an undo discards the redo
// branch. When the log exceeds its limit the oldest snapshot is dropped.
// It is not safe for concurrent use.
type History struct {
	limit  int
	snaps  []Snapshot
	cursor int
}

func New(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit, cursor: -1}
}

// Record appends s unless it is identical to the snapshot at the cursor.
// It reports whether a new snapshot was stored.
func (h *History) Record(s document.State) (bool, error) {
	snap, err := newSnapshot(s)
	if err != nil {
		return false, err
	}
	if h.cursor >= 0 && h.snaps[h.cursor].equal(snap) {
		return false, nil
	}

	h.snaps = append(h.snaps[:h.cursor+1], snap)
	if over := len(h.snaps) - h.limit; over > 0 {
		h.snaps = append(h.snaps[:0:0], h.snaps[over:]...)
	}
	h.cursor = len(h.snaps) - 1
	return true, nil
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.snaps)-1
}

// Undo moves the cursor back and returns the state to restore.
func (h *History) Undo() (document.State, bool) {
	if !h.CanUndo() {
		return document.State{}, false
	}
	h.cursor--
	return h.snaps[h.cursor].State.Clone(), true
}

// Redo moves the cursor forward and returns the state to restore.
func (h *History) Redo() (document.State, bool) {
	if !h.CanRedo() {
		return document.State{}, false
	}
	h.cursor++
	return h.snaps[h.cursor].State.Clone(), true
}

// Current returns the state at the cursor.
func (h *History) Current() (document.State, bool) {
	if h.cursor < 0 {
		return document.State{}, false
	}
	return h.snaps[h.cursor].State.Clone(), true
}

func (h *History) Len() int {
	return len(h.snaps)
}

func (h *History) Cursor() int {
	return h.cursor
}
