//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/store"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	dsavizEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	dsavizEngine.Set("do", js.FuncOf(do))
	dsavizEngine.Set("handleEvent", js.FuncOf(handleEvent))
	dsavizEngine.Set("setEditValue", js.FuncOf(setEditValue))
	dsavizEngine.Set("commitEdit", js.FuncOf(commitEdit))
	dsavizEngine.Set("cancelEdit", js.FuncOf(cancelEdit))
	dsavizEngine.Set("loadSample", js.FuncOf(loadSample))
	dsavizEngine.Set("reset", js.FuncOf(reset))

	// --- Queries (frontend ← engine) ---
	dsavizEngine.Set("render", js.FuncOf(render))
	dsavizEngine.Set("hitTest", js.FuncOf(hitTest))
	dsavizEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	dsavizEngine.Set("getEditor", js.FuncOf(getEditor))
	dsavizEngine.Set("getState", js.FuncOf(getState))
	dsavizEngine.Set("getViewport", js.FuncOf(getViewport))
	dsavizEngine.Set("getDisplay", js.FuncOf(getDisplay))
	dsavizEngine.Set("getInfo", js.FuncOf(getInfo))
	dsavizEngine.Set("canUndo", js.FuncOf(canUndo))
	dsavizEngine.Set("canRedo", js.FuncOf(canRedo))

	// Register on global scope
	js.Global().Set("dsavizEngine", dsavizEngine)

	// Signal that WASM is ready
	js.Global().Set("dsavizWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func toJSON(v any) js.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

// do takes an action as JSON, e.g. {"op":"createArray","size":5}.
func do(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("missing action JSON")
	}
	var a engine.Action
	if err := json.Unmarshal([]byte(args[0].String()), &a); err != nil {
		return errorValue("invalid action JSON")
	}
	res, err := eng.Do(a)
	if err != nil {
		return errorValue(store.UserMessage(err))
	}
	return toJSON(res)
}

// handleEvent takes an event as JSON, e.g. {"type":"click","x":10,"y":20}.
func handleEvent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("missing event JSON")
	}
	var p engine.EventPayload
	if err := json.Unmarshal([]byte(args[0].String()), &p); err != nil {
		return errorValue("invalid event JSON")
	}
	ev, err := p.Event()
	if err != nil {
		return errorValue(err.Error())
	}
	out, err := eng.HandleEvent(ev)
	if err != nil {
		return errorValue(store.UserMessage(err))
	}
	return toJSON(out)
}

func setEditValue(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetEditValue(args[0].String())
	return nil
}

func commitEdit(this js.Value, args []js.Value) interface{} {
	if err := eng.CommitEdit(); err != nil {
		return errorValue(store.UserMessage(err))
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func cancelEdit(this js.Value, args []js.Value) interface{} {
	eng.CancelEdit()
	return nil
}

func loadSample(this js.Value, args []js.Value) interface{} {
	eng = engine.NewEngine(engine.WithState(document.NewSampleState()))
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func reset(this js.Value, args []js.Value) interface{} {
	eng = engine.NewEngine()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	hit, ok := eng.HitTest(args[0].Float(), args[1].Float())
	if !ok {
		return js.ValueOf("")
	}
	return toJSON(hit)
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	r, ok := eng.SelectionBounds()
	if !ok {
		return js.ValueOf("")
	}
	return toJSON(r)
}

func getEditor(this js.Value, args []js.Value) interface{} {
	ed, ok := eng.Editing()
	if !ok {
		return js.ValueOf("")
	}
	r, _ := eng.EditorRect()
	return toJSON(map[string]any{"rect": r, "value": ed.Value, "target": ed.Target})
}

func getState(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.State())
}

func getViewport(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Viewport())
}

func getDisplay(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Display())
}

func getInfo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Info())
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanRedo())
}
