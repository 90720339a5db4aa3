package store

import "github.com/dsaviz/dsaviz/internal/document"

// Command is a typed store mutation. The set of commands is closed; Apply
// dispatches on the concrete type.
type Command interface {
	command()
}

// Point is a world-space position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CreateArray struct {
	Size int `json:"size"`
}

type SetCellValue struct {
	ArrayID string `json:"arrayId"`
	Index   int    `json:"index"`
	Value   string `json:"value"`
}

type SetHighlight struct {
	ArrayID string `json:"arrayId"`
	Index   int    `json:"index"`
	Color   string `json:"color"`
}

// ClearHighlight removes the highlight of one cell, or of every cell when
// Index is negative.
type ClearHighlight struct {
	ArrayID string `json:"arrayId"`
	Index   int    `json:"index"`
}

type SetCellSize struct {
	ArrayID string  `json:"arrayId"`
	Index   int     `json:"index"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// SetPointer places (or moves) a named teaching label over an array cell.
type SetPointer struct {
	ArrayID string `json:"arrayId"`
	Name    string `json:"name"`
	Index   int    `json:"index"`
}

type RemovePointer struct {
	ArrayID string `json:"arrayId"`
	Name    string `json:"name"`
}

type AddStructure struct {
	Type     document.StructureType `json:"type"`
	Size     int                    `json:"size"`
	ListKind document.ListKind      `json:"listKind,omitempty"`
}

type SetStructureValue struct {
	StructureID string `json:"structureId"`
	Index       int    `json:"index"`
	Value       string `json:"value"`
}

type SetListNode struct {
	StructureID string             `json:"structureId"`
	Index       int                `json:"index"`
	Field       document.ListField `json:"field"`
	Value       string             `json:"value"`
}

// ShapeSpec describes a shape to create. Zero dimensions mean "use the
// default for this type"; Type accepts "vline" for a vertical line.
type ShapeSpec struct {
	Type         string    `json:"type"`
	At           *Point    `json:"at,omitempty"`
	Fill         string    `json:"fill,omitempty"`
	Stroke       string    `json:"stroke,omitempty"`
	StrokeWidth  float64   `json:"strokeWidth,omitempty"`
	Width        float64   `json:"width,omitempty"`
	Height       float64   `json:"height,omitempty"`
	CornerRadius float64   `json:"cornerRadius,omitempty"`
	Radius       float64   `json:"radius,omitempty"`
	Points       []float64 `json:"points,omitempty"`
}

type AddShape struct {
	Spec ShapeSpec `json:"spec"`
}

// SetShapeColor recolors a shape. Lines and straight arrows change stroke
// only; filled shapes also reset their fill to white.
type SetShapeColor struct {
	ShapeID string `json:"shapeId"`
	Color   string `json:"color"`
}

type AddText struct {
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Effect     string  `json:"effect,omitempty"`
	At         *Point  `json:"at,omitempty"`
}

type SetText struct {
	TextID string `json:"textId"`
	Text   string `json:"text"`
}

type MoveEntity struct {
	Kind document.Kind `json:"kind"`
	ID   string        `json:"id"`
	X    float64       `json:"x"`
	Y    float64       `json:"y"`
}

// ResizeEntity applies a gesture scale relative to the entity's size at
// gesture start.
type ResizeEntity struct {
	Kind   document.Kind `json:"kind"`
	ID     string        `json:"id"`
	ScaleX float64       `json:"scaleX"`
	ScaleY float64       `json:"scaleY"`
}

type DeleteEntity struct {
	Kind document.Kind `json:"kind"`
	ID   string        `json:"id"`
}

type ClearAll struct{}

func (CreateArray) command()       {}
func (SetCellValue) command()      {}
func (SetHighlight) command()      {}
func (ClearHighlight) command()    {}
func (SetCellSize) command()       {}
func (SetPointer) command()        {}
func (RemovePointer) command()     {}
func (AddStructure) command()      {}
func (SetStructureValue) command() {}
func (SetListNode) command()       {}
func (AddShape) command()          {}
func (SetShapeColor) command()     {}
func (AddText) command()           {}
func (SetText) command()           {}
func (MoveEntity) command()        {}
func (ResizeEntity) command()      {}
func (DeleteEntity) command()      {}
func (ClearAll) command()          {}
