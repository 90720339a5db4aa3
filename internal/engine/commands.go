package engine

import "encoding/json"

// DrawCommand represents a single drawing operation for a renderer to
// execute. Renderers receive a list of these and execute them in order on
// a Canvas2D-like context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path" or "text"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Part        Part          `json:"part,omitempty"`        // What the command draws within the object
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color (text color for "text" ops)
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Line dash pattern
	Opacity     float64       `json:"opacity,omitempty"`     // Global alpha
	Text        string        `json:"text,omitempty"`
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	FontFamily  string        `json:"fontFamily,omitempty"`
	Align       string        `json:"align,omitempty"`
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// view maps world space to the output surface (the viewport matrix for
// the live canvas, a fit-to-image matrix for exports). Commands are in
// painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph, view Matrix2D) []DrawCommand {
	if sg == nil || sg.Root == nil {
		return nil
	}

	var commands []DrawCommand
	compileNode(sg.Root, view, &commands)
	return commands
}

// compileNode recursively generates draw commands for a node and its children.
func compileNode(node *SceneNode, view Matrix2D, commands *[]DrawCommand) {
	transform := view.Multiply(node.WorldTransform).ToSlice()

	if len(node.Path) > 0 {
		*commands = append(*commands, DrawCommand{
			Op:          "path",
			ObjectID:    node.ID,
			Part:        node.Part,
			Transform:   transform,
			Path:        node.Path,
			Opacity:     node.Opacity,
			Fill:        node.Fill,
			Stroke:      node.Stroke,
			StrokeWidth: node.StrokeWidth,
			Dash:        node.Dash,
		})
	} else if node.Text != "" {
		*commands = append(*commands, DrawCommand{
			Op:         "text",
			ObjectID:   node.ID,
			Part:       node.Part,
			Transform:  transform,
			Opacity:    node.Opacity,
			Fill:       node.Fill,
			Text:       node.Text,
			X:          node.TextX,
			Y:          node.TextY,
			FontSize:   node.FontSize,
			FontFamily: node.FontFamily,
			Align:      node.Align,
		})
	}

	for _, child := range node.Children {
		compileNode(child, view, commands)
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
