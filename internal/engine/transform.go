package engine

import (
	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/layout"
)

// The pipeline has three spaces. Local space is what layout returns for
// one entity. World space is the shared stage. Pixel space is the host
// container, reached through the viewport.

// ArrayMatrix maps array-local coordinates to world space. The array sits
// at its layout home plus the user's drag offset and is scaled about that
// point by its display multiplier.
func ArrayMatrix(a document.ArrayEntity, ordinal int, d document.DisplaySettings) Matrix2D {
	home := layout.ArrayHome(ordinal, d.CellHeight)
	t := a.Transform
	t.X += home.X
	t.Y += home.Y
	return FromTransform(t)
}

func StructureMatrix(s document.StructureEntity) Matrix2D {
	return FromTransform(s.Transform)
}

// ShapeMatrix ignores the transform scale: shape scale is folded into the
// geometry when a resize commits.
func ShapeMatrix(sh document.ShapeEntity) Matrix2D {
	return Translate(sh.Transform.X, sh.Transform.Y)
}

func TextMatrix(t document.TextAnnotation) Matrix2D {
	return Translate(t.Transform.X, t.Transform.Y)
}

// EntityMatrix returns the local-to-world matrix of any entity in s.
func EntityMatrix(s document.State, d document.DisplaySettings, kind document.Kind, id string) (Matrix2D, bool) {
	switch kind {
	case document.KindArray:
		if i, ok := s.FindArray(id); ok {
			return ArrayMatrix(s.Arrays[i], i, d), true
		}
	case document.KindStructure:
		if i, ok := s.FindStructure(id); ok {
			return StructureMatrix(s.Structures[i]), true
		}
	case document.KindShape:
		if i, ok := s.FindShape(id); ok {
			return ShapeMatrix(s.Shapes[i]), true
		}
	case document.KindText:
		if i, ok := s.FindText(id); ok {
			return TextMatrix(s.Texts[i]), true
		}
	}
	return Identity(), false
}

// LocalToPixel maps an entity-local point straight to container pixels.
func LocalToPixel(v Viewport, entity Matrix2D, x, y float64) (float64, float64) {
	return v.Matrix().Multiply(entity).TransformPoint(x, y)
}

// PixelToLocal is the inverse of LocalToPixel.
func PixelToLocal(v Viewport, entity Matrix2D, px, py float64) (float64, float64) {
	return v.Matrix().Multiply(entity).Invert().TransformPoint(px, py)
}
