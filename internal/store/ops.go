package store

import "github.com/dsaviz/dsaviz/internal/document"

// Named wrappers over Apply for the core operations.

// CreateArray adds an array of n empty cells and returns its id.
func (s *Store) CreateArray(n int) (string, error) {
	res, err := s.Apply(CreateArray{Size: n})
	return res.ID, err
}

func (s *Store) SetCellValue(arrayID string, index int, value string) (Result, error) {
	return s.Apply(SetCellValue{ArrayID: arrayID, Index: index, Value: value})
}

func (s *Store) SetHighlight(arrayID string, index int, color string) (Result, error) {
	return s.Apply(SetHighlight{ArrayID: arrayID, Index: index, Color: color})
}

func (s *Store) Move(kind document.Kind, id string, x, y float64) (Result, error) {
	return s.Apply(MoveEntity{Kind: kind, ID: id, X: x, Y: y})
}

func (s *Store) Resize(kind document.Kind, id string, sx, sy float64) (Result, error) {
	return s.Apply(ResizeEntity{Kind: kind, ID: id, ScaleX: sx, ScaleY: sy})
}

func (s *Store) Delete(kind document.Kind, id string) (Result, error) {
	return s.Apply(DeleteEntity{Kind: kind, ID: id})
}

func (s *Store) ClearAll() (Result, error) {
	return s.Apply(ClearAll{})
}
