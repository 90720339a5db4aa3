package document

// Limits are the validation and clamping bounds the store, history and
// viewport enforce.
type Limits struct {
	MaxArraySize     int
	MaxStructureSize int
	HistoryLimit     int

	MinZoom  float64
	MaxZoom  float64
	ZoomStep float64

	MinScale     float64
	MinFontSize  float64
	MaxFontSize  float64
	MinRectSize  float64
	MinRadius    float64
	MinPathScale float64
}

func DefaultLimits() Limits {
	return Limits{
		MaxArraySize:     20,
		MaxStructureSize: 20,
		HistoryLimit:     50,
		MinZoom:          0.5,
		MaxZoom:          5,
		ZoomStep:         1.1,
		MinScale:         0.2,
		MinFontSize:      10,
		MaxFontSize:      48,
		MinRectSize:      20,
		MinRadius:        10,
		MinPathScale:     0.05,
	}
}

// DisplaySettings are the toolbar-controlled cell dimensions. They affect
// layout but are not part of the undo history.
type DisplaySettings struct {
	CellWidth    float64 `json:"cellWidth"`
	CellHeight   float64 `json:"cellHeight"`
	CellFontSize float64 `json:"cellFontSize"`
}

const (
	MinCellWidth     = 40
	MaxCellWidth     = 150
	CellWidthStep    = 10
	MinCellHeight    = 30
	MaxCellHeight    = 100
	CellHeightStep   = 5
	MinCellFontSize  = 10
	MaxCellFontSize  = 24
	CellFontSizeStep = 1
)

func DefaultDisplay() DisplaySettings {
	return DisplaySettings{CellWidth: 60, CellHeight: 45, CellFontSize: 14}
}

// StepCellWidth moves the cell width by dir steps, clamped to its range.
func (d DisplaySettings) StepCellWidth(dir int) DisplaySettings {
	d.CellWidth = clamp(d.CellWidth+float64(dir*CellWidthStep), MinCellWidth, MaxCellWidth)
	return d
}

func (d DisplaySettings) StepCellHeight(dir int) DisplaySettings {
	d.CellHeight = clamp(d.CellHeight+float64(dir*CellHeightStep), MinCellHeight, MaxCellHeight)
	return d
}

func (d DisplaySettings) StepCellFontSize(dir int) DisplaySettings {
	d.CellFontSize = clamp(d.CellFontSize+float64(dir*CellFontSizeStep), MinCellFontSize, MaxCellFontSize)
	return d
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
