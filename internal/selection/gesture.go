package selection

// Gesture is an in-progress resize. Updates only change the preview
// factors; nothing reaches the store until End.
type Gesture struct {
	target Ref
	sx, sy float64
	active bool
}

func (g *Gesture) Begin(target Ref) {
	*g = Gesture{target: target, sx: 1, sy: 1, active: true}
}

func (g *Gesture) Active() bool {
	return g.active
}

func (g *Gesture) Target() Ref {
	return g.target
}

// Update records the current factors relative to the size at Begin.
func (g *Gesture) Update(sx, sy float64) {
	if !g.active {
		return
	}
	g.sx, g.sy = Sanitize(sx), Sanitize(sy)
}

// Preview returns the factors to draw the overlay with.
func (g *Gesture) Preview() (float64, float64) {
	if !g.active {
		return 1, 1
	}
	return g.sx, g.sy
}

// End finishes the gesture and returns the factors to commit. ok is false
// when there was no gesture or the factors are neutral, in which case the
// caller must not touch the store.
func (g *Gesture) End() (target Ref, sx, sy float64, ok bool) {
	if !g.active {
		return Ref{}, 1, 1, false
	}
	target, sx, sy = g.target, g.sx, g.sy
	*g = Gesture{}
	return target, sx, sy, !Neutral(sx, sy)
}

// Cancel drops the gesture without committing.
func (g *Gesture) Cancel() {
	*g = Gesture{}
}

func Neutral(sx, sy float64) bool {
	return sx == 1 && sy == 1
}
