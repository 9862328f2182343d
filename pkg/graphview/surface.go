package graphview

// Stroke describes a line or outline
type Stroke struct {
	Color   string    `json:"color"`
	Width   float64   `json:"width"`
	Opacity float64   `json:"opacity"`
	Dash    []float64 `json:"dash,omitempty"`
}

// TextStyle describes a label
type TextStyle struct {
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// Surface is a 2D drawing target with a canvas-like transform stack.
// Coordinates passed to drawing calls are in the current transform's space.
type Surface interface {
	Clear(width, height float64)
	Save()
	Restore()
	Translate(x, y float64)
	Scale(s float64)
	Line(x1, y1, x2, y2 float64, st Stroke)
	Circle(x, y, r float64, fill string, outline *Stroke)
	Text(x, y float64, text string, st TextStyle)
}

// Affine is a uniform-scale-plus-translation transform: p' = S*p + T
type Affine struct {
	S  float64
	TX float64
	TY float64
}

// Identity returns the identity transform
func Identity() Affine { return Affine{S: 1} }

// Translate composes a translation applied before the current transform
func (a Affine) Translate(x, y float64) Affine {
	return Affine{S: a.S, TX: a.TX + a.S*x, TY: a.TY + a.S*y}
}

// Scale composes a uniform scale applied before the current transform
func (a Affine) Scale(s float64) Affine {
	return Affine{S: a.S * s, TX: a.TX, TY: a.TY}
}

// Apply maps a point through the transform
func (a Affine) Apply(x, y float64) (float64, float64) {
	return a.S*x + a.TX, a.S*y + a.TY
}

// TransformStack tracks Save/Restore/Translate/Scale for surfaces that
// rasterize in device space
type TransformStack struct {
	cur   Affine
	saved []Affine
}

// NewTransformStack starts at identity
func NewTransformStack() *TransformStack {
	return &TransformStack{cur: Identity()}
}

// Reset drops all saved state
func (t *TransformStack) Reset() {
	t.cur = Identity()
	t.saved = t.saved[:0]
}

func (t *TransformStack) Save() { t.saved = append(t.saved, t.cur) }

// Restore pops the last saved transform; unbalanced calls are ignored
func (t *TransformStack) Restore() {
	if len(t.saved) == 0 {
		return
	}
	t.cur = t.saved[len(t.saved)-1]
	t.saved = t.saved[:len(t.saved)-1]
}

func (t *TransformStack) Translate(x, y float64) { t.cur = t.cur.Translate(x, y) }

func (t *TransformStack) Scale(s float64) { t.cur = t.cur.Scale(s) }

// Current returns the active transform
func (t *TransformStack) Current() Affine { return t.cur }
