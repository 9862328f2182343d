package graphview

// OpKind identifies a recorded drawing operation
type OpKind string

const (
	OpClear     OpKind = "clear"
	OpSave      OpKind = "save"
	OpRestore   OpKind = "restore"
	OpTranslate OpKind = "translate"
	OpScale     OpKind = "scale"
	OpLine      OpKind = "line"
	OpCircle    OpKind = "circle"
	OpText      OpKind = "text"
)

// Op is one recorded drawing call. Fields not used by a kind stay zero.
type Op struct {
	Kind    OpKind     `json:"k"`
	X       float64    `json:"x,omitempty"`
	Y       float64    `json:"y,omitempty"`
	X2      float64    `json:"x2,omitempty"`
	Y2      float64    `json:"y2,omitempty"`
	R       float64    `json:"r,omitempty"`
	Fill    string     `json:"fill,omitempty"`
	Stroke  *Stroke    `json:"stroke,omitempty"`
	Text    string     `json:"text,omitempty"`
	Font    *TextStyle `json:"font,omitempty"`
}

// DisplayList is a Surface that records operations for later replay.
// It is what gets shipped over the wire and inspected in tests.
type DisplayList struct {
	Ops []Op
}

// NewDisplayList creates an empty display list
func NewDisplayList() *DisplayList {
	return &DisplayList{Ops: make([]Op, 0, 64)}
}

// Reset clears recorded operations, keeping capacity
func (d *DisplayList) Reset() { d.Ops = d.Ops[:0] }

func (d *DisplayList) Clear(width, height float64) {
	d.Ops = append(d.Ops, Op{Kind: OpClear, X: width, Y: height})
}

func (d *DisplayList) Save()    { d.Ops = append(d.Ops, Op{Kind: OpSave}) }
func (d *DisplayList) Restore() { d.Ops = append(d.Ops, Op{Kind: OpRestore}) }

func (d *DisplayList) Translate(x, y float64) {
	d.Ops = append(d.Ops, Op{Kind: OpTranslate, X: x, Y: y})
}

func (d *DisplayList) Scale(s float64) {
	d.Ops = append(d.Ops, Op{Kind: OpScale, X: s})
}

func (d *DisplayList) Line(x1, y1, x2, y2 float64, st Stroke) {
	s := st
	d.Ops = append(d.Ops, Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: &s})
}

func (d *DisplayList) Circle(x, y, r float64, fill string, outline *Stroke) {
	op := Op{Kind: OpCircle, X: x, Y: y, R: r, Fill: fill}
	if outline != nil {
		s := *outline
		op.Stroke = &s
	}
	d.Ops = append(d.Ops, op)
}

func (d *DisplayList) Text(x, y float64, text string, st TextStyle) {
	s := st
	d.Ops = append(d.Ops, Op{Kind: OpText, X: x, Y: y, Text: text, Font: &s})
}

// Filter returns the recorded ops of one kind in order
func (d *DisplayList) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range d.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Replay issues the recorded operations against another surface
func (d *DisplayList) Replay(s Surface) {
	Replay(d.Ops, s)
}

// Replay issues ops against s
func Replay(ops []Op, s Surface) {
	for _, op := range ops {
		switch op.Kind {
		case OpClear:
			s.Clear(op.X, op.Y)
		case OpSave:
			s.Save()
		case OpRestore:
			s.Restore()
		case OpTranslate:
			s.Translate(op.X, op.Y)
		case OpScale:
			s.Scale(op.X)
		case OpLine:
			var st Stroke
			if op.Stroke != nil {
				st = *op.Stroke
			}
			s.Line(op.X, op.Y, op.X2, op.Y2, st)
		case OpCircle:
			s.Circle(op.X, op.Y, op.R, op.Fill, op.Stroke)
		case OpText:
			var ts TextStyle
			if op.Font != nil {
				ts = *op.Font
			}
			s.Text(op.X, op.Y, op.Text, ts)
		}
	}
}
