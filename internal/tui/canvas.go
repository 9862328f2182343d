package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/synapse/pkg/graphview"
)

// Terminal cells are treated as 8x16 pixel blocks
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	ch    rune
	color string
}

// Canvas is a graphview.Surface that rasterizes into terminal cells
type Canvas struct {
	cols, rows int
	cells      []cell
	ts         *graphview.TransformStack
	background string
}

var _ graphview.Surface = (*Canvas)(nil)

// NewCanvas creates a canvas of cols x rows cells
func NewCanvas(cols, rows int, background string) *Canvas {
	c := &Canvas{ts: graphview.NewTransformStack(), background: background}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell grid size and clears it
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]cell, c.cols*c.rows)
	c.wipe()
}

// PixelSize returns the canvas size in pixels
func (c *Canvas) PixelSize() (float64, float64) {
	return float64(c.cols * CellWidth), float64(c.rows * CellHeight)
}

// Cell returns the character at col, row; ' ' outside the grid
func (c *Canvas) Cell(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return ' '
	}
	return c.cells[row*c.cols+col].ch
}

func (c *Canvas) wipe() {
	for i := range c.cells {
		c.cells[i] = cell{ch: ' '}
	}
}

func (c *Canvas) Clear(width, height float64) {
	c.ts.Reset()
	c.wipe()
}

func (c *Canvas) Save()                  { c.ts.Save() }
func (c *Canvas) Restore()               { c.ts.Restore() }
func (c *Canvas) Translate(x, y float64) { c.ts.Translate(x, y) }
func (c *Canvas) Scale(s float64)        { c.ts.Scale(s) }

func (c *Canvas) toCell(x, y float64) (int, int) {
	px, py := c.ts.Current().Apply(x, y)
	return int(math.Floor(px / CellWidth)), int(math.Floor(py / CellHeight))
}

func (c *Canvas) set(col, row int, ch rune, color string) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{ch: ch, color: color}
}

// Line draws with Bresenham in cell space. Dashed strokes skip every other
// cell.
func (c *Canvas) Line(x1, y1, x2, y2 float64, st graphview.Stroke) {
	c0, r0 := c.toCell(x1, y1)
	c1, r1 := c.toCell(x2, y2)
	ch := lineRune(c1-c0, r1-r0)

	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for i := 0; ; i++ {
		if len(st.Dash) == 0 || i%2 == 0 {
			// nodes and labels drawn later overwrite line cells
			c.set(c0, r0, ch, st.Color)
		}
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// lineRune picks a character by slope, accounting for the 1:2 cell aspect
func lineRune(dc, dr int) rune {
	if dc == 0 && dr == 0 {
		return '·'
	}
	angle := math.Atan2(float64(dr)*CellHeight, float64(dc)*CellWidth) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return '─'
	case angle < 67.5:
		return '╲'
	case angle < 112.5:
		return '│'
	default:
		return '╱'
	}
}

// Circle fills every cell whose center lies inside the circle, and always
// at least the center cell
func (c *Canvas) Circle(x, y, r float64, fill string, outline *graphview.Stroke) {
	a := c.ts.Current()
	cx, cy := a.Apply(x, y)
	pr := r * a.S

	ch := '●'
	if outline != nil {
		ch = '◉'
	}
	minC, maxC := int(math.Floor((cx-pr)/CellWidth)), int(math.Floor((cx+pr)/CellWidth))
	minR, maxR := int(math.Floor((cy-pr)/CellHeight)), int(math.Floor((cy+pr)/CellHeight))
	for row := minR; row <= maxR; row++ {
		for col := minC; col <= maxC; col++ {
			mx := float64(col*CellWidth) + CellWidth/2
			my := float64(row*CellHeight) + CellHeight/2
			if (mx-cx)*(mx-cx)+(my-cy)*(my-cy) <= pr*pr {
				c.set(col, row, ch, fill)
			}
		}
	}
	c.set(int(math.Floor(cx/CellWidth)), int(math.Floor(cy/CellHeight)), ch, fill)
}

// Text writes the label centered on x
func (c *Canvas) Text(x, y float64, text string, st graphview.TextStyle) {
	col, row := c.toCell(x, y)
	runes := []rune(text)
	start := col - len(runes)/2
	for i, r := range runes {
		c.set(start+i, row, r, st.Color)
	}
}

// Render returns the grid as styled lines, grouping runs of equal color
func (c *Canvas) Render() string {
	bg := lipgloss.NewStyle()
	if c.background != "" {
		bg = bg.Background(lipgloss.Color(c.background))
	}
	styles := make(map[string]lipgloss.Style)

	var b strings.Builder
	var run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		color := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st, ok := styles[color]
			if !ok {
				st = bg
				if color != "" {
					st = st.Foreground(lipgloss.Color(color))
				}
				styles[color] = st
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.color != color {
				flush()
				color = cl.color
			}
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return b.String()
}

// String returns the grid without styling
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.cells[row*c.cols+col].ch)
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
