// Package svg implements a graphview.Surface that writes an SVG document.
// Save/Translate/Scale map onto nested <g> groups so the output keeps the
// world-space coordinates the renderer emits.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/recera/synapse/pkg/graphview"
)

// Surface records drawing calls as SVG markup
type Surface struct {
	width, height float64
	background    string

	body bytes.Buffer

	// open holds the number of <g> elements opened since each Save
	open  []int
	depth int
}

var _ graphview.Surface = (*Surface)(nil)

// New creates an empty SVG surface of the given pixel size. Clear paints
// background; "" leaves the document transparent.
func New(width, height float64, background string) *Surface {
	return &Surface{width: width, height: height, background: background}
}

// Clear drops everything drawn so far and paints the background
func (s *Surface) Clear(width, height float64) {
	s.body.Reset()
	s.open = s.open[:0]
	s.depth = 0
	s.width, s.height = width, height
	if s.background != "" {
		fmt.Fprintf(&s.body, "<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", escape(s.background))
	}
}

func (s *Surface) Save() { s.open = append(s.open, s.depth) }

func (s *Surface) Restore() {
	if len(s.open) == 0 {
		return
	}
	target := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	for s.depth > target {
		s.body.WriteString("</g>\n")
		s.depth--
	}
}

func (s *Surface) Translate(x, y float64) {
	fmt.Fprintf(&s.body, "<g transform=\"translate(%s %s)\">\n", num(x), num(y))
	s.depth++
}

func (s *Surface) Scale(k float64) {
	fmt.Fprintf(&s.body, "<g transform=\"scale(%s)\">\n", num(k))
	s.depth++
}

func (s *Surface) Line(x1, y1, x2, y2 float64, st graphview.Stroke) {
	fmt.Fprintf(&s.body, "<line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\"%s/>\n",
		num(x1), num(y1), num(x2), num(y2), strokeAttrs(st))
}

func (s *Surface) Circle(x, y, r float64, fill string, outline *graphview.Stroke) {
	attrs := ""
	if outline != nil {
		attrs = strokeAttrs(*outline)
	}
	fmt.Fprintf(&s.body, "<circle cx=\"%s\" cy=\"%s\" r=\"%s\" fill=\"%s\"%s/>\n",
		num(x), num(y), num(r), escape(fill), attrs)
}

func (s *Surface) Text(x, y float64, text string, st graphview.TextStyle) {
	fmt.Fprintf(&s.body, "<text x=\"%s\" y=\"%s\" fill=\"%s\" font-size=\"%s\" text-anchor=\"middle\">%s</text>\n",
		num(x), num(y), escape(st.Color), num(st.Size), escape(text))
}

// WriteTo writes the complete document, closing any unbalanced groups
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(s.width), num(s.height), num(s.width), num(s.height))
	buf.Write(s.body.Bytes())
	for i := 0; i < s.depth; i++ {
		buf.WriteString("</g>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.WriteTo(w)
}

// String returns the complete document
func (s *Surface) String() string {
	var b strings.Builder
	s.WriteTo(&b)
	return b.String()
}

func strokeAttrs(st graphview.Stroke) string {
	var b strings.Builder
	fmt.Fprintf(&b, " stroke=\"%s\" stroke-width=\"%s\"", escape(st.Color), num(st.Width))
	if st.Opacity > 0 && st.Opacity < 1 {
		fmt.Fprintf(&b, " stroke-opacity=\"%s\"", num(st.Opacity))
	}
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = num(d)
		}
		fmt.Fprintf(&b, " stroke-dasharray=\"%s\"", strings.Join(parts, " "))
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
