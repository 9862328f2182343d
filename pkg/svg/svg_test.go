package svg

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/recera/synapse/pkg/graphview"
)

// countElements parses doc and counts start elements by name
func countElements(t *testing.T, doc string) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Invalid SVG: %v\n%s", err, doc)
		}
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Local]++
		}
	}
	return counts
}

func TestSurface_RendersFrame(t *testing.T) {
	f := graphview.Frame{
		Nodes: []*graphview.Node{
			graphview.NewPlacedNode("a", "Tom & <Jerry>", 0, 0),
			graphview.NewPlacedNode("b", "B", 50, 0),
		},
		Connections: []graphview.Connection{
			{Source: "a", Target: "b", Strength: 0.5, Surprising: true},
		},
		Camera:  graphview.DefaultCamera(400, 300),
		Hovered: "a",
	}
	s := New(400, 300, "#000000")
	graphview.NewRenderer(graphview.Palette{}).Draw(s, f)
	doc := s.String()

	counts := countElements(t, doc)
	if counts["circle"] != 2 || counts["line"] != 1 || counts["text"] != 1 || counts["rect"] != 1 {
		t.Errorf("Unexpected element counts: %v", counts)
	}
	if counts["g"] != 2 {
		t.Errorf("Expected translate and scale groups, got %d", counts["g"])
	}
	for _, want := range []string{
		`translate(200 150)`,
		`scale(1)`,
		`stroke-dasharray="5 5"`,
		`stroke-opacity="0.5"`,
		`Tom &amp; &lt;Jerry&gt;`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document missing %q\n%s", want, doc)
		}
	}
}

func TestSurface_ClearResets(t *testing.T) {
	s := New(10, 10, "")
	s.Save()
	s.Translate(1, 1)
	s.Circle(0, 0, 1, "#fff", nil)
	s.Clear(20, 20)

	doc := s.String()
	if strings.Contains(doc, "circle") || strings.Contains(doc, "rect") {
		t.Errorf("Clear should drop earlier output:\n%s", doc)
	}
	if !strings.Contains(doc, `width="20"`) {
		t.Errorf("Clear should adopt the new size:\n%s", doc)
	}
}

func TestSurface_UnbalancedGroupsStayWellFormed(t *testing.T) {
	s := New(10, 10, "")
	s.Restore() // ignored
	s.Save()
	s.Translate(1, 2)
	s.Save()
	s.Scale(3)
	s.Restore()
	s.Line(0, 0, 1, 1, graphview.Stroke{Color: "#fff", Width: 1, Opacity: 1})

	doc := s.String()
	counts := countElements(t, doc)
	if counts["g"] != 2 {
		t.Errorf("Expected 2 groups, got %d", counts["g"])
	}
	if strings.Contains(doc, "stroke-opacity") {
		t.Error("Full opacity should not be written")
	}
}
