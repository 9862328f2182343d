package graphview

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestToScreen_Formula(t *testing.T) {
	cam := Camera{Zoom: 2, PanX: 10, PanY: -20, Width: 800, Height: 600}

	got := ToScreen(Point{X: 5, Y: 7}, cam)
	want := Point{X: 400 + 10 + 10, Y: 300 - 20 + 14}
	if got != want {
		t.Errorf("ToScreen = %+v, want %+v", got, want)
	}

	w := ToWorld(want, cam)
	if !near(w.X, 5, 1e-12) || !near(w.Y, 7, 1e-12) {
		t.Errorf("ToWorld = %+v, want (5,7)", w)
	}
}

func TestToWorld_CenterIsOriginAtRest(t *testing.T) {
	cam := DefaultCamera(1024, 768)
	w := ToWorld(Point{X: 512, Y: 384}, cam)
	if w != (Point{}) {
		t.Errorf("Surface center should map to world origin, got %+v", w)
	}
}

func TestTransform_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ToWorld(ToScreen(p)) ≈ p", prop.ForAll(
		func(zoom, panX, panY, w, h, px, py float64) bool {
			cam := Camera{Zoom: zoom, PanX: panX, PanY: panY, Width: w, Height: h}
			p := Point{X: px, Y: py}
			back := ToWorld(ToScreen(p, cam), cam)
			return near(back.X, p.X, 1e-9) && near(back.Y, p.Y, 1e-9)
		},
		gen.Float64Range(MinZoom, MaxZoom),
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(0, 4000),
		gen.Float64Range(0, 4000),
		gen.Float64Range(-1e5, 1e5),
		gen.Float64Range(-1e5, 1e5),
	))

	properties.Property("ToScreen(ToWorld(s)) ≈ s", prop.ForAll(
		func(zoom, panX, panY, sx, sy float64) bool {
			cam := Camera{Zoom: zoom, PanX: panX, PanY: panY, Width: 1280, Height: 720}
			s := Point{X: sx, Y: sy}
			back := ToScreen(ToWorld(s, cam), cam)
			return near(back.X, s.X, 1e-9) && near(back.Y, s.Y, 1e-9)
		},
		gen.Float64Range(MinZoom, MaxZoom),
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(-5000, 5000),
	))

	properties.TestingRun(t)
}

func TestTransform_ZeroZoomTreatedAsIdentity(t *testing.T) {
	cam := Camera{Width: 100, Height: 100}
	p := ToWorld(Point{X: 60, Y: 40}, cam)
	if math.IsInf(p.X, 0) || math.IsNaN(p.X) {
		t.Fatalf("Zero zoom produced %+v", p)
	}
	if p != (Point{X: 10, Y: -10}) {
		t.Errorf("Expected (10,-10), got %+v", p)
	}
}
