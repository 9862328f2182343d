package graphview

import (
	"math"
	"math/rand"
	"time"
)

// PhysicsConfig configures the force simulation
type PhysicsConfig struct {
	Repulsion       float64 // default 20000
	Attraction      float64 // default 0.01
	Centering       float64 // default 0.01
	Damping         float64 // default 0.8
	VelocityEpsilon float64 // default 0.01

	BaseAlpha     float64 // default 0.3
	CoolingFactor float64 // default 0.995
	MinAlpha      float64 // default 0.05
	EnergizeBoost float64 // default 0.3
}

// DefaultPhysicsConfig returns the tuned simulation constants
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Repulsion:       20000,
		Attraction:      0.01,
		Centering:       0.01,
		Damping:         0.8,
		VelocityEpsilon: 0.01,
		BaseAlpha:       0.3,
		CoolingFactor:   0.995,
		MinAlpha:        0.05,
		EnergizeBoost:   0.3,
	}
}

func (c PhysicsConfig) withDefaults() PhysicsConfig {
	d := DefaultPhysicsConfig()
	if c.Repulsion != 0 {
		d.Repulsion = c.Repulsion
	}
	if c.Attraction != 0 {
		d.Attraction = c.Attraction
	}
	// Allow centering to be explicitly disabled with a negative value
	if c.Centering > 0 {
		d.Centering = c.Centering
	} else if c.Centering < 0 {
		d.Centering = 0
	}
	if c.Damping != 0 {
		d.Damping = c.Damping
	}
	if c.VelocityEpsilon != 0 {
		d.VelocityEpsilon = c.VelocityEpsilon
	}
	if c.BaseAlpha != 0 {
		d.BaseAlpha = c.BaseAlpha
	}
	if c.CoolingFactor != 0 {
		d.CoolingFactor = c.CoolingFactor
	}
	if c.MinAlpha != 0 {
		d.MinAlpha = c.MinAlpha
	}
	if c.EnergizeBoost != 0 {
		d.EnergizeBoost = c.EnergizeBoost
	}
	return d
}

// maxAlpha caps repeated energizing
const maxAlpha = 1.0

// RepulsionStrategy accumulates the pairwise anti-collapse force into node
// velocities. k is Repulsion*alpha; the force between two nodes at distance d
// is k/d² with d floored at 1. Pinned nodes must not be written.
type RepulsionStrategy interface {
	Apply(nodes []*Node, pinned PinSet, k float64)
}

// goldenAngle spreads the directions chosen for stacked pairs
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// PairwiseRepulsion is the exact O(n²) strategy
type PairwiseRepulsion struct{}

// Apply visits every unordered pair of distinct nodes once
func (PairwiseRepulsion) Apply(nodes []*Node, pinned PinSet, k float64) {
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			if dx == 0 && dy == 0 {
				// exactly stacked nodes have no direction; pick one from the
				// pair so they can separate
				theta := float64(i*len(nodes)+j) * goldenAngle
				dx, dy = math.Cos(theta), math.Sin(theta)
			}
			d := math.Max(math.Hypot(dx, dy), 1)
			force := k / (d * d)
			fx := force * dx / d
			fy := force * dy / d
			if !pinned.Has(a.ID) {
				a.VX -= fx
				a.VY -= fy
			}
			if !pinned.Has(b.ID) {
				b.VX += fx
				b.VY += fy
			}
		}
	}
}

// Engine advances node positions one tick at a time.
// The only state carried across ticks is alpha.
type Engine struct {
	cfg       PhysicsConfig
	alpha     float64
	rng       *rand.Rand
	repulsion RepulsionStrategy
}

// NewEngine creates an engine. A nil rng is seeded from the clock.
func NewEngine(cfg PhysicsConfig, rng *rand.Rand) *Engine {
	c := cfg.withDefaults()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		cfg:       c,
		alpha:     c.BaseAlpha,
		rng:       rng,
		repulsion: PairwiseRepulsion{},
	}
}

// SetRepulsionStrategy swaps the repulsion implementation
func (e *Engine) SetRepulsionStrategy(s RepulsionStrategy) {
	if s == nil {
		s = PairwiseRepulsion{}
	}
	e.repulsion = s
}

// Config returns the effective configuration
func (e *Engine) Config() PhysicsConfig { return e.cfg }

// Alpha returns the current simulation energy
func (e *Engine) Alpha() float64 { return e.alpha }

// Energize boosts alpha so newly added nodes do not sit inert next to a
// settled layout. Call it when the node set grows.
func (e *Engine) Energize() {
	e.alpha = math.Min(e.alpha+e.cfg.EnergizeBoost, maxAlpha)
}

// Reset restores alpha to its base value
func (e *Engine) Reset() { e.alpha = e.cfg.BaseAlpha }

// Place assigns a uniformly random position within the surface's world
// bounds to every node that has none, zeroing its velocity. Returns the
// number of nodes placed.
func (e *Engine) Place(nodes []*Node, bounds Camera) int {
	placed := 0
	for _, n := range nodes {
		if n == nil || n.placed {
			continue
		}
		n.Place((e.rng.Float64()-0.5)*bounds.Width, (e.rng.Float64()-0.5)*bounds.Height)
		n.VX, n.VY = 0, 0
		placed++
	}
	return placed
}

// Tick runs one simulation step. Pinned nodes receive no force and are not
// integrated; their position belongs to whoever pinned them and their
// velocity is held at zero so they do not fling on release.
func (e *Engine) Tick(nodes []*Node, conns []Connection, pinned PinSet, bounds Camera) {
	live := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			live = append(live, n)
		}
	}
	e.Place(live, bounds)

	alpha := e.alpha
	cfg := e.cfg

	// Centering
	for _, n := range live {
		if pinned.Has(n.ID) {
			continue
		}
		n.VX -= n.X * cfg.Centering * alpha
		n.VY -= n.Y * cfg.Centering * alpha
	}

	// Repulsion
	e.repulsion.Apply(live, pinned, cfg.Repulsion*alpha)

	// Attraction
	idx := indexNodes(live)
	for _, c := range conns {
		a, ok := idx[c.Source]
		if !ok {
			continue
		}
		b, ok := idx[c.Target]
		if !ok || a == b {
			continue
		}
		// |F| = d*k*strength*alpha along (dx,dy)/d reduces to the raw deltas
		k := cfg.Attraction * clamp01(c.Strength) * alpha
		fx := (b.X - a.X) * k
		fy := (b.Y - a.Y) * k
		if !pinned.Has(a.ID) {
			a.VX += fx
			a.VY += fy
		}
		if !pinned.Has(b.ID) {
			b.VX -= fx
			b.VY -= fy
		}
	}

	// Integration
	for _, n := range live {
		if pinned.Has(n.ID) {
			n.VX, n.VY = 0, 0
			continue
		}
		n.X += n.VX
		n.Y += n.VY
		n.VX *= cfg.Damping
		n.VY *= cfg.Damping
		if math.Abs(n.VX) < cfg.VelocityEpsilon {
			n.VX = 0
		}
		if math.Abs(n.VY) < cfg.VelocityEpsilon {
			n.VY = 0
		}
	}

	// Cooling
	e.alpha = math.Max(e.alpha*cfg.CoolingFactor, cfg.MinAlpha)
}
