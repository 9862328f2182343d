package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/synapse/internal/cache"
	"github.com/recera/synapse/internal/config"
	"github.com/recera/synapse/internal/store"
	"github.com/recera/synapse/pkg/graphview"
)

const testGraph = `
nodes:
  - id: a
    label: Attention
  - id: b
    label: Backprop
  - id: c
    label: Curriculum
    x: 5
    y: 5
connections:
  - source: a
    target: b
    strength: 0.9
  - source: b
    target: c
    strength: 0.3
    surprising: true
`

func writeGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testGraph), 0644))
	return path
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), frameInterval(0))
	assert.Equal(t, time.Second/30, frameInterval(30))
}

func TestGraphPath(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := graphPath(cfg, nil)
	assert.Error(t, err)

	cfg.Graph = "from-config.yaml"
	p, err := graphPath(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-config.yaml", p)

	p, err = graphPath(cfg, []string{"arg.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "arg.yaml", p)
}

func TestGraphState_FreshCopies(t *testing.T) {
	g, err := store.Load(writeGraph(t))
	require.NoError(t, err)
	state := &graphState{graph: g, layout: cache.Layout{"a": {X: 1, Y: 2}, "c": {X: 99, Y: 99}}}

	first, _ := state.source()
	second, conns := state.source()
	require.Len(t, first, 3)
	assert.NotSame(t, first[0], second[0], "each session owns its nodes")
	assert.Len(t, conns, 2)

	assert.True(t, first[0].Placed())
	assert.Equal(t, 2.0, first[0].Y, "cached layout seeds unplaced nodes")
	assert.Equal(t, 5.0, first[2].X, "stored positions win over the cache")
	assert.False(t, first[1].Placed())
}

func TestSimulate(t *testing.T) {
	_, nodes, conns, err := loadGraph(writeGraph(t))
	require.NoError(t, err)
	view := graphview.NewSession(nodes, conns, sessionOptions(config.DefaultConfig(), 400, 300, 7))

	assert.Equal(t, 10, simulate(view, renderOptions{ticks: 10}))
	assert.EqualValues(t, 10, view.Frames())

	n := simulate(view, renderOptions{settle: true})
	assert.Less(t, n, maxSettleTicks)
	assert.Equal(t, view.Engine().Config().MinAlpha, view.Engine().Alpha())
}

func TestRunRender(t *testing.T) {
	path := writeGraph(t)
	out := filepath.Join(t.TempDir(), "out.svg")
	cfg := config.DefaultConfig()

	err := runRender(cfg, path, renderOptions{output: out, ticks: 20, fit: true, padding: 10, seed: 3, savePositions: true, noCache: true})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<svg"))
	assert.Contains(t, string(data), "<circle")

	g, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Stats().Placed, "settled positions are written back")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synapse.toml")

	cmd := newInitCommand()
	cmd.SetArgs([]string{path, "--graph", "ideas.json"})
	require.NoError(t, cmd.Execute())

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ideas.json", cfg.Graph)

	cmd = newInitCommand()
	cmd.SetArgs([]string{path})
	assert.ErrorContains(t, cmd.Execute(), "already exists")

	cmd = newInitCommand()
	cmd.SetArgs([]string{path, "--force"})
	assert.NoError(t, cmd.Execute())
}

func TestPrintNode_Missing(t *testing.T) {
	g, err := store.Load(writeGraph(t))
	require.NoError(t, err)
	assert.ErrorContains(t, printNode(g, "ghost"), `no node "ghost"`)
	assert.NoError(t, printNode(g, "b"))
}
