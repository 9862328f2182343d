package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/synapse/pkg/graphview"
)

// Style definitions
var (
	// Colors
	primaryColor = lipgloss.Color("#6ea8fe")
	accentColor  = lipgloss.Color("#ffcf33")
	mutedColor   = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// View renders the canvas, side panel, status and help lines
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading…"
	}

	body := m.canvas.Render()
	cols, rows := canvasSize(m.width, m.height)
	if cols < m.width {
		panel := m.renderPanel(rows)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(), m.help.View(m.keys))
}

// renderPanel shows search and the popup card for the selected node
func (m Model) renderPanel(rows int) string {
	inner := panelWidth - 4 // border and padding
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d matches", m.matches())))
		b.WriteString("\n\n")
	}

	if _, open := m.view.Controller().Popup(); open {
		if n := m.view.Node(m.view.Selected()); n != nil {
			b.WriteString(popupCard(n, m.view.Connections(), inner))
		}
	} else {
		b.WriteString(mutedStyle.Render("click a node for details"))
	}

	return panelStyle.
		Width(panelWidth - 2).
		Height(max(rows-2, 0)).
		MaxHeight(rows).
		Render(b.String())
}

func (m Model) matches() int {
	n := 0
	q := m.view.Search()
	for _, node := range m.view.Nodes() {
		if node != nil && graphview.MatchesSearch(node.Label, q) {
			n++
		}
	}
	return n
}

// popupCard describes a node and its strongest links
func popupCard(n *graphview.Node, conns []graphview.Connection, width int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Width(width).Render(n.Label))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(truncate(n.ID, width)))
	b.WriteString("\n")

	if len(n.Payload) > 0 {
		b.WriteString("\n")
		keys := make([]string, 0, len(n.Payload))
		for k := range n.Payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(truncate(fmt.Sprintf("%s: %v", k, n.Payload[k]), width))
			b.WriteString("\n")
		}
	}

	var links []graphview.Connection
	for _, c := range conns {
		if c.Source == n.ID || c.Target == n.ID {
			links = append(links, c)
		}
	}
	if len(links) == 0 {
		return b.String()
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Strength > links[j].Strength })
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d connections", len(links))))
	b.WriteString("\n")
	for i, c := range links {
		if i == 5 {
			break
		}
		other := c.Target
		if other == n.ID {
			other = c.Source
		}
		mark := " "
		if c.Surprising {
			mark = "!"
		}
		b.WriteString(truncate(fmt.Sprintf("%s %.2f %s", mark, c.Strength, other), width))
		b.WriteString("\n")
		if c.Reason != "" {
			b.WriteString(mutedStyle.Render(truncate("    "+c.Reason, width)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderStatus() string {
	cam := m.view.Controller().Camera()
	s := fmt.Sprintf("zoom %.2f  alpha %.3f  nodes %d  threshold %.1f  %s",
		cam.Zoom, m.view.Engine().Alpha(), len(m.view.Nodes()), m.view.Threshold(),
		m.view.Controller().State())
	if m.status != "" {
		s += "  " + m.status
	}
	return statusStyle.Render(truncate(s, m.width))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
