package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/seamcarver/pkg/carve"
	"github.com/matzehuels/seamcarver/pkg/imageio"
	"github.com/matzehuels/seamcarver/pkg/render/term"
)

// Player styles
var (
	playerStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	playerKeyStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	playerDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// playerChrome is the number of terminal rows used by the status and help lines.
const playerChrome = 3

// =============================================================================
// PlayerModel - Animated carving
// =============================================================================

// tickMsg advances the carver by one step.
type tickMsg time.Time

// savedMsg reports the outcome of writing the current frame.
type savedMsg struct {
	path string
	err  error
}

// PlayerModel is the bubbletea model that animates a Carver: every tick
// either marks the next seam or removes the marked one.
type PlayerModel struct {
	Carver   *carve.Carver
	Name     string
	Interval time.Duration
	// Output is where "w" writes the current image.
	Output string

	renderer *term.Renderer
	cols     int
	rows     int
	message  string
}

// NewPlayerModel creates a player for c.
func NewPlayerModel(c *carve.Carver, name, output string, interval time.Duration, r *term.Renderer) PlayerModel {
	if r == nil {
		r = term.NewRenderer(nil)
	}
	return PlayerModel{
		Carver:   c,
		Name:     name,
		Interval: interval,
		Output:   output,
		renderer: r,
		cols:     80,
		rows:     24 - playerChrome,
	}
}

func (m PlayerModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m PlayerModel) Init() tea.Cmd {
	return m.tick()
}

func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.Carver.Step()
		return m, m.tick()
	case savedMsg:
		if msg.err != nil {
			m.message = "save failed: " + msg.err.Error()
		} else {
			m.message = "saved " + msg.path
		}
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 1)
		m.rows = max(msg.Height-playerChrome, 1)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "v":
			m.setDirection(carve.DirectionVertical)
		case "h":
			m.setDirection(carve.DirectionHorizontal)
		case "a":
			m.setDirection(carve.DirectionAlternating)
		case "b", "r":
			m.setDirection(carve.DirectionRandom)
		case " ":
			if m.Carver.TogglePaused() {
				m.message = "paused"
			} else {
				m.message = "resumed"
			}
		case "e":
			m.message = m.Carver.ToggleView().String() + " view"
		case "s":
			if m.Carver.Paused() {
				m.Carver.SetPaused(false)
				m.Carver.Step()
				m.Carver.SetPaused(true)
			}
		case "w":
			return m, m.save()
		}
	}
	return m, nil
}

func (m *PlayerModel) setDirection(d carve.Direction) {
	m.Carver.SetDirection(d)
	m.message = d.String()
}

// save writes the current image, without the marked seam.
func (m PlayerModel) save() tea.Cmd {
	img := m.Carver.Grid().Image()
	path := m.Output
	return func() tea.Msg {
		return savedMsg{path: path, err: imageio.Save(path, img)}
	}
}

func (m PlayerModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderer.Render(m.Carver.Image(), m.cols, m.rows))
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(playerDimStyle.Render(helpLine()))
	return b.String()
}

// status summarises the carver: "tower.png 120x80 · vertical · marked · 14V 3H".
func (m PlayerModel) status() string {
	c := m.Carver
	parts := []string{
		StyleTitle.Render(m.Name),
		StyleValue.Render(fmt.Sprintf("%dx%d", c.Width(), c.Height())),
		c.Direction().String(),
		c.State().String(),
		styleVertical.Render(fmt.Sprintf("%dV", c.Removed(carve.Vertical))) + " " +
			styleHorizontal.Render(fmt.Sprintf("%dH", c.Removed(carve.Horizontal))),
	}
	if c.Paused() {
		parts = append(parts, StyleWarning.Render("paused"))
	}
	if c.Width() == 1 && c.Height() == 1 {
		parts = append(parts, StyleSuccess.Render("done"))
	}
	line := strings.Join(parts, playerStatusStyle.Render(" · "))
	if m.message != "" {
		line += "  " + playerDimStyle.Render(m.message)
	}
	return line
}

func helpLine() string {
	keys := []struct{ key, desc string }{
		{"v", "vertical"}, {"h", "horizontal"}, {"a", "alternating"}, {"b", "both"},
		{"space", "pause"}, {"s", "step"}, {"e", "energy"}, {"w", "write"}, {"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = playerKeyStyle.Render(k.key) + " " + k.desc
	}
	return strings.Join(parts, "  ")
}
