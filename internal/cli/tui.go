package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/pipeline"
)

var (
	previewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	previewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// PreviewModel - Interactive level browser
// =============================================================================

// generator produces a level for a set of options. *pipeline.Runner
// satisfies it.
type generator interface {
	GenerateWithCacheInfo(ctx context.Context, opts pipeline.Options) (*level.Level, bool, error)
}

// levelMsg carries the outcome of one background generation.
type levelMsg struct {
	level  *level.Level
	cached bool
	err    error
}

// PreviewModel is the bubbletea model for browsing generated levels.
// Each key press changes the options and regenerates in the background.
type PreviewModel struct {
	ctx  context.Context
	gen  generator
	rand func() uint64

	Options pipeline.Options
	Level   *level.Level
	Cached  bool
	Err     error
	Busy    bool
}

// NewPreviewModel creates a preview model starting from opts.
func NewPreviewModel(ctx context.Context, gen generator, opts pipeline.Options) PreviewModel {
	return PreviewModel{
		ctx:     ctx,
		gen:     gen,
		rand:    rand.Uint64,
		Options: opts,
		Busy:    true,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return m.generate()
}

// generate runs the pipeline for the current options off the UI goroutine.
func (m PreviewModel) generate() tea.Cmd {
	ctx, gen, opts := m.ctx, m.gen, m.Options.Clone()
	return func() tea.Msg {
		l, cached, err := gen.GenerateWithCacheInfo(ctx, opts)
		return levelMsg{level: l, cached: cached, err: err}
	}
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case levelMsg:
		m.Busy = false
		m.Err = msg.err
		if msg.err == nil {
			m.Level = msg.level
			m.Cached = msg.cached
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.Busy {
			return m, nil
		}
		switch msg.String() {
		case "n", "right", " ":
			m.Options.Seed++
		case "p", "left":
			if m.Options.Seed > 1 {
				m.Options.Seed--
			}
		case "r":
			m.Options.Seed = m.rand()
		case "+", "=":
			if m.Options.Rooms < pipeline.MaxRooms {
				m.Options.Rooms++
			}
		case "-":
			if m.Options.Rooms > 1 {
				m.Options.Rooms--
			}
		case "s":
			if m.Options.SideHallFrequency > 0 {
				m.Options.SideHallFrequency = 0
			} else {
				m.Options.SideHallFrequency = corridor.DefaultSideHallFrequency
			}
		default:
			return m, nil
		}
		m.Busy = true
		return m, m.generate()
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Level Preview"))
	b.WriteString("  ")
	b.WriteString(previewLabelStyle.Render(fmt.Sprintf("seed %d", m.Options.Seed)))
	if m.Busy {
		b.WriteString(previewHelpStyle.Render("  generating..."))
	}
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString(previewErrorStyle.Render(errors.UserMessage(m.Err)))
		b.WriteString("\n")
		if errors.IsExhausted(m.Err) {
			b.WriteString(previewHelpStyle.Render("Try another seed or fewer rooms."))
			b.WriteString("\n")
		}
	case m.Level != nil:
		b.WriteString(colorMap(m.Level))
		b.WriteString("\n")
		b.WriteString(statsTable(m.Level, m.Cached))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("←/→ seed  r random  +/- rooms  s side halls  q quit"))
	return b.String()
}

// statsTable renders the level statistics as a two-column table.
func statsTable(l *level.Level, cached bool) string {
	s := l.Stats
	source := iconFresh
	if cached {
		source = iconCached
	}
	rows := [][]string{
		{"Rooms", fmt.Sprint(s.Rooms)},
		{"Triangles", fmt.Sprint(s.Triangles)},
		{"Halls", fmt.Sprint(s.SpanningEdges)},
		{"Side halls", fmt.Sprint(s.SideHalls)},
		{"Unrouted", fmt.Sprint(s.FailedPaths)},
		{"Tiles", fmt.Sprint(s.Tiles)},
		{"Sweeps", fmt.Sprint(s.SeparationSweeps)},
		{"Restarts", fmt.Sprint(s.CorridorRestarts)},
		{"Time", s.Duration.String()},
		{"Source", source},
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return base.Foreground(colorGray)
			}
			if row >= 0 && row < len(rows) && rows[row][0] == "Unrouted" && s.FailedPaths > 0 {
				return base.Foreground(colorYellow)
			}
			return base.Foreground(colorWhite)
		}).
		Render()
}
