package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/pipeline"
)

// stubGenerator records the options it was called with.
type stubGenerator struct {
	calls []pipeline.Options
	err   error
}

func (g *stubGenerator) GenerateWithCacheInfo(_ context.Context, opts pipeline.Options) (*level.Level, bool, error) {
	g.calls = append(g.calls, opts)
	if g.err != nil {
		return nil, false, g.err
	}
	return &level.Level{
		ID:    "preview",
		Seed:  opts.Seed,
		Stats: level.Stats{Rooms: opts.Rooms, Tiles: 7},
	}, false, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle runs the pending command and feeds its message back into the model.
func settle(t *testing.T, m tea.Model, cmd tea.Cmd) PreviewModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(PreviewModel)
}

func TestPreviewModelInitGenerates(t *testing.T) {
	gen := &stubGenerator{}
	m := NewPreviewModel(context.Background(), gen, pipeline.DefaultOptions())

	m = settle(t, m, m.Init())
	if m.Busy {
		t.Error("model still busy after the level arrived")
	}
	if m.Level == nil || m.Level.Seed != pipeline.DefaultSeed {
		t.Fatalf("Level = %+v, want seed %d", m.Level, pipeline.DefaultSeed)
	}
	if !strings.Contains(m.View(), "seed 42") {
		t.Error("view should show the current seed")
	}
}

func TestPreviewModelKeys(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		check func(t *testing.T, o pipeline.Options)
	}{
		{"next seed", "n", func(t *testing.T, o pipeline.Options) {
			if o.Seed != 43 {
				t.Errorf("Seed = %d, want 43", o.Seed)
			}
		}},
		{"previous seed", "p", func(t *testing.T, o pipeline.Options) {
			if o.Seed != 41 {
				t.Errorf("Seed = %d, want 41", o.Seed)
			}
		}},
		{"random seed", "r", func(t *testing.T, o pipeline.Options) {
			if o.Seed != 7 {
				t.Errorf("Seed = %d, want 7", o.Seed)
			}
		}},
		{"more rooms", "+", func(t *testing.T, o pipeline.Options) {
			if o.Rooms != 13 {
				t.Errorf("Rooms = %d, want 13", o.Rooms)
			}
		}},
		{"fewer rooms", "-", func(t *testing.T, o pipeline.Options) {
			if o.Rooms != 11 {
				t.Errorf("Rooms = %d, want 11", o.Rooms)
			}
		}},
		{"toggle side halls", "s", func(t *testing.T, o pipeline.Options) {
			if o.SideHallFrequency != 0 {
				t.Errorf("SideHallFrequency = %v, want 0", o.SideHallFrequency)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			m := NewPreviewModel(context.Background(), gen, pipeline.DefaultOptions())
			m.rand = func() uint64 { return 7 }
			m = settle(t, m, m.Init())

			next, cmd := m.Update(key(tt.key))
			pm := next.(PreviewModel)
			if !pm.Busy {
				t.Error("key press should start a regeneration")
			}
			settle(t, pm, cmd)

			if len(gen.calls) != 2 {
				t.Fatalf("generator called %d times, want 2", len(gen.calls))
			}
			tt.check(t, gen.calls[1])
		})
	}
}

func TestPreviewModelIgnoresKeysWhileBusy(t *testing.T) {
	m := NewPreviewModel(context.Background(), &stubGenerator{}, pipeline.DefaultOptions())

	next, cmd := m.Update(key("n"))
	if cmd != nil {
		t.Error("busy model should not start another generation")
	}
	if next.(PreviewModel).Options.Seed != pipeline.DefaultSeed {
		t.Error("busy model should not change the seed")
	}
}

func TestPreviewModelQuit(t *testing.T) {
	m := NewPreviewModel(context.Background(), &stubGenerator{}, pipeline.DefaultOptions())

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPreviewModelShowsErrors(t *testing.T) {
	gen := &stubGenerator{err: errors.New(errors.ErrCodeSeparationExhausted, "rooms still overlap after 500 sweeps")}
	m := NewPreviewModel(context.Background(), gen, pipeline.DefaultOptions())
	m = settle(t, m, m.Init())

	view := m.View()
	if !strings.Contains(view, "rooms still overlap") {
		t.Errorf("view should show the error message:\n%s", view)
	}
	if !strings.Contains(view, "Try another seed") {
		t.Errorf("view should suggest another seed:\n%s", view)
	}
}

func TestStatsTable(t *testing.T) {
	l := &level.Level{Stats: level.Stats{Rooms: 5, SpanningEdges: 4, Tiles: 33, FailedPaths: 1}}
	out := statsTable(l, true)
	for _, want := range []string{"Rooms", "33", "Unrouted", iconCached} {
		if !strings.Contains(out, want) {
			t.Errorf("stats table missing %q:\n%s", want, out)
		}
	}
}
