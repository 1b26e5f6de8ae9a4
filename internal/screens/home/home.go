package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/router"
	"github.com/abhisek/luminary/internal/screen"
	"github.com/abhisek/luminary/internal/screens/history"
	"github.com/abhisek/luminary/internal/screens/lesson"
	"github.com/abhisek/luminary/internal/subjects"
	"github.com/abhisek/luminary/internal/ui/components"
	"github.com/abhisek/luminary/internal/ui/layout"
	"github.com/abhisek/luminary/internal/ui/theme"
)

// HomeScreen lists the subjects with the learner's saved level for each.
type HomeScreen struct {
	deps     lesson.Deps
	subjects []subjects.Subject
	levels   map[string]journey.Level
	menu     components.Menu
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
)

// New creates the home screen.
func New(deps lesson.Deps) *HomeScreen {
	h := &HomeScreen{
		deps:     deps,
		subjects: subjects.All(),
	}
	h.refresh()
	return h
}

// refresh reloads saved levels and rebuilds the menu, keeping the selection.
func (h *HomeScreen) refresh() {
	h.levels = loadLevels(context.Background(), h.deps, h.subjects)

	selected := h.menu.Selected
	items := make([]components.MenuItem, 0, len(h.subjects)+1)
	for _, s := range h.subjects {
		items = append(items, components.MenuItem{
			Label:  s.Icon + "  " + s.Name,
			Detail: "with " + s.Character,
			Badge:  theme.LevelBadge(string(h.levels[s.ID])),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: lesson.New(h.deps, s)}
				}
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:  "Quit",
		Action: func() tea.Cmd { return tea.Quit },
	})
	h.menu = components.NewMenu(items)
	h.menu.Selected = min(selected, len(items)-1)
}

// loadLevels returns the saved level per subject id. Lookup failures are
// logged and leave the subject unbadged.
func loadLevels(ctx context.Context, deps lesson.Deps, subs []subjects.Subject) map[string]journey.Level {
	levels := make(map[string]journey.Level)
	if deps.Store == nil {
		return levels
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if lister, ok := deps.Store.(journey.Lister); ok {
		saved, err := lister.ListJourneys(ctx, deps.LearnerID)
		if err == nil {
			for _, sj := range saved {
				levels[sj.Key.SubjectID] = sj.Record.Level
			}
			return levels
		}
		log.Warn("list journeys", zap.Error(err))
	}

	for _, s := range subs {
		rec, err := deps.Store.LoadJourney(ctx, journey.Key{LearnerID: deps.LearnerID, SubjectID: s.ID})
		if err != nil {
			log.Warn("load journey", zap.String("subject", s.ID), zap.Error(err))
			continue
		}
		if rec != nil {
			levels[s.ID] = rec.Level
		}
	}
	return levels
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(router.PoppedMsg); ok {
		h.refresh()
		return h, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "h" {
		return h, h.openHistory()
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// openHistory shows the transition log of the selected subject.
func (h *HomeScreen) openHistory() tea.Cmd {
	if h.deps.History == nil || h.menu.Selected >= len(h.subjects) {
		return nil
	}
	s := h.subjects[h.menu.Selected]
	key := journey.Key{LearnerID: h.deps.LearnerID, SubjectID: s.ID}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: history.New(h.deps.History, key, s.Name)}
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + 8)
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, renderTagline(cw))
	}
	if h.deps.Tutor == nil {
		sections = append(sections, renderLLMBanner(cw))
	}
	sections = append(sections, renderSubjectList(h.menu.View(), cw))

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Subjects"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Choose tutor"},
		{Key: fmt.Sprintf("1-%d", len(h.subjects)), Description: "Jump"},
	}
	if h.deps.History != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}
