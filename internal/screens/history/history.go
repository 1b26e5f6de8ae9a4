// Package history shows the recorded transitions of one journey.
package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/router"
	"github.com/abhisek/luminary/internal/screen"
	"github.com/abhisek/luminary/internal/store"
	"github.com/abhisek/luminary/internal/ui/layout"
	"github.com/abhisek/luminary/internal/ui/theme"
)

// Source lists a journey's recorded transitions, oldest first.
type Source interface {
	History(ctx context.Context, key journey.Key, opts store.QueryOpts) ([]store.JourneyEventRecord, error)
}

// historyLimit caps how many transitions are loaded.
const historyLimit = 200

type historyLoadedMsg struct {
	Events []store.JourneyEventRecord
	Err    error
}

// HistoryScreen displays a journey's transitions, newest first.
type HistoryScreen struct {
	source   Source
	key      journey.Key
	name     string
	events   []store.JourneyEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a history screen for key. name is the subject's display name.
func New(source Source, key journey.Key, name string) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		key:      key,
		name:     name,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		events, err := s.source.History(context.Background(), s.key, store.QueryOpts{})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		// Newest first, capped.
		out := make([]store.JourneyEventRecord, 0, min(len(events), historyLimit))
		for i := len(events) - 1; i >= 0 && len(out) < historyLimit; i-- {
			out = append(out, events[i])
		}
		return historyLoadedMsg{Events: out}
	}
}

func (s *HistoryScreen) Title() string {
	return s.name + " History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing recorded yet. Start a conversation!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-16s  %-10s", prefix,
			ev.Timestamp.Local().Format("Jan 02 15:04"), ev.Action, ev.Stage)

		style := lipgloss.NewStyle().Foreground(actionColor(ev.Action))
		if i == s.selected {
			style = style.Bold(true)
		}
		row := style.Render(line)
		if ev.Level != "" {
			row += "  " + theme.LevelBadge(string(ev.Level))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    turn %d  confidence %.2f  sequence %d", ev.Turn, ev.Confidence, ev.Sequence)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func actionColor(a journey.EventAction) color.Color {
	switch a {
	case journey.ActionComplete:
		return theme.Success
	case journey.ActionReset:
		return theme.Error
	case journey.ActionRestore:
		return theme.Secondary
	default:
		return theme.Text
	}
}
