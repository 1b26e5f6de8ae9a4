package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/luminary/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label  string
	Detail string // rendered dimmed in a column after the labels
	Badge  string // pre-rendered, after the detail column
	Action func() tea.Cmd
}

// Menu is a vertical navigation menu. The first nine items can also be
// chosen with their number key.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the given items.
func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.Selected = max(m.Selected-1, 0)
	case "down", "j":
		m.Selected = min(m.Selected+1, len(m.Items)-1)
	case "home", "g":
		m.Selected = 0
	case "end", "G":
		m.Selected = len(m.Items) - 1
	case "enter":
		return m, m.activate()
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= min(len(m.Items), 9) {
			m.Selected = n - 1
			return m, m.activate()
		}
	}
	return m, nil
}

func (m Menu) activate() tea.Cmd {
	if item := m.Items[m.Selected]; item.Action != nil {
		return item.Action()
	}
	return nil
}

// View renders the menu with labels and details in aligned columns.
func (m Menu) View() string {
	labelWidth, detailWidth := 0, 0
	for _, item := range m.Items {
		labelWidth = max(labelWidth, lipgloss.Width(item.Label))
		detailWidth = max(detailWidth, lipgloss.Width(item.Detail))
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, item := range m.Items {
		num := "   "
		if i < 9 {
			num = dim.Render(strconv.Itoa(i+1) + ". ")
		}
		label := item.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(item.Label))

		var line string
		if i == m.Selected {
			line = theme.Selected.Render("▸ ") + num + theme.Selected.Render(label)
		} else {
			line = "  " + num + theme.Unselected.Render(label)
		}
		if item.Detail != "" || item.Badge != "" {
			pad := strings.Repeat(" ", detailWidth-lipgloss.Width(item.Detail))
			line += "  " + dim.Render(item.Detail) + pad
		}
		if item.Badge != "" {
			line += "  " + item.Badge
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}
