package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_LetterSelectsAndLocks(t *testing.T) {
	mc := NewMultiChoice("Pick one", []string{"alpha", "beta", "gamma"})

	mc, _ = mc.Update(keyPress('b'))
	if !mc.Submitted || mc.ChosenIndex != 1 {
		t.Fatalf("expected option 1 chosen, got submitted=%v chosen=%d", mc.Submitted, mc.ChosenIndex)
	}

	mc, _ = mc.Update(keyPress('c'))
	if mc.ChosenIndex != 1 {
		t.Errorf("choice changed after submit: %d", mc.ChosenIndex)
	}
}

func TestMultiChoice_NavigateAndEnter(t *testing.T) {
	mc := NewMultiChoice("Pick one", []string{"alpha", "beta"})

	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if mc.Selected != 1 {
		t.Errorf("selection should clamp at last option, got %d", mc.Selected)
	}
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if mc.ChosenIndex != 1 {
		t.Errorf("expected enter to choose 1, got %d", mc.ChosenIndex)
	}
}

func TestMultiChoice_IgnoresOutOfRangeLetter(t *testing.T) {
	mc := NewMultiChoice("Pick one", []string{"alpha", "beta"})
	mc, _ = mc.Update(keyPress('z'))
	if mc.Submitted {
		t.Error("z should not choose anything")
	}
}

func TestMultiChoice_ViewLabelsOptions(t *testing.T) {
	view := NewMultiChoice("Pick one", []string{"alpha", "beta"}).View()
	for _, want := range []string{"Pick one", "A)  alpha", "B)  beta"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTextInput_DisabledIgnoresKeys(t *testing.T) {
	in := NewTextInput("Ask...", 0)
	in.SetDisabled(true)
	in, _ = in.Update(keyPress('x'))
	if in.Value() != "" {
		t.Errorf("disabled input accepted %q", in.Value())
	}

	in.SetDisabled(false)
	in, _ = in.Update(keyPress('x'))
	if in.Value() != "x" {
		t.Errorf("expected x, got %q", in.Value())
	}
}

func TestMenu_EnterRunsAction(t *testing.T) {
	ran := ""
	m := NewMenu([]MenuItem{
		{Label: "one", Action: func() tea.Cmd { ran = "one"; return nil }},
		{Label: "two", Action: func() tea.Cmd { ran = "two"; return nil }},
	})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if ran != "two" {
		t.Errorf("expected second action, got %q", ran)
	}
}

func TestMenu_NumberKeyJumpsAndRuns(t *testing.T) {
	ran := ""
	m := NewMenu([]MenuItem{
		{Label: "Physics", Detail: "with Albert Einstein", Action: func() tea.Cmd { ran = "physics"; return nil }},
		{Label: "History", Detail: "with Herodotus", Action: func() tea.Cmd { ran = "history"; return nil }},
	})
	m, _ = m.Update(keyPress('2'))
	if ran != "history" || m.Selected != 1 {
		t.Errorf("expected history chosen, got %q (selected %d)", ran, m.Selected)
	}

	ran = ""
	m, _ = m.Update(keyPress('7'))
	if ran != "" || m.Selected != 1 {
		t.Error("out-of-range number should do nothing")
	}

	view := m.View()
	if !strings.Contains(view, "1. ") || !strings.Contains(view, "with Herodotus") {
		t.Errorf("unexpected view %q", view)
	}
}

func TestChatLog_KeepsNewestRows(t *testing.T) {
	var log ChatLog
	for _, s := range []string{"first", "second", "third"} {
		log.Append(RoleSystem, s)
	}
	view := log.View(40, 2)
	if strings.Contains(view, "first") {
		t.Error("oldest line should scroll off")
	}
	if !strings.Contains(view, "third") {
		t.Error("newest line should be visible")
	}
}

func TestQuizProgress(t *testing.T) {
	if p := QuizProgress(1, 4, 20); p.Fraction() != 0.25 {
		t.Errorf("got %v", p.Fraction())
	}
	if p := QuizProgress(0, 0, 20); p.Fraction() != 0 || p.View() != "" {
		t.Errorf("empty quiz should render nothing")
	}
	if p := QuizProgress(9, 5, 20); p.Fraction() != 1 {
		t.Errorf("fraction should clamp, got %v", p.Fraction())
	}
}

func TestSteps_View(t *testing.T) {
	view := Steps{Label: "getting to know you", Done: 2, Total: 5, Width: 60}.View()
	if !strings.Contains(view, "getting to know you") {
		t.Errorf("label missing: %q", view)
	}
	if got := strings.Count(view, "━"); got == 0 {
		t.Error("completed steps should be filled")
	}

	bare := Steps{Done: 2, Total: 5, Width: 30}.View()
	if n := len(strings.Fields(bare)); n != 5 {
		t.Errorf("expected 5 segments, got %d in %q", n, bare)
	}
}
