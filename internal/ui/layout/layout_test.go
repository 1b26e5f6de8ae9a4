package layout

import (
	"strings"
	"testing"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{79, 24, true},
		{80, 23, true},
		{200, 60, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRenderHeader_ShowsTitleAndStatus(t *testing.T) {
	header := RenderHeader("Physics", "intermediate", 100)
	for _, want := range []string{"Luminary", "Physics", "intermediate"} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderFooter_ListsHints(t *testing.T) {
	footer := RenderFooter([]KeyHint{{Key: "Enter", Description: "Send"}}, 100)
	if !strings.Contains(footer, "Enter") || !strings.Contains(footer, "Send") {
		t.Errorf("footer missing hint: %q", footer)
	}
}

func TestRenderFooter_DropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+R", Description: "Start fresh"},
		{Key: "Esc", Description: "Back to subjects"},
	}
	footer := RenderFooter(hints, 30)
	if !strings.Contains(footer, "Send") {
		t.Errorf("first hint should always fit: %q", footer)
	}
	if strings.Contains(footer, "Back to subjects") {
		t.Errorf("overflowing hint should be dropped: %q", footer)
	}
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	frame := RenderFrame("head", "body", "foot", 20, 10)
	if got := len(strings.Split(frame, "\n")); got != 10 {
		t.Errorf("frame has %d lines, want 10", got)
	}
}
