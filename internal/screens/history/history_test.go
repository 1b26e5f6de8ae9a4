package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/router"
	"github.com/abhisek/luminary/internal/store"
)

type fakeSource struct {
	events []store.JourneyEventRecord
	err    error
}

func (f fakeSource) History(context.Context, journey.Key, store.QueryOpts) ([]store.JourneyEventRecord, error) {
	return f.events, f.err
}

var key = journey.Key{LearnerID: "learner-1", SubjectID: "physics"}

func event(seq int64, action journey.EventAction) store.JourneyEventRecord {
	return store.JourneyEventRecord{
		Sequence: seq,
		Event:    journey.Event{Key: key, Action: action, Timestamp: time.Unix(seq, 0)},
	}
}

func TestInit_LoadsNewestFirst(t *testing.T) {
	src := fakeSource{events: []store.JourneyEventRecord{
		event(1, journey.ActionStartDiagnosis),
		event(2, journey.ActionDiagnosticTurn),
		event(3, journey.ActionComplete),
	}}
	s := New(src, key, "Physics")
	s.Update(s.Init()())

	if !s.loaded {
		t.Fatal("expected loaded")
	}
	if len(s.events) != 3 || s.events[0].Action != journey.ActionComplete {
		t.Errorf("expected newest first, got %+v", s.events)
	}
	if s.Title() != "Physics History" {
		t.Errorf("title = %q", s.Title())
	}
}

func TestInit_Error(t *testing.T) {
	s := New(fakeSource{err: errors.New("locked")}, key, "Physics")
	s.Update(s.Init()())
	if s.errMsg != "locked" {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestNavigationAndExpand(t *testing.T) {
	src := fakeSource{events: []store.JourneyEventRecord{event(1, journey.ActionStartQuiz), event(2, journey.ActionQuizAnswer)}}
	s := New(src, key, "Physics")
	s.Update(s.Init()())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.expanded[1] {
		t.Error("enter should expand the selected row")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc should pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
