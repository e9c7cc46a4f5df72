package diagram

import (
	"reflect"
	"testing"
)

func TestSelectionClick(t *testing.T) {
	d := New()
	p := place(t, d, "pump", 0, 0)
	c := place(t, d, "level_controller", 200, 0)
	solo := place(t, d, "tank", 400, 0)
	_, _ = d.CreateGroup([]string{p.ID, c.ID})

	var s Selection

	s.Click(d, solo.ID, false)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{solo.ID}) {
		t.Errorf("click ungrouped = %v", got)
	}

	s.Click(d, c.ID, false)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{p.ID, c.ID}) {
		t.Errorf("click grouped = %v, want whole group", got)
	}

	s.Click(d, p.ID, true)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{c.ID}) {
		t.Errorf("multi-click toggles off = %v", got)
	}

	s.Click(d, solo.ID, true)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{c.ID, solo.ID}) {
		t.Errorf("multi-click toggles on = %v", got)
	}

	s.Click(d, "ghost", false)
	if s.Len() != 2 {
		t.Error("click on unknown id changed selection")
	}
}

func TestSelectionSingle(t *testing.T) {
	var s Selection
	if _, ok := s.Single(); ok {
		t.Error("empty selection has no single id")
	}
	s.Select("a")
	if id, ok := s.Single(); !ok || id != "a" {
		t.Errorf("Single = %q, %v", id, ok)
	}
	s.Select("a", "b", "a")
	if s.Len() != 2 {
		t.Errorf("Select should dedupe, got %v", s.IDs())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Error("Clear left ids")
	}
}

func TestSelectionPrune(t *testing.T) {
	d := New()
	a := place(t, d, "pump", 0, 0)
	b := place(t, d, "tank", 0, 0)
	var s Selection
	s.Select(a.ID, b.ID)

	_ = d.RemoveComponent(a.ID)
	s.Prune(d)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{b.ID}) {
		t.Errorf("after prune = %v", got)
	}
}
