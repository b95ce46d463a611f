package tui

import (
	"slices"

	"github.com/verte-zerg/kanaquiz/internal/kana"
)

// selection is the state of the group picker.
type selection struct {
	scripts      []string
	script       int
	groups       []string
	combos       []string
	checked      map[string]bool
	combinations bool
	cursor       int
}

func newSelection(table *kana.Table, initial kana.Selection) selection {
	s := selection{
		scripts:      table.ScriptNames(),
		combinations: initial.Combinations,
	}
	if idx := slices.Index(s.scripts, initial.Script); idx >= 0 {
		s.script = idx
	}
	s.load(table)
	for _, g := range initial.Groups {
		switch {
		case slices.Contains(s.groups, g):
			s.checked[g] = true
		case slices.Contains(s.combos, g):
			s.combinations = true
		}
	}
	return s
}

func (s *selection) load(table *kana.Table) {
	s.groups, s.combos = table.GroupNames(s.scriptName())
	s.checked = map[string]bool{}
	s.cursor = 0
}

func (s selection) scriptName() string {
	if len(s.scripts) == 0 {
		return kana.Hiragana
	}
	return s.scripts[s.script]
}

func (s *selection) nextScript(table *kana.Table, delta int) {
	if len(s.scripts) < 2 {
		return
	}
	s.script = (s.script + delta + len(s.scripts)) % len(s.scripts)
	s.load(table)
}

func (s *selection) move(delta int) {
	if len(s.groups) == 0 {
		return
	}
	s.cursor = min(max(s.cursor+delta, 0), len(s.groups)-1)
}

func (s *selection) toggle() {
	if len(s.groups) == 0 {
		return
	}
	g := s.groups[s.cursor]
	s.checked[g] = !s.checked[g]
}

// toggleAll checks every group, or clears them all when every group is already checked.
func (s *selection) toggleAll() {
	all := true
	for _, g := range s.groups {
		if !s.checked[g] {
			all = false
			break
		}
	}
	for _, g := range s.groups {
		s.checked[g] = !all
	}
}

func (s selection) selectedGroups() []string {
	var out []string
	for _, g := range s.groups {
		if s.checked[g] {
			out = append(out, g)
		}
	}
	return out
}

// request converts the picker state into a pool selection. Nothing checked means every
// base group, unless only combinations were asked for.
func (s selection) request() kana.Selection {
	groups := s.selectedGroups()
	if s.combinations {
		if len(groups) == 0 {
			return kana.Selection{Script: s.scriptName(), Groups: slices.Clone(s.combos)}
		}
		groups = append(groups, s.combos...)
	}
	return kana.Selection{Script: s.scriptName(), Groups: groups}
}
