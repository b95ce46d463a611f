// Package kana provides the static kana lookup table.
package kana

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// Script names shipped with the default table.
const (
	Hiragana = "hiragana"
	Katakana = "katakana"
)

// ErrEmptyTable is returned when a table has no usable scripts.
var ErrEmptyTable = errors.New("kana: table has no scripts")

//go:embed data/kana.json
var defaultTableJSON []byte

var defaultTable = mustParse(defaultTableJSON)

// Entry is a single kana glyph and its romanization.
type Entry struct {
	Glyph        string `json:"kana"`
	Romanization string `json:"romaji"`
}

// IsZero reports whether the entry is empty.
func (e Entry) IsZero() bool {
	return e.Glyph == "" && e.Romanization == ""
}

// Group is a named row of entries (e.g. "ka") or a combination group (e.g. "kya").
type Group struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Script holds the groups of one syllabary.
type Script struct {
	Name         string  `json:"name"`
	Groups       []Group `json:"groups"`
	Combinations []Group `json:"combinations,omitempty"`
}

// Table maps script name to groups of entries.
type Table struct {
	Scripts []Script `json:"scripts"`
}

// Default returns the embedded hiragana/katakana table.
func Default() *Table {
	return defaultTable
}

// Load reads a table from a JSON file with the same shape as the embedded table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kana table %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a JSON table. Entries with an empty glyph or romanization are dropped and
// glyphs are NFC-normalized so that decomposed voiced marks compare equal.
func Parse(data []byte) (*Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	scripts := make([]Script, 0, len(table.Scripts))
	for _, s := range table.Scripts {
		s.Name = normalizeName(s.Name)
		if s.Name == "" {
			continue
		}
		s.Groups = normalizeGroups(s.Groups)
		s.Combinations = normalizeGroups(s.Combinations)
		scripts = append(scripts, s)
	}
	if len(scripts) == 0 {
		return nil, ErrEmptyTable
	}
	table.Scripts = scripts
	return &table, nil
}

func mustParse(data []byte) *Table {
	table, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("kana: invalid embedded table: %v", err))
	}
	return table
}

func normalizeGroups(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		g.Name = normalizeName(g.Name)
		if g.Name == "" {
			continue
		}
		entries := lo.Map(g.Entries, func(e Entry, _ int) Entry {
			return Entry{
				Glyph:        norm.NFC.String(strings.TrimSpace(e.Glyph)),
				Romanization: strings.ToLower(strings.TrimSpace(e.Romanization)),
			}
		})
		g.Entries = lo.Filter(entries, func(e Entry, _ int) bool {
			return e.Glyph != "" && e.Romanization != ""
		})
		out = append(out, g)
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ScriptNames lists the scripts in table order.
func (t *Table) ScriptNames() []string {
	return lo.Map(t.Scripts, func(s Script, _ int) string { return s.Name })
}

// Script looks up a script by name.
func (t *Table) Script(name string) (Script, bool) {
	name = normalizeName(name)
	return lo.Find(t.Scripts, func(s Script) bool { return s.Name == name })
}

// Group looks up a base or combination group by name.
func (s Script) Group(name string) (Group, bool) {
	name = normalizeName(name)
	match := func(g Group) bool { return g.Name == name }
	if g, ok := lo.Find(s.Groups, match); ok {
		return g, true
	}
	return lo.Find(s.Combinations, match)
}

// GroupNames returns the base and combination group names of a script.
func (t *Table) GroupNames(script string) (base, combinations []string) {
	s, ok := t.Script(script)
	if !ok {
		return nil, nil
	}
	name := func(g Group, _ int) string { return g.Name }
	return lo.Map(s.Groups, name), lo.Map(s.Combinations, name)
}

// Entries returns every entry of a script, base groups first.
func (t *Table) Entries(script string) []Entry {
	s, ok := t.Script(script)
	if !ok {
		return nil
	}
	groups := append(append([]Group(nil), s.Groups...), s.Combinations...)
	entries := lo.FlatMap(groups, func(g Group, _ int) []Entry { return g.Entries })
	return lo.UniqBy(entries, func(e Entry) string { return e.Glyph })
}

// Fallback is the entry used when a requested pool is empty or malformed.
func Fallback(script string) Entry {
	if normalizeName(script) == Katakana {
		return Entry{Glyph: "ア", Romanization: "a"}
	}
	return Entry{Glyph: "あ", Romanization: "a"}
}

// FallbackEntries returns the embedded table's entries for the script Fallback serves, so a
// fallback question still has distractors.
func FallbackEntries(script string) []Entry {
	name := Hiragana
	if normalizeName(script) == Katakana {
		name = Katakana
	}
	return Default().Entries(name)
}
