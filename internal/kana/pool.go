package kana

import (
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Selection names the part of a table a session draws from.
type Selection struct {
	Script       string
	Groups       []string
	Combinations bool
}

// Pool returns the deduplicated entries of the selected groups. An empty group list means
// every base group; Combinations adds every combination group. A missing script or an
// empty result is logged and replaced by the fallback entry, so callers always get at least
// one entry.
func (t *Table) Pool(sel Selection, logger *zap.Logger) []Entry {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, ok := t.Script(sel.Script)
	if !ok {
		logger.Warn("kana script not found, using fallback entry",
			zap.String("script", sel.Script))
		return []Entry{Fallback(sel.Script)}
	}

	names := sel.Groups
	if len(names) == 0 {
		names = lo.Map(s.Groups, func(g Group, _ int) string { return g.Name })
	}
	if sel.Combinations {
		names = append(append([]string(nil), names...),
			lo.Map(s.Combinations, func(g Group, _ int) string { return g.Name })...)
	}

	var entries []Entry
	for _, name := range lo.Uniq(names) {
		g, ok := s.Group(name)
		if !ok {
			logger.Warn("kana group not found",
				zap.String("script", s.Name),
				zap.String("group", name))
			continue
		}
		entries = append(entries, g.Entries...)
	}
	entries = lo.UniqBy(entries, func(e Entry) string { return e.Glyph })
	if len(entries) == 0 {
		logger.Warn("kana pool is empty, using fallback entry",
			zap.String("script", s.Name),
			zap.Strings("groups", names))
		return []Entry{Fallback(s.Name)}
	}
	return entries
}
