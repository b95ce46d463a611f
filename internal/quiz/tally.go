package quiz

import (
	"sort"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

// Tally aggregates the answer log per kana glyph, sorted by glyph.
func Tally(answers []AnswerRecord) []model.KanaStats {
	byGlyph := map[string]*model.KanaStats{}
	for _, a := range answers {
		entry, ok := byGlyph[a.Entry.Glyph]
		if !ok {
			entry = &model.KanaStats{Glyph: a.Entry.Glyph, Romaji: a.Entry.Romanization}
			byGlyph[a.Entry.Glyph] = entry
		}
		if a.Correct {
			entry.Correct++
		} else {
			entry.Incorrect++
		}
	}
	out := make([]model.KanaStats, 0, len(byGlyph))
	for _, entry := range byGlyph {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Glyph < out[j].Glyph
	})
	return out
}
