package kana

import "github.com/samber/lo"

// Sets of romanizations whose glyphs or sounds are easy to mix up. Distractors for a member
// are drawn from the rest of its sets first.
var (
	soundAlike = [][]string{
		{"wa", "wo", "n"},
		{"o", "wo"},
		{"shi", "chi", "tsu"},
		{"su", "tsu"},
		{"ji", "zu"},
		{"ra", "ri", "ru", "re", "ro"},
		{"sha", "cha", "ja"},
		{"shu", "chu", "ju"},
		{"sho", "cho", "jo"},
	}

	lookAlike = map[string][][]string{
		Hiragana: {
			{"wa", "re", "ne"},
			{"nu", "me"},
			{"ru", "ro"},
			{"sa", "chi", "ki"},
			{"i", "ri"},
			{"ha", "ho", "ma"},
			{"a", "o", "nu"},
			{"ku", "he"},
			{"ta", "na"},
			{"so", "ro"},
			{"ba", "pa"},
			{"bi", "pi"},
			{"bu", "pu"},
			{"be", "pe"},
			{"bo", "po"},
		},
		Katakana: {
			{"shi", "tsu", "n", "so"},
			{"ku", "ta", "ke"},
			{"u", "wa", "fu"},
			{"ko", "yu", "ro"},
			{"chi", "te"},
			{"ma", "mu"},
			{"su", "nu"},
			{"ra", "wo"},
			{"e", "ni"},
			{"ha", "ka"},
			{"ba", "pa"},
			{"bi", "pi"},
			{"bu", "pu"},
			{"be", "pe"},
			{"bo", "po"},
		},
	}
)

// ConfusableSet returns the romanizations commonly confused with the given one in a
// script, excluding the romanization itself.
func ConfusableSet(script, romanization string) []string {
	sets := append(append([][]string(nil), soundAlike...), lookAlike[normalizeName(script)]...)
	var out []string
	for _, set := range sets {
		if !lo.Contains(set, romanization) {
			continue
		}
		out = append(out, lo.Without(set, romanization)...)
	}
	return lo.Uniq(out)
}
