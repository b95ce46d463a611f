// Package generator picks quiz prompts and builds multiple-choice answer sets.
package generator

import (
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/kanaquiz/internal/kana"
)

// Field selects the answer text of an entry for the active direction.
type Field func(kana.Entry) string

// Generator produces randomized questions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Generator backed by the given source.
func NewWithRand(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Pick selects a random entry whose romanization differs from previous. The constraint is
// waived when no such entry exists. An empty pool yields the zero Entry.
func (g *Generator) Pick(pool []kana.Entry, previous kana.Entry) kana.Entry {
	if len(pool) == 0 {
		return kana.Entry{}
	}
	hasOther := previous.IsZero() || lo.SomeBy(pool, func(e kana.Entry) bool {
		return e.Romanization != previous.Romanization
	})
	for {
		e := pool[g.rnd.Intn(len(pool))]
		if !hasOther || e.Romanization != previous.Romanization {
			return e
		}
	}
}

// ChoiceRequest describes the answer set for one question.
type ChoiceRequest struct {
	Correct kana.Entry
	Answer  Field
	Count   int
	// Confusable lists romanizations to draw distractors from first.
	Confusable []string
	// Pool is the session pool; Backup is consulted when the pool runs short and Reserve
	// when both do.
	Pool    []kana.Entry
	Backup  []kana.Entry
	Reserve []kana.Entry
}

// Choices returns the correct answer plus up to Count-1 distractors, shuffled. Distractors
// never share the correct entry's glyph or romanization and never repeat answer text.
func (g *Generator) Choices(req ChoiceRequest) []string {
	answer := req.Answer(req.Correct)
	choices := make([]string, 0, max(req.Count, 1))
	choices = append(choices, answer)
	used := map[string]struct{}{answer: {}}

	take := func(candidates []kana.Entry) {
		for _, idx := range g.rnd.Perm(len(candidates)) {
			if len(choices) >= req.Count {
				return
			}
			c := candidates[idx]
			if c.Glyph == req.Correct.Glyph || c.Romanization == req.Correct.Romanization {
				continue
			}
			text := req.Answer(c)
			if text == "" {
				continue
			}
			if _, ok := used[text]; ok {
				continue
			}
			used[text] = struct{}{}
			choices = append(choices, text)
		}
	}

	if len(req.Confusable) > 0 {
		all := lo.UniqBy(append(append([]kana.Entry(nil), req.Pool...), req.Backup...),
			func(e kana.Entry) string { return e.Glyph })
		take(lo.Filter(all, func(e kana.Entry, _ int) bool {
			return lo.Contains(req.Confusable, e.Romanization)
		}))
	}
	take(req.Pool)
	take(req.Backup)
	take(req.Reserve)

	g.Shuffle(choices)
	return choices
}

// Shuffle permutes values in place (Fisher-Yates).
func (g *Generator) Shuffle(values []string) {
	for i := len(values) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}
