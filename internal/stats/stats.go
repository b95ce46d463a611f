// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionAccuracy returns the accuracy series of sessions in percent, in order.
func SessionAccuracy(sessions []model.SessionAggregate) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = float64(s.Accuracy)
	}
	return out
}

// KanaAccuracy returns the share of correct answers for a kana, 1 when it was never asked.
func KanaAccuracy(agg model.KanaAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalWrong float64
	var totalMs int64
	best := math.Inf(-1)
	for _, s := range sessions {
		totalAcc += float64(s.Accuracy)
		totalWrong += float64(s.WrongCount)
		totalMs += s.DurationMs
		best = math.Max(best, float64(s.Accuracy))
	}
	count := float64(len(sessions))
	avgDuration := time.Duration(float64(totalMs)/count) * time.Millisecond
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count),
		fmt.Sprintf("Best Accuracy: %.0f%%", best),
		fmt.Sprintf("Avg Mistakes: %.2f", totalWrong/count),
		fmt.Sprintf("Avg Duration: %s", avgDuration.Round(time.Second)),
		fmt.Sprintf("Total Time: %s", (time.Duration(totalMs) * time.Millisecond).Round(time.Second)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderKanaTable prints per-kana aggregates, weakest first.
func RenderKanaTable(w io.Writer, title string, aggs []model.KanaAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No kana stats found.")
		return err
	}
	rows := make([]model.KanaAggregate, len(aggs))
	copy(rows, aggs)
	sortByAccuracy(rows)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	headers := []string{"Kana", "Romaji", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Glyph,
			r.Romaji,
			fmt.Sprintf("%.2f%%", KanaAccuracy(r)*100),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
