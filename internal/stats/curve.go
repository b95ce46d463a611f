package stats

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

const (
	minCurveWidth       = 10
	curveLabelWidth     = len("Accuracy ")
	terminalWidthBackup = 80
	colorAccent         = "\x1b[36m"
	colorReset          = "\x1b[0m"
)

// RenderCurve prints the moving-average accuracy of sessions as a sparkline sized to
// totalWidth columns. totalWidth <= 0 uses the terminal width.
func RenderCurve(w io.Writer, sessions []model.SessionAggregate, window, totalWidth int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	values := MovingAverage(SessionAccuracy(sessions), window)
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}
	width := max(totalWidth-curveLabelWidth, minCurveWidth)
	if len(values) > width {
		values = resampleSeries(values, width)
	}
	lo, hi := minMax(values)

	line := Sparkline(values)
	if useColor {
		line = colorAccent + line + colorReset
	}
	if _, err := fmt.Fprintf(w, "Learning Curve (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy %s\n", line); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "min=%.2f%% max=%.2f%% last=%.2f%%\n\n", lo, hi, values[len(values)-1]); err != nil {
		return err
	}
	return nil
}

// KanaSeries returns a glyph's accuracy in percent for every session that asked it, in
// session order.
func KanaSeries(sessions []model.SessionAggregate, perSession map[string]map[string]model.KanaStats, glyph string) []float64 {
	var out []float64
	for _, s := range sessions {
		ks, ok := perSession[s.SessionID][glyph]
		total := ks.Correct + ks.Incorrect
		if !ok || total == 0 {
			continue
		}
		out = append(out, float64(ks.Correct)/float64(total)*100)
	}
	return out
}

// RenderKanaCurves prints one moving-average accuracy sparkline per glyph, each followed
// by its latest value.
func RenderKanaCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.KanaStats, glyphs []string, window, totalWidth int, useColor bool) error {
	if len(sessions) == 0 || len(glyphs) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}
	labelWidth := 0
	for _, g := range glyphs {
		labelWidth = max(labelWidth, runewidth.StringWidth(g))
	}
	labelWidth++
	width := max(totalWidth-labelWidth-len(" 100%"), minCurveWidth)

	if _, err := fmt.Fprintf(w, "Kana Accuracy (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	for _, g := range glyphs {
		label := runewidth.FillRight(g, labelWidth)
		values := MovingAverage(KanaSeries(sessions, perSession, g), window)
		if len(values) == 0 {
			if _, err := fmt.Fprintf(w, "%sno answers\n", label); err != nil {
				return err
			}
			continue
		}
		if len(values) > width {
			values = resampleSeries(values, width)
		}
		line := Sparkline(values)
		if useColor {
			line = colorAccent + line + colorReset
		}
		if _, err := fmt.Fprintf(w, "%s%s %3.0f%%\n", label, line, values[len(values)-1]); err != nil {
			return err
		}
	}
	return nil
}

// resampleSeries averages values into width buckets. Callers only shrink.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := int(float64(i) * float64(len(values)) / float64(width))
		end := int(float64(i+1) * float64(len(values)) / float64(width))
		if end <= start {
			end = start + 1
		}
		end = min(end, len(values))
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
