package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kanaquiz/internal/model"
	"github.com/verte-zerg/kanaquiz/internal/quiz"
)

const (
	barWidth      = 40
	maxResultRows = 8
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	focusedButtonStyle = buttonStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	wrongButtonStyle   = buttonStyle.
				Foreground(lipgloss.Color("#FF4D4F")).
				BorderForeground(lipgloss.Color("#FF4D4F"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var body, hints string
	switch m.state.Stage {
	case quiz.StageIdle:
		body = m.viewSelection()
		hints = m.help.View(m.keys.selectionHelp())
	case quiz.StageCompleted:
		body = m.viewCompleted()
		hints = m.help.View(m.keys.completedHelp())
	default:
		body = m.viewQuiz()
		hints = m.help.View(m.keys.quizHelp())
	}
	footer := m.renderFooter()
	if footer != "" {
		hints = footer + "\n" + hints
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + hints
	}
	bodyHeight := max(m.height-lipgloss.Height(hints), 1)
	content := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hints)
}

func (m *Model) viewSelection() string {
	tabs := make([]string, 0, len(m.sel.scripts))
	for i, name := range m.sel.scripts {
		style := inactiveTabStyle
		if i == m.sel.script {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(name))
	}

	var b strings.Builder
	for i, g := range m.sel.groups {
		mark := "[ ]"
		if m.sel.checked[g] {
			mark = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, m.groupLabel(g))
		if i == m.sel.cursor {
			line = cursorStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	combos := "[ ]"
	if m.sel.combinations {
		combos = checkedStyle.Render("[x]")
	}
	b.WriteString(fmt.Sprintf("\n  %s combinations (%d groups)\n", combos, len(m.sel.combos)))

	hint := "Nothing checked plays every base group."
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("kanaquiz"),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		b.String(),
		mutedStyle.Render(hint),
	)
}

// groupLabel shows the group name with its glyphs, e.g. "ka  か き く け こ".
func (m *Model) groupLabel(name string) string {
	script, ok := m.table.Script(m.sel.scriptName())
	if !ok {
		return name
	}
	g, ok := script.Group(name)
	if !ok {
		return name
	}
	glyphs := make([]string, 0, len(g.Entries))
	for _, e := range g.Entries {
		glyphs = append(glyphs, e.Glyph)
	}
	return runewidth.FillRight(name, 4) + mutedStyle.Render(strings.Join(glyphs, " "))
}

func (m *Model) viewQuiz() string {
	s := m.state
	stage := 1
	if s.Direction == quiz.KanaToRomaji {
		stage = 2
	}
	header := mutedStyle.Render(fmt.Sprintf("Stage %d/2 · %s · %s", stage, directionLabel(s.Direction), s.Pool.Script))

	pct := 0.0
	if s.MaxProgress > 0 {
		pct = float64(s.Progress) / float64(s.MaxProgress)
	}
	bar := m.bar.ViewAs(pct) + mutedStyle.Render(fmt.Sprintf("  %d / %d", s.Progress, s.MaxProgress))

	if s.Stage == quiz.StageTransitioning {
		banner := titleStyle.Render("Stage complete!")
		next := mutedStyle.Render("Next: " + directionLabel(s.Direction))
		return lipgloss.JoinVertical(lipgloss.Center, header, "", bar, "", banner, next)
	}

	prompt := promptStyle.Render(s.Prompt())
	status := ""
	if s.WrongChoice != "" {
		status = wrongStyle.Render("Not quite, try again.")
	}
	return lipgloss.JoinVertical(lipgloss.Center, header, "", bar, "", prompt, "", m.renderChoices(), status)
}

func (m *Model) renderChoices() string {
	choices := m.state.Choices
	width := 0
	for _, c := range choices {
		width = max(width, runewidth.StringWidth(c))
	}
	buttons := make([]string, 0, len(choices))
	for i, c := range choices {
		label := fmt.Sprintf("%d  %s", i+1, runewidth.FillRight(c, width))
		style := buttonStyle
		switch {
		case c == m.state.WrongChoice:
			style = wrongButtonStyle
		case i == m.focus:
			style = focusedButtonStyle
		}
		buttons = append(buttons, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

func (m *Model) viewCompleted() string {
	sum := m.summary
	lines := []string{
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("Accuracy   %d%%", sum.Accuracy),
		fmt.Sprintf("Questions  %d", sum.TotalQuestions),
		fmt.Sprintf("Correct    %d", sum.Correct),
		fmt.Sprintf("Wrong      %d", sum.Wrong),
		fmt.Sprintf("Time       %s", sum.Duration.Round(time.Second)),
		"",
	}
	if len(m.results.Rows()) > 0 {
		lines = append(lines, mutedStyle.Render("Per kana, weakest first"), m.results.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.state.Stage == quiz.StageActive || m.state.Stage == quiz.StageTransitioning {
		segments = append(segments, fmt.Sprintf("Mistakes %d", m.state.WrongCount))
	}
	if m.hasLast {
		segments = append(segments,
			fmt.Sprintf("Last %.0f%%", m.lastAcc),
			fmt.Sprintf("All-time %.1f%%", m.allAcc))
	}
	if m.historyError {
		segments = append(segments, "history unavailable")
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func directionLabel(d quiz.Direction) string {
	if d == quiz.KanaToRomaji {
		return "kana → romaji"
	}
	return "romaji → kana"
}

// newResultsTable lists the session's kana outcomes, most missed first.
func newResultsTable(tally []model.KanaStats) table.Model {
	rows := make([]table.Row, 0, len(tally))
	ordered := make([]model.KanaStats, len(tally))
	copy(ordered, tally)
	sortMissedFirst(ordered)
	for _, ks := range ordered {
		rows = append(rows, table.Row{
			ks.Glyph,
			ks.Romaji,
			fmt.Sprintf("%d", ks.Correct),
			fmt.Sprintf("%d", ks.Incorrect),
		})
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Kana", Width: 4},
			{Title: "Romaji", Width: 6},
			{Title: "Right", Width: 5},
			{Title: "Wrong", Width: 5},
		}),
		table.WithRows(rows),
		table.WithHeight(min(len(rows), maxResultRows)+1),
	)
	styles := table.DefaultStyles()
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t
}

func sortMissedFirst(stats []model.KanaStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Incorrect > stats[j].Incorrect
	})
}
