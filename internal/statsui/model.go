// Package statsui provides the Bubble Tea stats browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanaquiz/internal/model"
	"github.com/verte-zerg/kanaquiz/internal/stats"
)

const (
	tabOverview = iota
	tabKanaTable
	tabKanaCurves
)

const (
	curveKana     = 5
	fallbackWidth = 80
	dateLayout    = "2006-01-02"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Source is the history the browser reads from.
type Source interface {
	stats.SessionSource
	ListKanaStatsForSessions(ctx context.Context, sessionIDs, glyphs []string) (map[string]map[string]model.KanaStats, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src Source
	cfg model.StatsConfig

	report     stats.Report
	perSession map[string]map[string]model.KanaStats
	errMsg     string
	curveErr   string

	tabs      []string
	active    int
	viewports []viewport.Model
	kanaTable table.Model

	width  int
	height int

	filterMode  bool
	inputs      []textinput.Model
	inputIndex  int
	filterError string

	glyphs       []string
	glyphsCustom bool
	pickMode     bool
	picker       textinput.Model
}

// NewModel loads the report for cfg and returns the browser on the overview tab.
func NewModel(src Source, cfg model.StatsConfig) *Model {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	m := &Model{
		src:  src,
		cfg:  cfg,
		tabs: []string{"Overview", "Kana Table", "Kana Curves"},
	}
	if len(cfg.Kana) > 0 {
		m.glyphs = cfg.Kana
		m.glyphsCustom = true
	}
	m.inputs = []textinput.Model{
		newInput("Script: "),
		newInput("Since (YYYY-MM-DD): "),
		newInput("Last: "),
		newInput("Window: "),
	}
	m.picker = newInput("Kana: ")
	m.picker.Placeholder = "ぬ め きゃ"
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.kanaTable = table.New(table.WithColumns(kanaColumns()))
	m.kanaTable.SetStyles(kanaTableStyles())
	m.refresh()
	return m
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.renderTabs()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.filterMode:
			return m, m.updateFilter(msg)
		case m.pickMode:
			return m, m.updatePicker(msg)
		}
		return m, m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return tea.ClearScreen
	case "right", "l", "tab":
		m.moveTab(1)
		return tea.ClearScreen
	case "=", "+":
		m.cfg.Window = nextWindow(m.cfg.Window)
		m.refresh()
	case "-":
		m.cfg.Window = prevWindow(m.cfg.Window)
		m.refresh()
	case "/":
		m.filterMode = true
		m.filterError = ""
		m.fillInputs()
		return m.focusInput(0)
	case "enter":
		if m.active == tabKanaCurves {
			m.pickMode = true
			m.picker.SetValue(strings.Join(m.glyphs, " "))
			return m.picker.Focus()
		}
	case "g", "home":
		if m.active == tabKanaTable {
			m.kanaTable.GotoTop()
		} else {
			m.viewports[m.active].GotoTop()
		}
	case "G", "end":
		if m.active == tabKanaTable {
			m.kanaTable.GotoBottom()
		} else {
			m.viewports[m.active].GotoBottom()
		}
	default:
		var cmd tea.Cmd
		if m.active == tabKanaTable {
			m.kanaTable, cmd = m.kanaTable.Update(msg)
		} else {
			m.viewports[m.active], cmd = m.viewports[m.active].Update(msg)
		}
		return cmd
	}
	return nil
}

func (m *Model) moveTab(delta int) {
	n := len(m.tabs)
	m.active = (m.active + delta + n) % n
	if m.active == tabKanaTable {
		m.kanaTable.Focus()
	} else {
		m.kanaTable.Blur()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.pickMode {
		return m.renderPicker()
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.bodyHeight()
	body := fit(m.renderBody(), m.width, bodyHeight)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.renderFooter())
	return max(h, 1)
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = h
	}
	m.kanaTable.SetWidth(m.width)
	// Header row and its rule take two lines.
	m.kanaTable.SetHeight(max(h-2, 1))
	for i := range m.inputs {
		m.inputs[i].Width = max(10, m.width-lipgloss.Width(m.inputs[i].Prompt)-2)
	}
	m.picker.Width = max(10, modalWidth(m.width)-6-lipgloss.Width(m.picker.Prompt))
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		style := inactiveNavStyle
		if i == m.active {
			style = activeNavStyle
		}
		parts = append(parts, style.Render(tab))
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(truncate(m.settingsLine(), m.width))
}

func (m *Model) settingsLine() string {
	script := m.cfg.Script
	if script == "" {
		script = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: script=%s  since=%s  last=%s  window=%d", script, since, last, m.cfg.Window)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.active == tabKanaCurves {
		help = "Nav: left/right  Pick kana: enter  Window: -/=  Settings: /  Quit: q"
	}
	line := headerStyle.Render(truncate(help, m.width))
	if m.errMsg != "" {
		line += "\n" + errorStyle.Render(truncate(m.errMsg, m.width))
	}
	return line
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.inputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.active == tabKanaTable && m.errMsg == "" {
		switch {
		case len(m.report.Sessions) == 0:
			return "No sessions found."
		case len(m.kanaTable.Rows()) == 0:
			return "No kana stats found."
		}
		return m.kanaTable.View()
	}
	return m.viewports[m.active].View()
}

func (m *Model) renderPicker() string {
	lines := []string{
		cardValueStyle.Render("Pick Kana"),
		m.picker.View(),
		headerStyle.Render("Separate kana with spaces; empty shows the most practiced."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// refresh reloads the report for the current settings and rebuilds every tab.
func (m *Model) refresh() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
		m.report = stats.Report{}
		m.perSession = nil
		m.kanaTable.SetRows(nil)
		m.renderTabs()
		return
	}
	m.errMsg = ""
	m.report = report
	if !m.glyphsCustom {
		m.glyphs = stats.TopKanaByFrequency(report.KanaAll, curveKana)
	}
	m.kanaTable.SetRows(kanaRows(report.KanaAll))
	m.loadCurves()
	m.layout()
	m.renderTabs()
}

func (m *Model) loadCurves() {
	m.curveErr = ""
	m.perSession = nil
	if len(m.report.Sessions) == 0 || len(m.glyphs) == 0 {
		return
	}
	ids := make([]string, len(m.report.Sessions))
	for i, s := range m.report.Sessions {
		ids[i] = s.SessionID
	}
	perSession, err := m.src.ListKanaStatsForSessions(context.Background(), ids, m.glyphs)
	if err != nil {
		m.curveErr = err.Error()
		return
	}
	m.perSession = perSession
}

func (m *Model) renderTabs() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabKanaCurves].SetContent(m.renderCurves(width))
}

func (m *Model) renderOverview(width int) string {
	sessions := m.report.Sessions
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var totalAcc, totalWrong float64
	var totalMs int64
	best := sessions[0].Accuracy
	for _, s := range sessions {
		totalAcc += float64(s.Accuracy)
		totalWrong += float64(s.WrongCount)
		totalMs += s.DurationMs
		best = max(best, s.Accuracy)
	}
	n := float64(len(sessions))
	avgDuration := time.Duration(float64(totalMs)/n) * time.Millisecond
	cards := []string{
		metricCard("Sessions", strconv.Itoa(len(sessions))),
		metricCard("Avg Accuracy", fmt.Sprintf("%.1f%%", totalAcc/n)),
		metricCard("Best", fmt.Sprintf("%d%%", best)),
		metricCard("Avg Mistakes", fmt.Sprintf("%.1f", totalWrong/n)),
		metricCard("Avg Time", avgDuration.Round(time.Second).String()),
	}
	var summary string
	if width < fallbackWidth {
		summary = lipgloss.JoinVertical(lipgloss.Left, cards...)
	} else {
		summary = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...))
	}

	var buf bytes.Buffer
	if err := stats.RenderCurve(&buf, sessions, m.cfg.Window, width, true); err != nil {
		return fmt.Sprintf("Failed to render curve: %v", err)
	}
	out := summary + "\n\n" + buf.String()
	if weak := stats.SelectWeakKana(m.report.KanaWindow, curveKana); len(weak) > 0 {
		labels := make([]string, 0, len(weak))
		for _, agg := range weak {
			labels = append(labels, fmt.Sprintf("%s %s %.0f%%", agg.Glyph, agg.Romaji, stats.KanaAccuracy(agg)*100))
		}
		out += "Weak kana: " + strings.Join(labels, ", ")
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) renderCurves(width int) string {
	switch {
	case len(m.report.Sessions) == 0:
		return "No sessions found."
	case m.curveErr != "":
		return "Failed to load kana curves: " + m.curveErr
	case len(m.glyphs) == 0:
		return "No kana selected. Press Enter to pick kana."
	}
	var buf bytes.Buffer
	if err := stats.RenderKanaCurves(&buf, m.report.Sessions, m.perSession, m.glyphs, m.cfg.Window, width, true); err != nil {
		return fmt.Sprintf("Failed to render kana curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func kanaColumns() []table.Column {
	return []table.Column{
		{Title: "Kana", Width: 4},
		{Title: "Romaji", Width: 6},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Wrong", Width: 5},
		{Title: "Total", Width: 5},
	}
}

func kanaRows(aggs []model.KanaAggregate) []table.Row {
	ranked := stats.MostPracticed(aggs, 0)
	rows := make([]table.Row, 0, len(ranked))
	for _, agg := range ranked {
		rows = append(rows, table.Row{
			agg.Glyph,
			agg.Romaji,
			fmt.Sprintf("%.2f%%", stats.KanaAccuracy(agg)*100),
			strconv.Itoa(agg.Correct),
			strconv.Itoa(agg.Incorrect),
			strconv.Itoa(agg.Correct + agg.Incorrect),
		})
	}
	return rows
}

func kanaTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) fillInputs() {
	m.inputs[0].SetValue(m.cfg.Script)
	m.inputs[1].SetValue("")
	if m.cfg.Since != nil {
		m.inputs[1].SetValue(m.cfg.Since.Format(dateLayout))
	}
	m.inputs[2].SetValue("")
	if m.cfg.Last > 0 {
		m.inputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.inputs[3].SetValue(strconv.Itoa(m.cfg.Window))
}

func (m *Model) focusInput(idx int) tea.Cmd {
	n := len(m.inputs)
	m.inputIndex = (idx%n + n) % n
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.inputIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		return nil
	case tea.KeyTab, tea.KeyDown:
		return m.focusInput(m.inputIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusInput(m.inputIndex - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
	return cmd
}

func (m *Model) parseFilter() (model.StatsConfig, error) {
	cfg := m.cfg
	cfg.Script = strings.ToLower(strings.TrimSpace(m.inputs[0].Value()))

	cfg.Since = nil
	if v := strings.TrimSpace(m.inputs[1].Value()); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}

	cfg.Last = 0
	if v := strings.TrimSpace(m.inputs[2].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or a positive integer)")
		}
		cfg.Last = n
	}

	cfg.Window = 1
	if v := strings.TrimSpace(m.inputs[3].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("invalid window (use an integer >= 1)")
		}
		cfg.Window = n
	}
	return cfg, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.pickMode = false
		m.picker.Blur()
		return nil
	case tea.KeyEnter:
		m.pickMode = false
		m.picker.Blur()
		m.glyphs = splitGlyphs(m.picker.Value())
		m.glyphsCustom = len(m.glyphs) > 0
		if !m.glyphsCustom {
			m.glyphs = stats.TopKanaByFrequency(m.report.KanaAll, curveKana)
		}
		m.loadCurves()
		m.renderTabs()
		return nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

// splitGlyphs splits picker input into kana. Separators are optional: a small kana such as
// ゃ or ァ joins the glyph before it, so "きゃぬ" yields きゃ and ぬ.
func splitGlyphs(input string) []string {
	var out []string
	for _, field := range strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '、' || r == ' ' || r == '　' || r == '\t'
	}) {
		start := len(out)
		for _, r := range field {
			if strings.ContainsRune(smallKana, r) && len(out) > start {
				out[len(out)-1] += string(r)
				continue
			}
			out = append(out, string(r))
		}
	}
	return out
}

const smallKana = "ぁぃぅぇぉゃゅょゎァィゥェォャュョヮ"

func nextWindow(n int) int {
	return (max(n, 0)/5 + 1) * 5
}

func prevWindow(n int) int {
	if n <= 5 {
		return 1
	}
	return (n - 1) / 5 * 5
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func fit(s string, width, height int) string {
	return lipgloss.NewStyle().MaxWidth(width).Height(height).MaxHeight(height).Render(s)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
