package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"webopt/internal/processor"
)

// Model renders optimize progress fed by processor.ProgressUpdate values.
type Model struct {
	updates       <-chan processor.ProgressUpdate
	started       time.Time
	width         int
	total         int
	processed     int
	variants      int
	failures      int
	probeFailures int
	bytes         int64
	lastFile      string
	formats       map[string]int
	done          bool
	interrupted   bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

func NewModel(updates <-chan processor.ProgressUpdate) Model {
	return Model{updates: updates, started: time.Now(), formats: map[string]int{}}
}

// Interrupted reports whether the user stopped the display with ctrl+c.
func (m Model) Interrupted() bool {
	return m.interrupted
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.apply(processor.ProgressUpdate(msg))
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.interrupted = true
			return m, tea.Interrupt
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) apply(u processor.ProgressUpdate) {
	m.total += u.TotalDelta
	m.processed += u.ProcessedDelta
	m.variants += u.VariantDelta
	m.failures += u.FailureDelta
	m.probeFailures += u.ProbeFailureDelta
	m.bytes += u.BytesDelta
	if u.File != "" {
		m.lastFile = u.File
	}
	if len(u.Formats) > 0 {
		// copy on write, Model values share the map
		formats := make(map[string]int, len(m.formats)+len(u.Formats))
		for f, n := range m.formats {
			formats[f] = n
		}
		for f, n := range u.Formats {
			formats[f] += n
		}
		m.formats = formats
	}
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.processed) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	images := labelStyle.Render(fmt.Sprintf("Images %d/%d", m.processed, m.total))
	if m.probeFailures > 0 {
		images += warnStyle.Render(fmt.Sprintf("  unreadable metadata:%d", m.probeFailures))
	}

	variants := labelStyle.Render(fmt.Sprintf("Variants %d (%s)", m.variants, humanize.IBytes(uint64(m.bytes))))
	if m.failures > 0 {
		variants += warnStyle.Render(fmt.Sprintf("  failed:%d", m.failures))
	}

	lines := []string{
		titleStyle.Render("webopt optimize"),
		barStyle.Render(renderBar(barWidth, ratio)) + dimStyle.Render(fmt.Sprintf(" %3.0f%%", ratio*100)),
		images,
		variants,
	}
	if line := formatCounts(m.formats); line != "" {
		lines = append(lines, dimStyle.Render(line))
	}
	if m.lastFile != "" {
		lines = append(lines, dimStyle.Render("Last: "+m.lastFile))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("Elapsed: %s", time.Since(m.started).Round(time.Second))))

	return strings.Join(lines, "\n")
}

// formatCounts lists written variants per output format in name order.
func formatCounts(formats map[string]int) string {
	if len(formats) == 0 {
		return ""
	}
	names := make([]string, 0, len(formats))
	for f := range formats {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = fmt.Sprintf("%s:%d", f, formats[f])
	}
	return strings.Join(parts, "  ")
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)
