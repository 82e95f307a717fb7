package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webopt/internal/processor"
)

func TestModelAccumulatesUpdates(t *testing.T) {
	updates := make(chan processor.ProgressUpdate, 4)
	updates <- processor.ProgressUpdate{TotalDelta: 2}
	updates <- processor.ProgressUpdate{ProcessedDelta: 1, VariantDelta: 13, BytesDelta: 4096, File: "hero.jpg", Formats: map[string]int{"webp": 5, "avif": 4, "jpeg": 4}}
	close(updates)

	var model tea.Model = NewModel(updates)
	cmd := model.Init()
	for cmd != nil {
		msg := cmd()
		model, cmd = model.Update(msg)
		if _, done := msg.(doneMsg); done {
			break
		}
	}

	m := model.(Model)
	assert.Equal(t, 2, m.total)
	assert.Equal(t, 1, m.processed)
	assert.Equal(t, 13, m.variants)
	assert.EqualValues(t, 4096, m.bytes)
	assert.Equal(t, "hero.jpg", m.lastFile)
	assert.Equal(t, map[string]int{"webp": 5, "avif": 4, "jpeg": 4}, m.formats)
	assert.True(t, m.done)
	assert.False(t, m.Interrupted())
}

func TestModelViewShowsFileAndFormats(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	var model tea.Model = NewModel(nil)
	model, _ = model.Update(updateMsg{TotalDelta: 4})
	model, _ = model.Update(updateMsg{ProcessedDelta: 1, VariantDelta: 3, FailureDelta: 1, ProbeFailureDelta: 1, BytesDelta: 2048, File: "a.png", Formats: map[string]int{"webp": 2, "avif": 1}})
	model, _ = model.Update(updateMsg{ProcessedDelta: 1, VariantDelta: 1, File: "b.png", Formats: map[string]int{"webp": 1}})

	view := model.View()
	assert.Contains(t, view, "Images 2/4")
	assert.Contains(t, view, "unreadable metadata:1")
	assert.Contains(t, view, "Variants 4 (2.0 KiB)")
	assert.Contains(t, view, "failed:1")
	assert.Contains(t, view, "avif:1  webp:3")
	assert.Contains(t, view, "Last: b.png")
	assert.Contains(t, view, " 50%")
}

func TestModelCtrlCInterrupts(t *testing.T) {
	var model tea.Model = NewModel(nil)
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.InterruptMsg{}, cmd())
	assert.True(t, model.(Model).Interrupted())
	assert.Empty(t, model.View())
}

func TestModelIgnoresOtherKeys(t *testing.T) {
	var model tea.Model = NewModel(nil)
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Nil(t, cmd)
	assert.False(t, model.(Model).Interrupted())
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "[=====     ]", renderBar(10, 0.5))
	assert.Equal(t, "[          ]", renderBar(10, 0))
	assert.Equal(t, "[==========]", renderBar(10, 2))
}

func TestRenderSummaryAligns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderSummary([]SummaryRow{
		{Label: "Images", Value: "3"},
		{Label: "Variant failures", Value: "12", Warn: true},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, fmt.Sprintf("%-16s | %-2s", "Images", "3"), lines[1])
	assert.Equal(t, "Variant failures | 12", lines[2])
	assert.Equal(t, strings.Repeat("-", 21), lines[0])
}
