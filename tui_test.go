package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"voicetype/rewrite"
)

func update(m tuiModel, msgs ...tea.Msg) tuiModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(tuiModel)
	}
	return m
}

func TestTUIRecordingCycle(t *testing.T) {
	m := update(tuiModel{},
		tea.WindowSizeMsg{Width: 100, Height: 30},
		RecordingStartMsg{},
		RecordingTickMsg{Duration: 1.5},
		LevelsMsg{Levels: []float64{0.1, 0.9}},
	)
	if m.state != tuiStateRecording {
		t.Fatal("not recording after RecordingStartMsg")
	}
	if m.peak != 0.9 {
		t.Errorf("peak = %v, want 0.9", m.peak)
	}
	if v := m.View(); !strings.Contains(v, "REC 1.5s") {
		t.Errorf("view missing recording status:\n%s", v)
	}

	m = update(m, RecordingStopMsg{}, TranscriptionMsg{Text: "hello", Keys: []string{"enter"}})
	if m.state != tuiStateIdle || m.levels != nil {
		t.Error("stop did not reset the meter")
	}
	v := m.View()
	for _, want := range []string{"STANDBY", "hello", "keys: enter", "#1"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestTUILevelsIgnoredWhileIdle(t *testing.T) {
	m := update(tuiModel{}, LevelsMsg{Levels: []float64{1}})
	if m.levels != nil || m.peak != 0 {
		t.Errorf("idle model took levels: %v", m.levels)
	}
}

func TestTUIRewriteAndError(t *testing.T) {
	m := update(tuiModel{}, tea.WindowSizeMsg{Width: 100, Height: 30},
		RewriteMsg{Result: rewrite.Result{Outcome: rewrite.OutcomeFailed, Err: errors.New("rate limited")}},
		ErrorMsg{Text: "no key"},
	)
	v := m.View()
	for _, want := range []string{"rewrite failed: rate limited", "no key"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestRenderBars(t *testing.T) {
	rows := renderBars([]float64{0, 1}, 0, true)
	if len(rows) != barHeight {
		t.Fatalf("rows = %d, want %d", len(rows), barHeight)
	}
	if !strings.Contains(rows[0], "█") {
		t.Errorf("full bucket does not reach the top row: %q", rows[0])
	}
	if idle := renderBars(nil, 0, false); len(idle) != barHeight {
		t.Errorf("idle rows = %d", len(idle))
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"hello wide world", 10, []string{"hello wide", "world"}},
		{"ñandú ñandú", 6, []string{"ñandú", "ñandú"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
