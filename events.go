package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"voicetype/commands"
	"voicetype/rewrite"
)

// EventSink abstracts the display layer so the Bubble Tea TUI and the
// headless modes receive the same recording/transcription events.
type EventSink interface {
	RecordingStart()
	RecordingStop()
	RecordingTick(duration float64)
	Levels(levels []float64)
	Transcription(text string, plan commands.Plan)
	Rewrite(res rewrite.Result)
	ModeLine(text string)
	DeviceLine(text string)
	Error(err error)
}

// lineSink prints events as plain lines. -test mode and the daemon use it.
type lineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func newLineSink(w io.Writer) *lineSink {
	return &lineSink{w: w}
}

func (s *lineSink) printf(format string, args ...any) {
	if s.w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format+"\n", args...)
}

func (s *lineSink) RecordingStart()          { s.printf("RECORDING_START") }
func (s *lineSink) RecordingStop()           { s.printf("RECORDING_STOP") }
func (s *lineSink) RecordingTick(float64)    {}
func (s *lineSink) Levels([]float64)         {}
func (s *lineSink) ModeLine(text string)     { s.printf("MODE %s", text) }
func (s *lineSink) DeviceLine(text string)   { s.printf("DEVICE %s", text) }
func (s *lineSink) Error(err error)          { s.printf("ERROR %v", err) }
func (s *lineSink) Rewrite(r rewrite.Result) { s.printf("REWRITE %s %s", r.Outcome, r.Text) }

func (s *lineSink) Transcription(text string, plan commands.Plan) {
	s.printf("TRANSCRIPT %s", text)
	if len(plan.Keys) > 0 {
		s.printf("KEYS %s", strings.Join(plan.Keys, ","))
	}
	for _, m := range plan.Modes {
		s.printf("MODE_TOKEN %s", m)
	}
}

// tuiSink forwards events to the running Bubble Tea program.
type tuiSink struct{}

func (tuiSink) RecordingStart()          { tuiSend(RecordingStartMsg{}) }
func (tuiSink) RecordingStop()           { tuiSend(RecordingStopMsg{}) }
func (tuiSink) RecordingTick(d float64)  { tuiSend(RecordingTickMsg{Duration: d}) }
func (tuiSink) Levels(levels []float64)  { tuiSend(LevelsMsg{Levels: levels}) }
func (tuiSink) ModeLine(text string)     { tuiSend(ModeLineMsg{Text: text}) }
func (tuiSink) DeviceLine(text string)   { tuiSend(DeviceLineMsg{Text: text}) }
func (tuiSink) Error(err error)          { tuiSend(ErrorMsg{Text: err.Error()}) }
func (tuiSink) Rewrite(r rewrite.Result) { tuiSend(RewriteMsg{Result: r}) }

func (tuiSink) Transcription(text string, plan commands.Plan) {
	tuiSend(TranscriptionMsg{Text: text, Keys: plan.Keys, Modes: plan.Modes})
}
