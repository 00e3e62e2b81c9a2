package main

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"voicetype/commands"
	"voicetype/rewrite"
)

type recordingApplier struct {
	mu    sync.Mutex
	plans []commands.Plan
	err   error
}

func (r *recordingApplier) Apply(_ context.Context, plan commands.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, plan)
	return r.err
}

func (r *recordingApplier) Mode() string { return "clipboard" }

func (r *recordingApplier) Plans() []commands.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.plans)
}

type recordingRewriter struct {
	mu    sync.Mutex
	modes []string
}

func (r *recordingRewriter) RewriteMode(_ context.Context, requester, mode string, done func(rewrite.Result)) {
	r.mu.Lock()
	r.modes = append(r.modes, requester+":"+mode)
	r.mu.Unlock()
	done(rewrite.Result{Outcome: rewrite.OutcomeRewritten, Text: "fixed"})
}

func TestDictationHandle(t *testing.T) {
	tests := []struct {
		name          string
		formatting    bool
		voiceCommands bool
		input         string
		want          []commands.Plan
	}{
		{
			name:          "plain text",
			formatting:    true,
			voiceCommands: true,
			input:         "hello world",
			want:          []commands.Plan{{Remaining: "hello world"}},
		},
		{
			name:          "keystroke command",
			formatting:    true,
			voiceCommands: true,
			input:         "hello new line",
			want:          []commands.Plan{{Remaining: "hello", Keys: []string{"enter"}, KeyAction: true}},
		},
		{
			name:          "commands disabled",
			formatting:    true,
			voiceCommands: false,
			input:         "hello new line",
			want:          []commands.Plan{{Remaining: "hello new line"}},
		},
		{
			name:          "formatting disabled strips punctuation",
			formatting:    false,
			voiceCommands: false,
			input:         "Hello, World!",
			want:          []commands.Plan{{Remaining: "hello world"}},
		},
		{
			name:          "blank transcript",
			formatting:    true,
			voiceCommands: true,
			input:         "   ",
		},
		{
			name:          "blank after normalization",
			formatting:    false,
			voiceCommands: false,
			input:         "...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &recordingApplier{}
			d := newDictation(dictationConfig{
				Language:      "en",
				Formatting:    tt.formatting,
				VoiceCommands: tt.voiceCommands,
			}, out, nil, newLineSink(nil), nil)
			d.handle(context.Background(), tt.input)

			got := out.Plans()
			if len(got) != len(tt.want) {
				t.Fatalf("applied %d plans, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				g, w := got[i], tt.want[i]
				if g.Remaining != w.Remaining || g.Processed != w.Processed || g.KeyAction != w.KeyAction || !slices.Equal(g.Keys, w.Keys) {
					t.Errorf("plan %d = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestDictationModes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		paused  bool
		rewrite []string
	}{
		{name: "pause", input: "stop dictation", paused: true},
		{name: "grammar uses the default preset", input: "correct grammar", rewrite: []string{"voice:" + rewrite.DefaultMode}},
		{name: "rewrite uses the configured preset", input: "press rewrite", rewrite: []string{"voice:casual"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &recordingApplier{}
			rw := &recordingRewriter{}
			var buf bytes.Buffer
			paused := false
			d := newDictation(dictationConfig{
				Language:      "en",
				Formatting:    true,
				VoiceCommands: true,
				RewriteMode:   "casual",
			}, out, rw, newLineSink(&buf), func() { paused = true })
			d.handle(context.Background(), tt.input)

			if paused != tt.paused {
				t.Errorf("paused = %v, want %v", paused, tt.paused)
			}
			if !slices.Equal(rw.modes, tt.rewrite) {
				t.Errorf("rewrites = %v, want %v", rw.modes, tt.rewrite)
			}
			if n := len(out.Plans()); n != 0 {
				t.Errorf("mode-only transcript applied %d plans", n)
			}
			if !strings.Contains(buf.String(), "MODE_TOKEN") {
				t.Errorf("mode token not reported:\n%s", buf.String())
			}
		})
	}
}

func TestDictationApplyErrorReported(t *testing.T) {
	out := &recordingApplier{err: errors.New("no focus")}
	var buf bytes.Buffer
	d := newDictation(dictationConfig{Language: "en", Formatting: true}, out, nil, newLineSink(&buf), nil)
	d.handle(context.Background(), "hello")
	if !strings.Contains(buf.String(), "ERROR no focus") {
		t.Errorf("error not reported:\n%s", buf.String())
	}
}

func TestDictationRunPreservesOrder(t *testing.T) {
	out := &recordingApplier{}
	d := newDictation(dictationConfig{Language: "en", Formatting: true}, out, nil, newLineSink(nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.run(ctx)

	for _, s := range []string{"one", "two", "three"} {
		d.Sink(s)
	}
	flushCtx, flushCancel := context.WithTimeout(ctx, 2*time.Second)
	defer flushCancel()
	d.flush(flushCtx)

	var got []string
	for _, p := range out.Plans() {
		got = append(got, p.Remaining)
	}
	if want := []string{"one", "two", "three"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestDictationSinkAfterClose(t *testing.T) {
	d := newDictation(dictationConfig{}, &recordingApplier{}, nil, newLineSink(nil), nil)
	d.Close()
	done := make(chan struct{})
	go func() {
		for range 100 {
			d.Sink("dropped")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sink blocked after Close")
	}
	d.flush(context.Background())
}
