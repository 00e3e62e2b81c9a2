package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"voicetype/commands"
	"voicetype/log"
	"voicetype/rewrite"
)

// applier types a parsed transcript into the focused window, normally an
// *inject.Injector.
type applier interface {
	Apply(ctx context.Context, plan commands.Plan) error
	Mode() string
}

// rewriter is the part of *rewrite.Manager voice commands drive.
type rewriter interface {
	RewriteMode(ctx context.Context, requester, mode string, done func(rewrite.Result))
}

// dictation receives transcripts from the provider sink and handles them one
// at a time, in arrival order, off the provider's goroutines.
type dictation struct {
	table       *commands.Table // nil when voice commands are off
	formatting  bool
	out         applier
	rewriter    rewriter // may be nil
	rewriteMode string
	events      EventSink
	// pause is called for the pause_dictation mode token.
	pause func()

	in      chan string
	pending atomic.Int64
	done    chan struct{}
	once    sync.Once
}

type dictationConfig struct {
	Language      string
	Formatting    bool
	VoiceCommands bool
	RewriteMode   string
}

func newDictation(cfg dictationConfig, out applier, rw rewriter, events EventSink, pause func()) *dictation {
	d := &dictation{
		formatting:  cfg.Formatting,
		out:         out,
		rewriter:    rw,
		rewriteMode: cfg.RewriteMode,
		events:      events,
		pause:       pause,
		in:          make(chan string, 64),
		done:        make(chan struct{}),
	}
	if cfg.VoiceCommands {
		d.table = commands.ForLanguage(cfg.Language)
	}
	return d
}

// Sink is handed to providers. It blocks only when the backlog is full.
func (d *dictation) Sink(text string) {
	d.pending.Add(1)
	select {
	case d.in <- text:
	case <-d.done:
		d.pending.Add(-1)
	}
}

// flush waits until every transcript handed to Sink has been handled.
func (d *dictation) flush(ctx context.Context) {
	for d.pending.Load() > 0 {
		select {
		case <-time.After(10 * time.Millisecond):
		case <-ctx.Done():
			return
		case <-d.done:
			return
		}
	}
}

// run handles transcripts until ctx is cancelled or Close is called.
func (d *dictation) run(ctx context.Context) {
	for {
		select {
		case text := <-d.in:
			d.handle(ctx, text)
			d.pending.Add(-1)
		case <-ctx.Done():
			return
		case <-d.done:
			return
		}
	}
}

// handle normalizes, parses and injects one transcript.
func (d *dictation) handle(ctx context.Context, text string) {
	text = commands.Normalize(text, d.formatting)

	var plan commands.Plan
	if d.table != nil {
		p, ok := d.table.Parse(text)
		if !ok {
			return
		}
		plan = p
	} else {
		if text == "" {
			return
		}
		plan = commands.Plan{Remaining: text}
	}

	log.TranscriptionText(text)
	d.events.Transcription(text, plan)

	if !plan.Empty() {
		if err := d.out.Apply(ctx, plan); err != nil {
			log.Report("inject", "apply", err)
			d.events.Error(err)
		}
	}
	for _, m := range plan.Modes {
		d.mode(ctx, m)
	}
}

// mode acts on a mode token reported by the parser.
func (d *dictation) mode(ctx context.Context, token string) {
	switch token {
	case commands.ModePause:
		log.Info("voice_command: pause")
		if d.pause != nil {
			d.pause()
		}
	case commands.ModeGrammar, commands.ModeRewrite:
		if d.rewriter == nil {
			log.Warnf("voice_command: %s ignored, no rewrite backend", token)
			return
		}
		mode := d.rewriteMode
		if token == commands.ModeGrammar {
			mode = rewrite.DefaultMode
		}
		log.Infof("voice_command: %s (%s)", token, mode)
		d.rewriter.RewriteMode(ctx, "voice", mode, d.events.Rewrite)
	default:
		log.Warnf("voice_command: unknown mode %q", token)
	}
}

// Close stops run and unblocks pending Sink calls.
func (d *dictation) Close() {
	d.once.Do(func() { close(d.done) })
}
