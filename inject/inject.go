// Package inject delivers text and keystrokes to the focused application.
package inject

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"voicetype/commands"
	"voicetype/log"
)

// ErrInjection wraps every failure to deliver text.
var ErrInjection = errors.New("injection failed")

// Insertion modes.
const (
	ModeDirect    = "direct"
	ModeClipboard = "clipboard"
)

// Strategy delivers a piece of text to the focused application.
type Strategy interface {
	Name() string
	Inject(ctx context.Context, text string) error
}

// Injector applies parsed transcripts. It holds a lock for the whole plan
// so two transcripts never interleave in the focused window.
type Injector struct {
	mode      string
	direct    Strategy
	clipboard Strategy
	keys      Keyboard

	mu sync.Mutex
}

// New builds an injector. direct may be nil, in which case every call goes
// through the clipboard.
func New(mode string, direct, clipboard Strategy, keys Keyboard) *Injector {
	if mode != ModeDirect {
		mode = ModeClipboard
	}
	return &Injector{mode: mode, direct: direct, clipboard: clipboard, keys: keys}
}

func (in *Injector) Mode() string { return in.mode }

// Inject types text with the configured strategy. A direct failure falls
// back to the clipboard for this call only.
func (in *Injector) Inject(ctx context.Context, text string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.inject(ctx, text)
}

func (in *Injector) inject(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if in.mode == ModeDirect && in.direct != nil {
		err := in.direct.Inject(ctx, text)
		if err == nil {
			log.Injection(in.direct.Name(), len([]rune(text)), false)
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInjection, err)
		}
		log.Report("inject", in.direct.Name(), err)
		if err := in.clipboard.Inject(ctx, text); err != nil {
			return fmt.Errorf("%w: %s after %s: %v", ErrInjection, in.clipboard.Name(), in.direct.Name(), err)
		}
		log.Injection(in.clipboard.Name(), len([]rune(text)), true)
		return nil
	}
	if err := in.clipboard.Inject(ctx, text); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInjection, in.clipboard.Name(), err)
	}
	log.Injection(in.clipboard.Name(), len([]rune(text)), false)
	return nil
}

// Press synthesizes one named keystroke.
func (in *Injector) Press(key string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if err := in.keys.Press(key); err != nil {
		return fmt.Errorf("%w: key %s: %v", ErrInjection, key, err)
	}
	return nil
}

// Apply presses the plan's keys in match order, then types the leftover
// text followed by the processed literals as a second call. The leftover
// gets a trailing space only when nothing follows it: no keystroke and no
// literal, which already carries its own space.
func (in *Injector) Apply(ctx context.Context, plan commands.Plan) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	var errs []error
	for _, key := range plan.Keys {
		if err := in.keys.Press(key); err != nil {
			errs = append(errs, fmt.Errorf("%w: key %s: %v", ErrInjection, key, err))
		}
	}

	if plan.Remaining != "" {
		text := plan.Remaining
		if !plan.KeyAction && plan.Processed == "" {
			text += " "
		}
		if err := in.inject(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	if plan.Processed != "" {
		if err := in.inject(ctx, plan.Processed); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// settler is a strategy that may still owe the clipboard a restore.
type settler interface {
	Settle()
}

// Exclusive runs fn under the focus lock, after any pending clipboard
// restore has run, so fn sees the user's own clipboard and no injection
// can paste into the window until fn returns.
func (in *Injector) Exclusive(fn func() error) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if s, ok := in.clipboard.(settler); ok {
		s.Settle()
	}
	return fn()
}
