package rewrite

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"voicetype/inject"
)

type fakeBackend struct {
	mu      sync.Mutex
	out     string
	err     error
	block   int // calls that wait for cancellation
	texts   []string
	prompts []string
	called  chan struct{}
}

func newFakeBackend(out string) *fakeBackend {
	return &fakeBackend{out: out, called: make(chan struct{}, 8)}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.prompts = append(f.prompts, prompt)
	block := f.block > 0
	if block {
		f.block--
	}
	f.mu.Unlock()
	f.called <- struct{}{}
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

// desk simulates the focused application: ctrl+c copies the selection and
// ctrl+v records what was pasted.
type desk struct {
	clip      *inject.FakeClipboard
	keys      *inject.FakeKeyboard
	mu        sync.Mutex
	selection string
	pasted    []string
	onPaste   func()
}

func newDesk(clipboard, selection string) *desk {
	d := &desk{clip: inject.NewFakeClipboard(clipboard), selection: selection}
	d.keys = &inject.FakeKeyboard{OnPress: func(key string) {
		d.mu.Lock()
		defer d.mu.Unlock()
		switch key {
		case "ctrl+c":
			if d.selection != "" {
				d.clip.Set(d.selection)
			}
		case "ctrl+v":
			d.pasted = append(d.pasted, d.clip.Text())
			if d.onPaste != nil {
				d.onPaste()
			}
		}
	}}
	return d
}

func (d *desk) pastes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pasted)
}

func (d *desk) manager(b Backend) *Manager {
	return NewManager(Config{
		Clipboard:    d.clip,
		Keys:         d.keys,
		Settle:       time.Millisecond,
		RestoreDelay: 5 * time.Millisecond,
	}, b, "")
}

type results struct {
	mu  sync.Mutex
	got []Result
}

func (r *results) add(res Result) {
	r.mu.Lock()
	r.got = append(r.got, res)
	r.mu.Unlock()
}

func (r *results) outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, len(r.got))
	for i, res := range r.got {
		out[i] = res.Outcome
	}
	return out
}

func TestRewriteSuccess(t *testing.T) {
	d := newDesk("original", "teh text")
	b := newFakeBackend("the text")
	m := d.manager(b)
	var r results

	m.Rewrite(context.Background(), "hotkey", r.add)
	m.Wait()

	if got := r.outcomes(); !slices.Equal(got, []Outcome{OutcomeRewritten}) {
		t.Fatalf("outcomes = %v", got)
	}
	if got := d.pastes(); !slices.Equal(got, []string{"the text"}) {
		t.Errorf("pasted %q", got)
	}
	if got := d.clip.Text(); got != "original" {
		t.Errorf("clipboard = %q, want original", got)
	}
	want, _ := Prompt(DefaultMode)
	if b.texts[0] != "teh text" || b.prompts[0] != want {
		t.Errorf("backend got %q / %q", b.prompts[0], b.texts[0])
	}
	if m.InFlight("hotkey") {
		t.Error("request still in flight")
	}
}

func TestRewriteRestoresWithoutPasting(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		out       string
		err       error
		want      Outcome
		calls     int
	}{
		{"empty selection", "", "x", nil, OutcomeEmpty, 0},
		{"whitespace selection", "  \n", "x", nil, OutcomeEmpty, 0},
		{"backend error", "text", "", ErrRateLimited, OutcomeFailed, 1},
		{"empty result", "text", "   ", nil, OutcomeFailed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDesk("original", tt.selection)
			b := newFakeBackend(tt.out)
			b.err = tt.err
			m := d.manager(b)
			var r results

			m.Rewrite(context.Background(), "hotkey", r.add)
			m.Wait()

			if got := r.outcomes(); !slices.Equal(got, []Outcome{tt.want}) {
				t.Errorf("outcomes = %v, want [%s]", got, tt.want)
			}
			if b.calls() != tt.calls {
				t.Errorf("backend calls = %d, want %d", b.calls(), tt.calls)
			}
			if len(d.pastes()) != 0 {
				t.Errorf("pasted %q", d.pastes())
			}
			if got := d.clip.Text(); got != "original" {
				t.Errorf("clipboard = %q, want original", got)
			}
		})
	}
}

func TestRewriteRestoreIsUnconditional(t *testing.T) {
	d := newDesk("original", "text")
	d.onPaste = func() { d.clip.Set("copied meanwhile") }
	m := d.manager(newFakeBackend("better text"))

	m.Rewrite(context.Background(), "hotkey", nil)
	m.Wait()
	if got := d.clip.Text(); got != "original" {
		t.Errorf("clipboard = %q, want original", got)
	}
}

func TestAbortCancelsInFlight(t *testing.T) {
	d := newDesk("original", "text")
	b := newFakeBackend("unused")
	b.block = 1
	m := d.manager(b)
	var r results

	m.Rewrite(context.Background(), "hotkey", r.add)
	<-b.called
	if !m.InFlight("hotkey") {
		t.Fatal("request not in flight")
	}

	var aborted results
	m.Abort("hotkey", aborted.add)
	if got := d.clip.Text(); got != "original" {
		t.Errorf("clipboard after abort = %q, want original", got)
	}
	if got := aborted.outcomes(); !slices.Equal(got, []Outcome{OutcomeAborted}) {
		t.Errorf("abort outcomes = %v", got)
	}
	m.Wait()
	if got := r.outcomes(); !slices.Equal(got, []Outcome{OutcomeCancelled}) {
		t.Errorf("request outcomes = %v", got)
	}
	if len(d.pastes()) != 0 {
		t.Errorf("pasted %q", d.pastes())
	}
}

func TestAbortIdleSignalsDone(t *testing.T) {
	d := newDesk("original", "")
	m := d.manager(newFakeBackend(""))
	var r results
	m.Abort("nobody", r.add)
	if got := r.outcomes(); !slices.Equal(got, []Outcome{OutcomeAborted}) {
		t.Errorf("outcomes = %v", got)
	}
}

func TestNewRequestSupersedesPrevious(t *testing.T) {
	d := newDesk("original", "text")
	b := newFakeBackend("rewritten")
	b.block = 1
	m := d.manager(b)
	var first, second results

	m.Rewrite(context.Background(), "hotkey", first.add)
	<-b.called
	m.Rewrite(context.Background(), "hotkey", second.add)
	m.Wait()

	if got := first.outcomes(); !slices.Equal(got, []Outcome{OutcomeCancelled}) {
		t.Errorf("first outcomes = %v", got)
	}
	if got := second.outcomes(); !slices.Equal(got, []Outcome{OutcomeRewritten}) {
		t.Errorf("second outcomes = %v", got)
	}
	if got := d.pastes(); !slices.Equal(got, []string{"rewritten"}) {
		t.Errorf("pasted %q", got)
	}
	if got := d.clip.Text(); got != "original" {
		t.Errorf("clipboard = %q, want original", got)
	}
}

func TestRequestersAreIndependent(t *testing.T) {
	d := newDesk("original", "text")
	b := newFakeBackend("x")
	b.block = 1
	m := d.manager(b)
	var r results

	m.Rewrite(context.Background(), "a", r.add)
	<-b.called
	m.Abort("b", nil)
	if !m.InFlight("a") {
		t.Error("abort for b cancelled a")
	}
	m.Abort("a", nil)
	m.Wait()
}

func TestRewriteCancelledContext(t *testing.T) {
	d := newDesk("original", "text")
	b := newFakeBackend("x")
	m := d.manager(b)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var r results
	m.Rewrite(ctx, "hotkey", r.add)
	m.Wait()
	if got := r.outcomes(); !slices.Equal(got, []Outcome{OutcomeCancelled}) {
		t.Errorf("outcomes = %v", got)
	}
	if len(d.clip.Writes()) != 0 || b.calls() != 0 {
		t.Error("cancelled request touched the clipboard or backend")
	}
}

func TestPrompt(t *testing.T) {
	for _, mode := range Modes() {
		if p, err := Prompt(mode); err != nil || p == "" {
			t.Errorf("Prompt(%q) = %q, %v", mode, p, err)
		}
	}
	if len(Modes()) != 5 {
		t.Errorf("Modes() = %v", Modes())
	}
	if _, err := Prompt("pirate"); err == nil {
		t.Error("unknown mode accepted")
	}
	if p, _ := Prompt(""); p != presets[DefaultMode] {
		t.Error("empty mode is not grammar correction")
	}
	var unknown error
	d := newDesk("original", "text")
	m := NewManager(Config{Clipboard: d.clip, Keys: d.keys}, newFakeBackend("x"), "pirate")
	m.Rewrite(context.Background(), "x", func(r Result) { unknown = r.Err })
	m.Wait()
	if unknown == nil || errors.Is(unknown, context.Canceled) {
		t.Errorf("unknown mode error = %v", unknown)
	}
}
