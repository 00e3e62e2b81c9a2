package inject

import (
	"context"
	"errors"
	"slices"
	"testing"

	"voicetype/commands"
)

func TestApplySplitsTextAndKeys(t *testing.T) {
	plan, _ := commands.ForLanguage("en").Parse("hello world period new line")

	direct := NewFakeStrategy("direct")
	clip := NewFakeStrategy("clipboard")
	keys := &FakeKeyboard{}
	in := New(ModeDirect, direct, clip, keys)

	if err := in.Apply(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if got, want := direct.Texts(), []string{"hello world", ". "}; !slices.Equal(got, want) {
		t.Errorf("injected %q, want %q", got, want)
	}
	if got := keys.Keys(); !slices.Equal(got, []string{"enter"}) {
		t.Errorf("keys = %v, want [enter]", got)
	}
	if len(clip.Texts()) != 0 {
		t.Errorf("clipboard used: %q", clip.Texts())
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		texts []string
		keys  []string
	}{
		{"trailing space without keys", "hello world", []string{"hello world "}, nil},
		{"delete that", "foo bar delete that delete that hello", []string{"foo "}, nil},
		{"processed only", "period", []string{". "}, nil},
		{"keys only", "press enter", nil, []string{"enter"}},
		{"modes only", "stop listening", nil, nil},
		{"literal and leftover", "really question mark", []string{"really", "? "}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, _ := commands.ForLanguage("en").Parse(tt.input)
			clip := NewFakeStrategy("clipboard")
			keys := &FakeKeyboard{}
			in := New(ModeClipboard, nil, clip, keys)
			if err := in.Apply(context.Background(), plan); err != nil {
				t.Fatal(err)
			}
			if got := clip.Texts(); !slices.Equal(got, tt.texts) {
				t.Errorf("injected %q, want %q", got, tt.texts)
			}
			if got := keys.Keys(); !slices.Equal(got, tt.keys) {
				t.Errorf("keys = %v, want %v", got, tt.keys)
			}
		})
	}
}

func TestDirectFallsBackToClipboard(t *testing.T) {
	direct := NewFakeStrategy("direct")
	direct.Err = errors.New("helper died")
	clip := NewFakeStrategy("clipboard")
	in := New(ModeDirect, direct, clip, &FakeKeyboard{})

	if err := in.Inject(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if got := clip.Texts(); !slices.Equal(got, []string{"hi"}) {
		t.Errorf("clipboard got %q", got)
	}

	direct.Err = nil
	if err := in.Inject(context.Background(), "again"); err != nil {
		t.Fatal(err)
	}
	if got := direct.Texts(); !slices.Equal(got, []string{"again"}) {
		t.Errorf("fallback was not per call: direct got %q", got)
	}
}

func TestInjectErrors(t *testing.T) {
	direct := NewFakeStrategy("direct")
	direct.Err = ErrNoHelper
	clip := NewFakeStrategy("clipboard")
	clip.Err = errors.New("no display")
	in := New(ModeDirect, direct, clip, &FakeKeyboard{})

	err := in.Inject(context.Background(), "hi")
	if !errors.Is(err, ErrInjection) {
		t.Errorf("Inject() = %v, want ErrInjection", err)
	}

	keys := &FakeKeyboard{Err: errors.New("no uinput")}
	in = New(ModeClipboard, nil, NewFakeStrategy("clipboard"), keys)
	plan, _ := commands.ForLanguage("en").Parse("hello press tab")
	err = in.Apply(context.Background(), plan)
	if !errors.Is(err, ErrInjection) {
		t.Errorf("Apply() = %v, want ErrInjection", err)
	}
}

func TestNewDefaultsToClipboard(t *testing.T) {
	if got := New("bogus", nil, NewFakeStrategy("clipboard"), &FakeKeyboard{}).Mode(); got != ModeClipboard {
		t.Errorf("Mode() = %q", got)
	}
}
