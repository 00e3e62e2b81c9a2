package inject

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestClipboardStrategyRestores(t *testing.T) {
	clip := NewFakeClipboard("original")
	keys := &FakeKeyboard{}
	var atPaste string
	keys.OnPress = func(string) { atPaste = clip.Text() }
	s := NewClipboardStrategy(clip, keys, 10*time.Millisecond)

	if err := s.Inject(context.Background(), "dictated"); err != nil {
		t.Fatal(err)
	}
	if atPaste != "dictated" {
		t.Errorf("clipboard at paste = %q", atPaste)
	}
	if got := keys.Keys(); !slices.Equal(got, []string{"ctrl+v"}) {
		t.Errorf("keys = %v", got)
	}
	s.Wait()
	if got := clip.Text(); got != "original" {
		t.Errorf("clipboard after restore = %q, want original", got)
	}
}

func TestClipboardStrategySkipsRestoreWhenChanged(t *testing.T) {
	clip := NewFakeClipboard("original")
	s := NewClipboardStrategy(clip, &FakeKeyboard{}, 20*time.Millisecond)

	if err := s.Inject(context.Background(), "dictated"); err != nil {
		t.Fatal(err)
	}
	clip.Set("user copied this")
	s.Wait()
	if got := clip.Text(); got != "user copied this" {
		t.Errorf("clipboard = %q, restore clobbered a newer copy", got)
	}
}

func TestClipboardStrategyBackToBack(t *testing.T) {
	clip := NewFakeClipboard("original")
	s := NewClipboardStrategy(clip, &FakeKeyboard{}, 50*time.Millisecond)

	for _, text := range []string{"hello world", ". "} {
		if err := s.Inject(context.Background(), text); err != nil {
			t.Fatal(err)
		}
	}
	s.Wait()
	if got := clip.Text(); got != "original" {
		t.Errorf("clipboard = %q, want original", got)
	}
}

func TestClipboardStrategyPasteFailure(t *testing.T) {
	clip := NewFakeClipboard("original")
	keys := &FakeKeyboard{Err: errors.New("no keyboard")}
	s := NewClipboardStrategy(clip, keys, time.Hour)

	if err := s.Inject(context.Background(), "dictated"); err == nil {
		t.Fatal("Inject succeeded without a paste keystroke")
	}
	if got := clip.Text(); got != "original" {
		t.Errorf("clipboard = %q, want immediate restore", got)
	}
}

func TestClipboardStrategyCancelled(t *testing.T) {
	clip := NewFakeClipboard("original")
	s := NewClipboardStrategy(clip, &FakeKeyboard{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Inject(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Inject() = %v", err)
	}
	if len(clip.Writes()) != 0 {
		t.Errorf("clipboard written: %q", clip.Writes())
	}
}

func TestExclusiveSettlesPendingRestore(t *testing.T) {
	clip := NewFakeClipboard("original")
	keys := &FakeKeyboard{}
	s := NewClipboardStrategy(clip, keys, 30*time.Millisecond)
	in := New(ModeClipboard, nil, s, keys)

	if err := in.Inject(context.Background(), "dictated"); err != nil {
		t.Fatal(err)
	}
	var seen string
	err := in.Exclusive(func() error {
		seen = clip.Text()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen != "original" {
		t.Errorf("exclusive section saw %q, want the restored clipboard", seen)
	}
}

func TestSettleIdle(t *testing.T) {
	s := NewClipboardStrategy(NewFakeClipboard(""), &FakeKeyboard{}, time.Hour)
	done := make(chan struct{})
	go func() {
		s.Settle()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Settle blocked with nothing pending")
	}
}
