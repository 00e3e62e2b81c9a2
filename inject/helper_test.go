//go:build !windows

package inject

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHelperWritesEscapedLines(t *testing.T) {
	out := &syncBuffer{}
	h := NewHelperStrategy("cat")
	h.SetOutput(out)
	defer h.Close()

	for _, text := range []string{"a+b", "line\nbreak"} {
		if err := h.Inject(context.Background(), text); err != nil {
			t.Fatal(err)
		}
	}
	want := "a{+}b\nline{ENTER}break\n"
	waitFor(t, "helper output", func() bool { return out.String() == want })
	if h.Starts() != 1 {
		t.Errorf("helper started %d times, want 1", h.Starts())
	}
}

func TestHelperRestartsAfterExit(t *testing.T) {
	out := &syncBuffer{}
	h := NewHelperStrategy("head", "-n", "1")
	h.SetOutput(out)
	defer h.Close()

	if err := h.Inject(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "helper exit", func() bool { return !h.Running() })

	if err := h.Inject(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "second line", func() bool { return out.String() == "first\nsecond\n" })
	if h.Starts() != 2 {
		t.Errorf("helper started %d times, want 2", h.Starts())
	}
}

func TestHelperMissing(t *testing.T) {
	h := &HelperStrategy{}
	if err := h.Inject(context.Background(), "x"); !errors.Is(err, ErrNoHelper) {
		t.Errorf("Inject() = %v, want ErrNoHelper", err)
	}
	h = NewHelperStrategy("/nonexistent/voicetype-helper")
	if err := h.Inject(context.Background(), "x"); err == nil {
		t.Error("Inject succeeded with a missing binary")
	}
}
