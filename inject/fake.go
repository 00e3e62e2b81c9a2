package inject

import (
	"context"
	"slices"
	"sync"
)

// FakeClipboard is an in-memory clipboard.
type FakeClipboard struct {
	mu       sync.Mutex
	text     string
	writes   []string
	ReadErr  error
	WriteErr error
}

func NewFakeClipboard(initial string) *FakeClipboard {
	return &FakeClipboard{text: initial}
}

func (f *FakeClipboard) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return "", f.ReadErr
	}
	return f.text, nil
}

func (f *FakeClipboard) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.text = text
	f.writes = append(f.writes, text)
	return nil
}

// Set changes the contents as another application would.
func (f *FakeClipboard) Set(text string) {
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
}

func (f *FakeClipboard) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *FakeClipboard) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.writes)
}

// FakeKeyboard records keystrokes. OnPress, if set, runs for each one.
type FakeKeyboard struct {
	mu      sync.Mutex
	keys    []string
	Err     error
	OnPress func(key string)
}

func (f *FakeKeyboard) Press(key string) error {
	if _, err := parseCombo(key); err != nil {
		return err
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	hook, err := f.OnPress, f.Err
	f.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return err
}

func (f *FakeKeyboard) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.keys)
}

// FakeStrategy records injected text.
type FakeStrategy struct {
	name  string
	mu    sync.Mutex
	texts []string
	Err   error
}

func NewFakeStrategy(name string) *FakeStrategy {
	return &FakeStrategy{name: name}
}

func (f *FakeStrategy) Name() string { return f.name }

func (f *FakeStrategy) Inject(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *FakeStrategy) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.texts)
}
