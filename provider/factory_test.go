package provider

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			p, err := New(name, Options{APIKey: "k"})
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != name {
				t.Errorf("Name() = %q", p.Name())
			}
			want := TypeBatch
			if IsStreaming(name) {
				want = TypeStreaming
			}
			if p.Type() != want {
				t.Errorf("Type() = %q, want %q", p.Type(), want)
			}
			if p.Active() {
				t.Error("new provider is active")
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"whisper.cpp", "k", ErrUnknownProvider},
		{"", "k", ErrUnknownProvider},
		{"groq", "", ErrMissingKey},
		{"deepgram", "", ErrMissingKey},
	}
	for _, tt := range tests {
		_, err := New(tt.name, Options{APIKey: tt.key})
		if !errors.Is(err, tt.want) {
			t.Errorf("New(%q) error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestNewNormalizesName(t *testing.T) {
	p, err := New("  Groq ", Options{APIKey: "k"})
	if err != nil || p.Name() != "groq" {
		t.Fatalf("New = %v, %v", p, err)
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&BackendError{Vendor: "groq", Op: "upload", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("BackendError does not unwrap")
	}
	if err.Error() != "groq upload: timeout" {
		t.Errorf("Error() = %q", err.Error())
	}
}
