package provider

import (
	"fmt"
	"slices"
	"strings"
)

// Names lists every vendor New accepts, in menu order.
var Names = []string{"groq", "gemini", "mistral", "sambanova", "fireworks", "deepgram", "cartesia"}

// IsStreaming reports whether name is a streaming vendor.
func IsStreaming(name string) bool {
	switch strings.ToLower(name) {
	case "deepgram", "cartesia":
		return true
	}
	return false
}

// New builds a fresh provider for one session.
func New(name string, opts Options) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(Names, name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingKey)
	}

	if IsStreaming(name) {
		if name == "deepgram" {
			return NewDeepgram(opts), nil
		}
		return NewCartesia(opts), nil
	}

	var (
		b   *Batch
		err error
	)
	switch name {
	case "groq":
		b, err = NewGroq(opts)
	case "gemini":
		b, err = NewGemini(opts)
	case "mistral":
		b, err = NewMistral(opts)
	case "sambanova":
		b, err = NewSambaNova(opts)
	case "fireworks":
		b, err = NewFireworks(opts)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
