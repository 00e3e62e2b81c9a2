// Package doctor runs the -doctor diagnostics: hotkey access, microphone
// level, API keys, keystroke synthesis and clipboard round-trip.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"voicetype/audio"
	"voicetype/hotkey"
	"voicetype/inject"
	"voicetype/provider"
	"voicetype/rewrite"
	"voicetype/settings"
)

// Check is one diagnostic step. Run returns a short detail line on success.
type Check struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// Env is what the checks inspect.
type Env struct {
	Settings  settings.Settings
	Open      audio.Opener
	Device    *audio.DeviceInfo
	Capture   audio.CaptureConfig
	Clipboard inject.Clipboard
	// Keys initialises keystroke synthesis, normally KeybdKeyboard.Init.
	Keys func() error
	// Listen is how long the microphone check records.
	Listen time.Duration
	// Prompt is printed before the microphone check.
	Prompt io.Writer
}

// Run executes checks in order and returns an exit code (0=all pass, 1=any fail).
func Run(ctx context.Context, w io.Writer, checks []Check) int {
	fmt.Fprintln(w, "voicetype doctor - system diagnostics")
	fmt.Fprintln(w, "=====================================")

	failed := 0
	for i, c := range checks {
		fmt.Fprintf(w, "\n[%d/%d] %s\n", i+1, len(checks), c.Name)
		detail, err := c.Run(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(w, "  FAIL: %v\n", err)
			continue
		}
		fmt.Fprintf(w, "  PASS: %s\n", detail)
	}
	resetTerminal()

	fmt.Fprintln(w)
	if failed == 0 {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintf(w, "%d of %d checks failed. See details above.\n", failed, len(checks))
	return 1
}

// Checks returns the standard checks for env.
func Checks(env Env) []Check {
	return []Check{
		{Name: "Hotkey access", Run: func(context.Context) (string, error) { return hotkey.Diagnose() }},
		{Name: "API keys", Run: func(context.Context) (string, error) { return CheckKeys(env.Settings) }},
		{Name: "Microphone", Run: func(ctx context.Context) (string, error) { return CheckMicrophone(ctx, env) }},
		{Name: "Keystroke output", Run: func(context.Context) (string, error) { return CheckKeystrokes(env.Keys) }},
		{Name: "Clipboard", Run: func(context.Context) (string, error) { return CheckClipboard(env.Clipboard) }},
	}
}

// CheckKeys verifies the transcription and rewrite providers have keys.
func CheckKeys(s settings.Settings) (string, error) {
	var missing []string
	if s.APIKey(s.Provider) == "" {
		missing = append(missing, fmt.Sprintf("%s (set %s)", s.Provider, settings.EnvKey(s.Provider)))
	}
	rw := s.RewriteProvider
	if rw == "" {
		rw = rewrite.Backends[0]
	}
	if s.APIKey(rw) == "" {
		missing = append(missing, fmt.Sprintf("rewrite %s", rw))
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", provider.ErrMissingKey, strings.Join(missing, ", "))
	}
	return fmt.Sprintf("%s and rewrite %s configured", s.Provider, rw), nil
}

// CheckMicrophone records for env.Listen and reports the loudest frame.
func CheckMicrophone(ctx context.Context, env Env) (string, error) {
	listen := env.Listen
	if listen <= 0 {
		listen = 3 * time.Second
	}
	if env.Prompt != nil {
		fmt.Fprintf(env.Prompt, "  Speak for %s...\n", listen)
	}

	m := audio.NewCaptureManager(env.Open, env.Device, env.Capture)
	defer m.Cleanup()

	var (
		mu     sync.Mutex
		frames int
	)
	peak := provider.DBFS(0)
	err := m.Start(func(f audio.Frame) {
		db := provider.DBFS(provider.RMS(f.Samples))
		mu.Lock()
		frames++
		peak = max(peak, db)
		mu.Unlock()
	})
	if err != nil {
		return "", err
	}
	select {
	case <-time.After(listen):
	case <-ctx.Done():
	}
	m.Stop()

	mu.Lock()
	defer mu.Unlock()
	if frames == 0 {
		return "", errors.New("no audio captured")
	}
	detail := fmt.Sprintf("%d frames, peak %.1f dBFS", frames, peak)
	if env.Device != nil && audio.IsBluetooth(env.Device.Name) {
		detail += " (bluetooth mic: expect lower accuracy)"
	}
	if peak < provider.DefaultThresholdDBFS {
		return "", fmt.Errorf("%s, below the %.0f dBFS speech threshold", detail, provider.DefaultThresholdDBFS)
	}
	return detail, nil
}

// CheckKeystrokes initialises keystroke synthesis.
func CheckKeystrokes(init func() error) (string, error) {
	if init == nil {
		return "", errors.New("no keyboard configured")
	}
	if err := init(); err != nil {
		return "", fmt.Errorf("%v (on Linux: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput)", err)
	}
	return "keyboard device initialized", nil
}

// CheckClipboard writes a sentinel, reads it back and restores the original.
func CheckClipboard(clip inject.Clipboard) (string, error) {
	if clip == nil {
		return "", errors.New("no clipboard configured")
	}
	prev, err := clip.Read()
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	const sentinel = "voicetype-doctor-check"
	if err := clip.Write(sentinel); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	got, err := clip.Read()
	restoreErr := clip.Write(prev)
	if err != nil {
		return "", fmt.Errorf("read back: %w", err)
	}
	if got != sentinel {
		return "", fmt.Errorf("read back %q, want %q", got, sentinel)
	}
	if restoreErr != nil {
		return "", fmt.Errorf("restore: %w", restoreErr)
	}
	return "round-trip ok, previous contents restored", nil
}
