package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"voicetype/audio"
	"voicetype/settings"
)

const testRate = 48000

// tone is d of a loud 440 Hz sine as 16-bit mono PCM.
func tone(d time.Duration) []byte {
	n := int(d.Seconds() * testRate)
	b := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/testRate))
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func startTestEnv(t *testing.T, fakeText string, hybrid bool) (*testEnv, *bytes.Buffer) {
	t.Helper()
	cfg := settings.Defaults()
	cfg.Provider = fakeProvider
	cfg.Language = "en"

	var buf bytes.Buffer
	fc := audio.NewFakeContext(tone(500*time.Millisecond), testRate, 1, true)
	env := newTestEnv(cfg, fc, fakeText, &buf)

	ctx, cancel := context.WithCancel(context.Background())
	env.app.start(ctx)
	go env.loop(ctx, hybrid, 350*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		env.app.close()
	})
	return env, &buf
}

func runScript(t *testing.T, env *testEnv, cmds ...string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range cmds {
			env.exec(c)
		}
	}()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatalf("script %v did not finish", cmds)
	}
}

func output(env *testEnv, buf *bytes.Buffer) string {
	env.out.mu.Lock()
	defer env.out.mu.Unlock()
	return buf.String()
}

func TestPushToTalkDictates(t *testing.T) {
	env, buf := startTestEnv(t, "hello world", false)
	runScript(t, env, "KEYDOWN", "WAIT_AUDIO_DONE", "KEYUP", "WAIT")

	if writes := env.clip.Writes(); !slices.Contains(writes, "hello world ") {
		t.Errorf("clipboard writes = %q, want the transcript", writes)
	}
	if keys := env.keys.Keys(); !slices.Contains(keys, "ctrl+v") {
		t.Errorf("keys = %v, want a paste", keys)
	}
	out := output(env, buf)
	for _, want := range []string{"RECORDING_START", "TRANSCRIPT hello world", "RECORDING_STOP"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVoiceCommandPressesKeyBeforeText(t *testing.T) {
	env, _ := startTestEnv(t, "hello new line", false)
	runScript(t, env, "KEYDOWN", "WAIT_AUDIO_DONE", "KEYUP", "WAIT")

	keys := env.keys.Keys()
	enter := slices.Index(keys, "enter")
	paste := slices.Index(keys, "ctrl+v")
	if enter < 0 || paste < 0 || enter > paste {
		t.Errorf("keys = %v, want enter before ctrl+v", keys)
	}
	if writes := env.clip.Writes(); !slices.Contains(writes, "hello") {
		t.Errorf("clipboard writes = %q, want %q without a trailing space", writes, "hello")
	}
}

func TestHybridTapToggles(t *testing.T) {
	env, buf := startTestEnv(t, "toggled", true)
	runScript(t, env, "TAP", "WAIT_AUDIO_DONE", "TAP", "WAIT")

	if writes := env.clip.Writes(); !slices.Contains(writes, "toggled ") {
		t.Errorf("clipboard writes = %q, want the transcript", writes)
	}
	if out := output(env, buf); strings.Count(out, "RECORDING_START") != 1 {
		t.Errorf("want exactly one recording:\n%s", out)
	}
}

func TestRewriteWithoutKeyReportsError(t *testing.T) {
	env, buf := startTestEnv(t, "", false)
	runScript(t, env, "REWRITE", "SLEEP 100")

	if out := output(env, buf); !strings.Contains(out, "ERROR rewrite unavailable") {
		t.Errorf("output = %q, want a rewrite error", out)
	}
}

func TestModeLine(t *testing.T) {
	env, _ := startTestEnv(t, "", false)
	got := env.app.modeLine()
	if want := "[fake (batch) | en | clipboard]"; got != want {
		t.Errorf("modeLine = %q, want %q", got, want)
	}
}

func TestDeviceLineText(t *testing.T) {
	tests := []struct {
		dev  *audio.DeviceInfo
		want string
	}{
		{nil, "mic: system default"},
		{&audio.DeviceInfo{Name: "USB Mic"}, "mic: USB Mic"},
		{&audio.DeviceInfo{Name: "AirPods Pro"}, "mic: AirPods Pro (BT!)"},
	}
	for _, tt := range tests {
		if got := deviceLineText(tt.dev); got != tt.want {
			t.Errorf("deviceLineText(%v) = %q, want %q", tt.dev, got, tt.want)
		}
	}
}
