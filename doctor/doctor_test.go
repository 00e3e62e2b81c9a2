package doctor

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"voicetype/audio"
	"voicetype/inject"
	"voicetype/provider"
	"voicetype/settings"
)

func pcm(amplitude float64, n int) []byte {
	b := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(amplitude * 32767 * math.Sin(2*math.Pi*440*float64(i)/16000))
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func TestRunCountsFailures(t *testing.T) {
	checks := []Check{
		{Name: "ok", Run: func(context.Context) (string, error) { return "fine", nil }},
		{Name: "broken", Run: func(context.Context) (string, error) { return "", errors.New("nope") }},
	}
	var buf bytes.Buffer
	if code := Run(context.Background(), &buf, checks); code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	out := buf.String()
	for _, want := range []string{"[1/2] ok", "PASS: fine", "[2/2] broken", "FAIL: nope", "1 of 2 checks failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if code := Run(context.Background(), &buf, checks[:1]); code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
}

func TestCheckKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    map[string]string
		wantErr bool
	}{
		{"both present", map[string]string{"groq": "k"}, false},
		{"none", map[string]string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Defaults()
			s.APIKeys = tt.keys
			_, err := CheckKeys(s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, provider.ErrMissingKey) {
				t.Errorf("err = %v, want ErrMissingKey", err)
			}
		})
	}
}

func TestCheckMicrophone(t *testing.T) {
	tests := []struct {
		name      string
		amplitude float64
		wantErr   bool
	}{
		{"speech level", 0.5, false},
		{"silence", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := audio.NewFakeContext(pcm(tt.amplitude, 16000), 16000, 1, false)
			env := Env{
				Open:    func() (audio.Context, error) { return fc, nil },
				Capture: audio.CaptureConfig{SampleRate: 16000, Channels: 1},
				Listen:  200 * time.Millisecond,
			}
			detail, err := CheckMicrophone(context.Background(), env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("detail = %q, err = %v, wantErr %v", detail, err, tt.wantErr)
			}
		})
	}
}

func TestCheckMicrophoneOpenFails(t *testing.T) {
	env := Env{
		Open:   func() (audio.Context, error) { return nil, errors.New("no device") },
		Listen: 10 * time.Millisecond,
	}
	if _, err := CheckMicrophone(context.Background(), env); !errors.Is(err, audio.ErrCapture) {
		t.Errorf("err = %v, want ErrCapture", err)
	}
}

func TestCheckClipboardRestores(t *testing.T) {
	clip := inject.NewFakeClipboard("original")
	if _, err := CheckClipboard(clip); err != nil {
		t.Fatal(err)
	}
	if got := clip.Text(); got != "original" {
		t.Errorf("clipboard = %q, want it restored", got)
	}

	clip.WriteErr = errors.New("locked")
	if _, err := CheckClipboard(clip); err == nil {
		t.Error("write failure passed")
	}
}

func TestCheckKeystrokes(t *testing.T) {
	if _, err := CheckKeystrokes(func() error { return nil }); err != nil {
		t.Error(err)
	}
	if _, err := CheckKeystrokes(func() error { return errors.New("EACCES") }); err == nil {
		t.Error("init failure passed")
	}
	if _, err := CheckKeystrokes(nil); err == nil {
		t.Error("nil keyboard passed")
	}
}
