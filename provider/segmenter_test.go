package provider

import (
	"math"
	"slices"
	"testing"

	"voicetype/audio"
)

const testRate = 48000

// burst is a stretch of constant-amplitude audio.
type burst struct {
	amp float32
	ms  int
}

func framesFor(stream []burst) []audio.Frame {
	const frameMs = 20
	var out []audio.Frame
	for _, b := range stream {
		for t := 0; t < b.ms; t += frameMs {
			s := make([]float32, testRate*frameMs/1000)
			for i := range s {
				s[i] = b.amp
			}
			out = append(out, audio.Frame{Samples: s, SampleRate: testRate})
		}
	}
	return out
}

// segmentMs runs stream through a fresh segmenter, including the final
// flush, and returns each segment's duration.
func segmentMs(stream []burst) []float64 {
	seg := NewSegmenter(SegmentConfig{})
	var out []float64
	for _, f := range framesFor(stream) {
		if seg.Push(f) {
			s, ok := seg.Cut()
			if ok {
				out = append(out, float64(len(s))/16)
			}
		}
	}
	if s, ok := seg.Cut(); ok {
		out = append(out, float64(len(s))/16)
	}
	return out
}

func TestSegmenter(t *testing.T) {
	const speech, quiet = 0.1, 0.01 // -20 dBFS and -40 dBFS

	tests := []struct {
		name   string
		stream []burst
		want   []float64
	}{
		{"digital silence", []burst{{0, 5000}}, nil},
		{"below threshold", []burst{{quiet, 20000}}, nil},
		{"speech then pause", []burst{{speech, 2000}, {quiet, 1500}}, []float64{3000}},
		{"two utterances", []burst{{speech, 1000}, {0, 1000}, {speech, 500}, {0, 1000}}, []float64{2000, 1500}},
		{"short burst then silence", []burst{{speech, 100}, {0, 2000}}, nil},
		{"short session", []burst{{speech, 120}}, nil},
		{"flushed on stop", []burst{{speech, 800}, {0, 300}}, []float64{1100}},
		{"continuous speech", []burst{{speech, 40000}}, []float64{15000, 15000, 10000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentMs(tt.stream); !slices.Equal(got, tt.want) {
				t.Errorf("segments = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmenterDeterministic(t *testing.T) {
	stream := []burst{{0.3, 1200}, {0.001, 1100}, {0.05, 16000}, {0, 900}}
	a := segmentMs(stream)
	b := segmentMs(stream)
	if len(a) == 0 || !slices.Equal(a, b) {
		t.Fatalf("runs differ or empty: %v vs %v", a, b)
	}
	for _, ms := range a {
		if ms > DefaultMaxSegmentMs+20 {
			t.Errorf("segment %vms exceeds max plus one frame", ms)
		}
	}
}

func TestSegmenterBoundedDuringSilence(t *testing.T) {
	seg := NewSegmenter(SegmentConfig{})
	for _, f := range framesFor([]burst{{0, 60000}}) {
		seg.Push(f)
	}
	if seg.PendingMs() > DefaultSilenceMs {
		t.Errorf("buffered %vms of silence", seg.PendingMs())
	}
}

func TestDBFS(t *testing.T) {
	tests := []struct {
		rms, want float64
	}{
		{0, -120},
		{1e-10, -120},
		{1, 0},
		{0.1, -20},
	}
	for _, tt := range tests {
		if got := DBFS(tt.rms); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DBFS(%v) = %v, want %v", tt.rms, got, tt.want)
		}
	}
}

func TestDecimate(t *testing.T) {
	t.Run("48k to 16k", func(t *testing.T) {
		in := make([]float32, 960)
		for i := range in {
			in[i] = 0.5
		}
		out := Decimate(in, 48000)
		if len(out) != 320 {
			t.Fatalf("len = %d, want 320", len(out))
		}
		if out[0] != 16383 {
			t.Errorf("out[0] = %d, want 16383", out[0])
		}
	})
	t.Run("averages window", func(t *testing.T) {
		out := Decimate([]float32{0.2, 0.4, 0.6, -0.5, -0.5, -0.5}, 48000)
		want := []int16{13106, -16384}
		if !slices.Equal(out, want) {
			t.Errorf("got %v, want %v", out, want)
		}
	})
	t.Run("clamps", func(t *testing.T) {
		out := Decimate([]float32{1.5, -2}, 16000)
		if !slices.Equal(out, []int16{32767, -32768}) {
			t.Errorf("got %v", out)
		}
	})
	t.Run("fractional ratio", func(t *testing.T) {
		out := Decimate([]float32{0.5, 0.2, 0.4, 0.1, -0.1, 0.3}, 24000)
		want := []int16{16383, 9830, 3276, 3276}
		if !slices.Equal(out, want) {
			t.Errorf("got %v, want %v", out, want)
		}
	})
}
