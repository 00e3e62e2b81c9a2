package provider

import (
	"math"

	"voicetype/audio"
	"voicetype/encoder"
)

const (
	DefaultThresholdDBFS = -30.0
	DefaultSilenceMs     = 1000.0
	DefaultMaxSegmentMs  = 15000.0
	DefaultMinSegmentMs  = 200.0

	silenceFloorDBFS = -120.0
)

// SegmentConfig tunes the energy segmenter. Zero fields take the defaults.
type SegmentConfig struct {
	ThresholdDBFS float64
	SilenceMs     float64
	MaxSegmentMs  float64
	MinSegmentMs  float64
}

func (c SegmentConfig) withDefaults() SegmentConfig {
	if c.ThresholdDBFS == 0 {
		c.ThresholdDBFS = DefaultThresholdDBFS
	}
	if c.SilenceMs == 0 {
		c.SilenceMs = DefaultSilenceMs
	}
	if c.MaxSegmentMs == 0 {
		c.MaxSegmentMs = DefaultMaxSegmentMs
	}
	if c.MinSegmentMs == 0 {
		c.MinSegmentMs = DefaultMinSegmentMs
	}
	return c
}

// Segmenter cuts a frame stream into speech segments by frame energy. It is
// not safe for concurrent use.
type Segmenter struct {
	cfg       SegmentConfig
	samples   []int16
	boundary  int
	hadSpeech bool
	silenceMs float64
	speechMs  float64
}

func NewSegmenter(cfg SegmentConfig) *Segmenter {
	return &Segmenter{cfg: cfg.withDefaults()}
}

// Push accounts one frame and reports whether a segment is ready to Cut.
// A region that hits the silence or length limit with less voiced audio
// than the minimum is discarded as noise.
func (s *Segmenter) Push(f audio.Frame) bool {
	if len(f.Samples) == 0 || f.SampleRate <= 0 {
		return false
	}
	if DBFS(RMS(f.Samples)) < s.cfg.ThresholdDBFS {
		s.silenceMs += f.DurationMs()
	} else {
		s.silenceMs = 0
		s.speechMs += f.DurationMs()
		s.hadSpeech = true
	}
	s.samples = append(s.samples, Decimate(f.Samples, f.SampleRate)...)

	due := s.silenceMs >= s.cfg.SilenceMs || s.PendingMs() >= s.cfg.MaxSegmentMs
	if !due {
		return false
	}
	if !s.eligible() {
		s.drop()
		return false
	}
	return true
}

// Cut returns the samples since the boundary and resets, provided they hold
// enough speech. Otherwise it returns false and leaves the state untouched.
func (s *Segmenter) Cut() ([]int16, bool) {
	if !s.eligible() {
		return nil, false
	}
	seg := make([]int16, len(s.samples)-s.boundary)
	copy(seg, s.samples[s.boundary:])
	s.drop()
	return seg, true
}

func (s *Segmenter) eligible() bool {
	return s.hadSpeech && s.speechMs >= s.cfg.MinSegmentMs
}

// PendingMs is the duration buffered since the last boundary.
func (s *Segmenter) PendingMs() float64 {
	return float64(len(s.samples)-s.boundary) * 1000 / encoder.SampleRate
}

// Reset discards everything buffered.
func (s *Segmenter) Reset() {
	s.drop()
}

func (s *Segmenter) drop() {
	s.hadSpeech = false
	s.silenceMs = 0
	s.speechMs = 0
	// consumed samples go right away so the boundary returns to 0
	s.samples = s.samples[:0]
	s.boundary = 0
}

func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, x := range samples {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// DBFS converts an RMS level to decibels relative to full scale, with a
// floor for digital silence.
func DBFS(rms float64) float64 {
	if rms <= 1e-9 {
		return silenceFloorDBFS
	}
	return 20 * math.Log10(rms)
}

// Decimate resamples mono float samples to 16 kHz PCM16 by averaging each
// output sample's input window.
func Decimate(samples []float32, rate int) []int16 {
	ratio := float64(rate) / encoder.SampleRate
	n := int(math.Floor(float64(len(samples)) / ratio))
	out := make([]int16, n)
	for i := range out {
		start := int(math.Floor(float64(i) * ratio))
		end := int(math.Floor(float64(i+1) * ratio))
		var sum float64
		count := 0
		for j := start; j < end && j < len(samples); j++ {
			sum += float64(samples[j])
			count++
		}
		var v float64
		if count > 0 {
			v = sum / float64(count)
		} else {
			v = float64(samples[min(start, len(samples)-1)])
		}
		out[i] = toPCM16(v)
	}
	return out
}

func toPCM16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return int16(v * 0x8000)
	}
	return int16(v * 0x7fff)
}
