package audio

import (
	"math"
	"sync"

	"voicetype/log"
)

// Bucket centre frequencies in Hz, roughly log-spaced across the voice band.
var bucketFreqs = []float64{120, 250, 500, 800, 1200, 2000, 3200, 5000}

const visWindow = 512

// Visualizer turns frames into per-bucket levels for display. It never
// blocks the audio path: a slow reader only sees the newest levels.
type Visualizer struct {
	mu      sync.Mutex
	running bool
	levels  chan []float64
}

func NewVisualizer() *Visualizer {
	return &Visualizer{levels: make(chan []float64, 1)}
}

func (v *Visualizer) Start() error {
	v.mu.Lock()
	v.running = true
	v.mu.Unlock()
	return nil
}

func (v *Visualizer) Stop() error {
	v.mu.Lock()
	v.running = false
	v.mu.Unlock()
	v.publish(make([]float64, len(bucketFreqs)))
	return nil
}

// Levels delivers the latest bucket levels in [0, 1].
func (v *Visualizer) Levels() <-chan []float64 { return v.levels }

// Push analyses one frame. Safe to call from the capture goroutine.
func (v *Visualizer) Push(f Frame) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("visualizer panic: %v", r)
		}
	}()
	v.mu.Lock()
	running := v.running
	v.mu.Unlock()
	if !running || len(f.Samples) == 0 || f.SampleRate == 0 {
		return
	}
	v.publish(Buckets(f.Samples, f.SampleRate))
}

func (v *Visualizer) publish(levels []float64) {
	select {
	case v.levels <- levels:
		return
	default:
	}
	// drop the stale value and retry once
	select {
	case <-v.levels:
	default:
	}
	select {
	case v.levels <- levels:
	default:
	}
}

// Buckets runs a Goertzel filter per bucket over the tail of samples and maps
// the magnitude to [0, 1] on a 60 dB scale.
func Buckets(samples []float32, sampleRate int) []float64 {
	if len(samples) > visWindow {
		samples = samples[len(samples)-visWindow:]
	}
	n := float64(len(samples))
	out := make([]float64, len(bucketFreqs))
	for i, freq := range bucketFreqs {
		if freq >= float64(sampleRate)/2 {
			continue
		}
		k := math.Round(n * freq / float64(sampleRate))
		coeff := 2 * math.Cos(2*math.Pi*k/n)
		var s1, s2 float64
		for _, x := range samples {
			s0 := float64(x) + coeff*s1 - s2
			s2, s1 = s1, s0
		}
		power := s1*s1 + s2*s2 - coeff*s1*s2
		mag := math.Sqrt(math.Max(power, 0)) / (n / 2)
		db := 20 * math.Log10(mag+1e-9)
		out[i] = math.Min(1, math.Max(0, (db+60)/60))
	}
	return out
}
