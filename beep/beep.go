// Package beep plays the short recording cues: a high tick when dictation
// starts, a lower one when it stops and a double beep on failure.
package beep

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

type Cue int

const (
	CueStart Cue = iota
	CueStop
	CueError
)

const sampleRate = 44100

type toneSpec struct {
	freq, volume, decay float64
	dur                 float64
	// gap > 0 repeats the tone after that many seconds of silence.
	gap float64
}

var specs = map[Cue]toneSpec{
	CueStart: {freq: 1200, volume: 0.5, decay: 60, dur: 0.06},
	CueStop:  {freq: 900, volume: 0.5, decay: 40, dur: 0.08},
	CueError: {freq: 350, volume: 0.6, decay: 30, dur: 0.08, gap: 0.05},
}

var (
	enabled atomic.Bool
	once    sync.Once
	cues    map[Cue][]byte
)

func init() {
	enabled.Store(true)
}

// SetEnabled turns every cue on or off.
func SetEnabled(on bool) { enabled.Store(on) }

func Enabled() bool { return enabled.Load() }

// Init renders the cues and opens the playback backend. Play calls it lazily.
func Init() {
	once.Do(func() {
		cues = make(map[Cue][]byte, len(specs))
		for c, s := range specs {
			cues[c] = render(s)
		}
		initBackend()
	})
}

// Play starts cue in the background. Playback failures are silent.
func Play(c Cue) {
	if !enabled.Load() {
		return
	}
	Init()
	if pcm := cues[c]; len(pcm) > 0 {
		go play(pcm)
	}
}

// render produces mono 16-bit little-endian PCM for s.
func render(s toneSpec) []byte {
	tone := tick(s.freq, s.dur, s.volume, s.decay)
	if s.gap <= 0 {
		return tone
	}
	gap := make([]byte, int(sampleRate*s.gap)*2)
	out := make([]byte, 0, 2*len(tone)+len(gap))
	out = append(out, tone...)
	out = append(out, gap...)
	return append(out, tone...)
}

// tick is an exponentially decaying sine.
func tick(freq, dur, volume, decay float64) []byte {
	n := int(sampleRate * dur)
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		v := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * math.Exp(-t*decay))
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}
