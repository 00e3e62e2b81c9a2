package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"time"
)

const fakeFrameSize = 1024

// FakeContext replays PCM instead of opening a microphone. Used by -test
// mode and by tests.
type FakeContext struct {
	PCM        []byte
	SampleRate uint32
	Channels   uint32
	Realtime   bool

	// NewErr and StartErr make the next capture fail.
	NewErr   error
	StartErr error

	mu       sync.Mutex
	captures []*FakeCapture
	closed   int
}

func NewFakeContext(pcm []byte, sampleRate, channels uint32, realtime bool) *FakeContext {
	return &FakeContext{PCM: pcm, SampleRate: sampleRate, Channels: channels, Realtime: realtime}
}

// LoadFakeContext reads a canonical PCM WAV file.
func LoadFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" {
		return nil, errors.New("not a RIFF/WAV file")
	}
	channels := uint32(binary.LittleEndian.Uint16(data[22:]))
	rate := binary.LittleEndian.Uint32(data[24:])
	return NewFakeContext(data[44:], rate, channels, realtime), nil
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
}

func (f *FakeContext) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, cfg CaptureConfig) (CaptureDevice, error) {
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	c := &FakeCapture{
		pcm:       f.PCM,
		realtime:  f.Realtime,
		rate:      cfg.SampleRate,
		channels:  max(cfg.Channels, 1),
		startErr:  f.StartErr,
		audioDone: make(chan struct{}),
	}
	f.mu.Lock()
	f.captures = append(f.captures, c)
	f.mu.Unlock()
	return c, nil
}

// Captures returns every capture created so far.
func (f *FakeContext) Captures() []*FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeCapture(nil), f.captures...)
}

type FakeCapture struct {
	pcm       []byte
	realtime  bool
	rate      uint32
	channels  uint32
	startErr  error
	audioDone chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	running  bool
	starts   int
	closed   bool
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (f *FakeCapture) AudioDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audioDone
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) attached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb != nil
}

// Emit delivers data to the registered callback, if any.
func (f *FakeCapture) Emit(data []byte) {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb != nil {
		cb(data, uint32(len(data)/int(2*f.channels)))
	}
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	if f.running {
		return nil
	}
	f.running = true
	if !f.realtime || len(f.pcm) == 0 {
		return nil
	}

	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	f.audioDone = make(chan struct{})
	stop, done, audioDone := f.stopCh, f.feedDone, f.audioDone
	chunk := fakeFrameSize * 2 * int(f.channels)
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(max(f.rate, 1))

	go func() {
		defer close(done)
		silence := make([]byte, chunk)
		pos := 0
		finished := false
		for {
			// playback only advances while a consumer is attached
			if f.attached() {
				if pos < len(f.pcm) {
					end := min(pos+chunk, len(f.pcm))
					f.Emit(f.pcm[pos:end])
					pos = end
				} else {
					if !finished {
						finished = true
						close(audioDone)
					}
					f.Emit(silence)
				}
			}
			select {
			case <-stop:
				return
			case <-time.After(interval):
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stop, done := f.stopCh, f.feedDone
	f.stopCh, f.feedDone = nil, nil
	f.running = false
	f.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
}

func (f *FakeCapture) Close() {
	f.Stop()
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeCapture) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *FakeCapture) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *FakeCapture) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
