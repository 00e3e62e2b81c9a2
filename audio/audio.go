package audio

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	// NativeSampleRate is the rate requested from the capture backend.
	NativeSampleRate = 48000
	// FrameSamples is the per-callback buffer size the backends aim for.
	FrameSamples = 4096
)

// ErrCapture reports that the microphone could not be opened or started.
var ErrCapture = errors.New("capture device unavailable")

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Frame is one buffer of mono samples in [-1, 1].
type Frame struct {
	Samples    []float32
	SampleRate int
}

// Duration of the frame in milliseconds.
func (f Frame) DurationMs() float64 {
	if f.SampleRate == 0 {
		return 0
	}
	return float64(len(f.Samples)) * 1000 / float64(f.SampleRate)
}

// DataCallback receives interleaved little-endian int16 PCM.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// Downmix converts interleaved int16 PCM to mono float32 by averaging channels.
func Downmix(data []byte, channels int) []float32 {
	if channels < 1 {
		channels = 1
	}
	frameBytes := 2 * channels
	n := len(data) / frameBytes
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		base := i * frameBytes
		for c := 0; c < channels; c++ {
			s := int16(binary.LittleEndian.Uint16(data[base+2*c:]))
			sum += float32(s) / 32768
		}
		out[i] = sum / float32(channels)
	}
	return out
}
