//go:build !linux

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	playMu   sync.Mutex

	// read from the audio callback
	current atomic.Pointer[[]byte]
	pos     atomic.Uint32
)

func initBackend() {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	malgoCtx = ctx
	if err := initDevice(); err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
	}
}

func initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{Data: fill})
	return err
}

func fill(out, _ []byte, frameCount uint32) {
	want := frameCount * 2
	n := uint32(0)
	if pcm := current.Load(); pcm != nil {
		p := pos.Load()
		if rest := uint32(len(*pcm)) - p; rest > 0 {
			n = min(want, rest)
			copy(out[:n], (*pcm)[p:p+n])
			pos.Store(p + n)
		} else {
			current.Store(nil)
		}
	}
	clear(out[n:want])
}

func play(pcm []byte) {
	playMu.Lock()
	defer playMu.Unlock()
	if malgoCtx == nil || device == nil {
		return
	}

	device.Stop()
	pos.Store(0)
	current.Store(&pcm)
	if err := device.Start(); err != nil {
		// The device goes stale across sleep/wake; rebuild it once.
		device.Uninit()
		if err := initDevice(); err != nil || device.Start() != nil {
			current.Store(nil)
		}
	}
}
