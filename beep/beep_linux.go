//go:build linux

package beep

import (
	"encoding/binary"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

func initBackend() {}

// play opens a short-lived pulse playback stream per cue.
func play(pcm []byte) {
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(pcm) {
			return 0, pulse.EndOfData
		}
		n := 0
		for n < len(buf) && pos+1 < len(pcm) {
			buf[n] = int16(binary.LittleEndian.Uint16(pcm[pos:]))
			pos += 2
			n++
		}
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}
