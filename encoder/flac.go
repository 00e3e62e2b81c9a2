package encoder

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// Flac encodes a segment as verbatim FLAC frames of BlockSize samples.
// Smaller uploads for vendors that accept audio/flac.
type Flac struct{}

func (Flac) Format() string   { return "flac" }
func (Flac) MimeType() string { return "audio/flac" }

func (Flac) Encode(samples []int16) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("flac: no samples")
	}
	var buf bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  BlockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}

	for off := 0; off < len(samples); off += BlockSize {
		block := samples[off:min(off+BlockSize, len(samples))]
		if err := writeFrame(enc, block); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing flac encoder: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFrame(enc *flac.Encoder, block []int16) error {
	samples32 := make([]int32, len(block))
	for i, s := range block {
		samples32[i] = int32(s)
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(block)),
			SampleRate:    SampleRate,
			Channels:      frame.ChannelsMono,
			BitsPerSample: BitsPerSample,
		},
		Subframes: []*frame.Subframe{{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples32,
			NSamples:  len(block),
		}},
	}
	if err := enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	return nil
}
