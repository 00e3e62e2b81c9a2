package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096

	// HeaderSize is the size of the canonical PCM WAV header.
	HeaderSize = 44
)

// Encoder turns one segment of 16 kHz mono PCM into an upload-ready container.
type Encoder interface {
	Encode(samples []int16) ([]byte, error)
	Format() string
	MimeType() string
}

// New returns the encoder for a segment format name.
func New(format string) (Encoder, error) {
	switch format {
	case "", "wav":
		return Wav{}, nil
	case "flac":
		return Flac{}, nil
	default:
		return nil, fmt.Errorf("unknown segment format %q", format)
	}
}

// Duration returns the length of n samples in seconds.
func Duration(n int) float64 {
	return float64(n) / SampleRate
}
