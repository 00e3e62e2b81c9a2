package encoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Wav writes a 44-byte RIFF header followed by the raw samples.
type Wav struct{}

func (Wav) Format() string   { return "wav" }
func (Wav) MimeType() string { return "audio/wav" }

func (Wav) Encode(samples []int16) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("wav: no samples")
	}
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, SampleRate, BitsPerSample, Channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav close: %w", err)
	}
	return ws.buf, nil
}

// memWriteSeeker is the in-memory io.WriteSeeker the wav encoder needs to
// patch its size fields on Close.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memWriteSeeker: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memWriteSeeker: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}
