package provider

import (
	"context"
	"encoding/binary"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"voicetype/audio"
	"voicetype/encoder"
	"voicetype/log"
)

const (
	streamChunkMs      = 100
	streamChunkBytes   = encoder.SampleRate * encoder.Channels * (encoder.BitsPerSample / 8) * streamChunkMs / 1000
	streamQueue        = 256
	streamFinalizeIdle = 200 * time.Millisecond
	streamFinalizeMax  = 1500 * time.Millisecond
	streamDrainMax     = 2 * time.Second
)

// rawStream is one vendor websocket.
type rawStream interface {
	Send(pcm []byte) error
	// CloseSend tells the vendor no more audio is coming.
	CloseSend() error
	Recv() (streamUpdate, error)
	Close() error
}

type streamUpdate struct {
	Transcript   string
	IsFinal      bool
	SpeechFinal  bool
	FromFinalize bool
}

type dialFunc func(ctx context.Context) (rawStream, error)

type streamStats struct {
	ConnectDur   time.Duration
	SentChunks   int
	SentBytes    uint64
	RecvMessages int
	RecvFinal    int
	Dropped      int
}

// Stream forwards 16 kHz PCM16 to a vendor websocket and emits each final
// transcript fragment as it arrives. The socket is dialled in the
// background so capture starts immediately; audio queues until it is up.
type Stream struct {
	name string
	dial dialFunc
	opts Options
	// shape, if set, is applied to each frame before resampling.
	shape func([]float32)

	mu        sync.Mutex
	active    bool
	closing   bool
	sessionID string
	ws        rawStream
	dialErr   error
	audioCh   chan []byte
	feedBuf   []byte
	startedAt time.Time
	stats     streamStats

	connected     chan struct{}
	sendDone      chan struct{}
	finalized     chan struct{}
	finalizedOnce *sync.Once
	group         *errgroup.Group
	cancel        context.CancelFunc
}

func newStream(name string, opts Options, dial dialFunc) *Stream {
	return &Stream{name: name, opts: opts, dial: dial}
}

func (s *Stream) Name() string { return s.name }
func (s *Stream) Type() Type   { return TypeStreaming }

func (s *Stream) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SessionID identifies the current (or last) connection in the logs.
func (s *Stream) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Stream) Start(ctx context.Context, capture Capture, vis Visualizer) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		log.Warnf("%s: already started", s.name)
		return nil
	}
	s.active = true
	s.closing = false
	s.sessionID = uuid.NewString()
	s.ws = nil
	s.dialErr = nil
	s.feedBuf = nil
	s.stats = streamStats{}
	s.startedAt = time.Now()
	s.audioCh = make(chan []byte, streamQueue)
	s.connected = make(chan struct{})
	s.sendDone = make(chan struct{})
	s.finalized = make(chan struct{})
	s.finalizedOnce = new(sync.Once)
	s.group = new(errgroup.Group)
	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.connect(streamCtx)

	if err := attach(capture, vis, s.onFrame); err != nil {
		s.mu.Lock()
		s.active = false
		close(s.audioCh)
		s.mu.Unlock()
		cancel()
		<-s.connected
		s.shutdown()
		return err
	}
	log.SessionStart(s.name, string(TypeStreaming), s.opts.Language)
	return nil
}

func (s *Stream) connect(ctx context.Context) {
	defer close(s.connected)
	start := time.Now()
	ws, err := s.dial(ctx)

	s.mu.Lock()
	s.stats.ConnectDur = time.Since(start)
	if err != nil {
		s.dialErr = err
		s.mu.Unlock()
		close(s.sendDone)
		log.Report(s.name, "connect", &BackendError{Vendor: s.name, Op: "connect", Err: err})
		return
	}
	s.ws = ws
	s.mu.Unlock()

	s.group.Go(s.runSender)
	s.group.Go(s.runReceiver)
}

func (s *Stream) onFrame(f audio.Frame) {
	if s.shape != nil {
		s.shape(f.Samples)
	}
	pcm := Decimate(f.Samples, f.SampleRate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.dialErr != nil {
		return
	}
	for _, v := range pcm {
		s.feedBuf = binary.LittleEndian.AppendUint16(s.feedBuf, uint16(v))
	}
	for len(s.feedBuf) >= streamChunkBytes {
		chunk := make([]byte, streamChunkBytes)
		copy(chunk, s.feedBuf[:streamChunkBytes])
		s.feedBuf = s.feedBuf[streamChunkBytes:]
		s.enqueueLocked(chunk)
	}
}

func (s *Stream) enqueueLocked(chunk []byte) {
	select {
	case s.audioCh <- chunk:
	default:
		s.stats.Dropped++
	}
}

// Stop flushes queued audio, sends the vendor's end-of-stream message and
// waits briefly for the last final transcripts before closing.
func (s *Stream) Stop() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	if len(s.feedBuf) > 0 && s.dialErr == nil {
		s.enqueueLocked(s.feedBuf)
	}
	s.feedBuf = nil
	close(s.audioCh)
	s.mu.Unlock()

	finalizeStart := time.Now()
	<-s.connected
	select {
	case <-s.sendDone:
	case <-time.After(streamDrainMax):
		log.Warnf("%s: sender did not finish", s.name)
	}

	s.mu.Lock()
	failed := s.dialErr != nil
	s.mu.Unlock()
	if !failed {
		select {
		case <-s.finalized:
			time.Sleep(streamFinalizeIdle)
		case <-time.After(streamFinalizeMax):
		}
	}
	finalizeWait := time.Since(finalizeStart)
	s.shutdown()

	s.mu.Lock()
	st := s.stats
	total := time.Since(s.startedAt)
	id := s.sessionID
	s.mu.Unlock()

	if st.Dropped > 0 {
		log.Warnf("%s: dropped %d audio chunks", s.name, st.Dropped)
	}
	log.StreamMetrics(log.StreamMetricsData{
		Vendor:       s.name,
		SessionID:    id,
		ConnectMs:    float64(st.ConnectDur.Milliseconds()),
		FinalizeMs:   float64(finalizeWait.Milliseconds()),
		TotalMs:      float64(total.Milliseconds()),
		AudioS:       float64(st.SentBytes) / float64(encoder.SampleRate*encoder.Channels*(encoder.BitsPerSample/8)),
		SentChunks:   st.SentChunks,
		SentKB:       float64(st.SentBytes) / 1024,
		RecvMessages: st.RecvMessages,
		RecvFinal:    st.RecvFinal,
	})
	log.SessionEnd(s.name, st.RecvFinal)
	return nil
}

// shutdown closes the socket and waits for both goroutines.
func (s *Stream) shutdown() {
	s.mu.Lock()
	s.closing = true
	ws := s.ws
	cancel := s.cancel
	s.mu.Unlock()

	if ws != nil {
		ws.Close()
	}
	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			log.Report(s.name, "stream", &BackendError{Vendor: s.name, Op: "stream", Err: err})
		}
	case <-time.After(streamDrainMax):
		log.Warn("stream receiver drain timeout")
	}
	if cancel != nil {
		cancel()
	}
}

func (s *Stream) runSender() error {
	defer close(s.sendDone)
	for chunk := range s.audioCh {
		if err := s.ws.Send(chunk); err != nil {
			go drain(s.audioCh)
			s.ws.Close()
			return err
		}
		s.mu.Lock()
		s.stats.SentChunks++
		s.stats.SentBytes += uint64(len(chunk))
		s.mu.Unlock()
	}
	return s.ws.CloseSend()
}

func drain(ch <-chan []byte) {
	for range ch {
	}
}

func (s *Stream) runReceiver() error {
	for {
		update, err := s.ws.Recv()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			s.ws.Close()
			return err
		}

		if update.FromFinalize {
			s.finalizedOnce.Do(func() { close(s.finalized) })
		}

		isFinal := update.IsFinal || update.SpeechFinal || update.FromFinalize
		s.mu.Lock()
		s.stats.RecvMessages++
		if isFinal {
			s.stats.RecvFinal++
		}
		s.mu.Unlock()

		if !isFinal {
			continue
		}
		text := strings.TrimSpace(update.Transcript)
		if text == "" {
			continue
		}
		log.TranscriptionText(text)
		s.opts.emit(text)
	}
}
