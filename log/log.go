package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

// SegmentStats describes one batch upload.
type SegmentStats struct {
	Vendor     string
	Format     string
	AudioS     float64
	SizeKB     float64
	DNSMs      float64
	TLSMs      float64
	TTFBMs     float64
	TotalMs    float64
	ConnReused bool
	TLSProto   string
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: VOICETYPE_LOG_PATH environment variable
	if envPath := os.Getenv("VOICETYPE_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	setWriter(diagFile)
	logReady = true
	return nil
}

// SetOutput routes diagnostics to w without touching the log files.
// Passing nil disables logging again.
func SetOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	if w == nil {
		logReady = false
		return
	}
	pid = os.Getpid()
	setWriter(w)
	logReady = true
}

func setWriter(w io.Writer) {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Report records a recovered failure. The caller carries on; nothing is
// propagated to the user.
func Report(component, op string, err error) {
	if !logReady || err == nil {
		return
	}
	diagLog.Error().
		Str("component", component).
		Str("op", op).
		Err(err).
		Msg("recovered")
}

func SegmentMetrics(s SegmentStats) {
	if !logReady {
		return
	}

	connStatus := "new"
	if s.ConnReused {
		connStatus = "reused"
	}

	ev := diagLog.Info().
		Str("vendor", s.Vendor).
		Str("format", s.Format).
		Str("conn", connStatus)
	if s.TLSProto != "" {
		ev = ev.Str("tls_proto", s.TLSProto)
	}
	ev.Float64("audio_s", s.AudioS).
		Float64("size_kb", s.SizeKB).
		Float64("dns_ms", s.DNSMs).
		Float64("tls_ms", s.TLSMs).
		Float64("ttfb_ms", s.TTFBMs).
		Float64("total_ms", s.TotalMs).
		Msg("segment")
}

type StreamMetricsData struct {
	Vendor       string
	SessionID    string
	ConnectMs    float64
	FinalizeMs   float64
	TotalMs      float64
	AudioS       float64
	SentChunks   int
	SentKB       float64
	RecvMessages int
	RecvFinal    int
}

func StreamMetrics(m StreamMetricsData) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("vendor", m.Vendor).
		Str("session", m.SessionID).
		Float64("connect_ms", m.ConnectMs).
		Float64("finalize_ms", m.FinalizeMs).
		Float64("total_ms", m.TotalMs).
		Float64("audio_s", m.AudioS).
		Int("sent_chunks", m.SentChunks).
		Float64("sent_kb", m.SentKB).
		Int("recv_messages", m.RecvMessages).
		Int("recv_final", m.RecvFinal).
		Msg("stream")
}

func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	if transcribeFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}

func Injection(strategy string, chars int, fallback bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("strategy", strategy).
		Int("chars", chars).
		Bool("fallback", fallback).
		Msg("inject")
}

func Rewrite(requestID, provider, mode, outcome string, dur time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("request", requestID).
		Str("provider", provider).
		Str("mode", mode).
		Str("outcome", outcome).
		Float64("ms", float64(dur.Milliseconds())).
		Msg("rewrite")
}

func SessionStart(provider, kind, lang string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("provider", provider).
		Str("type", kind).
		Str("lang", lang).
		Msg("session_start")
}

func SessionEnd(provider string, segments int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("provider", provider).
		Int("segments", segments).
		Msg("session_end")
}
