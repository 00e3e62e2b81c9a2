package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"voicetype/audio"
	"voicetype/hotkey"
	"voicetype/inject"
	"voicetype/log"
	"voicetype/provider"
	"voicetype/settings"
)

// testEnv is a headless app driven by stdin commands. The microphone is a
// WAV file, the desktop is a fake clipboard and keyboard.
type testEnv struct {
	app   *app
	audio *audio.FakeContext
	clip  *inject.FakeClipboard
	keys  *inject.FakeKeyboard
	ptt   *hotkey.FakeHotkey
	rw    *hotkey.FakeHotkey
	out   *lineSink

	recordingDone chan struct{}
}

func newTestEnv(cfg settings.Settings, fakeCtx *audio.FakeContext, fakeText string, out io.Writer) *testEnv {
	cfg.AudioCues = false
	env := &testEnv{
		audio:         fakeCtx,
		clip:          inject.NewFakeClipboard(""),
		keys:          &inject.FakeKeyboard{},
		ptt:           hotkey.NewFake(),
		rw:            hotkey.NewFake(),
		out:           newLineSink(out),
		recordingDone: make(chan struct{}, 1),
	}
	env.app = newApp(cfg, appDeps{
		Open:      func() (audio.Context, error) { return fakeCtx, nil },
		Capture:   audio.CaptureConfig{SampleRate: fakeCtx.SampleRate, Channels: fakeCtx.Channels},
		Clipboard: env.clip,
		Keys:      env.keys,
		Events:    env.out,
		FakeText:  fakeText,
	})
	return env
}

// loop mirrors app.loop but signals after each recording has been fully
// transcribed and typed.
func (env *testEnv) loop(ctx context.Context, hybrid bool, longPress time.Duration) {
	a := env.app
	start, stop := env.ptt.Keydown(), env.ptt.Keyup()
	if hybrid {
		hy := hotkey.NewHybrid(env.ptt, longPress)
		start, stop = hy.Start(), hy.StopChan()
	}
	for {
		select {
		case <-start:
			a.startRecording(ctx)
			select {
			case <-stop:
			case <-ctx.Done():
				return
			}
			a.stopRecording()
			a.dict.flush(ctx)
			select {
			case env.recordingDone <- struct{}{}:
			default:
			}
		case <-env.rw.Keydown():
			a.rewriteSelection(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runningCapture waits for the microphone to start playing the WAV.
func (env *testEnv) runningCapture(timeout time.Duration) *audio.FakeCapture {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if caps := env.audio.Captures(); len(caps) > 0 && caps[len(caps)-1].Running() {
			return caps[len(caps)-1]
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

// exec runs one stdin command. It reports false for QUIT.
func (env *testEnv) exec(cmd string) bool {
	switch cmd {
	case "KEYDOWN":
		env.ptt.SimKeydown()
	case "KEYUP":
		env.ptt.SimKeyup()
	case "TAP":
		env.ptt.SimTap()
	case "REWRITE":
		env.rw.SimKeydown()
	case "WAIT":
		<-env.recordingDone
	case "WAIT_AUDIO_DONE":
		if c := env.runningCapture(5 * time.Second); c != nil {
			<-c.AudioDone()
		}
	case "TYPED":
		env.out.printf("TYPED %q", strings.Join(env.clip.Writes(), ""))
	case "KEYS":
		env.out.printf("PRESSED %s", strings.Join(env.keys.Keys(), ","))
	case "QUIT":
		return false
	default:
		if ms, ok := strings.CutPrefix(cmd, "SLEEP "); ok {
			if n, err := strconv.Atoi(ms); err == nil {
				time.Sleep(time.Duration(n) * time.Millisecond)
			}
		}
	}
	return true
}

func runTestMode(cfg settings.Settings, wavPath, fakeText string, hybrid bool, longPress time.Duration) {
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	fakeCtx, err := audio.LoadFakeContext(wavPath, provider.IsStreaming(cfg.Provider))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	env := newTestEnv(cfg, fakeCtx, fakeText, os.Stdout)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.app.start(ctx)
	go env.loop(ctx, hybrid, longPress)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !env.exec(strings.TrimSpace(scanner.Text())) {
			break
		}
	}
	env.app.close()
}
