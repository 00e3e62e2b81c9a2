package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voicetype/audio"
	"voicetype/beep"
	"voicetype/hotkey"
	"voicetype/inject"
	"voicetype/log"
	"voicetype/provider"
	"voicetype/rewrite"
	"voicetype/session"
	"voicetype/settings"
)

const tickInterval = 100 * time.Millisecond

// fakeProvider is the provider name that transcribes with canned text.
const fakeProvider = "fake"

// appDeps are the desktop-facing pieces, swapped for fakes in -test mode.
type appDeps struct {
	Open      audio.Opener
	Device    *audio.DeviceInfo
	Capture   audio.CaptureConfig
	Clipboard inject.Clipboard
	Keys      inject.Keyboard
	Events    EventSink
	// FakeText is what the fake provider returns for every segment.
	FakeText string
	// RewriteEndpoint overrides the rewrite vendor URL.
	RewriteEndpoint string
}

// app is the assembled dictation client.
type app struct {
	cfg    settings.Settings
	deps   appDeps
	events EventSink

	capture  *audio.CaptureManager
	vis      *audio.Visualizer
	ctrl     *session.Controller
	helper   *inject.HelperStrategy
	clip     *inject.ClipboardStrategy
	injector *inject.Injector
	rewriter *rewrite.Manager // nil without a usable rewrite backend
	dict     *dictation

	cancel context.CancelFunc
}

func newApp(cfg settings.Settings, deps appDeps) *app {
	a := &app{cfg: cfg, deps: deps, events: deps.Events}
	if a.events == nil {
		a.events = newLineSink(nil)
	}
	beep.SetEnabled(cfg.AudioCues)

	a.capture = audio.NewCaptureManager(deps.Open, deps.Device, deps.Capture)
	a.vis = audio.NewVisualizer()
	a.ctrl = session.NewController(a.capture, a.vis)

	a.helper = inject.NewHelperStrategy(cfg.Helper()...)
	a.clip = inject.NewClipboardStrategy(deps.Clipboard, deps.Keys, inject.RestoreDelay)
	a.injector = inject.New(cfg.InsertionMode, a.helper, a.clip, deps.Keys)

	backend, err := rewrite.NewBackend(cfg.RewriteProvider, cfg.APIKey(cfg.RewriteProvider), deps.RewriteEndpoint)
	if err != nil {
		log.Warnf("rewrite disabled: %v", err)
	} else {
		a.rewriter = rewrite.NewManager(rewrite.Config{
			Clipboard: deps.Clipboard,
			Keys:      deps.Keys,
			Focus:     a.injector,
		}, backend, cfg.RewriteMode)
	}

	var rw rewriter
	if a.rewriter != nil {
		rw = a.rewriter
	}
	a.dict = newDictation(dictationConfig{
		Language:      cfg.Language,
		Formatting:    cfg.Formatting,
		VoiceCommands: cfg.VoiceCommands,
		RewriteMode:   cfg.RewriteMode,
	}, a.injector, rw, a.events, a.stopRecording)
	return a
}

// start launches the background workers. close ends them.
func (a *app) start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	go a.dict.run(ctx)
	go func() {
		for {
			select {
			case levels := <-a.vis.Levels():
				a.events.Levels(levels)
			case <-ctx.Done():
				return
			}
		}
	}()
	a.events.ModeLine(a.modeLine())
	a.events.DeviceLine(deviceLineText(a.deps.Device))
}

func (a *app) modeLine() string {
	lang := a.cfg.Language
	if lang == "" {
		lang = "auto"
	}
	kind := "batch"
	if provider.IsStreaming(a.cfg.Provider) {
		kind = "stream"
	}
	return fmt.Sprintf("[%s (%s) | %s | %s]", a.cfg.Provider, kind, lang, a.injector.Mode())
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

// newProvider builds the configured provider for one session.
func (a *app) newProvider() (provider.Provider, error) {
	opts := provider.Options{
		APIKey:        a.cfg.APIKey(a.cfg.Provider),
		Language:      a.cfg.Language,
		Formatting:    a.cfg.Formatting,
		SegmentFormat: a.cfg.SegmentFormat,
		Sink:          a.dict.Sink,
	}
	if strings.EqualFold(a.cfg.Provider, fakeProvider) {
		return provider.NewBatch(fakeProvider, provider.NewFake(a.deps.FakeText, nil), opts)
	}
	return provider.New(a.cfg.Provider, opts)
}

// startRecording opens a session unless one is already running.
func (a *app) startRecording(ctx context.Context) error {
	started, err := a.ctrl.Start(ctx, a.newProvider)
	if err != nil {
		log.Errorf("recording error: %v", err)
		a.events.Error(err)
		beep.Play(beep.CueError)
		return err
	}
	if !started {
		return nil
	}
	log.Info("recording_start")
	beep.Play(beep.CueStart)
	a.events.RecordingStart()

	sess := a.ctrl.Current()
	go func() {
		begin := time.Now()
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for range ticker.C {
			if !sess.Active() {
				return
			}
			a.events.RecordingTick(time.Since(begin).Seconds())
		}
	}()
	return nil
}

func (a *app) stopRecording() {
	if !a.ctrl.Active() {
		return
	}
	log.Info("recording_stop")
	beep.Play(beep.CueStop)
	a.ctrl.Stop()
	a.events.RecordingStop()
}

// rewriteSelection runs the rewrite flow for the hotkey requester. A second
// press while one is in flight aborts it.
func (a *app) rewriteSelection(ctx context.Context) {
	if a.rewriter == nil {
		a.events.Error(fmt.Errorf("rewrite unavailable: no %s API key", a.cfg.RewriteProvider))
		return
	}
	if a.rewriter.InFlight("hotkey") {
		a.rewriter.Abort("hotkey", a.events.Rewrite)
		return
	}
	a.rewriter.Rewrite(ctx, "hotkey", a.events.Rewrite)
}

// loop drives recording from the push-to-talk key and rewrite from the
// rewrite key until ctx ends. With hybrid set a tap toggles recording.
// A session stopped early (the pause voice command) still waits for the
// key's release so the next press starts cleanly.
func (a *app) loop(ctx context.Context, ptt, rw hotkey.Hotkey, hybrid bool, longPress time.Duration) {
	var rewriteDown <-chan struct{}
	if rw != nil {
		rewriteDown = rw.Keydown()
	}

	start, stop := ptt.Keydown(), ptt.Keyup()
	var hy *hotkey.Hybrid
	if hybrid {
		hy = hotkey.NewHybrid(ptt, longPress)
		start, stop = hy.Start(), hy.StopChan()
	}

	for {
		select {
		case <-start:
			log.Info("hotkey_down")
			a.startRecording(ctx)
			select {
			case <-stop:
			case <-ctx.Done():
				a.stopRecording()
				return
			}
			if hy != nil && hy.IsToggle() {
				log.Info("toggle_stop")
			}
			a.stopRecording()
		case <-rewriteDown:
			a.rewriteSelection(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// close stops the session, releases the microphone and waits for pending
// clipboard restores.
func (a *app) close() {
	a.ctrl.Shutdown()
	a.dict.Close()
	if a.cancel != nil {
		a.cancel()
	}
	if a.rewriter != nil {
		a.rewriter.Wait()
	}
	a.clip.Wait()
	if err := a.helper.Close(); err != nil {
		log.Report("inject", "helper close", err)
	}
}
