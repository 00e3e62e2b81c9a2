package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"voicetype/audio"
	"voicetype/beep"
	"voicetype/doctor"
	"voicetype/hotkey"
	"voicetype/inject"
	"voicetype/log"
	"voicetype/settings"
	"voicetype/shutdown"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown(a *app, code int) {
	shutdownOnce.Do(func() {
		if a != nil {
			a.close()
		}
		log.Close()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(code)
	})
}

// assignments collects repeated -set key=value flags.
type assignments []string

func (s *assignments) String() string { return strings.Join(*s, ",") }

func (s *assignments) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run() {
	var sets assignments
	flag.Var(&sets, "set", "Store a setting (key=value) and exit; repeatable")
	settingsFlag := flag.String("settings", "", "settings directory (default: OS config dir)")
	providerFlag := flag.String("provider", "", "Transcription provider: "+strings.Join(settings.Vendors, ", "))
	langFlag := flag.String("lang", "", "Language code for transcription (e.g., en, es, fr). Empty = stored setting")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven): voicetype -test <wav-file>")
	fakeTextFlag := flag.String("fake-text", "hello world", "Transcript returned by -provider fake")
	hybridFlag := flag.Bool("hybrid", true, "Tap toggles recording, hold is push-to-talk")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "Long-press threshold for PTT vs tap (e.g., 350ms)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("voicetype %s\n", version)
		os.Exit(0)
	}

	settingsDir := *settingsFlag
	if settingsDir == "" {
		if settingsDir, err = settings.DefaultDir(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	store, err := settings.OpenBadger(settingsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening settings: %v\n", err)
		os.Exit(1)
	}

	if len(sets) > 0 {
		code := 0
		for _, s := range sets {
			key, value, err := settings.ParseAssignment(s)
			if err == nil {
				err = settings.Set(store, key, value)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				code = 1
				continue
			}
			fmt.Printf("%s updated\n", key)
		}
		store.Close()
		os.Exit(code)
	}

	cfg, err := settings.Load(store)
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	if *providerFlag != "" {
		cfg.Provider = *providerFlag
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: voicetype -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(cfg, args[0], *fakeTextFlag, *hybridFlag, *longPressFlag)
		return
	}

	if *doctorFlag {
		os.Exit(runDoctor(cfg, *deviceFlag))
	}

	// Resolve -setup into -device early (before daemonization)
	if *setupFlag && *deviceFlag == "" {
		ctx, err := audio.NewContext()
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		dev, err := audio.SelectDevice(ctx)
		if err != nil {
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		} else if dev != nil {
			*deviceFlag = dev.Name
		}
		ctx.Close()
	}

	// Daemonize in non-TUI mode: re-exec in background, return shell prompt
	if !*tuiFlag && os.Getenv("_VOICETYPE_BG") == "" {
		args := os.Args[1:]
		if *deviceFlag != "" {
			args = append(args, "-device", *deviceFlag)
		}
		exe, _ := os.Executable()
		cmd := exec.Command(exe, args...)
		cmd.Env = append(os.Environ(), "_VOICETYPE_BG=1")
		devnull, _ := os.Open(os.DevNull)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	var device *audio.DeviceInfo
	if *deviceFlag != "" {
		actx, err := audio.NewContext()
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Printf("Error initializing audio context: %v\n", err)
			os.Exit(1)
		}
		device, err = audio.FindDevice(actx, *deviceFlag)
		actx.Close()
		if err != nil {
			log.Warnf("device lookup failed: %v", err)
			fmt.Printf("Warning: %v, using system default\n", err)
		}
	}

	kb := inject.NewKeyboard()
	if err := kb.Init(); err != nil {
		log.Warnf("keyboard init failed: %v", err)
		fmt.Printf("Warning: keystroke init failed: %v\n", err)
		fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
	}

	if cfg.AudioCues {
		go beep.Init()
	}

	var events EventSink = newLineSink(nil)
	if *tuiFlag {
		events = tuiSink{}
	}
	a := newApp(cfg, appDeps{
		Open:      audio.NewContext,
		Device:    device,
		Clipboard: inject.SystemClipboard{},
		Keys:      kb,
		Events:    events,
	})

	// Start TUI
	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown(a, 0)
		}()

		<-tuiReady
	}

	ctx := context.Background()
	a.start(ctx)

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown(a, 0)
	}()

	ptt := hotkey.New(hotkey.PushToTalk)
	if err := ptt.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		gracefulShutdown(a, 1)
	}
	defer ptt.Unregister()

	var rw hotkey.Hotkey = hotkey.New(hotkey.Rewrite)
	if err := rw.Register(); err != nil {
		log.Warnf("rewrite hotkey unavailable: %v", err)
		rw = nil
	} else {
		defer rw.Unregister()
	}

	a.loop(ctx, ptt, rw, *hybridFlag, *longPressFlag)
}

func runDoctor(cfg settings.Settings, deviceName string) int {
	var device *audio.DeviceInfo
	if deviceName != "" {
		if actx, err := audio.NewContext(); err == nil {
			device, _ = audio.FindDevice(actx, deviceName)
			actx.Close()
		}
	}
	env := doctor.Env{
		Settings:  cfg,
		Open:      audio.NewContext,
		Device:    device,
		Clipboard: inject.SystemClipboard{},
		Keys:      inject.NewKeyboard().Init,
		Listen:    3 * time.Second,
		Prompt:    os.Stdout,
	}
	return doctor.Run(context.Background(), os.Stdout, doctor.Checks(env))
}
