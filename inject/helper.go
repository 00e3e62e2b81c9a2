package inject

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"voicetype/log"
)

// ErrNoHelper is returned when no keystroke helper is configured for this OS.
var ErrNoHelper = errors.New("no keystroke helper available")

// HelperStrategy types text by writing SendKeys-escaped lines to a
// long-running helper process. The helper is started on first use and
// restarted on the next call after it exits.
type HelperStrategy struct {
	command []string
	stdout  io.Writer

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	exited chan struct{}
	starts int
}

// NewHelperStrategy runs command as the helper. An empty command selects the
// platform default, which may be none.
func NewHelperStrategy(command ...string) *HelperStrategy {
	if len(command) == 0 {
		command = defaultHelperCommand()
	}
	return &HelperStrategy{command: command}
}

// SetOutput sends the helper's stdout and stderr to w.
func (h *HelperStrategy) SetOutput(w io.Writer) {
	h.mu.Lock()
	h.stdout = w
	h.mu.Unlock()
}

func (h *HelperStrategy) Name() string { return "direct" }

func (h *HelperStrategy) Inject(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensure(); err != nil {
		return err
	}
	if _, err := io.WriteString(h.stdin, EscapeSendKeys(text)+"\n"); err != nil {
		h.kill()
		return fmt.Errorf("write to helper: %w", err)
	}
	return nil
}

func (h *HelperStrategy) ensure() error {
	if h.cmd != nil {
		select {
		case <-h.exited:
			log.Warn("keystroke helper exited, restarting")
			h.cmd, h.stdin = nil, nil
		default:
			return nil
		}
	}
	if len(h.command) == 0 {
		return ErrNoHelper
	}

	cmd := exec.Command(h.command[0], h.command[1:]...)
	if h.stdout != nil {
		cmd.Stdout = h.stdout
		cmd.Stderr = h.stdout
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start helper: %w", err)
	}
	exited := make(chan struct{})
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warnf("keystroke helper: %v", err)
		}
		close(exited)
	}()
	h.cmd, h.stdin, h.exited = cmd, stdin, exited
	h.starts++
	log.Infof("keystroke helper started (pid %d)", cmd.Process.Pid)
	return nil
}

func (h *HelperStrategy) kill() {
	if h.cmd == nil {
		return
	}
	h.stdin.Close()
	h.cmd.Process.Kill()
	<-h.exited
	h.cmd, h.stdin = nil, nil
}

// Running reports whether a helper process is alive.
func (h *HelperStrategy) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil {
		return false
	}
	select {
	case <-h.exited:
		return false
	default:
		return true
	}
}

// Starts counts how many times the helper has been launched.
func (h *HelperStrategy) Starts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.starts
}

// Close ends the helper, giving it a moment to exit on EOF first.
func (h *HelperStrategy) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil {
		return nil
	}
	h.stdin.Close()
	select {
	case <-h.exited:
	case <-time.After(time.Second):
		h.cmd.Process.Kill()
		<-h.exited
	}
	h.cmd, h.stdin = nil, nil
	return nil
}
