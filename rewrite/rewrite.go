// Package rewrite replaces the selected text in the focused application with
// an LLM-rewritten version, going through the clipboard.
package rewrite

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicetype/inject"
	"voicetype/log"
)

const (
	SettleDelay  = 100 * time.Millisecond
	RestoreDelay = inject.RestoreDelay
)

// Outcome is how a rewrite request ended.
type Outcome string

const (
	OutcomeRewritten Outcome = "rewritten"
	OutcomeEmpty     Outcome = "empty"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

type Result struct {
	ID      string
	Outcome Outcome
	Text    string
	Err     error
}

// Focus serializes access to the clipboard and the focused window, normally
// an *inject.Injector.
type Focus interface {
	Exclusive(fn func() error) error
}

// Config wires a Manager to the desktop.
type Config struct {
	Clipboard    inject.Clipboard
	Keys         inject.Keyboard
	Focus        Focus // nil runs unserialized
	Settle       time.Duration
	RestoreDelay time.Duration
}

type job struct {
	cancel   context.CancelFunc
	finished chan struct{}
}

// Manager runs rewrites. Each requester has at most one in flight; a new
// request or an Abort cancels the previous one, which restores its
// clipboard snapshot before anything else proceeds.
type Manager struct {
	cfg     Config
	backend Backend
	mode    string

	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

func NewManager(cfg Config, backend Backend, mode string) *Manager {
	if cfg.Settle == 0 {
		cfg.Settle = SettleDelay
	}
	if cfg.RestoreDelay == 0 {
		cfg.RestoreDelay = RestoreDelay
	}
	if mode == "" {
		mode = DefaultMode
	}
	return &Manager{cfg: cfg, backend: backend, mode: mode, jobs: make(map[string]*job)}
}

// Rewrite starts a request in the background using the manager's mode. done
// is called exactly once with the result.
func (m *Manager) Rewrite(ctx context.Context, requester string, done func(Result)) {
	m.RewriteMode(ctx, requester, m.mode, done)
}

// RewriteMode is Rewrite with an explicit preset.
func (m *Manager) RewriteMode(ctx context.Context, requester, mode string, done func(Result)) {
	jctx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel, finished: make(chan struct{})}

	m.mu.Lock()
	prev := m.jobs[requester]
	m.jobs[requester] = j
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(j.finished)
		defer cancel()

		if prev != nil {
			prev.cancel()
			<-prev.finished
		}
		res := m.exclusive(jctx, mode)

		m.mu.Lock()
		if m.jobs[requester] == j {
			delete(m.jobs, requester)
		}
		m.mu.Unlock()
		if done != nil {
			done(res)
		}
	}()
}

// Abort cancels the requester's rewrite, waits for it to restore the
// clipboard, then calls done.
func (m *Manager) Abort(requester string, done func(Result)) {
	m.mu.Lock()
	j := m.jobs[requester]
	delete(m.jobs, requester)
	m.mu.Unlock()

	if j != nil {
		j.cancel()
		<-j.finished
	}
	if done != nil {
		done(Result{Outcome: OutcomeAborted})
	}
}

// InFlight reports whether requester has a rewrite running.
func (m *Manager) InFlight(requester string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[requester]
	return ok
}

// Wait blocks until every started request has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// exclusive runs the request while holding the focus lock, from snapshot to
// restore.
func (m *Manager) exclusive(ctx context.Context, mode string) Result {
	if m.cfg.Focus == nil {
		return m.run(ctx, mode)
	}
	var res Result
	m.cfg.Focus.Exclusive(func() error {
		res = m.run(ctx, mode)
		return res.Err
	})
	return res
}

func (m *Manager) run(ctx context.Context, mode string) Result {
	res := Result{ID: uuid.NewString()}
	start := time.Now()
	defer func() {
		log.Rewrite(res.ID, m.backend.Name(), mode, string(res.Outcome), time.Since(start))
		if res.Err != nil {
			log.Report("rewrite", m.backend.Name(), res.Err)
		}
	}()

	if ctx.Err() != nil {
		res.Outcome = OutcomeCancelled
		return res
	}
	clip, keys := m.cfg.Clipboard, m.cfg.Keys
	snapshot, err := clip.Read()
	if err != nil {
		log.Warnf("rewrite: clipboard snapshot failed: %v", err)
	}
	restore := func() {
		if err := clip.Write(snapshot); err != nil {
			log.Report("rewrite", "restore", err)
		}
	}

	prompt, err := Prompt(mode)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}

	// Cleared first so an empty selection reads back as empty.
	if err := clip.Write(""); err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	if err := keys.Press("ctrl+c"); err != nil {
		restore()
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	if !sleep(ctx, m.cfg.Settle) {
		restore()
		res.Outcome = OutcomeCancelled
		return res
	}
	selected, err := clip.Read()
	if err != nil || strings.TrimSpace(selected) == "" {
		restore()
		res.Outcome = OutcomeEmpty
		return res
	}

	out, err := m.backend.Rewrite(ctx, prompt, selected)
	if ctx.Err() != nil {
		restore()
		res.Outcome = OutcomeCancelled
		return res
	}
	if err != nil || strings.TrimSpace(out) == "" {
		restore()
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}

	res.Text = out
	if err := clip.Write(out); err != nil {
		restore()
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	if err := keys.Press("ctrl+v"); err != nil {
		restore()
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	// The paste has been sent; the snapshot goes back regardless of what is
	// on the clipboard now. An abort only shortens the wait.
	sleep(ctx, m.cfg.RestoreDelay)
	restore()
	res.Outcome = OutcomeRewritten
	return res
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
