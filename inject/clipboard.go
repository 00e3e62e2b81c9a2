package inject

import (
	"context"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"

	"voicetype/log"
)

// RestoreDelay is how long a pasted text stays on the clipboard before the
// previous contents are put back.
const RestoreDelay = 500 * time.Millisecond

// Clipboard reads and writes the system text clipboard.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

type SystemClipboard struct{}

func (SystemClipboard) Read() (string, error)   { return cb.ReadAll() }
func (SystemClipboard) Write(text string) error { return cb.WriteAll(text) }

type pendingRestore struct {
	snapshot string
	timer    *time.Timer
	// done closes once the restore ran or was taken over.
	done chan struct{}
}

// ClipboardStrategy pastes text through the clipboard and restores the
// previous contents afterwards, unless something else overwrote them.
type ClipboardStrategy struct {
	clip  Clipboard
	keys  Keyboard
	delay time.Duration

	mu      sync.Mutex
	pending *pendingRestore
	wg      sync.WaitGroup
}

func NewClipboardStrategy(clip Clipboard, keys Keyboard, delay time.Duration) *ClipboardStrategy {
	return &ClipboardStrategy{clip: clip, keys: keys, delay: delay}
}

func (c *ClipboardStrategy) Name() string { return "clipboard" }

func (c *ClipboardStrategy) Inject(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.snapshot()
	if err := c.clip.Write(text); err != nil {
		return err
	}
	if err := c.keys.Press("ctrl+v"); err != nil {
		if werr := c.clip.Write(snapshot); werr != nil {
			log.Report("clipboard", "restore", werr)
		}
		return err
	}
	c.schedule(snapshot, text)
	return nil
}

// snapshot returns what the user had on the clipboard. A restore that has
// not happened yet still owns the original contents, so it is taken over.
func (c *ClipboardStrategy) snapshot() string {
	if p := c.pending; p != nil {
		c.pending = nil
		if p.timer.Stop() {
			close(p.done)
			c.wg.Done()
		}
		return p.snapshot
	}
	s, err := c.clip.Read()
	if err != nil {
		log.Warnf("clipboard snapshot failed: %v", err)
		return ""
	}
	return s
}

func (c *ClipboardStrategy) schedule(snapshot, text string) {
	p := &pendingRestore{snapshot: snapshot, done: make(chan struct{})}
	c.pending = p
	c.wg.Add(1)
	p.timer = time.AfterFunc(c.delay, func() {
		defer c.wg.Done()
		defer close(p.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.pending != p {
			return
		}
		c.pending = nil
		cur, err := c.clip.Read()
		if err != nil {
			log.Report("clipboard", "restore", err)
			return
		}
		if cur != text {
			log.Info("clipboard changed since paste, not restoring")
			return
		}
		if err := c.clip.Write(snapshot); err != nil {
			log.Report("clipboard", "restore", err)
		}
	})
}

// Settle blocks until the latest scheduled restore has run.
func (c *ClipboardStrategy) Settle() {
	c.mu.Lock()
	p := c.pending
	c.mu.Unlock()
	if p != nil {
		<-p.done
	}
}

// Wait blocks until scheduled restores have run.
func (c *ClipboardStrategy) Wait() {
	c.wg.Wait()
}
