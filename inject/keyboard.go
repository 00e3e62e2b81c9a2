package inject

import (
	"fmt"
	"strings"
	"sync"

	"github.com/micmonay/keybd_event"
)

// Keyboard synthesizes named keystrokes such as "enter" or "ctrl+v".
type Keyboard interface {
	Press(key string) error
}

type combo struct {
	code  int
	ctrl  bool
	shift bool
	alt   bool
	super bool
}

// parseCombo resolves "mod+mod+key". "ctrl" is the platform's primary
// shortcut modifier, so "ctrl+v" pastes on every OS.
func parseCombo(name string) (combo, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(name)), "+")
	key := parts[len(parts)-1]
	code, ok := keyCodes[key]
	if !ok {
		return combo{}, fmt.Errorf("unknown key %q", name)
	}
	c := combo{code: code}
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl", "control":
			if primaryIsSuper {
				c.super = true
			} else {
				c.ctrl = true
			}
		case "shift":
			c.shift = true
		case "alt", "option":
			c.alt = true
		case "super", "cmd", "win":
			c.super = true
		default:
			return combo{}, fmt.Errorf("unknown modifier %q in %q", mod, name)
		}
	}
	return c, nil
}

// KeybdKeyboard drives the OS keyboard through keybd_event.
type KeybdKeyboard struct {
	mu   sync.Mutex
	once sync.Once
	kb   keybd_event.KeyBonding
	err  error
}

func NewKeyboard() *KeybdKeyboard {
	return &KeybdKeyboard{}
}

// Init creates the virtual keyboard. Linux needs a moment before the
// compositor accepts events from it, so call this at startup.
func (k *KeybdKeyboard) Init() error {
	k.once.Do(func() {
		k.kb, k.err = keybd_event.NewKeyBonding()
	})
	return k.err
}

func (k *KeybdKeyboard) Press(key string) error {
	c, err := parseCombo(key)
	if err != nil {
		return err
	}
	if err := k.Init(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.SetKeys(c.code)
	k.kb.HasCTRL(c.ctrl)
	k.kb.HasSHIFT(c.shift)
	k.kb.HasALT(c.alt)
	k.kb.HasSuper(c.super)
	return k.kb.Launching()
}
