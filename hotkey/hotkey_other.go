//go:build !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

var xKeys = map[rune]hotkey.Key{
	' ': hotkey.KeySpace,
	'r': hotkey.KeyR,
}

type xHotkey struct {
	binding Binding
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
}

func New(b Binding) Hotkey {
	h := &xHotkey{
		binding: b,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
	key, ok := xKeys[b.Key]
	if !ok {
		return h
	}
	var mods []hotkey.Modifier
	if b.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if b.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	h.hk = hotkey.New(mods, key)
	return h
}

func (h *xHotkey) Register() error {
	if h.hk == nil {
		return fmt.Errorf("unsupported hotkey %s", h.binding.Name)
	}
	if err := h.hk.Register(); err != nil {
		return err
	}
	go func() {
		for range h.hk.Keydown() {
			h.keydown <- struct{}{}
		}
	}()
	go func() {
		for range h.hk.Keyup() {
			h.keyup <- struct{}{}
		}
	}()
	return nil
}

func (h *xHotkey) Unregister() {
	if h.hk != nil {
		h.hk.Unregister()
	}
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func Diagnose() (string, error) {
	return fmt.Sprintf("hotkey support available (%s, %s)", PushToTalk.Name, Rewrite.Name), nil
}
