//go:build linux

package inject

import "github.com/micmonay/keybd_event"

const primaryIsSuper = false

// evdev KEY_RIGHT
const keyRight = 106

var keyCodes = map[string]int{
	"enter":     keybd_event.VK_ENTER,
	"backspace": keybd_event.VK_BACKSPACE,
	"space":     keybd_event.VK_SPACE,
	"tab":       keybd_event.VK_TAB,
	"right":     keyRight,
	"a":         keybd_event.VK_A,
	"c":         keybd_event.VK_C,
	"s":         keybd_event.VK_S,
	"v":         keybd_event.VK_V,
	"x":         keybd_event.VK_X,
	"y":         keybd_event.VK_Y,
	"z":         keybd_event.VK_Z,
}
