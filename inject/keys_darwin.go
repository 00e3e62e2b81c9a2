//go:build darwin

package inject

import "github.com/micmonay/keybd_event"

// Shortcuts use Cmd on macOS.
const primaryIsSuper = true

// kVK_* codes from Carbon's Events.h.
const (
	kvkReturn     = 0x24
	kvkTab        = 0x30
	kvkSpace      = 0x31
	kvkDelete     = 0x33
	kvkRightArrow = 0x7C
)

var keyCodes = map[string]int{
	"enter":     kvkReturn,
	"backspace": kvkDelete,
	"space":     kvkSpace,
	"tab":       kvkTab,
	"right":     kvkRightArrow,
	"a":         keybd_event.VK_A,
	"c":         keybd_event.VK_C,
	"s":         keybd_event.VK_S,
	"v":         keybd_event.VK_V,
	"x":         keybd_event.VK_X,
	"y":         keybd_event.VK_Y,
	"z":         keybd_event.VK_Z,
}
