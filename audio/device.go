package audio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// FindDevice returns the device whose name matches (case-insensitive), or nil
// for the system default when name is empty.
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if strings.EqualFold(devices[i].Name, name) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("device %q not found", name)
}

type pickerKey int

const (
	keyNone pickerKey = iota
	keyUp
	keyDown
	keyEnter
	keyCancel
)

func decodeKey(buf []byte) pickerKey {
	switch {
	case len(buf) == 1 && buf[0] == 13:
		return keyEnter
	case len(buf) == 1 && (buf[0] == 3 || buf[0] == 'q'):
		return keyCancel
	case len(buf) == 1 && buf[0] == 'j':
		return keyDown
	case len(buf) == 1 && buf[0] == 'k':
		return keyUp
	case len(buf) == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A':
		return keyUp
	case len(buf) == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B':
		return keyDown
	}
	return keyNone
}

func moveCursor(cursor, n int, k pickerKey) int {
	switch k {
	case keyUp:
		if cursor > 0 {
			cursor--
		}
	case keyDown:
		if cursor < n-1 {
			cursor++
		}
	}
	return cursor
}

func renderDevices(w io.Writer, devices []DeviceInfo, cursor int) {
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Select microphone (↑/↓, Enter to confirm, q to cancel):\r\n\r\n")
	for i, d := range devices {
		tag := ""
		if IsBluetooth(d.Name) {
			tag = " \x1b[33m[bluetooth: lower quality]\x1b[0m"
		}
		if i == cursor {
			fmt.Fprintf(w, "  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, tag)
		}
	}
}

// SelectDevice presents an interactive picker on the terminal. With a single
// device it returns that device without prompting. Cancelling returns nil
// (system default).
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderDevices(os.Stdout, devices, cursor)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch k := decodeKey(buf[:n]); k {
		case keyEnter:
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case keyCancel:
			fmt.Print("\r\n")
			return nil, nil
		default:
			cursor = moveCursor(cursor, len(devices), k)
		}
		fmt.Printf("\x1b[%dA", len(devices)+2)
		renderDevices(os.Stdout, devices, cursor)
	}
}
