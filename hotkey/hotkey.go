package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// Binding is a Ctrl/Shift chord on a single key.
type Binding struct {
	Name  string
	Ctrl  bool
	Shift bool
	// Key is ' ' or a lowercase letter.
	Key rune
}

var (
	PushToTalk = Binding{Name: "Ctrl+Shift+Space", Ctrl: true, Shift: true, Key: ' '}
	Rewrite    = Binding{Name: "Ctrl+Shift+R", Ctrl: true, Shift: true, Key: 'r'}
)
