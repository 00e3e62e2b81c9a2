package inject

import "strings"

var sendKeysEscaper = strings.NewReplacer(
	"\r\n", "{ENTER}",
	"\r", "{ENTER}",
	"\n", "{ENTER}",
	"{", "{{}",
	"}", "{}}",
	"+", "{+}",
	"^", "{^}",
	"%", "{%}",
	"~", "{~}",
	"(", "{(}",
	")", "{)}",
)

// EscapeSendKeys quotes text for the SendKeys grammar. The result never
// contains a newline, so it fits on one protocol line.
func EscapeSendKeys(text string) string {
	return sendKeysEscaper.Replace(text)
}
