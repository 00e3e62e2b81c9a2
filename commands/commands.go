// Package commands turns a raw transcript into literal text, keystrokes and
// mode tokens using a per-language table of spoken phrases.
package commands

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is what a matched phrase does.
type Kind int

const (
	KindLiteral Kind = iota
	KindKey
	KindDeleteWord
	KindMode
)

// Mode tokens. They are reported in the Plan and left to the caller.
const (
	ModePause   = "pause_dictation"
	ModeGrammar = "grammar_correct"
	ModeRewrite = "rewrite"
)

type Action struct {
	Kind  Kind
	Value string
}

func Lit(s string) Action      { return Action{Kind: KindLiteral, Value: s} }
func Key(name string) Action   { return Action{Kind: KindKey, Value: name} }
func Mode(token string) Action { return Action{Kind: KindMode, Value: token} }
func DeleteWord() Action       { return Action{Kind: KindDeleteWord} }

type Command struct {
	Phrase string
	Action Action
}

type entry struct {
	Command
	re *regexp.Regexp
}

// Table is an ordered, read-only command table.
type Table struct {
	lang    string
	entries []entry
}

// NewTable compiles cmds in order. A phrase that contains punctuation also
// matches in its stripped form, so commands survive unformatted transcripts.
func NewTable(lang string, cmds []Command) *Table {
	t := &Table{lang: lang}
	for _, c := range cmds {
		t.add(c)
		if stripped := Normalize(c.Phrase, false); stripped != "" && stripped != strings.ToLower(c.Phrase) {
			t.add(Command{Phrase: stripped, Action: c.Action})
		}
	}
	return t
}

func (t *Table) add(c Command) {
	t.entries = append(t.entries, entry{
		Command: c,
		re:      regexp.MustCompile(`(?i)` + regexp.QuoteMeta(c.Phrase)),
	})
}

// ForLanguage returns the table for lang, falling back to English for
// unknown codes, "multi" and "auto".
func ForLanguage(lang string) *Table {
	code := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	cmds, ok := builtin[code]
	if !ok {
		code, cmds = "en", english
	}
	return NewTable(code, cmds)
}

func (t *Table) Lang() string { return t.lang }

// Commands returns the table in match order.
func (t *Table) Commands() []Command {
	out := make([]Command, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Command
	}
	return out
}

// Plan is the result of parsing one transcript.
type Plan struct {
	// Remaining is the transcript with every command phrase removed.
	Remaining string
	// Processed holds literal insertions, each followed by a space.
	Processed string
	// Keys are keystrokes in the order they were matched.
	Keys      []string
	KeyAction bool
	Modes     []string
}

// Empty reports whether there is nothing to type or press.
func (p Plan) Empty() bool {
	return p.Remaining == "" && p.Processed == "" && len(p.Keys) == 0
}

// Parse walks the table in order. For each phrase every standalone match is
// removed from the remaining text, then the action runs once per match.
// It returns false for a blank transcript.
func (t *Table) Parse(text string) (Plan, bool) {
	remaining := strings.TrimSpace(text)
	if remaining == "" {
		return Plan{}, false
	}

	var plan Plan
	var processed strings.Builder
	for _, e := range t.entries {
		var n int
		remaining, n = removeAll(e.re, remaining)
		for range n {
			switch e.Action.Kind {
			case KindLiteral:
				processed.WriteString(e.Action.Value)
				processed.WriteByte(' ')
			case KindKey:
				plan.Keys = append(plan.Keys, e.Action.Value)
				plan.KeyAction = true
			case KindDeleteWord:
				remaining = dropLastWord(remaining)
			case KindMode:
				plan.Modes = append(plan.Modes, e.Action.Value)
			}
		}
	}
	plan.Remaining = collapse(remaining)
	plan.Processed = processed.String()
	return plan, true
}

// removeAll deletes every standalone occurrence matched by re and reports
// how many were removed.
func removeAll(re *regexp.Regexp, s string) (string, int) {
	var b strings.Builder
	n, last := 0, 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if !standalone(s, loc[0], loc[1]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteByte(' ')
		last = loc[1]
		n++
	}
	if n == 0 {
		return s, 0
	}
	b.WriteString(s[last:])
	return b.String(), n
}

// standalone checks word boundaries on both sides of s[start:end]. RE2's \b
// only knows ASCII, which would split "paréntesis".
func standalone(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWord(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWord(r) {
			return false
		}
	}
	return true
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_'
}

func dropLastWord(s string) string {
	words := strings.Fields(s)
	if len(words) <= 1 {
		return ""
	}
	return strings.Join(words[:len(words)-1], " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
