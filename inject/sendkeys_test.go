package inject

import (
	"strings"
	"testing"
)

func TestEscapeSendKeys(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"a+b", "a{+}b"},
		{"x^2 % y ~ z", "x{^}2 {%} y {~} z"},
		{"f(x)", "f{(}x{)}"},
		{"{braces}", "{{}braces{}}"},
		{"one\ntwo", "one{ENTER}two"},
		{"one\r\ntwo", "one{ENTER}two"},
		{"end\r\n", "end{ENTER}"},
		{"ünïcödé", "ünïcödé"},
	}
	for _, tt := range tests {
		got := EscapeSendKeys(tt.in)
		if got != tt.want {
			t.Errorf("EscapeSendKeys(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if strings.ContainsAny(got, "\r\n") {
			t.Errorf("EscapeSendKeys(%q) contains a line break", tt.in)
		}
	}
}

func TestParseCombo(t *testing.T) {
	tests := []struct {
		name    string
		ctrl    bool
		super   bool
		shift   bool
		wantErr bool
	}{
		{name: "enter"},
		{name: "ctrl+v", ctrl: !primaryIsSuper, super: primaryIsSuper},
		{name: "Ctrl+A", ctrl: !primaryIsSuper, super: primaryIsSuper},
		{name: "shift+tab", shift: true},
		{name: "cmd+c", super: true},
		{name: "hyper+v", wantErr: true},
		{name: "f13", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseCombo(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCombo() error = %v", err)
			}
			if err != nil {
				return
			}
			if c.ctrl != tt.ctrl || c.super != tt.super || c.shift != tt.shift {
				t.Errorf("parseCombo() = %+v", c)
			}
		})
	}
}
