package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store keys.
const (
	KeyProvider        = "provider"
	KeyLanguage        = "language"
	KeyFormatting      = "formatting"
	KeyInsertionMode   = "insertion_mode"
	KeyVoiceCommands   = "voice_commands"
	KeyAudioCues       = "audio_cues"
	KeyRewriteMode     = "rewrite_mode"
	KeyRewriteProvider = "rewrite_provider"
	KeySegmentFormat   = "segment_format"
	KeyHelperCommand   = "helper_command"
	keyAPIPrefix       = "api_key."
)

// Vendors whose keys are read from <VENDOR>_API_KEY.
var Vendors = []string{"groq", "gemini", "mistral", "sambanova", "fireworks", "deepgram", "cartesia"}

type Settings struct {
	Provider        string
	Language        string
	Formatting      bool
	InsertionMode   string
	VoiceCommands   bool
	AudioCues       bool
	RewriteMode     string
	RewriteProvider string
	SegmentFormat   string
	// HelperCommand is a space-separated keystroke helper command line.
	HelperCommand string
	APIKeys       map[string]string
}

func Defaults() Settings {
	return Settings{
		Provider:        "groq",
		Language:        "",
		Formatting:      true,
		InsertionMode:   "clipboard",
		VoiceCommands:   true,
		AudioCues:       true,
		RewriteMode:     "grammar_correction",
		RewriteProvider: "groq",
		SegmentFormat:   "wav",
		APIKeys:         make(map[string]string),
	}
}

// DefaultDir is where the settings database lives unless -settings is given.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "voicetype", "settings"), nil
}

// Load reads settings over the defaults. API keys from the environment win
// over stored ones.
func Load(s Store) (Settings, error) {
	st := Defaults()
	strs := []struct {
		key string
		dst *string
	}{
		{KeyProvider, &st.Provider},
		{KeyLanguage, &st.Language},
		{KeyInsertionMode, &st.InsertionMode},
		{KeyRewriteMode, &st.RewriteMode},
		{KeyRewriteProvider, &st.RewriteProvider},
		{KeySegmentFormat, &st.SegmentFormat},
		{KeyHelperCommand, &st.HelperCommand},
	}
	for _, f := range strs {
		v, ok, err := s.Get(f.key)
		if err != nil {
			return st, err
		}
		if ok {
			*f.dst = v
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyFormatting, &st.Formatting},
		{KeyVoiceCommands, &st.VoiceCommands},
		{KeyAudioCues, &st.AudioCues},
	}
	for _, f := range bools {
		v, ok, err := s.Get(f.key)
		if err != nil {
			return st, err
		}
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return st, fmt.Errorf("setting %s: %w", f.key, err)
		}
		*f.dst = b
	}

	for _, vendor := range Vendors {
		if v, ok, err := s.Get(keyAPIPrefix + vendor); err != nil {
			return st, err
		} else if ok && v != "" {
			st.APIKeys[vendor] = v
		}
		if v := os.Getenv(EnvKey(vendor)); v != "" {
			st.APIKeys[vendor] = v
		}
	}
	return st, nil
}

// EnvKey is the environment variable holding vendor's API key.
func EnvKey(vendor string) string {
	return strings.ToUpper(keyVendor(vendor)) + "_API_KEY"
}

// keyVendor maps provider names that share a key ("gemini-flash-lite")
// to the vendor that owns it.
func keyVendor(name string) string {
	if strings.HasPrefix(name, "gemini") {
		return "gemini"
	}
	return name
}

// APIKey returns the key for a transcription or rewrite provider name.
func (s Settings) APIKey(name string) string {
	return s.APIKeys[keyVendor(name)]
}

// Helper splits HelperCommand into argv.
func (s Settings) Helper() []string {
	return strings.Fields(s.HelperCommand)
}

// Set validates and stores one setting. Keys take the form api_key.<vendor>.
func Set(s Store, key, value string) error {
	switch key {
	case KeyFormatting, KeyVoiceCommands, KeyAudioCues:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	case KeyInsertionMode:
		if value != "direct" && value != "clipboard" {
			return fmt.Errorf("setting %s: want direct or clipboard, got %q", key, value)
		}
	case KeyProvider, KeyLanguage, KeyRewriteMode, KeyRewriteProvider, KeySegmentFormat, KeyHelperCommand:
	default:
		vendor, ok := strings.CutPrefix(key, keyAPIPrefix)
		if !ok || vendor == "" {
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	return s.Set(key, value)
}

// ParseAssignment splits "key=value".
func ParseAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("want key=value, got %q", s)
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), nil
}
