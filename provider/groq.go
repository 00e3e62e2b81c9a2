package provider

const groqURL = "https://api.groq.com/openai/v1/audio/transcriptions"

// NewGroq transcribes segments with Whisper large-v3-turbo on Groq.
func NewGroq(opts Options) (*Batch, error) {
	url := opts.endpoint(groqURL)
	return NewBatch("groq", &whisperUpload{
		vendor: "groq",
		url:    url,
		lang:   uploadLanguage(opts.Language),
		fields: []formField{
			{"model", "whisper-large-v3-turbo"},
			{"response_format", "verbose_json"},
		},
		auth:   bearer(opts.APIKey),
		client: NewTracedClient(url),
	}, opts)
}

// uploadLanguage maps the auto-detect spellings to an omitted parameter.
func uploadLanguage(lang string) string {
	switch lang {
	case "", "multi", "multilingual", "auto":
		return ""
	}
	return lang
}
