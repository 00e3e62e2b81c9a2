package provider

const sambanovaURL = "https://api.sambanova.ai/v1/audio/transcriptions"

func NewSambaNova(opts Options) (*Batch, error) {
	url := opts.endpoint(sambanovaURL)
	return NewBatch("sambanova", &whisperUpload{
		vendor: "sambanova",
		url:    url,
		lang:   uploadLanguage(opts.Language),
		fields: []formField{
			{"model", "Whisper-Large-v3"},
			{"response_format", "json"},
			{"stream", "false"},
		},
		auth:   bearer(opts.APIKey),
		client: NewTracedClient(url),
	}, opts)
}
