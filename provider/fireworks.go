package provider

const fireworksURL = "https://audio-prod.us-virginia-1.direct.fireworks.ai/v1/audio/transcriptions"

func NewFireworks(opts Options) (*Batch, error) {
	url := opts.endpoint(fireworksURL)
	return NewBatch("fireworks", &whisperUpload{
		vendor: "fireworks",
		url:    url,
		lang:   uploadLanguage(opts.Language),
		fields: []formField{
			{"vad_model", "silero"},
			{"alignment_model", "tdnn_ffn"},
			{"response_format", "json"},
			{"preprocessing", "none"},
			{"temperature", "0,0.2,0.4,0.6,0.8,1"},
			{"timestamp_granularities", "segment"},
		},
		auth:   bearer(opts.APIKey),
		client: NewTracedClient(url),
	}, opts)
}
