package provider

import "net/http"

const mistralURL = "https://api.mistral.ai/v1/audio/transcriptions"

// NewMistral transcribes segments with Voxtral. Mistral authenticates with
// x-api-key rather than a bearer token.
func NewMistral(opts Options) (*Batch, error) {
	url := opts.endpoint(mistralURL)
	key := opts.APIKey
	return NewBatch("mistral", &whisperUpload{
		vendor: "mistral",
		url:    url,
		lang:   uploadLanguage(opts.Language),
		fields: []formField{{"model", "voxtral-mini-2507"}},
		auth:   func(h http.Header) { h.Set("x-api-key", key) },
		client: NewTracedClient(url),
	}, opts)
}
