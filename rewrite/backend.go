package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"voicetype/provider"
)

var (
	ErrUnknownBackend = errors.New("unknown rewrite provider")
	ErrRateLimited    = errors.New("rate limit exceeded, try again shortly")
	ErrInvalidKey     = errors.New("invalid API key")
)

const (
	temperature = 0.2
	topP        = 1.0
	maxTokens   = 1024
)

// Backend rewrites text following prompt.
type Backend interface {
	Name() string
	Rewrite(ctx context.Context, prompt, text string) (string, error)
}

// Backends lists the accepted rewrite provider names. The first is the
// default.
var Backends = []string{"groq", "sambanova", "fireworks", "gemini-flash", "gemini-flash-lite", "mistral"}

type openAIEndpoint struct {
	base  string
	model string
}

var openAIEndpoints = map[string]openAIEndpoint{
	"groq":      {"https://api.groq.com/openai/v1", "openai/gpt-oss-120b"},
	"sambanova": {"https://api.sambanova.ai/v1", "Meta-Llama-3.3-70B-Instruct"},
	"fireworks": {"https://api.fireworks.ai/inference/v1", "accounts/fireworks/models/gpt-oss-20b"},
}

// NewBackend builds the named backend. endpoint overrides the vendor's base
// URL and is meant for tests.
func NewBackend(name, apiKey, endpoint string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Backends[0]
	}
	if !slices.Contains(Backends, name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", name, provider.ErrMissingKey)
	}

	if ep, ok := openAIEndpoints[name]; ok {
		base := ep.base
		if endpoint != "" {
			base = endpoint
		}
		return newOpenAIBackend(name, base, ep.model, apiKey), nil
	}
	switch name {
	case "mistral":
		url := mistralURL
		if endpoint != "" {
			url = endpoint
		}
		return &mistralBackend{url: url, key: apiKey, client: provider.NewTracedClient("")}, nil
	default:
		base := provider.GeminiBaseURL
		if endpoint != "" {
			base = endpoint
		}
		model := "gemini-flash-latest"
		if name == "gemini-flash-lite" {
			model = "gemini-flash-lite-latest"
		}
		return &geminiBackend{name: name, base: base, model: model, key: apiKey, client: provider.NewTracedClient("")}, nil
	}
}

type openAIBackend struct {
	name   string
	model  string
	client openai.Client
}

func newOpenAIBackend(name, base, model, key string) *openAIBackend {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &openAIBackend{
		name:  name,
		model: model,
		client: openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(base),
			option.WithMaxRetries(0),
		),
	}
}

func (b *openAIBackend) Name() string { return b.name }

func (b *openAIBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt + "\n\n" + text),
		},
		Temperature:         openai.Float(temperature),
		TopP:                openai.Float(topP),
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", classify(b.name, err)
	}
	for _, c := range resp.Choices {
		if t := strings.TrimSpace(c.Message.Content); t != "" {
			return t, nil
		}
	}
	return "", nil
}

const mistralURL = "https://api.mistral.ai/v1/conversations"

type mistralInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralArgs struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
}

type mistralRequest struct {
	Model          string         `json:"model"`
	Inputs         []mistralInput `json:"inputs"`
	Tools          []any          `json:"tools"`
	CompletionArgs mistralArgs    `json:"completion_args"`
	Stream         bool           `json:"stream"`
	Instructions   string         `json:"instructions"`
}

type mistralResponse struct {
	Outputs []struct {
		Content json.RawMessage `json:"content"`
	} `json:"outputs"`
}

type mistralBackend struct {
	url    string
	key    string
	client *provider.TracedClient
}

func (b *mistralBackend) Name() string { return "mistral" }

func (b *mistralBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	body, err := json.Marshal(mistralRequest{
		Model:          "mistral-small-latest",
		Inputs:         []mistralInput{{Role: "user", Content: prompt + "\n\n" + text}},
		Tools:          []any{},
		CompletionArgs: mistralArgs{Temperature: temperature, MaxTokens: maxTokens, TopP: topP},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", b.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", classify("mistral", err)
	}
	if err := provider.CheckStatus("mistral", resp); err != nil {
		return "", classify("mistral", err)
	}

	var r mistralResponse
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return "", fmt.Errorf("mistral response parse error: %w", err)
	}
	for _, out := range r.Outputs {
		if t := strings.TrimSpace(contentText(out.Content)); t != "" {
			return t, nil
		}
	}
	return "", nil
}

// contentText reads an output's content, which is either a string or a
// list of text chunks.
func contentText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var chunks []struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &chunks) != nil {
		return ""
	}
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

type geminiBackend struct {
	name   string
	base   string
	model  string
	key    string
	client *provider.TracedClient
}

func (b *geminiBackend) Name() string { return b.name }

func (b *geminiBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	out, err := provider.GeminiGenerate(ctx, b.client, b.base, b.model, b.key, []provider.GeminiPart{
		{Text: prompt},
		{Text: text},
	})
	if err != nil {
		return "", classify(b.name, err)
	}
	return out, nil
}

// classify maps rate-limit and auth failures to sentinel errors.
func classify(vendor string, err error) error {
	code := 0
	var apiErr *openai.Error
	var statusErr *provider.StatusError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.StatusCode
	case errors.As(err, &statusErr):
		code = statusErr.Code
	}
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", vendor, ErrRateLimited)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", vendor, ErrInvalidKey)
	}
	return &provider.BackendError{Vendor: vendor, Op: "rewrite", Err: err}
}
