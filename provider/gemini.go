package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	GeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models/"
	geminiTranscribe = "gemini-flash-lite-latest"
	geminiPrompt     = "Generate a transcript of the speech."
)

type GeminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// GeminiPart is either text or inline data.
type GeminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *GeminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiGenerate calls generateContent on model and returns the first
// non-empty text part. base is the models URL prefix.
func GeminiGenerate(ctx context.Context, c *TracedClient, base, model, key string, parts []GeminiPart) (string, error) {
	buf, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return "", err
	}
	endpoint := base + model + ":generateContent?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	if err := CheckStatus("gemini", resp); err != nil {
		return "", err
	}

	var r geminiResponse
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return "", fmt.Errorf("gemini response parse error: %w", err)
	}
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if t := strings.TrimSpace(p.Text); t != "" {
				return t, nil
			}
		}
	}
	return "", nil
}

type geminiUpload struct {
	base   string
	key    string
	client *TracedClient
}

func (g *geminiUpload) Warm() { g.client.Warm() }

func (g *geminiUpload) TranscribeSegment(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) < minUploadBytes {
		return "", &BackendError{Vendor: "gemini", Op: "transcribe", Err: fmt.Errorf("audio too small (%d bytes)", len(audio))}
	}
	text, err := GeminiGenerate(ctx, g.client, g.base, geminiTranscribe, g.key, []GeminiPart{
		{Text: geminiPrompt},
		{InlineData: &GeminiInlineData{MimeType: "audio/" + format, Data: base64.StdEncoding.EncodeToString(audio)}},
	})
	if err != nil {
		return "", &BackendError{Vendor: "gemini", Op: "generate", Err: err}
	}
	return text, nil
}

// NewGemini transcribes segments by prompting Gemini Flash Lite with inline
// audio. Language is not sent; the model detects it.
func NewGemini(opts Options) (*Batch, error) {
	base := opts.endpoint(GeminiBaseURL)
	return NewBatch("gemini", &geminiUpload{
		base:   base,
		key:    opts.APIKey,
		client: NewTracedClient(""),
	}, opts)
}
