package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// minUploadBytes rejects segments too small to hold any audio past the header.
const minUploadBytes = 100

type formField struct {
	name, value string
}

// whisperUpload posts a segment as multipart form data to an
// OpenAI-style /audio/transcriptions endpoint.
type whisperUpload struct {
	vendor string
	url    string
	lang   string
	fields []formField
	auth   func(h http.Header)
	client *TracedClient
}

type whisperResponse struct {
	Text    string `json:"text"`
	Results []struct {
		Text string `json:"text"`
	} `json:"results"`
}

func bearer(key string) func(http.Header) {
	return func(h http.Header) { h.Set("Authorization", "Bearer "+key) }
}

func (w *whisperUpload) Warm() { w.client.Warm() }

func (w *whisperUpload) TranscribeSegment(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) < minUploadBytes {
		return "", &BackendError{Vendor: w.vendor, Op: "transcribe", Err: fmt.Errorf("audio too small (%d bytes)", len(audio))}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="segment.%s"`, format))
	h.Set("Content-Type", "audio/"+format)
	part, err := writer.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	for _, f := range w.fields {
		writer.WriteField(f.name, f.value)
	}
	if w.lang != "" {
		writer.WriteField("language", w.lang)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return "", err
	}
	w.auth(req.Header)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", &BackendError{Vendor: w.vendor, Op: "upload", Err: err}
	}
	if err := CheckStatus(w.vendor, resp); err != nil {
		return "", &BackendError{Vendor: w.vendor, Op: "upload", Err: err}
	}

	var r whisperResponse
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return "", &BackendError{Vendor: w.vendor, Op: "decode", Err: fmt.Errorf("%s response parse error: %w", w.vendor, err)}
	}
	if t := strings.TrimSpace(r.Text); t != "" {
		return t, nil
	}
	for _, res := range r.Results {
		if t := strings.TrimSpace(res.Text); t != "" {
			return t, nil
		}
	}
	// Silence or noise: the vendor answered but heard nothing.
	return "", nil
}
