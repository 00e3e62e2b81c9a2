package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"voicetype/encoder"
)

const (
	cartesiaURL     = "wss://api.cartesia.ai/stt/websocket"
	cartesiaVersion = "2025-04-16"
)

type cartesiaMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Message string `json:"message"`
}

// cartesiaConn is written only from the sender goroutine; Close uses a
// control frame, which gorilla allows concurrently.
type cartesiaConn struct {
	conn *websocket.Conn
}

// NewCartesia streams to Cartesia ink-whisper. Loud frames are softened
// before sending so automatic gain spikes do not clip.
func NewCartesia(opts Options) *Stream {
	s := newStream("cartesia", opts, func(ctx context.Context) (rawStream, error) {
		return dialCartesia(ctx, opts)
	})
	s.shape = softClip
	return s
}

func cartesiaEndpoint(opts Options) (string, error) {
	endpoint, err := url.Parse(opts.endpoint(cartesiaURL))
	if err != nil {
		return "", err
	}
	q := endpoint.Query()
	q.Set("model", "ink-whisper")
	q.Set("encoding", "pcm_s16le")
	q.Set("sample_rate", strconv.Itoa(encoder.SampleRate))
	q.Set("api_key", opts.APIKey)
	q.Set("cartesia_version", cartesiaVersion)
	if lang := uploadLanguage(opts.Language); lang != "" {
		q.Set("language", lang)
	}
	endpoint.RawQuery = q.Encode()
	return endpoint.String(), nil
}

func dialCartesia(ctx context.Context, opts Options) (rawStream, error) {
	endpoint, err := cartesiaEndpoint(opts)
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &cartesiaConn{conn: conn}, nil
}

func (c *cartesiaConn) Send(pcm []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, pcm)
}

func (c *cartesiaConn) CloseSend() error {
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte("finalize")); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte("done"))
}

func (c *cartesiaConn) Recv() (streamUpdate, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return streamUpdate{}, err
		}
		var msg cartesiaMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return streamUpdate{}, err
		}
		switch msg.Type {
		case "transcript":
			return streamUpdate{Transcript: msg.Text, IsFinal: msg.IsFinal}, nil
		case "flush_done", "done":
			return streamUpdate{FromFinalize: true}, nil
		case "error":
			return streamUpdate{}, &BackendError{Vendor: "cartesia", Op: "recv", Err: errors.New(msg.Message)}
		}
	}
}

func (c *cartesiaConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

// softClip attenuates the loud part of frames whose peak nears full scale.
func softClip(samples []float32) {
	var peak float32
	for _, x := range samples {
		if x < 0 {
			x = -x
		}
		peak = max(peak, x)
	}
	if peak <= 0.9 {
		return
	}
	for i, x := range samples {
		if x > 0.5 || x < -0.5 {
			samples[i] = x * 0.3
		}
	}
}
