package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nhooyr.io/websocket"

	"voicetype/encoder"
)

const (
	deepgramURL  = "wss://api.deepgram.com/v1/listen"
	dialTimeout  = 10 * time.Second
	deepgramRead = 1 << 20
)

type deepgramResponse struct {
	Type         string `json:"type"`
	IsFinal      bool   `json:"is_final"`
	SpeechFinal  bool   `json:"speech_final"`
	FromFinalize bool   `json:"from_finalize"`
	Channel      struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

type deepgramConn struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDeepgram streams to Deepgram nova-3.
func NewDeepgram(opts Options) *Stream {
	return newStream("deepgram", opts, func(ctx context.Context) (rawStream, error) {
		return dialDeepgram(ctx, opts)
	})
}

func deepgramEndpoint(opts Options) (string, error) {
	endpoint, err := url.Parse(opts.endpoint(deepgramURL))
	if err != nil {
		return "", err
	}
	lang := opts.Language
	if lang == "" || lang == "multilingual" || lang == "auto" {
		lang = "multi"
	}
	formatting := strconv.FormatBool(opts.Formatting)

	q := endpoint.Query()
	q.Set("model", "nova-3")
	q.Set("language", lang)
	q.Set("punctuate", formatting)
	q.Set("smart_format", formatting)
	q.Set("interim_results", "false")
	q.Set("endpointing", "100")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(encoder.SampleRate))
	endpoint.RawQuery = q.Encode()
	return endpoint.String(), nil
}

func dialDeepgram(ctx context.Context, opts Options) (rawStream, error) {
	endpoint, err := deepgramEndpoint(opts)
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	headers.Set("Authorization", "Token "+opts.APIKey)

	// The dial context outlives the handshake: it also bounds every read and
	// write on the connection. Only the handshake is on a timer.
	connCtx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(dialTimeout, cancel)
	conn, _, err := websocket.Dial(connCtx, endpoint, &websocket.DialOptions{HTTPHeader: headers})
	timer.Stop()
	if err != nil {
		cancel()
		return nil, err
	}
	conn.SetReadLimit(deepgramRead)
	return &deepgramConn{conn: conn, ctx: connCtx, cancel: cancel}, nil
}

func (d *deepgramConn) Send(pcm []byte) error {
	return d.conn.Write(d.ctx, websocket.MessageBinary, pcm)
}

func (d *deepgramConn) CloseSend() error {
	return d.conn.Write(d.ctx, websocket.MessageText, []byte(`{"type":"Finalize"}`))
}

func (d *deepgramConn) Recv() (streamUpdate, error) {
	for {
		_, data, err := d.conn.Read(d.ctx)
		if err != nil {
			return streamUpdate{}, err
		}
		var resp deepgramResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return streamUpdate{}, err
		}
		// Metadata, UtteranceEnd and SpeechStarted carry no transcript.
		if resp.Type != "" && resp.Type != "Results" {
			continue
		}
		transcript := ""
		if len(resp.Channel.Alternatives) > 0 {
			transcript = resp.Channel.Alternatives[0].Transcript
		}
		return streamUpdate{
			Transcript:   transcript,
			IsFinal:      resp.IsFinal,
			SpeechFinal:  resp.SpeechFinal,
			FromFinalize: resp.FromFinalize,
		}, nil
	}
}

func (d *deepgramConn) Close() error {
	defer d.cancel()
	return d.conn.Close(websocket.StatusNormalClosure, "")
}
