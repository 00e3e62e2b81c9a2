package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNetworkMetricsSum(t *testing.T) {
	m := &NetworkMetrics{
		ConnWait:   10 * time.Millisecond,
		DNS:        20 * time.Millisecond,
		TCP:        30 * time.Millisecond,
		TLS:        40 * time.Millisecond,
		ReqHeaders: 5 * time.Millisecond,
		ReqBody:    15 * time.Millisecond,
		TTFB:       50 * time.Millisecond,
		Download:   25 * time.Millisecond,
	}
	if got, want := m.Sum(), 195*time.Millisecond; got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestTracedClientRecordsIntoContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	m := &NetworkMetrics{}
	req, _ := http.NewRequestWithContext(withMetrics(context.Background(), m), http.MethodGet, srv.URL, nil)
	resp, err := NewTracedClient("").Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metrics != m {
		t.Error("response metrics are not the context's")
	}
	if string(resp.Body) != "ok" || resp.StatusCode != 200 {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
	if m.Total <= 0 || m.TTFB <= 0 {
		t.Errorf("timings not recorded: %+v", m)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code    int
		wantErr bool
	}{
		{200, false},
		{204, false},
		{401, true},
		{500, true},
	}
	for _, tt := range tests {
		err := CheckStatus("groq", &TracedResponse{StatusCode: tt.code, Body: []byte("body")})
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckStatus(%d) = %v", tt.code, err)
		}
		var se *StatusError
		if tt.wantErr && (!errors.As(err, &se) || se.Code != tt.code) {
			t.Errorf("CheckStatus(%d) = %v, want *StatusError", tt.code, err)
		}
	}
}
