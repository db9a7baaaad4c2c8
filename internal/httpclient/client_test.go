package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewInstrumentedClient(
		WithProviderName("test"),
		WithBaseURL(srv.URL),
		WithHeaders(map[string]string{"X-Api-Key": "secret"}),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}
	return c
}

func TestGet_EncodesQueryAndHeaders(t *testing.T) {
	var gotQuery url.Values
	var gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-Api-Key")
		fmt.Fprint(w, `{"ok":true}`)
	})

	var out struct {
		OK bool `json:"ok"`
	}
	_, err := c.NewRequest().
		SetQueryParam("sellAmount", "100000000000000000").
		SetQueryValues(url.Values{"note": {"a&b=c"}}).
		SetResult(&out).
		Get(context.Background(), "/swap/permit2/price")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !out.OK {
		t.Error("expected result to be decoded")
	}
	if gotKey != "secret" {
		t.Errorf("expected default header, got %q", gotKey)
	}
	if gotQuery.Get("note") != "a&b=c" {
		t.Errorf("expected escaped query value round-trip, got %q", gotQuery.Get("note"))
	}
	if gotQuery.Get("sellAmount") != "100000000000000000" {
		t.Errorf("unexpected sellAmount %q", gotQuery.Get("sellAmount"))
	}
}

func TestGet_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	})

	var out map[string]any
	_, err := c.NewRequest().SetResult(&out).Get(context.Background(), "/x")

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", decodeErr.StatusCode)
	}
}

func TestGet_ErrorHandlerWins(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"name":"INPUT_INVALID"}`)
	})

	sentinel := errors.New("rejected")
	resp, err := c.NewRequestWithOptions(
		WithLabels(NewLabel("endpoint", "price")),
		WithResponseErrorHandler(func(status int, body []byte) error {
			if status >= 400 {
				return sentinel
			}
			return nil
		}),
	).Get(context.Background(), "/x")

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if resp == nil || string(resp.Body()) != `{"name":"INPUT_INVALID"}` {
		t.Error("expected response body to be returned with the error")
	}
}

func TestGet_ErrorStatusSkipsDecode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `oops`)
	})

	var out map[string]any
	resp, err := c.NewRequest().SetResult(&out).Get(context.Background(), "/x")
	if err != nil {
		t.Fatalf("expected no error without handler, got %v", err)
	}
	if !resp.IsError() {
		t.Error("expected error status")
	}
}

func TestSecretHeader_MaskedOnSpan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("0x-api-key") != "live-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	c, err := NewInstrumentedClient(
		WithBaseURL(srv.URL),
		WithSecretHeader("0x-api-key", "live-key"),
		WithHeaders(map[string]string{"0x-version": "v2"}),
		WithTraceOptions(tp.Tracer("test")),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	resp, err := c.NewRequestWithOptions(WithHeadersLogConfig(true)).Get(context.Background(), "/sources")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IsError() {
		t.Fatalf("expected secret header to be sent, got status %d", resp.StatusCode)
	}

	var masked, version string
	for _, span := range recorder.Ended() {
		for _, event := range span.Events() {
			for _, attr := range event.Attributes {
				switch string(attr.Key) {
				case "http.request.header.0x-api-key":
					masked = attr.Value.AsString()
				case "http.request.header.0x-version":
					version = attr.Value.AsString()
				}
			}
		}
	}
	if masked != "*****" {
		t.Errorf("expected api key to be masked, got %q", masked)
	}
	if version != "v2" {
		t.Errorf("expected plain header to be recorded, got %q", version)
	}
}
