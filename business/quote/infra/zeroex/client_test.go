package zeroex

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/logger"
)

func testIntent() domain.TradeIntent {
	return domain.NewTradeIntent(534352,
		common.HexToAddress("0x5300000000000000000000000000000000000004"),
		common.HexToAddress("0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32"),
		big.NewInt(1e17),
		common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		100, true)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestClient_GetPrice_SendsHeadersAndParams(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	var gotHeader http.Header

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Clone()
		_, _ = w.Write([]byte(`{"buyAmount": "123", "liquidityAvailable": true, "issues": {"allowance": {"actual": "0", "spender": "0x000000000022D473030F116dDEE9F6B43aC78BA3"}}}`))
	})

	intent := testIntent()
	price, err := c.GetPrice(context.Background(), intent)
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}

	if gotPath != pricePath {
		t.Errorf("expected path %s, got %s", pricePath, gotPath)
	}
	if !reflect.DeepEqual(gotQuery, intent.Params()) {
		t.Errorf("query mismatch:\n got %v\nwant %v", gotQuery, intent.Params())
	}
	if gotHeader.Get("0x-api-key") != "secret" {
		t.Errorf("missing api key header")
	}
	if gotHeader.Get("0x-version") != "v2" {
		t.Errorf("expected version v2, got %q", gotHeader.Get("0x-version"))
	}
	if gotHeader.Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", gotHeader.Get("Content-Type"))
	}
	if price.BuyAmount != "123" || price.AllowanceIssue() == nil {
		t.Errorf("unexpected price %+v", price)
	}
}

func TestClient_QuoteAndPriceShareParams(t *testing.T) {
	queries := map[string]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries[r.URL.Path] = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"liquidityAvailable": true}`))
	})

	intent := testIntent()
	if _, err := c.GetPrice(context.Background(), intent); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetQuote(context.Background(), intent); err != nil {
		t.Fatal(err)
	}

	if queries[pricePath] == "" || queries[pricePath] != queries[quotePath] {
		t.Errorf("price and quote params differ:\n%s\n%s", queries[pricePath], queries[quotePath])
	}
}

func TestClient_Execute_SignatureParam(t *testing.T) {
	tests := []struct {
		name      string
		signature string
	}{
		{name: "empty signature", signature: ""},
		{name: "signed", signature: "0xdeadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query url.Values
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				_, _ = w.Write([]byte(`{"hash": "0x00000000000000000000000000000000000000000000000000000000000000ff"}`))
			})

			exec, err := c.Execute(context.Background(), testIntent(), tt.signature)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}

			if _, ok := query["signature"]; !ok {
				t.Fatal("signature param must always be sent")
			}
			if query.Get("signature") != tt.signature {
				t.Errorf("expected signature %q, got %q", tt.signature, query.Get("signature"))
			}
			if query.Get("sellAmount") != "100000000000000000" {
				t.Errorf("expected intent params on execute, got %v", query)
			}
			if exec.TxHash != common.HexToHash("0xff") {
				t.Errorf("unexpected hash %s", exec.TxHash.Hex())
			}
		})
	}
}

func TestClient_Execute_MissingHash(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Execute(context.Background(), testIntent(), "")
	if apperror.GetCode(err) != apperror.CodeMalformedResponse {
		t.Errorf("expected MALFORMED_RESPONSE, got %v", err)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperror.Code
		wantText string
	}{
		{name: "server error", status: 500, body: `oops`, wantCode: apperror.CodeServiceUnavailable},
		{name: "rate limited", status: 429, body: `{"name": "RATE_LIMITED", "message": "slow down"}`, wantCode: apperror.CodeServiceUnavailable},
		{name: "rejected", status: 400, body: `{"name": "INPUT_INVALID", "message": "sellAmount too small"}`, wantCode: apperror.CodeAggregatorRejected, wantText: "INPUT_INVALID"},
		{name: "unauthorized plain", status: 401, body: `invalid api key`, wantCode: apperror.CodeAggregatorRejected, wantText: "invalid api key"},
		{name: "malformed", status: 200, body: `{"buyAmount": [`, wantCode: apperror.CodeMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetQuote(context.Background(), testIntent())
			if err == nil {
				t.Fatal("expected error")
			}
			if apperror.GetCode(err) != tt.wantCode {
				t.Errorf("expected %s, got %s (%v)", tt.wantCode, apperror.GetCode(err), err)
			}
			if tt.wantText != "" && !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("expected %q in %q", tt.wantText, err.Error())
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: baseURL, APIKey: "k"}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, err = c.GetPrice(context.Background(), testIntent())
	if apperror.GetCode(err) != apperror.CodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 5; i++ {
		_, _ = c.GetPrice(context.Background(), testIntent())
	}
	_, err := c.GetPrice(context.Background(), testIntent())

	if hits.Load() != 5 {
		t.Errorf("expected 5 requests before the breaker opened, got %d", hits.Load())
	}
	if apperror.GetCode(err) != apperror.CodeServiceUnavailable || !apperror.HasCode(err, apperror.CodeCircuitOpen) {
		t.Errorf("expected SERVICE_UNAVAILABLE wrapping CIRCUIT_OPEN, got %v", err)
	}
}

func TestClient_RejectionsDoNotOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"name": "INPUT_INVALID", "message": "bad"}`))
	})

	for i := 0; i < 7; i++ {
		_, _ = c.GetPrice(context.Background(), testIntent())
	}
	if hits.Load() != 7 {
		t.Errorf("expected every rejected request to reach the server, got %d", hits.Load())
	}
}

func TestClient_ListLiquiditySources(t *testing.T) {
	var hits atomic.Int32
	var chainID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		chainID = r.URL.Query().Get("chainId")
		if r.URL.Path != sourcesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"sources": {"Uniswap_V3": {}, "Ambient": {}, "Curve": {}}}`))
	})

	for i := 0; i < 2; i++ {
		names, err := c.ListLiquiditySources(context.Background(), 534352)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Ambient", "Curve", "Uniswap_V3"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("expected %v, got %v", want, names)
		}
	}

	if chainID != "534352" {
		t.Errorf("expected chainId param, got %q", chainID)
	}
	if hits.Load() != 1 {
		t.Errorf("expected cached second call, got %d requests", hits.Load())
	}
}
