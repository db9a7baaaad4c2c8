package asset_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/swap-settler/internal/asset"
)

type stubDecimals struct {
	decimals uint8
	err      error
	calls    int
}

func (s *stubDecimals) Decimals(context.Context, common.Address) (uint8, error) {
	s.calls++
	return s.decimals, s.err
}

var unknownToken = common.HexToAddress("0x01f0a31698C4d065659b9bdC21B3610292a1c506")

func TestDefaultRegistry(t *testing.T) {
	r := asset.DefaultRegistry()

	weth, ok := r.Get(asset.ChainIDScroll, asset.ScrollWETH.Address())
	if !ok || weth.Decimals() != 18 {
		t.Fatalf("expected WETH with 18 decimals, got %v", weth)
	}
	if _, ok := r.Get(1, asset.ScrollWETH.Address()); ok {
		t.Error("expected lookup to be chain scoped")
	}
	if got := r.Symbol(asset.ChainIDScroll, asset.ScrollUSDC.Address()); got != "USDC" {
		t.Errorf("expected USDC, got %q", got)
	}
	if err := r.Register(asset.ScrollWETH); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	all := r.All()
	if len(all) != r.Count() || all[0].Symbol() != "USDC" {
		t.Errorf("expected tokens sorted by symbol, got %v", all)
	}
}

func TestRegistry_ResolveKnownSkipsChain(t *testing.T) {
	r := asset.DefaultRegistry()
	reader := &stubDecimals{decimals: 6}

	tok, err := r.Resolve(context.Background(), asset.ChainIDScroll, asset.ScrollWETH.Address(), reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != asset.ScrollWETH || reader.calls != 0 {
		t.Errorf("expected registered token without a chain read, got %v after %d calls", tok, reader.calls)
	}
}

func TestRegistry_ResolveReadsAndRegisters(t *testing.T) {
	r := asset.NewRegistry()
	reader := &stubDecimals{decimals: 8}

	tok, err := r.Resolve(context.Background(), asset.ChainIDScroll, unknownToken, reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Decimals() != 8 {
		t.Errorf("expected 8 decimals, got %d", tok.Decimals())
	}
	if !strings.HasPrefix(strings.ToLower(tok.Symbol()), "0x01f0..") {
		t.Errorf("expected short address symbol, got %q", tok.Symbol())
	}

	again, err := r.Resolve(context.Background(), asset.ChainIDScroll, unknownToken, reader)
	if err != nil || again != tok {
		t.Fatalf("expected cached token, got %v (%v)", again, err)
	}
	if reader.calls != 1 {
		t.Errorf("expected one chain read, got %d", reader.calls)
	}
}

func TestRegistry_ResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		reader *stubDecimals
	}{
		{"read fails", &stubDecimals{err: errors.New("execution reverted")}},
		{"implausible decimals", &stubDecimals{decimals: 77}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := asset.NewRegistry()
			if _, err := r.Resolve(context.Background(), asset.ChainIDScroll, unknownToken, tt.reader); err == nil {
				t.Fatal("expected error")
			}
			if r.Count() != 0 {
				t.Error("expected nothing registered")
			}
		})
	}
}
