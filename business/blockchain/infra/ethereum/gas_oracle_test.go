package ethereum

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/swap-settler/internal/logger"
)

func TestGasOracle_GetFees(t *testing.T) {
	chain := newFakeChain()
	oracle, err := NewGasOracle(chain, DefaultGasOracleConfig(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer oracle.Close()

	fees, err := oracle.GetFees(context.Background())
	if err != nil {
		t.Fatalf("GetFees: %v", err)
	}
	if fees.FeeCap.Int64() != 2_001_000 {
		t.Errorf("expected 2*base+tip, got %s", fees.FeeCap)
	}

	if _, err := oracle.GetFees(context.Background()); err != nil {
		t.Fatal(err)
	}
	if chain.tipCalls != 1 {
		t.Errorf("expected cached fees, tip fetched %d times", chain.tipCalls)
	}
}

func TestGasOracle_CapsFees(t *testing.T) {
	chain := newFakeChain()
	cfg := DefaultGasOracleConfig()
	cfg.MaxFeeCap = big.NewInt(500)

	oracle, err := NewGasOracle(chain, cfg, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer oracle.Close()

	fees, err := oracle.GetFees(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fees.FeeCap.Int64() != 500 || fees.TipCap.Int64() != 500 {
		t.Errorf("expected capped fees, got cap=%s tip=%s", fees.FeeCap, fees.TipCap)
	}
}

func TestGasOracle_EstimateGasMargin(t *testing.T) {
	chain := newFakeChain()
	chain.estimate = 200_000

	oracle, err := NewGasOracle(chain, GasOracleConfig{GasLimitMarginPct: 25}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer oracle.Close()

	to := common.HexToAddress("0x01")
	gas, err := oracle.EstimateGas(context.Background(), ethereum.CallMsg{To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if gas != 250_000 {
		t.Errorf("expected 250000, got %d", gas)
	}
}
