package infra

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/swap-settler/business/blockchain/domain"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
)

var (
	taker  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	weth   = common.HexToAddress("0x5300000000000000000000000000000000000004")
	wsteth = common.HexToAddress("0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32")
	start  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

func testIntent() quoteDomain.TradeIntent {
	return quoteDomain.NewTradeIntent(534352, weth, wsteth, big.NewInt(1e17), taker, 100, true)
}

func testQuote() *quoteDomain.ExecutableQuote {
	fee := quoteDomain.Bps(100)
	return &quoteDomain.ExecutableQuote{
		BuyAmount:    "84000000000000000",
		MinBuyAmount: "83000000000000000",
		Route: quoteDomain.Route{Fills: []quoteDomain.Fill{
			{Source: "Ambient", ProportionBps: 7000},
			{Source: "Uniswap_V3", ProportionBps: 3000},
		}},
		AffiliateFeeBps: &fee,
		TradeSurplus:    "150",
	}
}

// executedSettlement walks a settlement through the happy path.
func executedSettlement() *domain.Settlement {
	s := domain.NewSettlement(testIntent(), start)
	at := start
	for _, to := range []domain.State{
		domain.StatePriceFetched,
		domain.StateAllowanceVerified,
		domain.StateQuoted,
		domain.StateSigned,
		domain.StateExecuted,
	} {
		at = at.Add(100 * time.Millisecond)
		if err := s.Advance(to, at); err != nil {
			panic(err)
		}
	}
	s.Quote = testQuote()
	s.Approval = &blockchainDomain.ApprovalReceipt{TxHash: common.HexToHash("0xa1"), Status: 1}
	s.Signature = blockchainDomain.Signature{Bytes: make([]byte, 65)}
	s.TxHash = common.HexToHash("0xfeed")
	return s
}

func failedSettlement() *domain.Settlement {
	s := domain.NewSettlement(testIntent(), start)
	_ = s.Advance(domain.StatePriceFetched, start.Add(time.Second))
	_ = s.Advance(domain.StateAllowanceVerified, start.Add(2*time.Second))
	s.Fail(domain.StageQuote, apperror.CodeQuoteUnavailable, errors.New("no route"), start.Add(3*time.Second))
	return s
}
