package app

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	blockchainDomain "github.com/fd1az/swap-settler/business/blockchain/domain"
	quoteDomain "github.com/fd1az/swap-settler/business/quote/domain"
	"github.com/fd1az/swap-settler/business/settlement/domain"
)

var (
	taker   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	weth    = common.HexToAddress("0x5300000000000000000000000000000000000004")
	wsteth  = common.HexToAddress("0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32")
	spender = common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")
)

func boolPtr(v bool) *bool { return &v }

func testIntent() quoteDomain.TradeIntent {
	return quoteDomain.NewTradeIntent(534352, weth, wsteth, big.NewInt(1e17), taker, 100, true)
}

func permitPayload() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"PermitTransferFrom": {
				{Name: "spender", Type: "address"},
				{Name: "nonce", Type: "uint256"},
			},
		},
		PrimaryType: "PermitTransferFrom",
		Domain: apitypes.TypedDataDomain{
			Name:              "Permit2",
			ChainId:           math.NewHexOrDecimal256(534352),
			VerifyingContract: spender.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"spender": "0x0000000000001fF3684f28c67538d4D072C22734",
			"nonce":   "1",
		},
	}
}

func signedQuote() *quoteDomain.ExecutableQuote {
	q := unsignedQuote()
	q.Permit2 = &quoteDomain.Permit2{Type: "Permit2", EIP712: permitPayload()}
	return q
}

func unsignedQuote() *quoteDomain.ExecutableQuote {
	fee := quoteDomain.Bps(100)
	return &quoteDomain.ExecutableQuote{
		BuyAmount:          "84000000000000000",
		LiquidityAvailable: boolPtr(true),
		Route: quoteDomain.Route{Fills: []quoteDomain.Fill{
			{Source: "Ambient", ProportionBps: 7000},
			{Source: "Uniswap_V3", ProportionBps: 3000},
		}},
		AffiliateFeeBps: &fee,
		TradeSurplus:    "0",
	}
}

type fakeQuotes struct {
	mu sync.Mutex

	price    *quoteDomain.PriceQuote
	priceErr error
	quote    *quoteDomain.ExecutableQuote
	quoteErr error

	// priceGate, when set, blocks GetPrice until closed.
	priceGate  chan struct{}
	priceEnter chan struct{}

	calls   []string
	intents []quoteDomain.TradeIntent
}

func (f *fakeQuotes) record(call string, intent quoteDomain.TradeIntent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.intents = append(f.intents, intent)
}

func (f *fakeQuotes) GetPrice(_ context.Context, intent quoteDomain.TradeIntent) (*quoteDomain.PriceQuote, error) {
	f.record("price", intent)
	if f.priceEnter != nil {
		f.priceEnter <- struct{}{}
	}
	if f.priceGate != nil {
		<-f.priceGate
	}
	return f.price, f.priceErr
}

func (f *fakeQuotes) GetQuote(_ context.Context, intent quoteDomain.TradeIntent) (*quoteDomain.ExecutableQuote, error) {
	f.record("quote", intent)
	return f.quote, f.quoteErr
}

func (f *fakeQuotes) Execute(context.Context, quoteDomain.TradeIntent, string) (*quoteDomain.Execution, error) {
	return nil, errors.New("orchestrator must go through its executor")
}

func (f *fakeQuotes) ListLiquiditySources(context.Context, uint64) ([]string, error) {
	return nil, nil
}

func (f *fakeQuotes) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

type ensureCall struct {
	owner, token, spender common.Address
	min                   *big.Int
}

type fakeAllowances struct {
	calls   []ensureCall
	receipt *blockchainDomain.ApprovalReceipt
	err     error
	onCall  func()
}

func (f *fakeAllowances) CheckAllowance(_ context.Context, owner, token, spender common.Address) (*blockchainDomain.AllowanceState, error) {
	return &blockchainDomain.AllowanceState{Owner: owner, Token: token, Spender: spender, Amount: new(big.Int)}, nil
}

func (f *fakeAllowances) EnsureAllowance(_ context.Context, owner, token, spender common.Address, min *big.Int) (*blockchainDomain.ApprovalReceipt, error) {
	f.calls = append(f.calls, ensureCall{owner, token, spender, min})
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.receipt != nil {
		return f.receipt, nil
	}
	return &blockchainDomain.ApprovalReceipt{TxHash: common.HexToHash("0xa1"), Status: 1}, nil
}

type fakeSigner struct {
	calls     int
	err       error
	wrongHash bool
}

func (f *fakeSigner) Account() common.Address {
	return taker
}

func (f *fakeSigner) Sign(_ context.Context, payload apitypes.TypedData) (blockchainDomain.Signature, error) {
	f.calls++
	if f.err != nil {
		return blockchainDomain.Signature{}, f.err
	}
	digest, err := blockchainDomain.TypedDataHash(payload)
	if err != nil {
		return blockchainDomain.Signature{}, err
	}
	if f.wrongHash {
		digest = common.HexToHash("0xbad")
	}
	sig := make([]byte, 65)
	sig[64] = 27
	return blockchainDomain.Signature{Bytes: sig, PayloadHash: digest}, nil
}

type fakeExecutor struct {
	calls  int
	sigs   []blockchainDomain.Signature
	intent quoteDomain.TradeIntent
	err    error
	onCall func()
}

func (f *fakeExecutor) Execute(_ context.Context, intent quoteDomain.TradeIntent, _ *quoteDomain.ExecutableQuote, sig blockchainDomain.Signature) (common.Hash, error) {
	f.calls++
	f.sigs = append(f.sigs, sig)
	f.intent = intent
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return common.HexToHash("0xfeed"), nil
}

type recordingReporter struct {
	mu          sync.Mutex
	transitions []domain.State
	reports     []domain.Report
	finished    int
	panicOn     string
}

func (r *recordingReporter) Start(context.Context) error { return nil }
func (r *recordingReporter) Stop() error                 { return nil }

func (r *recordingReporter) StageChanged(_ *domain.Settlement, _, to domain.State) {
	r.mu.Lock()
	r.transitions = append(r.transitions, to)
	r.mu.Unlock()
	if r.panicOn == "stage" {
		panic("terminal went away")
	}
}

func (r *recordingReporter) ReportQuote(_ *domain.Settlement, report domain.Report) {
	r.mu.Lock()
	r.reports = append(r.reports, report)
	r.mu.Unlock()
	if r.panicOn == "report" {
		panic("render failed")
	}
}

func (r *recordingReporter) Finished(*domain.Settlement) {
	r.mu.Lock()
	r.finished++
	r.mu.Unlock()
	if r.panicOn == "finished" {
		panic("render failed")
	}
}

type fakeJournal struct {
	records []*domain.Settlement
	ctxErrs []error
	err     error
}

func (j *fakeJournal) Record(ctx context.Context, s *domain.Settlement) error {
	j.records = append(j.records, s)
	j.ctxErrs = append(j.ctxErrs, ctx.Err())
	return j.err
}

func (j *fakeJournal) Close() error { return nil }
