package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// PriceQuote is the non-binding price response.
type PriceQuote struct {
	BlockNumber        NumericString `json:"blockNumber"`
	BuyAmount          NumericString `json:"buyAmount"`
	SellAmount         NumericString `json:"sellAmount"`
	MinBuyAmount       NumericString `json:"minBuyAmount"`
	BuyToken           string        `json:"buyToken"`
	SellToken          string        `json:"sellToken"`
	LiquidityAvailable *bool         `json:"liquidityAvailable"`
	Issues             Issues        `json:"issues"`
	Fees               Fees          `json:"fees"`
	Route              Route         `json:"route"`
	ZID                string        `json:"zid"`
}

// AllowanceIssue returns the allowance deficiency, nil when none was reported.
func (p *PriceQuote) AllowanceIssue() *AllowanceIssue {
	if p == nil {
		return nil
	}
	return p.Issues.Allowance
}

// NoLiquidity reports whether the aggregator explicitly said the trade
// cannot be filled. A response without the field is not a refusal.
func (p *PriceQuote) NoLiquidity() bool {
	return p != nil && liquidityRefused(p.LiquidityAvailable)
}

func liquidityRefused(available *bool) bool {
	return available != nil && !*available
}

// Issues are problems the aggregator detected for the taker.
type Issues struct {
	Allowance            *AllowanceIssue `json:"allowance"`
	Balance              *BalanceIssue   `json:"balance"`
	SimulationIncomplete bool            `json:"simulationIncomplete"`
	InvalidSourcesPassed []string        `json:"invalidSourcesPassed"`
}

// AllowanceIssue says the spender's allowance for the sell token is too low.
type AllowanceIssue struct {
	Actual  NumericString  `json:"actual"`
	Spender common.Address `json:"spender"`
}

// BalanceIssue says the taker holds less sell token than the trade needs.
type BalanceIssue struct {
	Token    common.Address `json:"token"`
	Actual   NumericString  `json:"actual"`
	Expected NumericString  `json:"expected"`
}

// ExecutableQuote is the binding quote response.
type ExecutableQuote struct {
	BlockNumber        NumericString  `json:"blockNumber"`
	BuyAmount          NumericString  `json:"buyAmount"`
	SellAmount         NumericString  `json:"sellAmount"`
	MinBuyAmount       NumericString  `json:"minBuyAmount"`
	BuyToken           string         `json:"buyToken"`
	SellToken          string         `json:"sellToken"`
	LiquidityAvailable *bool          `json:"liquidityAvailable"`
	Issues             Issues         `json:"issues"`
	Route              Route          `json:"route"`
	TokenMetadata      *TokenMetadata `json:"tokenMetadata"`
	Fees               Fees           `json:"fees"`
	AffiliateFeeBps    *Bps           `json:"affiliateFeeBps"`
	TradeSurplus       NumericString  `json:"tradeSurplus"`
	Permit2            *Permit2       `json:"permit2"`
	Transaction        Transaction    `json:"transaction"`
	ZID                string         `json:"zid"`
}

// NoLiquidity reports whether the aggregator explicitly said the trade
// cannot be filled.
func (q *ExecutableQuote) NoLiquidity() bool {
	return q != nil && liquidityRefused(q.LiquidityAvailable)
}

// AuthorizationPayload returns the typed data to sign. It is present only
// when both its domain and its message are non-empty.
func (q *ExecutableQuote) AuthorizationPayload() (*apitypes.TypedData, bool) {
	if q == nil || q.Permit2 == nil {
		return nil, false
	}
	td := q.Permit2.EIP712
	if len(td.Domain.Map()) == 0 || len(td.Message) == 0 {
		return nil, false
	}
	return &td, true
}

// Route is the ordered set of liquidity fills.
type Route struct {
	Fills  []Fill       `json:"fills"`
	Tokens []RouteToken `json:"tokens"`
}

// Fill is one venue's share of the trade.
type Fill struct {
	From          common.Address `json:"from"`
	To            common.Address `json:"to"`
	Source        string         `json:"source"`
	ProportionBps Bps            `json:"proportionBps"`
}

type RouteToken struct {
	Address common.Address `json:"address"`
	Symbol  string         `json:"symbol"`
}

// TokenMetadata carries transfer taxes for both legs.
type TokenMetadata struct {
	BuyToken  TokenTax `json:"buyToken"`
	SellToken TokenTax `json:"sellToken"`
}

type TokenTax struct {
	BuyTaxBps  Bps `json:"buyTaxBps"`
	SellTaxBps Bps `json:"sellTaxBps"`
}

type Fees struct {
	IntegratorFee *Fee `json:"integratorFee"`
	ZeroExFee     *Fee `json:"zeroExFee"`
	GasFee        *Fee `json:"gasFee"`
}

type Fee struct {
	Amount NumericString  `json:"amount"`
	Token  common.Address `json:"token"`
	Type   string         `json:"type"`
}

// Permit2 is the authorization the taker signs so the settler can pull funds.
type Permit2 struct {
	Type   string             `json:"type"`
	Hash   string             `json:"hash"`
	EIP712 apitypes.TypedData `json:"eip712"`
}

// Transaction is the settlement call the aggregator prepared.
type Transaction struct {
	To       common.Address `json:"to"`
	Data     hexutil.Bytes  `json:"data"`
	Gas      NumericString  `json:"gas"`
	GasPrice NumericString  `json:"gasPrice"`
	Value    NumericString  `json:"value"`
}

// ValueWei returns the native value to send, zero when absent.
func (t Transaction) ValueWei() *big.Int {
	if v, ok := t.Value.Big(); ok {
		return v
	}
	return new(big.Int)
}

// Execution is the result of submitting a signed quote.
type Execution struct {
	TxHash common.Hash `json:"hash"`
}
