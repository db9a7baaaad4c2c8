package domain

import (
	"encoding/json"
	"math/big"
	"testing"
)

const quoteFixture = `{
  "blockNumber": "9876543",
  "buyAmount": "84012345678901234",
  "liquidityAvailable": true,
  "affiliateFeeBps": "100",
  "tradeSurplus": "0",
  "route": {
    "fills": [
      {"from": "0x5300000000000000000000000000000000000004", "to": "0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32", "source": "Ambient", "proportionBps": "7000"},
      {"from": "0x5300000000000000000000000000000000000004", "to": "0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32", "source": "Uniswap_V3", "proportionBps": 3000}
    ],
    "tokens": []
  },
  "tokenMetadata": {
    "buyToken": {"buyTaxBps": "0", "sellTaxBps": "0"},
    "sellToken": {"buyTaxBps": "0", "sellTaxBps": "0"}
  },
  "permit2": {
    "type": "Permit2",
    "hash": "0xabc",
    "eip712": {
      "types": {
        "EIP712Domain": [
          {"name": "name", "type": "string"},
          {"name": "chainId", "type": "uint256"},
          {"name": "verifyingContract", "type": "address"}
        ]
      },
      "domain": {"name": "Permit2", "chainId": 534352, "verifyingContract": "0x000000000022D473030F116dDEE9F6B43aC78BA3"},
      "primaryType": "PermitTransferFrom",
      "message": {"nonce": "1", "deadline": "1700000000"}
    }
  },
  "transaction": {
    "to": "0x0000000000001fF3684f28c67538d4D072C22734",
    "data": "0xdeadbeef",
    "gas": "250000",
    "gasPrice": "40000000",
    "value": "0"
  }
}`

func TestNoLiquidity(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"absent", `{"buyAmount": "1"}`, false},
		{"null", `{"liquidityAvailable": null}`, false},
		{"true", `{"liquidityAvailable": true}`, false},
		{"false", `{"liquidityAvailable": false}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var price PriceQuote
			if err := json.Unmarshal([]byte(tt.body), &price); err != nil {
				t.Fatalf("decode price: %v", err)
			}
			var quote ExecutableQuote
			if err := json.Unmarshal([]byte(tt.body), &quote); err != nil {
				t.Fatalf("decode quote: %v", err)
			}
			if price.NoLiquidity() != tt.want || quote.NoLiquidity() != tt.want {
				t.Errorf("NoLiquidity() = %v/%v, want %v", price.NoLiquidity(), quote.NoLiquidity(), tt.want)
			}
		})
	}
}

func TestExecutableQuote_Decode(t *testing.T) {
	var q ExecutableQuote
	if err := json.Unmarshal([]byte(quoteFixture), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(q.Route.Fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(q.Route.Fills))
	}
	if q.Route.Fills[0].ProportionBps != 7000 || q.Route.Fills[1].ProportionBps != 3000 {
		t.Errorf("unexpected proportions %+v", q.Route.Fills)
	}
	if q.AffiliateFeeBps == nil || *q.AffiliateFeeBps != 100 {
		t.Errorf("expected affiliate fee 100, got %v", q.AffiliateFeeBps)
	}
	if q.TradeSurplus != "0" {
		t.Errorf("expected surplus 0, got %q", q.TradeSurplus)
	}
	if len(q.Transaction.Data) != 4 {
		t.Errorf("expected 4 bytes of calldata, got %d", len(q.Transaction.Data))
	}
	if gas, ok := q.Transaction.Gas.Big(); !ok || gas.Int64() != 250000 {
		t.Errorf("unexpected gas %v", q.Transaction.Gas)
	}

	payload, ok := q.AuthorizationPayload()
	if !ok {
		t.Fatal("expected authorization payload")
	}
	if payload.PrimaryType != "PermitTransferFrom" {
		t.Errorf("unexpected primary type %q", payload.PrimaryType)
	}
	if payload.Domain.ChainId == nil || (*big.Int)(payload.Domain.ChainId).Int64() != 534352 {
		t.Errorf("unexpected domain chain id %v", payload.Domain.ChainId)
	}
}

func TestExecutableQuote_AuthorizationPayload(t *testing.T) {
	tests := []struct {
		name string
		json string
		want bool
	}{
		{name: "no permit2", json: `{}`, want: false},
		{name: "null permit2", json: `{"permit2": null}`, want: false},
		{name: "empty domain", json: `{"permit2": {"eip712": {"domain": {}, "message": {"a": "1"}}}}`, want: false},
		{name: "empty message", json: `{"permit2": {"eip712": {"domain": {"name": "Permit2"}, "message": {}}}}`, want: false},
		{name: "both present", json: `{"permit2": {"eip712": {"domain": {"name": "Permit2"}, "message": {"a": "1"}}}}`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q ExecutableQuote
			if err := json.Unmarshal([]byte(tt.json), &q); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, got := q.AuthorizationPayload(); got != tt.want {
				t.Errorf("AuthorizationPayload() present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceQuote_AllowanceIssue(t *testing.T) {
	var withIssue PriceQuote
	if err := json.Unmarshal([]byte(`{"issues": {"allowance": {"actual": "0", "spender": "0x000000000022D473030F116dDEE9F6B43aC78BA3"}}}`), &withIssue); err != nil {
		t.Fatal(err)
	}
	issue := withIssue.AllowanceIssue()
	if issue == nil || issue.Spender.Hex() != "0x000000000022D473030F116dDEE9F6B43aC78BA3" {
		t.Errorf("unexpected issue %+v", issue)
	}

	var clean PriceQuote
	if err := json.Unmarshal([]byte(`{"issues": {"allowance": null}}`), &clean); err != nil {
		t.Fatal(err)
	}
	if clean.AllowanceIssue() != nil {
		t.Error("expected no allowance issue")
	}

	var nilQuote *PriceQuote
	if nilQuote.AllowanceIssue() != nil {
		t.Error("nil quote must report no issue")
	}
}

func TestBps(t *testing.T) {
	tests := []struct {
		in      string
		want    Bps
		wantErr bool
	}{
		{in: `"150"`, want: 150},
		{in: `150`, want: 150},
		{in: `null`, want: 0},
		{in: `"1.5"`, wantErr: true},
		{in: `"-1"`, wantErr: true},
	}

	for _, tt := range tests {
		var b Bps
		err := json.Unmarshal([]byte(tt.in), &b)
		if (err != nil) != tt.wantErr {
			t.Errorf("Bps(%s) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && b != tt.want {
			t.Errorf("Bps(%s) = %d, want %d", tt.in, b, tt.want)
		}
	}

	if Bps(150).Percent().String() != "1.5" {
		t.Errorf("unexpected percent %s", Bps(150).Percent())
	}
}

func TestNumericString(t *testing.T) {
	var n NumericString
	if err := json.Unmarshal([]byte(`150`), &n); err != nil || n != "150" {
		t.Errorf("number form: %q %v", n, err)
	}
	if err := json.Unmarshal([]byte(`"150.25"`), &n); err != nil || n != "150.25" {
		t.Errorf("string form: %q %v", n, err)
	}
	if d, ok := n.Decimal(); !ok || d.String() != "150.25" {
		t.Errorf("decimal: %s %v", d, ok)
	}
	if _, ok := NumericString("").Decimal(); ok {
		t.Error("empty must not parse")
	}
	if v, ok := NumericString("0x10").Big(); !ok || v.Int64() != 16 {
		t.Errorf("hex big: %v %v", v, ok)
	}
}
