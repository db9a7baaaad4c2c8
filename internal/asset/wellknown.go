package asset

import "github.com/ethereum/go-ethereum/common"

const ChainIDScroll = 534352

var (
	ScrollWETH   = NewToken(ChainIDScroll, common.HexToAddress("0x5300000000000000000000000000000000000004"), "WETH", 18)
	ScrollWstETH = NewToken(ChainIDScroll, common.HexToAddress("0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32"), "wstETH", 18)
	ScrollUSDC   = NewToken(ChainIDScroll, common.HexToAddress("0x06eFdBFf2a14a7c8E15944D1F4A48F9F95F663A4"), "USDC", 6)
)

// DefaultRegistry returns a registry holding the Scroll tokens the default
// trade uses.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []*Token{ScrollWETH, ScrollWstETH, ScrollUSDC} {
		_ = r.Register(t)
	}
	return r
}
