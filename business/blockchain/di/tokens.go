// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/swap-settler/business/blockchain/app"
	"github.com/fd1az/swap-settler/business/blockchain/infra/ethereum"
	"github.com/fd1az/swap-settler/internal/di"
)

// Public service tokens - exposed to other modules
var (
	AllowanceManager  = di.NewToken[app.AllowanceManager]("blockchain.AllowanceManager")
	Signer            = di.NewToken[app.Signer]("blockchain.Signer")
	TokenReader       = di.NewToken[app.TokenReader]("blockchain.TokenReader")
	TransactionSender = di.NewToken[app.TransactionSender]("blockchain.TransactionSender")
	ReceiptWaiter     = di.NewToken[app.ReceiptWaiter]("blockchain.ReceiptWaiter")
)

// Private dependency tokens - internal to blockchain module
var (
	Wallet    = di.NewToken[*ethereum.Wallet]("blockchain:wallet")
	GasOracle = di.NewToken[*ethereum.GasOracle]("blockchain:gasOracle")
	ERC20     = di.NewToken[*ethereum.ERC20]("blockchain:erc20")
)

// Helper functions for type-safe access
func GetAllowanceManager(c di.ServiceRegistry) app.AllowanceManager {
	return di.GetToken(c, AllowanceManager)
}

func GetSigner(c di.ServiceRegistry) app.Signer {
	return di.GetToken(c, Signer)
}

func GetTokenReader(c di.ServiceRegistry) app.TokenReader {
	return di.GetToken(c, TokenReader)
}

func GetTransactionSender(c di.ServiceRegistry) app.TransactionSender {
	return di.GetToken(c, TransactionSender)
}

func GetReceiptWaiter(c di.ServiceRegistry) app.ReceiptWaiter {
	return di.GetToken(c, ReceiptWaiter)
}

func GetWallet(c di.ServiceRegistry) *ethereum.Wallet {
	return di.GetToken(c, Wallet)
}

func GetGasOracle(c di.ServiceRegistry) *ethereum.GasOracle {
	return di.GetToken(c, GasOracle)
}

func GetERC20(c di.ServiceRegistry) *ethereum.ERC20 {
	return di.GetToken(c, ERC20)
}
