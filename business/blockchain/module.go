// Package blockchain implements the blockchain bounded context: allowances,
// signing and transaction submission on the settlement chain.
package blockchain

import (
	"context"
	"fmt"

	"github.com/fd1az/swap-settler/business/blockchain/app"
	blockchainDI "github.com/fd1az/swap-settler/business/blockchain/di"
	"github.com/fd1az/swap-settler/business/blockchain/domain"
	"github.com/fd1az/swap-settler/business/blockchain/infra/ethereum"
	"github.com/fd1az/swap-settler/internal/config"
	"github.com/fd1az/swap-settler/internal/di"
	"github.com/fd1az/swap-settler/internal/logger"
	"github.com/fd1az/swap-settler/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

func chainClient(sr di.ServiceRegistry) ethereum.ChainClient {
	return sr.Get("ethClient").(ethereum.ChainClient)
}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.Wallet, func(sr di.ServiceRegistry) *ethereum.Wallet {
		cfg := sr.Get("config").(*config.Config)

		wallet, err := ethereum.NewWallet(cfg.Wallet.PrivateKey, cfg.Chain.ChainID)
		if err != nil {
			panic("failed to load wallet: " + err.Error())
		}
		return wallet
	})

	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) *ethereum.GasOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		oracleCfg := ethereum.DefaultGasOracleConfig()
		oracleCfg.CacheTTL = cfg.Chain.GasPriceTTL
		oracleCfg.GasLimitMarginPct = cfg.Chain.GasLimitMarginPct
		if cfg.Chain.MaxFeePerGasGwei > 0 {
			oracleCfg.MaxFeeCap = domain.GweiToWei(cfg.Chain.MaxFeePerGasGwei)
		}

		oracle, err := ethereum.NewGasOracle(chainClient(sr), oracleCfg, log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	di.RegisterToken(c, blockchainDI.ERC20, func(sr di.ServiceRegistry) *ethereum.ERC20 {
		return ethereum.NewERC20(chainClient(sr))
	})

	di.RegisterToken(c, blockchainDI.Signer, func(sr di.ServiceRegistry) app.Signer {
		return blockchainDI.GetWallet(sr)
	})

	di.RegisterToken(c, blockchainDI.TokenReader, func(sr di.ServiceRegistry) app.TokenReader {
		return ethereum.NewTokenReader(blockchainDI.GetERC20(sr))
	})

	di.RegisterToken(c, blockchainDI.TransactionSender, func(sr di.ServiceRegistry) app.TransactionSender {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return ethereum.NewTransactor(chainClient(sr), blockchainDI.GetWallet(sr),
			blockchainDI.GetGasOracle(sr), cfg.Chain.DefaultGasLimit, log)
	})

	di.RegisterToken(c, blockchainDI.ReceiptWaiter, func(sr di.ServiceRegistry) app.ReceiptWaiter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return ethereum.NewReceiptWaiter(chainClient(sr), cfg.Chain.ReceiptPollInterval, cfg.Chain.ReceiptTimeout, log)
	})

	di.RegisterToken(c, blockchainDI.AllowanceManager, func(sr di.ServiceRegistry) app.AllowanceManager {
		log := sr.Get("logger").(logger.LoggerInterface)

		return ethereum.NewAllowanceManager(chainClient(sr), blockchainDI.GetERC20(sr),
			blockchainDI.GetTransactionSender(sr), blockchainDI.GetReceiptWaiter(sr), log)
	})

	return nil
}

// Startup loads the wallet and checks the RPC endpoint serves the configured chain.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	wallet := blockchainDI.GetWallet(mono.Services())

	chainID, err := mono.EthClient().ChainID(ctx)
	if err != nil {
		log.Error(ctx, "failed to read chain id", "error", err)
		return fmt.Errorf("read chain id: %w", err)
	}
	if chainID.Uint64() != mono.Config().Chain.ChainID {
		return fmt.Errorf("rpc serves chain %s, configured for %d", chainID, mono.Config().Chain.ChainID)
	}

	log.Info(ctx, "blockchain module started", "account", wallet.Account().Hex(), "chain_id", chainID.Uint64())
	return nil
}
