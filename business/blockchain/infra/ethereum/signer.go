package ethereum

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/swap-settler/business/blockchain/app"
	"github.com/fd1az/swap-settler/business/blockchain/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
)

var _ app.Signer = (*Wallet)(nil)

// Wallet holds the trading account key. It signs EIP-712 payloads and
// transactions for one chain.
type Wallet struct {
	key     *ecdsa.PrivateKey
	account common.Address
	chainID *big.Int
	tracer  trace.Tracer
}

// NewWallet loads a hex private key, with or without 0x.
func NewWallet(hexKey string, chainID uint64) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		// The cause can echo key material, so it is not wrapped.
		return nil, apperror.New(apperror.CodeInvalidPrivateKey)
	}

	return &Wallet{
		key:     key,
		account: crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).SetUint64(chainID),
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Account returns the address derived from the key.
func (w *Wallet) Account() common.Address {
	return w.account
}

// ChainID returns the chain transactions are signed for.
func (w *Wallet) ChainID() *big.Int {
	return new(big.Int).Set(w.chainID)
}

// Sign signs the EIP-712 digest of payload. v is 27 or 28.
func (w *Wallet) Sign(ctx context.Context, payload apitypes.TypedData) (domain.Signature, error) {
	_, span := w.tracer.Start(ctx, "wallet.sign_typed_data",
		trace.WithAttributes(attribute.String("primary_type", payload.PrimaryType)))
	defer span.End()

	digest, err := domain.TypedDataHash(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid typed data")
		return domain.Signature{}, apperror.Internal(apperror.CodeInvalidTypedData, payload.PrimaryType, err)
	}

	sig, err := crypto.Sign(digest.Bytes(), w.key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign failed")
		return domain.Signature{}, apperror.Internal(apperror.CodeSignatureDenied, payload.PrimaryType, err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	span.SetAttributes(attribute.String("digest", digest.Hex()))
	return domain.Signature{Bytes: sig, PayloadHash: digest}, nil
}

// SignTx signs tx for the wallet's chain.
func (w *Wallet) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
}
