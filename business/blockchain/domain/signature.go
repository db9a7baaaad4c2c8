package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const eip712Domain = "EIP712Domain"

// Signature is a 65 byte secp256k1 signature over exactly one EIP-712 digest.
type Signature struct {
	Bytes       []byte
	PayloadHash common.Hash
}

// Hex returns the 0x-prefixed signature, or "" for the zero Signature.
func (s Signature) Hex() string {
	if len(s.Bytes) == 0 {
		return ""
	}
	return hexutil.Encode(s.Bytes)
}

// IsZero reports whether no signature was produced.
func (s Signature) IsZero() bool {
	return len(s.Bytes) == 0
}

// TypedDataHash computes the EIP-712 digest keccak256(0x1901 || domainSeparator || hashStruct(message)).
func TypedDataHash(payload apitypes.TypedData) (common.Hash, error) {
	if payload.PrimaryType == "" {
		return common.Hash{}, errors.New("typed data has no primary type")
	}
	if len(payload.Types[payload.PrimaryType]) == 0 {
		return common.Hash{}, fmt.Errorf("typed data has no definition for %s", payload.PrimaryType)
	}

	types := make(apitypes.Types, len(payload.Types)+1)
	for name, fields := range payload.Types {
		types[name] = fields
	}
	if _, ok := types[eip712Domain]; !ok {
		types[eip712Domain] = domainFields(payload.Domain)
	}
	payload.Types = types

	domainSeparator, err := payload.HashStruct(eip712Domain, payload.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash domain: %w", err)
	}
	messageHash, err := payload.HashStruct(payload.PrimaryType, payload.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash %s: %w", payload.PrimaryType, err)
	}

	raw := make([]byte, 0, 2+len(domainSeparator)+len(messageHash))
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator...)
	raw = append(raw, messageHash...)
	return crypto.Keccak256Hash(raw), nil
}

// domainFields declares the domain fields that are set, in canonical order.
func domainFields(d apitypes.TypedDataDomain) []apitypes.Type {
	var fields []apitypes.Type
	if d.Name != "" {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if d.Version != "" {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if d.ChainId != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if d.VerifyingContract != "" {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}
	if d.Salt != "" {
		fields = append(fields, apitypes.Type{Name: "salt", Type: "bytes32"})
	}
	return fields
}
