package asset

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// DecimalsReader reads a token's decimals from chain.
type DecimalsReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// Registry is a thread-safe set of known tokens.
type Registry struct {
	mu   sync.RWMutex
	byID map[TokenID]*Token
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[TokenID]*Token)}
}

// Register adds t. Registering the same token twice is an error.
func (r *Registry) Register(t *Token) error {
	if t == nil {
		return ErrNilToken
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID()]; exists {
		return fmt.Errorf("asset: %s already registered", t.ID())
	}
	r.byID[t.ID()] = t
	return nil
}

// Get looks a token up by chain and address.
func (r *Registry) Get(chainID uint64, address common.Address) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[TokenID{ChainID: chainID, Address: address}]
	return t, ok
}

// Resolve returns the registered token, or reads its decimals through
// reader and registers it under its short address.
func (r *Registry) Resolve(ctx context.Context, chainID uint64, address common.Address, reader DecimalsReader) (*Token, error) {
	if t, ok := r.Get(chainID, address); ok {
		return t, nil
	}

	decimals, err := reader.Decimals(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("asset: read decimals of %s: %w", address.Hex(), err)
	}
	t, err := newToken(chainID, address, ShortAddress(address), decimals)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A concurrent Resolve may have won.
	if existing, ok := r.byID[t.ID()]; ok {
		return existing, nil
	}
	r.byID[t.ID()] = t
	return t, nil
}

// Symbol returns the registered symbol or the short address.
func (r *Registry) Symbol(chainID uint64, address common.Address) string {
	if t, ok := r.Get(chainID, address); ok {
		return t.Symbol()
	}
	return ShortAddress(address)
}

// All returns every token sorted by symbol.
func (r *Registry) All() []*Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Token, 0, len(r.byID))
	for _, t := range r.byID {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Symbol() < result[j].Symbol() })
	return result
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
