package engine

import (
	"context"
	"fmt"
)

// TokenAPI is the slice of the upstream client used for token lifecycle.
type TokenAPI interface {
	RequestToken(ctx context.Context) (string, error)
	ResetToken(ctx context.Context, token string) (string, error)
}

// TokenManager owns the single process-wide token slot. Every successful
// acquire or refresh is written through to the store so the token survives a
// restart. Retry policy is the caller's business.
type TokenManager struct {
	api   TokenAPI
	store Store
}

func NewTokenManager(api TokenAPI, store Store) *TokenManager {
	return &TokenManager{api: api, store: store}
}

// Current returns the persisted token, if any.
func (m *TokenManager) Current() (string, bool) {
	return m.store.LoadToken()
}

// Acquire mints a fresh token and persists it.
func (m *TokenManager) Acquire(ctx context.Context) (string, error) {
	token, err := m.api.RequestToken(ctx)
	if err != nil {
		return "", err
	}
	if err := m.store.SaveToken(token); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	return token, nil
}

// Refresh invalidates current server-side and persists the reissued token.
// The previous token must not be assumed valid afterwards, even on error.
func (m *TokenManager) Refresh(ctx context.Context, current string) (string, error) {
	token, err := m.api.ResetToken(ctx, current)
	if err != nil {
		return "", err
	}
	if err := m.store.SaveToken(token); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	return token, nil
}
