package engine_test

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/engine"
	"trivia-quiz/internal/infra/memory"
)

type stubTokenAPI struct {
	next       string
	err        error
	resetCalls int
	lastReset  string
}

func (s *stubTokenAPI) RequestToken(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.next, nil
}

func (s *stubTokenAPI) ResetToken(_ context.Context, token string) (string, error) {
	s.resetCalls++
	s.lastReset = token
	if s.err != nil {
		return "", s.err
	}
	return s.next, nil
}

func TestTokenManagerAcquirePersists(t *testing.T) {
	store := memory.NewStore()
	manager := engine.NewTokenManager(&stubTokenAPI{next: "tok-1"}, store)

	if _, ok := manager.Current(); ok {
		t.Fatal("expected no token before acquire")
	}

	token, err := manager.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("unexpected token %q", token)
	}

	if current, ok := manager.Current(); !ok || current != "tok-1" {
		t.Fatalf("token not persisted: %q %v", current, ok)
	}
	if stored, ok := store.LoadToken(); !ok || stored != "tok-1" {
		t.Fatalf("store missing token: %q %v", stored, ok)
	}
}

func TestTokenManagerRefreshReplacesStored(t *testing.T) {
	store := memory.NewStore()
	api := &stubTokenAPI{next: "tok-2"}
	manager := engine.NewTokenManager(api, store)
	if err := store.SaveToken("tok-1"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	token, err := manager.Refresh(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if token != "tok-2" {
		t.Fatalf("unexpected token %q", token)
	}
	if api.resetCalls != 1 || api.lastReset != "tok-1" {
		t.Fatalf("reset not issued for the current token: %+v", api)
	}
	if stored, ok := store.LoadToken(); !ok || stored != "tok-2" {
		t.Fatalf("refreshed token not persisted: %q %v", stored, ok)
	}
}

func TestTokenManagerAcquireErrorKeepsStoreClean(t *testing.T) {
	store := memory.NewStore()
	manager := engine.NewTokenManager(&stubTokenAPI{err: domain.ErrUpstreamUnavailable}, store)

	_, err := manager.Acquire(context.Background())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, ok := store.LoadToken(); ok {
		t.Fatal("failed acquire must not persist a token")
	}
}
