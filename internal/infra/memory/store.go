package memory

import (
	"encoding/json"
	"log"
	"sync"

	"trivia-quiz/internal/domain"
)

// Store is an in-memory implementation of engine.Store. It round-trips every
// record through JSON so it behaves exactly like the durable backends (value
// semantics, corrupt-reads-as-absent), which makes it the store of choice for
// tests and for running without any local state.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

const (
	sessionKey = "quiz-session"
	optionsKey = "quiz-options"
	tokenKey   = "api-token"
)

func NewStore() *Store {
	return &Store{records: make(map[string][]byte)}
}

func (s *Store) LoadSession() (domain.Session, bool) {
	var session domain.Session
	if !s.load(sessionKey, &session) {
		return domain.Session{}, false
	}
	return session, true
}

func (s *Store) SaveSession(session domain.Session) error {
	return s.save(sessionKey, session)
}

func (s *Store) ClearSession() error {
	s.delete(sessionKey)
	return nil
}

func (s *Store) LoadOptions() (domain.Options, bool) {
	var opts domain.Options
	if !s.load(optionsKey, &opts) {
		return domain.Options{}, false
	}
	return opts, true
}

func (s *Store) SaveOptions(opts domain.Options) error {
	return s.save(optionsKey, opts)
}

func (s *Store) LoadToken() (string, bool) {
	var token string
	if !s.load(tokenKey, &token) || token == "" {
		return "", false
	}
	return token, true
}

func (s *Store) SaveToken(token string) error {
	return s.save(tokenKey, token)
}

func (s *Store) ClearToken() error {
	s.delete(tokenKey)
	return nil
}

func (s *Store) load(key string, v any) bool {
	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("discarding corrupt record at %s: %v", key, err)
		return false
	}
	return true
}

func (s *Store) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) delete(key string) {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}
