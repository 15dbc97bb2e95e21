package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/domain"
)

const (
	sessionKey = "quiz:session"
	optionsKey = "quiz:options"
	tokenKey   = "quiz:token"
)

// Store is a Redis-backed implementation of engine.Store. Each slot lives at
// a fixed key holding one JSON document, so every save replaces the whole
// entity atomically and the last writer wins.
//
// The engine port is synchronous; operations use a background context the
// same way the liveness markers did in the service this store grew out of.
type Store struct {
	client *redis.Client
	ttl    time.Duration // 0 keeps records until explicitly cleared
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
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
	return s.client.Del(context.Background(), sessionKey).Err()
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
	return s.client.Del(context.Background(), tokenKey).Err()
}

func (s *Store) load(key string, v any) bool {
	raw, err := s.client.Get(context.Background(), key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("redis read %s: %v", key, err)
		}
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
	return s.client.Set(context.Background(), key, raw, s.ttl).Err()
}
