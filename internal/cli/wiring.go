package cli

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/engine"
	"trivia-quiz/internal/infra/memory"
	redisstore "trivia-quiz/internal/infra/redis"
	sqlitestore "trivia-quiz/internal/infra/sqlite"
	"trivia-quiz/internal/opentdb"
)

// openStore builds the configured store backend. The returned cleanup must be
// called when the command exits.
func openStore(cfg config.Config) (engine.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		path := cfg.Storage.SQLite.Path
		if path == "" {
			path = "quiz.db"
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		return redisstore.NewStore(client, 0), func() { _ = client.Close() }, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newClient(cfg config.Config) *opentdb.Client {
	timeout := config.Duration(cfg.Upstream.Timeout, 10*time.Second)
	return opentdb.NewClient(cfg.Upstream.BaseURL, timeout)
}

// defaultOptions prefers the last-used options over the configured defaults.
func defaultOptions(cfg config.Config, store engine.Store) domain.Options {
	if opts, ok := store.LoadOptions(); ok {
		return opts
	}
	d := cfg.Quiz.Defaults
	return domain.Options{
		Category:      d.Category,
		Difficulty:    d.Difficulty,
		Type:          d.Type,
		TimerSeconds:  d.TimerMinutes * 60,
		QuestionCount: d.QuestionCount,
	}
}
