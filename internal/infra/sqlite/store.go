package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"trivia-quiz/internal/domain"
)

const (
	sessionKey = "quiz-session"
	optionsKey = "quiz-options"
	tokenKey   = "api-token"
)

type kvEntry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key   string `bun:"key,pk"`
	Value []byte `bun:"value,notnull"`
}

// Store is the default engine.Store: one local SQLite file holding a small
// key-value table, durable across restarts. Writes upsert the whole record,
// so concurrent writers cannot interleave partial updates.
type Store struct {
	db *bun.DB
}

// Open connects to the SQLite file at path and applies the schema migrations.
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
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
	return s.delete(sessionKey)
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
	return s.delete(tokenKey)
}

func (s *Store) load(key string, v any) bool {
	entry := new(kvEntry)
	err := s.db.NewSelect().Model(entry).Where("key = ?", key).Scan(context.Background())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("sqlite read %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(entry.Value, v); err != nil {
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
	entry := &kvEntry{Key: key, Value: raw}
	_, err = s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(context.Background())
	return err
}

func (s *Store) delete(key string) error {
	_, err := s.db.NewDelete().
		Model((*kvEntry)(nil)).
		Where("key = ?", key).
		Exec(context.Background())
	return err
}
