package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CollectionStore persists raw JSON collections under string keys. Get
// returns nil without error when the key has never been written.
type CollectionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
}

type postgresCollectionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCollectionStore stores collections in the collections table.
// Payloads are kept as text so malformed JSON written by other clients is
// preserved and decoded fail-open on read.
func NewPostgresCollectionStore(pool *pgxpool.Pool) CollectionStore {
	return &postgresCollectionStore{pool: pool}
}

func (s *postgresCollectionStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT payload FROM collections WHERE key=$1`
	var payload string
	if err := s.pool.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (s *postgresCollectionStore) Put(ctx context.Context, key string, payload []byte) error {
	const query = `
        INSERT INTO collections (key, payload, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET payload=EXCLUDED.payload, updated_at=NOW()`
	if _, err := s.pool.Exec(ctx, query, key, string(payload)); err != nil {
		return fmt.Errorf("put collection %s: %w", key, err)
	}
	return nil
}

var collectionKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type fileCollectionStore struct {
	dir string
}

// NewFileCollectionStore stores each collection as <dir>/<key>.json.
func NewFileCollectionStore(dir string) (CollectionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &fileCollectionStore{dir: dir}, nil
}

// CollectionPath returns the file backing key inside dir.
func CollectionPath(dir, key string) string {
	return filepath.Join(dir, key+".json")
}

func (s *fileCollectionStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !collectionKeyPattern.MatchString(key) {
		return nil, fmt.Errorf("invalid collection key %q", key)
	}
	payload, err := os.ReadFile(CollectionPath(s.dir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return payload, nil
}

func (s *fileCollectionStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !collectionKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid collection key %q", key)
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), CollectionPath(s.dir, key)); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}
