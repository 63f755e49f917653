package embedcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is an embedding cache backed by SQLite. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("embedding cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached vectors for texts under model. The result is keyed
// by position in texts; misses are absent.
func (s *Store) Get(ctx context.Context, model string, texts []string) (map[int][]float32, error) {
	hits := make(map[int][]float32)
	stmt, err := s.db.PrepareContext(ctx, `SELECT dimension, vector FROM embeddings WHERE model = ? AND text_hash = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	defer stmt.Close()

	for i, text := range texts {
		var (
			dim  int
			blob []byte
		)
		err := stmt.QueryRowContext(ctx, model, hashText(text)).Scan(&dim, &blob)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup embedding: %w", err)
		}
		vec, err := decodeVector(blob, dim)
		if err != nil {
			// A damaged row is treated as a miss and overwritten on Put.
			continue
		}
		hits[i] = vec
	}
	return hits, nil
}

// Put stores vectors for texts under model, replacing existing rows.
func (s *Store) Put(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("put embeddings: %d texts but %d vectors", len(texts), len(vectors))
	}
	if len(texts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (model, text_hash, dimension, vector, created_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(model, text_hash) DO UPDATE SET
            dimension = excluded.dimension,
            vector = excluded.vector,
            created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, text := range texts {
		if _, err := stmt.ExecContext(ctx, model, hashText(text), len(vectors[i]), encodeVector(vectors[i]), now); err != nil {
			return fmt.Errorf("insert embedding: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit embeddings: %w", err)
	}
	return nil
}

// Stats summarizes cache contents.
type Stats struct {
	Entries int
	Models  int
}

// Stats reports the number of cached vectors and distinct models.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1), COUNT(DISTINCT model) FROM embeddings`).Scan(&stats.Entries, &stats.Models)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// Clear removes every cached vector.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM embeddings`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dim int) ([]float32, error) {
	if dim <= 0 || len(blob) != 4*dim {
		return nil, fmt.Errorf("vector blob is %d bytes, expected %d", len(blob), 4*dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
