// Package cache stores compilation results in a sqlite database under
// the project's .sxpc/ directory. The cache key is a hash of the
// source text and the compiler version, so a cached artifact is reused
// only when recompiling would reproduce it byte for byte (modulo the
// build id in the header).
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/funvibe/sxpc/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	hash       TEXT PRIMARY KEY,
	build_id   TEXT NOT NULL,
	asm        BLOB NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Cache is an open handle on the project's build cache.
type Cache struct {
	db *sql.DB
}

// Key computes the cache key for a source text.
func Key(source []byte) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte(config.Version))
	return hex.EncodeToString(h.Sum(nil))
}

// Open creates (if needed) and opens the cache db under
// projectDir/.sxpc/cache.db.
func Open(projectDir string) (*Cache, error) {
	dir := filepath.Join(projectDir, config.CacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache db: %w", err)
	}

	return &Cache{db: db}, nil
}

// Lookup returns the cached assembly for hash, if any.
func (c *Cache) Lookup(hash string) (string, bool, error) {
	var asm []byte
	err := c.db.QueryRow("SELECT asm FROM builds WHERE hash = ?", hash).Scan(&asm)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return string(asm), true, nil
}

// Store saves a compiled artifact under hash. An existing entry for
// the same hash is replaced.
func (c *Cache) Store(hash, buildID, asm string) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO builds (hash, build_id, asm) VALUES (?, ?, ?)",
		hash, buildID, []byte(asm),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
