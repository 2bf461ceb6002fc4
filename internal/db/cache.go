package db

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/crypto/blake2b"
)

// Extraction is the text pulled out of one source document, keyed by the
// digest of the document bytes and the format it was parsed as.
type Extraction struct {
	Digest    string
	Path      string
	Format    string
	Size      int64
	Text      string
	CreatedAt time.Time
}

type Cache struct {
	conn *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Cache{conn: conn}, nil
}

func (c *Cache) Close() error {
	return c.conn.Close()
}

func Digest(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached extraction for digest parsed as format; ok is false
// on a miss. The same bytes under another format are a separate entry.
func (c *Cache) Get(digest, format string) (ext Extraction, ok bool, err error) {
	row := c.conn.QueryRow(
		`SELECT digest, path, format, size, text, created_at FROM document_text WHERE digest = ? AND format = ?`,
		digest,
		format,
	)
	var (
		blob    []byte
		created int64
	)
	if err := row.Scan(&ext.Digest, &ext.Path, &ext.Format, &ext.Size, &blob, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Extraction{}, false, nil
		}
		return Extraction{}, false, fmt.Errorf("scan extraction: %w", err)
	}
	text, err := decompress(blob)
	if err != nil {
		return Extraction{}, false, err
	}
	ext.Text = string(text)
	ext.CreatedAt = time.Unix(created, 0)
	return ext, true, nil
}

func (c *Cache) Put(ext Extraction) error {
	blob, err := compress([]byte(ext.Text))
	if err != nil {
		return err
	}
	if ext.CreatedAt.IsZero() {
		ext.CreatedAt = time.Now()
	}
	if _, err := c.conn.Exec(
		`INSERT OR REPLACE INTO document_text(digest, path, format, size, text, created_at) VALUES(?,?,?,?,?,?)`,
		ext.Digest,
		ext.Path,
		ext.Format,
		ext.Size,
		blob,
		ext.CreatedAt.Unix(),
	); err != nil {
		return fmt.Errorf("insert extraction: %w", err)
	}
	return nil
}

// Prune drops entries older than cutoff and reports how many were removed.
func (c *Cache) Prune(cutoff time.Time) (int64, error) {
	res, err := c.conn.Exec(`DELETE FROM document_text WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune extractions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return n, nil
}

func (c *Cache) Count() (int, error) {
	return countRowsConn(c.conn, "document_text")
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress text: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress text: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress text: %w", err)
	}
	return out, nil
}
