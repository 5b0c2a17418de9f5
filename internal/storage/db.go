package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"deviseur/internal"
)

// ErrNotFound is returned when a saved quote id is unknown.
var ErrNotFound = errors.New("saved quote not found")

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  position INTEGER NOT NULL,
  id TEXT NOT NULL,
  name TEXT NOT NULL,
  price REAL NOT NULL DEFAULT 0,
  unit TEXT NOT NULL DEFAULT '',
  quantityMode TEXT NOT NULL,
  ecotax REAL NOT NULL DEFAULT 0,
  weight REAL NOT NULL DEFAULT 0,
  score TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  categoryPath TEXT NOT NULL DEFAULT '[]',
  image TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  loadedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(position)
);
CREATE INDEX IF NOT EXISTS idx_products_id ON products(id);

CREATE TABLE IF NOT EXISTS snapshots (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL,
  payload TEXT NOT NULL,
  createdAt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceProducts swaps the cached catalogue in one transaction, keeping the
// source order.
func (d *DB) ReplaceProducts(products []internal.Product) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO products (
  position, id, name, price, unit, quantityMode, ecotax, weight,
  score, category, categoryPath, image, link
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range products {
		pathJSON, _ := json.Marshal(p.CategoryPath)
		if _, err := stmt.Exec(
			i, p.ID, p.Name, p.Price, p.Unit, string(p.QuantityMode), p.Ecotax, p.Weight,
			p.Score, p.Category, string(pathJSON), p.Image, p.Link,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.Product, error) {
	rows, err := d.conn.Query(`
SELECT id, name, price, unit, quantityMode, ecotax, weight,
       score, category, categoryPath, image, link
FROM products ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Product
	for rows.Next() {
		var p internal.Product
		var mode, pathJSON string
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Unit, &mode, &p.Ecotax, &p.Weight,
			&p.Score, &p.Category, &pathJSON, &p.Image, &p.Link,
		); err != nil {
			return nil, err
		}
		p.Reference = p.ID
		p.QuantityMode = internal.QuantityMode(mode)
		_ = json.Unmarshal([]byte(pathJSON), &p.CategoryPath)
		out = append(out, p)
	}

	return out, rows.Err()
}

// SaveSnapshot stores a cart snapshot payload and returns its id.
func (d *DB) SaveSnapshot(label string, payload []byte) (internal.SavedQuote, error) {
	row := internal.SavedQuote{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Payload:   string(payload),
	}
	_, err := d.conn.Exec(`INSERT INTO snapshots (id, label, payload, createdAt) VALUES (?, ?, ?, ?)`,
		row.ID, row.Label, row.Payload, row.CreatedAt)
	if err != nil {
		return internal.SavedQuote{}, err
	}
	return row, nil
}

func (d *DB) GetSnapshot(id string) (*internal.SavedQuote, error) {
	var row internal.SavedQuote
	err := d.conn.QueryRow(`SELECT id, label, payload, createdAt FROM snapshots WHERE id = ?`, id).
		Scan(&row.ID, &row.Label, &row.Payload, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustSnapshot(id string) (internal.SavedQuote, error) {
	row, err := d.GetSnapshot(id)
	if err != nil {
		return internal.SavedQuote{}, err
	}
	if row == nil {
		return internal.SavedQuote{}, fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	return *row, nil
}

func (d *DB) ListSnapshots(limit int) ([]internal.SavedQuote, error) {
	rows, err := d.conn.Query(`
SELECT id, label, payload, createdAt
FROM snapshots ORDER BY createdAt DESC, rowid DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.SavedQuote
	for rows.Next() {
		var row internal.SavedQuote
		if err := rows.Scan(&row.ID, &row.Label, &row.Payload, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) DeleteSnapshot(id string) error {
	_, err := d.conn.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
