package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"contact-picker/internal/model"

	_ "modernc.org/sqlite"
)

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the web server read while an import writes; busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateContacts(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateContacts(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position, id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// openSQLiteReadOnly opens an existing db without touching its journal mode or
// schema. query_only is applied to every pooled connection through the DSN.
func openSQLiteReadOnly(path string) (*sql.DB, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	dsn := (&url.URL{
		Scheme:   "file",
		Path:     abs,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=query_only(1)",
	}).String()
	return sql.Open("sqlite", dsn)
}

var contactColumns = []string{"id", "name", "email", "avatar_url", "position"}

// checkContactsSchema reports a readable error when path was not written by
// ImportContactsSQLite.
func checkContactsSchema(ctx context.Context, db *sql.DB, path string) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('contacts')`)
	if err != nil {
		return err
	}
	defer rows.Close()

	have := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(have) == 0 {
		return fmt.Errorf("store: %s has no contacts table (create one with: contactpicker contacts import <json> --into %s)", path, path)
	}
	var missing []string
	for _, col := range contactColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("store: %s: contacts table is missing columns %v", path, missing)
	}
	return nil
}

// LoadContactsSQLite reads contacts in directory order (position, then id).
// The file is opened query-only.
func LoadContactsSQLite(ctx context.Context, path string) ([]model.Contact, error) {
	if !fileExists(path) {
		return nil, NotFoundError{Kind: "contacts db", ID: path}
	}
	db, err := openSQLiteReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := checkContactsSchema(ctx, db, path); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, name, email, avatar_url FROM contacts ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type ImportResult struct {
	Path     string `json:"path"`
	Imported int    `json:"imported"`
	Replaced bool   `json:"replaced"`
}

// ImportContactsSQLite writes cs into the db at path, keeping their order as the
// directory order. With replace, existing rows are dropped first; otherwise rows
// with the same id are overwritten and new ones appended after the current tail.
func ImportContactsSQLite(ctx context.Context, path string, cs []model.Contact, replace bool) (ImportResult, error) {
	res := ImportResult{Path: path, Replaced: replace}
	if err := checkUniqueIDs(path, cs); err != nil {
		return res, err
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return res, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
			return res, err
		}
	}

	var base int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM contacts`).Scan(&base); err != nil {
		return res, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO contacts (id, name, email, avatar_url, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email, avatar_url = excluded.avatar_url`)
	if err != nil {
		return res, err
	}
	defer stmt.Close()

	for i, c := range cs {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Email, c.AvatarURL, base+i); err != nil {
			return res, err
		}
		res.Imported++
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}
