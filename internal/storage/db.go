package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
)

const schema = `
CREATE TABLE IF NOT EXISTS logos (
	name TEXT PRIMARY KEY,
	format TEXT NOT NULL,
	payload BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS commands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	line TEXT NOT NULL,
	ok INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_commands_ts ON commands(timestamp);
`

// ErrNotFound is returned by LoadLogo for unknown names.
var ErrNotFound = errors.New("storage: not found")

// Logo is a persisted logo payload, stored verbatim.
type Logo struct {
	Name      string
	Format    logo.Format
	Payload   []byte
	UpdatedAt int64
}

// CommandRecord is one journaled command line and its outcome.
type CommandRecord struct {
	Timestamp int64
	Line      string
	OK        bool
	Error     string
}

// DB wraps a SQLite database for scoreboard data.
type DB struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// PutLogo inserts or replaces a logo by name.
func (d *DB) PutLogo(l Logo) error {
	if l.Name == "" {
		return fmt.Errorf("put logo: empty name")
	}
	if l.Payload == nil {
		l.Payload = []byte{}
	}
	_, err := d.db.Exec(
		`INSERT INTO logos (name, format, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET format = excluded.format, payload = excluded.payload, updated_at = excluded.updated_at`,
		l.Name, string(l.Format), l.Payload, l.UpdatedAt,
	)
	return err
}

// Logo returns the named logo, or nil if there is none.
func (d *DB) Logo(name string) (*Logo, error) {
	row := d.db.QueryRow("SELECT name, format, payload, updated_at FROM logos WHERE name = ?", name)
	var l Logo
	var format string
	err := row.Scan(&l.Name, &format, &l.Payload, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Format = logo.Format(format)
	return &l, nil
}

// LoadLogo returns the format and payload of the named logo.
func (d *DB) LoadLogo(name string) (logo.Format, []byte, error) {
	l, err := d.Logo(name)
	if err != nil {
		return "", nil, err
	}
	if l == nil {
		return "", nil, fmt.Errorf("logo %q: %w", name, ErrNotFound)
	}
	return l.Format, l.Payload, nil
}

// Logos returns every stored logo without its payload, ordered by name.
func (d *DB) Logos() ([]Logo, error) {
	rows, err := d.db.Query("SELECT name, format, updated_at FROM logos ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logos []Logo
	for rows.Next() {
		var l Logo
		var format string
		if err := rows.Scan(&l.Name, &format, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Format = logo.Format(format)
		logos = append(logos, l)
	}
	return logos, rows.Err()
}

// DeleteLogo removes the named logo and reports whether it existed.
func (d *DB) DeleteLogo(name string) (bool, error) {
	res, err := d.db.Exec("DELETE FROM logos WHERE name = ?", name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// InsertCommand journals one command.
func (d *DB) InsertCommand(r CommandRecord) error {
	_, err := d.db.Exec(
		"INSERT INTO commands (timestamp, line, ok, error) VALUES (?, ?, ?, ?)",
		r.Timestamp, r.Line, boolInt(r.OK), r.Error,
	)
	return err
}

// InsertCommands batch-inserts command records in a single transaction.
func (d *DB) InsertCommands(records []CommandRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO commands (timestamp, line, ok, error) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(r.Timestamp, r.Line, boolInt(r.OK), r.Error); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// CommandsInRange returns journaled commands within the given time range.
func (d *DB) CommandsInRange(from, to int64) ([]CommandRecord, error) {
	rows, err := d.db.Query(
		"SELECT timestamp, line, ok, error FROM commands WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp, id",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []CommandRecord
	for rows.Next() {
		var r CommandRecord
		var ok int
		if err := rows.Scan(&r.Timestamp, &r.Line, &ok, &r.Error); err != nil {
			return nil, err
		}
		r.OK = ok != 0
		records = append(records, r)
	}
	return records, rows.Err()
}
