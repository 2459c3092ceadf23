package storage

import (
	"fmt"
	"testing"

	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
)

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()

	var n int
	row := db.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&n); err != nil {
		t.Fatalf("count rows in %s: %v", table, err)
	}
	return n
}

func TestDeleteOlderThan(t *testing.T) {
	db := openTestDB(t)

	const (
		oldTs    int64 = 50
		cutoffTs int64 = 100
		newTs    int64 = 150
	)

	for _, ts := range []int64{oldTs, cutoffTs, newTs} {
		if err := db.InsertCommand(CommandRecord{Timestamp: ts, Line: "clear", OK: true}); err != nil {
			t.Fatalf("InsertCommand(ts=%d): %v", ts, err)
		}
	}
	if err := db.PutLogo(Logo{Name: "old", Format: logo.FormatGlyph, Payload: []byte("1"), UpdatedAt: oldTs}); err != nil {
		t.Fatalf("PutLogo(): %v", err)
	}

	deleted, err := db.DeleteOlderThan(cutoffTs)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteOlderThan() = %d, want 1", deleted)
	}
	if got := countRows(t, db, "commands"); got != 2 {
		t.Fatalf("commands rows = %d, want 2", got)
	}
	if got := countRows(t, db, "logos"); got != 1 {
		t.Fatalf("logos rows = %d, want 1 (logos never expire)", got)
	}
}
