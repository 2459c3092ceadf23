package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})

	return db
}

func TestLogoRoundTrip(t *testing.T) {
	db := openTestDB(t)

	payload := []byte{0x02, 0x00, 0x01, 0x00, 0x80}
	if err := db.PutLogo(Logo{Name: "crest", Format: logo.FormatPIX, Payload: payload, UpdatedAt: 10}); err != nil {
		t.Fatalf("PutLogo() error = %v", err)
	}

	got, err := db.Logo("crest")
	if err != nil {
		t.Fatalf("Logo() error = %v", err)
	}
	if got == nil || got.Format != logo.FormatPIX || !bytes.Equal(got.Payload, payload) || got.UpdatedAt != 10 {
		t.Fatalf("Logo() = %#v, want stored PIX payload", got)
	}

	if err := db.PutLogo(Logo{Name: "crest", Format: logo.FormatGlyph, Payload: []byte("GO"), UpdatedAt: 20}); err != nil {
		t.Fatalf("PutLogo(replace) error = %v", err)
	}
	format, data, err := db.LoadLogo("crest")
	if err != nil {
		t.Fatalf("LoadLogo() error = %v", err)
	}
	if format != logo.FormatGlyph || string(data) != "GO" {
		t.Fatalf("LoadLogo() = %q, %q, want replaced GLYPH payload", format, data)
	}
}

func TestLogoMissing(t *testing.T) {
	db := openTestDB(t)

	got, err := db.Logo("nope")
	if err != nil || got != nil {
		t.Fatalf("Logo(nope) = %#v, %v, want nil, nil", got, err)
	}
	if _, _, err := db.LoadLogo("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadLogo(nope) error = %v, want ErrNotFound", err)
	}
	if err := db.PutLogo(Logo{Format: logo.FormatPIX}); err == nil {
		t.Fatal("PutLogo() error = nil for empty name")
	}
}

func TestLogosAndDelete(t *testing.T) {
	db := openTestDB(t)

	for _, name := range []string{"zebra", "alpha"} {
		if err := db.PutLogo(Logo{Name: name, Format: logo.FormatGlyph, Payload: []byte(name), UpdatedAt: 1}); err != nil {
			t.Fatalf("PutLogo(%s) error = %v", name, err)
		}
	}

	logos, err := db.Logos()
	if err != nil {
		t.Fatalf("Logos() error = %v", err)
	}
	if len(logos) != 2 || logos[0].Name != "alpha" || logos[1].Name != "zebra" {
		t.Fatalf("Logos() = %#v, want alpha, zebra", logos)
	}
	if logos[0].Payload != nil {
		t.Fatalf("Logos() returned a payload")
	}

	deleted, err := db.DeleteLogo("alpha")
	if err != nil || !deleted {
		t.Fatalf("DeleteLogo(alpha) = %v, %v, want true", deleted, err)
	}
	deleted, err = db.DeleteLogo("alpha")
	if err != nil || deleted {
		t.Fatalf("DeleteLogo(alpha) again = %v, %v, want false", deleted, err)
	}
}

func TestCommandJournal(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertCommand(CommandRecord{Timestamp: 10, Line: "mode scores", OK: true}); err != nil {
		t.Fatalf("InsertCommand() error = %v", err)
	}
	err := db.InsertCommands([]CommandRecord{
		{Timestamp: 20, Line: "set home 1", OK: true},
		{Timestamp: 30, Line: "dance", OK: false, Error: "unknown command"},
	})
	if err != nil {
		t.Fatalf("InsertCommands() error = %v", err)
	}
	if err := db.InsertCommands(nil); err != nil {
		t.Fatalf("InsertCommands(nil) error = %v", err)
	}

	ranged, err := db.CommandsInRange(15, 30)
	if err != nil {
		t.Fatalf("CommandsInRange() error = %v", err)
	}
	if len(ranged) != 2 || ranged[0].Line != "set home 1" || !ranged[0].OK {
		t.Fatalf("CommandsInRange() = %#v, want two rows from ts=20", ranged)
	}
	if ranged[1].OK || ranged[1].Error != "unknown command" {
		t.Fatalf("CommandsInRange()[1] = %#v, want failed command", ranged[1])
	}
}
