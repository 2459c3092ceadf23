// Package spool reads command lines that were queued on disk while the
// daemon was not running, or by tools without bus access.
package spool

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Entry is a single line of the spool file.
type Entry struct {
	Ts   int64  `json:"ts"`
	Line string `json:"line"`
}

// Append adds a command line to the spool file at path.
func Append(path string, now time.Time, line string) error {
	data, err := json.Marshal(Entry{Ts: now.Unix(), Line: line})
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open spool: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write spool: %w", err)
	}
	return f.Close()
}

// Consume atomically takes the spool file at path and returns its entries
// in file order. A processing file left behind by an interrupted run is
// drained first. If that file cannot be removed the spool file is left in
// place for a later call.
func Consume(logger *slog.Logger, path string) []Entry {
	processingPath := path + ".processing"

	var entries []Entry
	if _, err := os.Lstat(processingPath); err == nil {
		logger.Warn("draining leftover spool", "path", processingPath)
		leftover, removed := read(logger, processingPath)
		if !removed {
			return leftover
		}
		entries = leftover
	}

	// Writers create a fresh file after the rename.
	if err := os.Rename(path, processingPath); err != nil {
		if !os.IsNotExist(err) {
			logger.Error("rename failed", "err", err)
		}
		return entries
	}
	fresh, _ := read(logger, processingPath)
	return append(entries, fresh...)
}

// read returns the entries of processingPath and whether the file was
// removed afterwards.
func read(logger *slog.Logger, processingPath string) ([]Entry, bool) {
	entries := scan(logger, processingPath)
	if err := os.Remove(processingPath); err != nil {
		logger.Error("remove processing file", "path", processingPath, "err", err)
		return entries, false
	}
	return entries, true
}

func scan(logger *slog.Logger, processingPath string) []Entry {
	f, err := os.Open(processingPath)
	if err != nil {
		logger.Error("open processing file", "err", err)
		return nil
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			logger.Warn("skip malformed line", "err", err)
			continue
		}
		if e.Line == "" {
			logger.Warn("skip empty command", "ts", e.Ts)
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read spool", "err", err)
	}
	return entries
}
