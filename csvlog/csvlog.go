/*
DESCRIPTION
  csvlog.go provides Log, an append-only semicolon delimited log file whose
  header row is written once, when the file is created.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package csvlog provides append-only delimited logs.
package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Delimiter separates the fields of a row.
const Delimiter = ';'

var errRowLength = errors.New("row length does not match header")

// Log is an append-only delimited log at a fixed path. Rows are never
// rewritten or reordered. The parent directory is not created; a missing
// directory (e.g. an unmounted USB key) is an error.
type Log struct {
	path   string
	header []string
	mu     sync.Mutex
}

// New returns a Log at path with the given header.
func New(path string, header ...string) *Log {
	return &Log{path: path, header: header}
}

// Path returns the path of the log file.
func (l *Log) Path() string { return l.path }

// Append writes row to the end of the log, first writing the header if the
// file does not yet exist.
func (l *Log) Append(row ...string) error {
	if len(l.header) != 0 && len(row) != len(l.header) {
		return fmt.Errorf("%w: got %d, want %d", errRowLength, len(row), len(l.header))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := os.Stat(l.path)
	isNew := errors.Is(err, fs.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("could not open log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Delimiter
	if isNew && len(l.header) != 0 {
		err = w.Write(l.header)
		if err != nil {
			return fmt.Errorf("could not write header: %w", err)
		}
	}
	err = w.Write(row)
	if err != nil {
		return fmt.Errorf("could not write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not flush log: %w", err)
	}
	return f.Close()
}
