// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists accepted papers. The canonical record is a
// plain append-only text file of human-readable blocks; the identifier
// set loaded from it drives cross-run deduplication. A SQLite FTS index
// and CSL export are derived views rebuilt from the text file.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/servus-altissimi/researcher/pkg/types"
)

const separator = "======================================================================"

// Store appends paper blocks to a results file and tracks which
// identifiers have already been saved.
type Store struct {
	path      string
	processed map[string]struct{}
}

// Open loads the dedup set from the results file at path. Block-format
// "DOI:" lines contribute their identifier (the NA placeholder is
// ignored); any other line contributes its first '|'-separated field,
// trimmed, so legacy pipe-delimited files load their identifier column.
// A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, processed: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if id, ok := strings.CutPrefix(line, "DOI: "); ok {
			id = strings.TrimSpace(id)
			if id != "" && id != "NA" {
				s.processed[id] = struct{}{}
			}
			continue
		}
		field, _, _ := strings.Cut(line, "|")
		field = strings.TrimSpace(field)
		if field != "" {
			s.processed[field] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	return s, nil
}

// Path returns the results file location.
func (s *Store) Path() string { return s.path }

// Contains reports whether id was seen in a previous or current run.
func (s *Store) Contains(id string) bool {
	_, ok := s.processed[id]
	return ok
}

// Len returns the number of known identifiers.
func (s *Store) Len() int { return len(s.processed) }

// Record appends one paper block to the results file. The identifier
// joins the dedup set only after the write succeeds, so a failed write
// leaves the paper eligible for a retry on the next run.
func (s *Store) Record(paper types.Paper) error {
	id := paper.Identifier
	if id == "" {
		id = "NA"
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", separator)
	fmt.Fprintf(&b, "DOI: %s\n", id)
	fmt.Fprintf(&b, "Title: %s\n", paper.Title)
	fmt.Fprintf(&b, "URL: %s\n", paper.URL)
	fmt.Fprintf(&b, "Score: %.2f\n", paper.Score)
	fmt.Fprintf(&b, "Saved: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Abstract:\n%s\n", paper.AbstractText)
	fmt.Fprintf(&b, "%s\n\n", separator)

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing paper block: %w", err)
	}

	if paper.Identifier != "" {
		s.processed[paper.Identifier] = struct{}{}
	}
	return nil
}

// Clear truncates the results file and resets the dedup set.
func (s *Store) Clear() error {
	if err := os.Truncate(s.path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing results file: %w", err)
	}
	s.processed = make(map[string]struct{})
	return nil
}
