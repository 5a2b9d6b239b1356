// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// Record is one parsed paper block from a results file.
type Record struct {
	DOI          string  `json:"doi"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Score        float64 `json:"score"`
	AbstractText string  `json:"abstract_text"`
	Timestamp    string  `json:"timestamp"`
}

// ReadRecords parses all paper blocks from the results file at path, in
// file order. Blocks with score <= 0 are dropped; a record that never
// received a Score line has score zero and is dropped with them. A
// missing file yields no records and no error.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	var (
		records       []Record
		current       *Record
		abstractLines []string
		inAbstract    bool
	)

	flush := func() {
		if current == nil {
			return
		}
		if len(abstractLines) > 0 {
			current.AbstractText = strings.TrimSpace(strings.Join(abstractLines, " "))
			abstractLines = nil
		}
		if current.Score > 0.0 {
			records = append(records, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "===="):
			flush()
			inAbstract = false
			current = &Record{}
		case strings.HasPrefix(line, "DOI: "):
			if current != nil {
				current.DOI = strings.TrimPrefix(line, "DOI: ")
			}
			inAbstract = false
		case strings.HasPrefix(line, "Title: "):
			if current != nil {
				current.Title = strings.TrimPrefix(line, "Title: ")
			}
			inAbstract = false
		case strings.HasPrefix(line, "URL: "):
			if current != nil {
				current.URL = strings.TrimPrefix(line, "URL: ")
			}
			inAbstract = false
		case strings.HasPrefix(line, "Score: "):
			if current != nil {
				if score, err := strconv.ParseFloat(strings.TrimPrefix(line, "Score: "), 64); err == nil {
					current.Score = score
				}
			}
			inAbstract = false
		case strings.HasPrefix(line, "Saved: "):
			if current != nil {
				current.Timestamp = strings.TrimPrefix(line, "Saved: ")
			}
			inAbstract = false
		case strings.HasPrefix(line, "Abstract:"):
			inAbstract = true
			abstractLines = nil
		case inAbstract && strings.TrimSpace(line) != "":
			abstractLines = append(abstractLines, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	flush()
	return records, nil
}

// FilterRecords returns the records whose title, abstract, or DOI
// contains query, case-insensitively. An empty query keeps everything.
func FilterRecords(records []Record, query string) []Record {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	var out []Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.AbstractText), q) ||
			strings.Contains(strings.ToLower(r.DOI), q) {
			out = append(out, r)
		}
	}
	return out
}
