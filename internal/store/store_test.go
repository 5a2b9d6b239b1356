// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/servus-altissimi/researcher/pkg/types"
)

func tempResults(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "results.txt")
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(tempResults(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestRecordRoundTrip(t *testing.T) {
	path := tempResults(t)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	paper := types.Paper{
		Title:        "A Study of Things",
		URL:          "https://doi.org/10.1000/thing",
		Identifier:   "10.1000/thing",
		AbstractText: "We study things in considerable depth.",
		Score:        0.91,
	}
	if err := s.Record(paper); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if !s.Contains("10.1000/thing") {
		t.Error("identifier not in dedup set after Record")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"DOI: 10.1000/thing",
		"Title: A Study of Things",
		"URL: https://doi.org/10.1000/thing",
		"Score: 0.91",
		"Abstract:\nWe study things in considerable depth.",
		strings.Repeat("=", 70),
	} {
		if !strings.Contains(content, want) {
			t.Errorf("results file missing %q", want)
		}
	}

	// A fresh Open on the same file sees the identifier.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !s2.Contains("10.1000/thing") {
		t.Error("reloaded store missing saved identifier")
	}
}

func TestRecordWithoutIdentifierWritesNA(t *testing.T) {
	path := tempResults(t)
	s, _ := Open(path)

	if err := s.Record(types.Paper{Title: "No DOI", URL: "u", Score: 1.1}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "DOI: NA") {
		t.Error("missing-identifier block should carry DOI: NA")
	}
	if s.Contains("NA") || s.Contains("") {
		t.Error("NA placeholder must not enter the dedup set")
	}
}

func TestOpenLoadsPipeDelimitedLegacyLines(t *testing.T) {
	path := tempResults(t)
	legacy := "10.1/abc | Some Title | 0.9\n10.2/def|other\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.Contains("10.1/abc") {
		t.Error("first pipe field of legacy line should be in the set")
	}
	if !s.Contains("10.2/def") {
		t.Error("unspaced pipe field should be in the set")
	}
}

func TestClear(t *testing.T) {
	path := tempResults(t)
	s, _ := Open(path)
	s.Record(types.Paper{Identifier: "10.1/x", Title: "t", Score: 0.9})

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Contains("10.1/x") {
		t.Error("dedup set should be empty after Clear")
	}
	if info, err := os.Stat(path); err != nil || info.Size() != 0 {
		t.Errorf("results file not truncated: err=%v", err)
	}
}

func TestReadRecords(t *testing.T) {
	path := tempResults(t)
	s, _ := Open(path)
	s.Record(types.Paper{
		Identifier:   "10.1/first",
		Title:        "First Paper",
		URL:          "https://example.org/1",
		AbstractText: "Line one of the abstract.\nLine two of the abstract.",
		Score:        0.85,
	})
	s.Record(types.Paper{
		Title:        "Disabled Run Paper",
		URL:          "https://example.org/2",
		AbstractText: "Another abstract.",
		Score:        1.1,
	})

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.DOI != "10.1/first" || first.Title != "First Paper" {
		t.Errorf("first record = %+v", first)
	}
	if first.AbstractText != "Line one of the abstract. Line two of the abstract." {
		t.Errorf("multiline abstract joined wrong: %q", first.AbstractText)
	}
	if first.Score != 0.85 {
		t.Errorf("score = %v, want 0.85", first.Score)
	}
	if first.Timestamp == "" {
		t.Error("timestamp not parsed")
	}

	if records[1].DOI != "NA" || records[1].Score != 1.1 {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestReadRecordsDropsZeroScore(t *testing.T) {
	path := tempResults(t)
	block := strings.Repeat("=", 70) + "\nDOI: 10.1/zero\nTitle: Broken\nURL: u\nScore: 0.00\nSaved: 2026-01-01 00:00:00\nAbstract:\ntext\n" + strings.Repeat("=", 70) + "\n"
	os.WriteFile(path, []byte(block), 0o644)

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("zero-score record should be dropped, got %d", len(records))
	}
}

func TestReadRecordsMissingFile(t *testing.T) {
	records, err := ReadRecords(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if records != nil {
		t.Errorf("missing file should yield nil records, got %v", records)
	}
}

func TestFilterRecords(t *testing.T) {
	records := []Record{
		{DOI: "10.1/a", Title: "Quantum Entanglement", AbstractText: "spooky action"},
		{DOI: "10.2/b", Title: "Protein Folding", AbstractText: "molecular dynamics"},
	}

	got := FilterRecords(records, "QUANTUM")
	if len(got) != 1 || got[0].DOI != "10.1/a" {
		t.Errorf("title filter = %v", got)
	}

	got = FilterRecords(records, "molecular")
	if len(got) != 1 || got[0].DOI != "10.2/b" {
		t.Errorf("abstract filter = %v", got)
	}

	got = FilterRecords(records, "")
	if len(got) != 2 {
		t.Errorf("empty query should keep all, got %d", len(got))
	}
}
