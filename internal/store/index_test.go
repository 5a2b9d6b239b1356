// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexRebuildAndSearch(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	records := []Record{
		{DOI: "10.1/a", Title: "Quantum Error Correction", AbstractText: "Surface codes for fault tolerance.", Score: 0.9, Timestamp: "2026-01-01 10:00:00"},
		{DOI: "10.2/b", Title: "Protein Structure Prediction", AbstractText: "Deep learning for folding.", Score: 0.8, Timestamp: "2026-01-02 10:00:00"},
	}
	if err := idx.Rebuild(ctx, records); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	got, err := idx.Search(ctx, "quantum", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].DOI != "10.1/a" {
		t.Errorf("Search(quantum) = %+v", got)
	}
	if got[0].Score != 0.9 || got[0].Timestamp != "2026-01-01 10:00:00" {
		t.Errorf("record fields lost in round trip: %+v", got[0])
	}

	got, err = idx.Search(ctx, "folding", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].DOI != "10.2/b" {
		t.Errorf("Search(folding) = %+v", got)
	}
}

func TestIndexRebuildReplaces(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	idx.Rebuild(ctx, []Record{{DOI: "10.1/old", Title: "Old Entry", AbstractText: "stale", Score: 0.5}})
	if err := idx.Rebuild(ctx, []Record{{DOI: "10.2/new", Title: "New Entry", AbstractText: "fresh", Score: 0.6}}); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	got, err := idx.Search(ctx, "stale", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("old entry survived rebuild: %+v", got)
	}
}

func TestIndexSearchQuotesQuery(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()
	idx.Rebuild(ctx, []Record{{DOI: "10.1/a", Title: "Normal Title", AbstractText: "text", Score: 0.9}})

	// FTS operators and quotes must not break or inject into the query.
	for _, q := range []string{`"quoted"`, `title OR abstract`, `a NOT b`} {
		if _, err := idx.Search(ctx, q, 10); err != nil {
			t.Errorf("Search(%q) errored: %v", q, err)
		}
	}
}

func TestWriteCSL(t *testing.T) {
	records := []Record{
		{DOI: "10.1/a", Title: "With DOI", URL: "https://doi.org/10.1/a", AbstractText: "abs"},
		{DOI: "arXiv:2301.00001", Title: "Preprint", URL: "https://arxiv.org/abs/2301.00001"},
	}

	var b strings.Builder
	if err := WriteCSL(records, &b); err != nil {
		t.Fatalf("WriteCSL: %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "id: 10.1/a") {
		t.Errorf("output missing id field:\n%s", out)
	}
	if !strings.Contains(out, "DOI: 10.1/a") {
		t.Errorf("DOI field not set for a real DOI:\n%s", out)
	}
	if strings.Contains(out, "DOI: arXiv:2301.00001") {
		t.Errorf("arXiv identifier must not populate the DOI field:\n%s", out)
	}
	if !strings.Contains(out, "type: article") {
		t.Errorf("output missing type:\n%s", out)
	}
}
