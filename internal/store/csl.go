// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language)
// format. Field names follow the CSL-JSON/CSL-YAML schema so exports
// are consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Title    string `yaml:"title"`
	Abstract string `yaml:"abstract,omitempty"`
	URL      string `yaml:"URL,omitempty"`
	DOI      string `yaml:"DOI,omitempty"`
}

// WriteCSL writes records as a CSL-YAML list to w.
func WriteCSL(records []Record, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r Record) CSLItem {
	item := CSLItem{
		ID:       r.DOI,
		Type:     "article",
		Title:    r.Title,
		Abstract: r.AbstractText,
		URL:      r.URL,
	}
	// Set DOI only when the identifier is one; arXiv IDs and NA stay in
	// the id field alone.
	if strings.HasPrefix(r.DOI, "10.") {
		item.DOI = r.DOI
	}
	return item
}
