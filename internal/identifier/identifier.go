// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier extracts canonical document identifiers from URLs
// and free text. A DOI is normalized to its bare "10.xxxx/..." form; an
// arXiv ID is returned with the "arXiv:" prefix.
package identifier

import (
	"regexp"
	"strings"
)

// doiPattern matches DOIs embedded in text: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:A-Za-z0-9]+`)

// CleanDOI strips resolver prefixes and surrounding whitespace from a DOI
// string. Cleaning is idempotent: clean(clean(x)) == clean(x).
func CleanDOI(doi string) string {
	cleaned := strings.TrimSpace(doi)
	cleaned = strings.TrimPrefix(cleaned, "https://doi.org/")
	cleaned = strings.TrimPrefix(cleaned, "http://doi.org/")
	cleaned = strings.TrimPrefix(cleaned, "doi:")
	return strings.TrimSpace(cleaned)
}

// FromText returns the first DOI found in text, normalized, or "" when
// none matches. Used directly for HTML meta-tag content.
func FromText(text string) string {
	if m := doiPattern.FindString(text); m != "" {
		return CleanDOI(m)
	}
	return ""
}

// FromURL derives an identifier from a result URL. Rules apply in order,
// first success wins: a doi.org link whose suffix is a valid DOI; an
// arxiv.org abs/pdf path, returned as "arXiv:<id>" with the query string
// and a trailing ".pdf" stripped (no format validation on the fragment);
// otherwise a raw DOI scan of the whole URL. Returns "" when nothing
// matches.
func FromURL(rawURL string) string {
	if _, after, ok := strings.Cut(rawURL, "doi.org/"); ok {
		cleaned := CleanDOI(after)
		if doiPattern.MatchString(cleaned) {
			return cleaned
		}
	}

	if strings.Contains(rawURL, "arxiv.org") {
		if id := arxivFragment(rawURL); id != "" {
			return "arXiv:" + id
		}
	}

	return FromText(rawURL)
}

// IsDOI reports whether id is a bare DOI rather than an arXiv ID.
func IsDOI(id string) bool {
	return strings.HasPrefix(id, "10.")
}

// arxivFragment returns the path segment after /abs/ or /pdf/, with any
// query string and a trailing .pdf removed.
func arxivFragment(rawURL string) string {
	var rest string
	if _, after, ok := strings.Cut(rawURL, "/abs/"); ok {
		rest = after
	} else if _, after, ok := strings.Cut(rawURL, "/pdf/"); ok {
		rest = after
	} else {
		return ""
	}
	id, _, _ := strings.Cut(rest, "?")
	return strings.TrimSuffix(id, ".pdf")
}
