// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/servus-altissimi/researcher/internal/identifier"
)

// minAbstractLen is the shortest fragment worth keeping. Anything at or
// under this is a truncated teaser, not an abstract.
const minAbstractLen = 50

// Publisher meta tags that may carry a DOI, in priority order.
var metaIDSelectors = []string{
	"meta[name='citation_doi']",
	"meta[name='DC.Identifier']",
	"meta[property='citation_doi']",
	"meta[name='DOI']",
}

// Meta tags that may carry an abstract or at least a long description.
var metaAbstractSelectors = []string{
	"meta[name='citation_abstract']",
	"meta[name='description']",
	"meta[property='og:description']",
	"meta[name='DC.Description']",
}

// Visible page elements publishers commonly use for the abstract body.
var abstractSelectors = []string{
	"abstract", ".abstract", "#abstract", "div.abstract",
	"section.abstract", "div[class*='abstract']", "p[class*='abstract']",
}

// ScrapePage fetches url and mines the HTML for an abstract and a DOI.
// Every failure mode returns empty strings; a dead or hostile landing
// page never aborts the candidate.
func (r *Resolver) ScrapePage(ctx context.Context, url string) (abstract, doi string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ""
	}

	resp, err := r.PageClient.Do(req)
	if err != nil {
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", ""
	}

	return extractAbstract(doc), extractDOI(doc)
}

func extractDOI(doc *goquery.Document) string {
	for _, sel := range metaIDSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if content, ok := s.Attr("content"); ok {
				if id := identifier.FromText(content); id != "" {
					found = id
					return false
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func extractAbstract(doc *goquery.Document) string {
	for _, sel := range metaAbstractSelectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if len(content) > minAbstractLen {
				return content
			}
		}
	}

	for _, sel := range abstractSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(strings.Join(strings.Fields(node.Text()), " "))
		if len(text) > minAbstractLen {
			return text
		}
	}
	return ""
}
