// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servus-altissimi/researcher/internal/httputil"
	"github.com/servus-altissimi/researcher/internal/logbuf"
)

func testPaced(c *http.Client) *httputil.PacedClient {
	// High rate so tests never wait on the limiter.
	return httputil.NewPacedClient(c, 1000)
}

func TestDOIOrgSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.citationstyles.csl+json", r.Header.Get("Accept"))
		assert.Equal(t, "/10.1000/abc", r.URL.Path)
		w.Write([]byte(`{"DOI": "10.1000/abc", "title": "Paper One", "abstract": "The abstract."}`))
	}))
	defer ts.Close()

	old := doiOrgBase
	doiOrgBase = ts.URL
	defer func() { doiOrgBase = old }()

	src := &DOIOrgSource{Client: testPaced(ts.Client())}
	md, err := src.Lookup(context.Background(), "10.1000/abc")
	require.NoError(t, err)
	assert.Equal(t, "Paper One", md.Title)
	assert.Equal(t, "The abstract.", md.Abstract)
}

func TestDOIOrgSourceArrayTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"DOI": "10.1000/abc", "title": ["First", "Second"]}`))
	}))
	defer ts.Close()

	old := doiOrgBase
	doiOrgBase = ts.URL
	defer func() { doiOrgBase = old }()

	src := &DOIOrgSource{Client: testPaced(ts.Client())}
	md, err := src.Lookup(context.Background(), "10.1000/abc")
	require.NoError(t, err)
	assert.Equal(t, "First", md.Title)
}

func TestDOIOrgSourceRejectsNonCSL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// A landing page that answered 200 without CSL content.
		w.Write([]byte(`{"title": "Not a registry record"}`))
	}))
	defer ts.Close()

	old := doiOrgBase
	doiOrgBase = ts.URL
	defer func() { doiOrgBase = old }()

	src := &DOIOrgSource{Client: testPaced(ts.Client())}
	_, err := src.Lookup(context.Background(), "10.1000/abc")
	assert.Error(t, err)
}

func TestCrossRefSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/10.1000/abc", r.URL.Path)
		w.Write([]byte(`{"message": {"title": ["CrossRef Title"], "abstract": "<jats:p>Text</jats:p>"}}`))
	}))
	defer ts.Close()

	old := crossrefBase
	crossrefBase = ts.URL
	defer func() { crossrefBase = old }()

	src := &CrossRefSource{Client: testPaced(ts.Client())}
	md, err := src.Lookup(context.Background(), "10.1000/abc")
	require.NoError(t, err)
	assert.Equal(t, "CrossRef Title", md.Title)
	assert.Equal(t, "<jats:p>Text</jats:p>", md.Abstract)
}

func TestDataCiteSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dois/10.5281/zenodo.1", r.URL.Path)
		w.Write([]byte(`{"data": {"attributes": {
			"titles": [{"title": "Dataset Title"}],
			"descriptions": [{"description": "A dataset description."}]
		}}}`))
	}))
	defer ts.Close()

	old := dataciteBase
	dataciteBase = ts.URL
	defer func() { dataciteBase = old }()

	src := &DataCiteSource{Client: testPaced(ts.Client())}
	md, err := src.Lookup(context.Background(), "10.5281/zenodo.1")
	require.NoError(t, err)
	assert.Equal(t, "Dataset Title", md.Title)
	assert.Equal(t, "A dataset description.", md.Abstract)
}

type fakeSource struct {
	name string
	md   Metadata
	err  error
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Lookup(context.Context, string) (Metadata, error) {
	return f.md, f.err
}

func TestLookupChainFallsThrough(t *testing.T) {
	r := &Resolver{
		Sources: []Source{
			&fakeSource{name: "a", err: assert.AnError},
			&fakeSource{name: "b", md: Metadata{}}, // no title
			&fakeSource{name: "c", md: Metadata{Title: "Found", Abstract: "Abs"}},
		},
		Log: logbuf.New(nil),
	}

	md, ok := r.Lookup(context.Background(), "10.1000/x")
	require.True(t, ok)
	assert.Equal(t, "Found", md.Title)
}

func TestLookupChainAllFail(t *testing.T) {
	r := &Resolver{
		Sources: []Source{
			&fakeSource{name: "a", err: assert.AnError},
			&fakeSource{name: "b", err: assert.AnError},
		},
		Log: logbuf.New(nil),
	}

	_, ok := r.Lookup(context.Background(), "10.1000/x")
	assert.False(t, ok)
}

const samplePage = `<!DOCTYPE html>
<html><head>
<meta name="citation_doi" content="doi:10.1234/example.567">
<meta name="description" content="short">
<meta property="og:description" content="This description is comfortably longer than fifty characters and looks like an abstract.">
</head><body>
<div class="abstract-section">Body abstract text that is also longer than fifty characters in total length.</div>
</body></html>`

func TestScrapePageMetaTags(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	r := &Resolver{PageClient: ts.Client(), Log: logbuf.New(nil)}
	abstract, doi := r.ScrapePage(context.Background(), ts.URL)

	assert.Equal(t, "10.1234/example.567", doi)
	assert.Contains(t, abstract, "comfortably longer than fifty characters")
}

func TestScrapePageBodyFallback(t *testing.T) {
	page := `<html><head><meta name="description" content="tiny"></head>
<body><section class="abstract">  We study   a problem whose description easily exceeds the fifty character floor.  </section></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer ts.Close()

	r := &Resolver{PageClient: ts.Client(), Log: logbuf.New(nil)}
	abstract, doi := r.ScrapePage(context.Background(), ts.URL)

	assert.Empty(t, doi)
	assert.Equal(t, "We study a problem whose description easily exceeds the fifty character floor.", abstract)
}

func TestScrapePageSoftFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	r := &Resolver{
		PageClient: &http.Client{Timeout: 2 * time.Second},
		Log:        logbuf.New(nil),
	}

	abstract, doi := r.ScrapePage(context.Background(), ts.URL)
	assert.Empty(t, abstract)
	assert.Empty(t, doi)

	// Unreachable host is equally soft.
	abstract, doi = r.ScrapePage(context.Background(), "http://127.0.0.1:1/nope")
	assert.Empty(t, abstract)
	assert.Empty(t, doi)
}
