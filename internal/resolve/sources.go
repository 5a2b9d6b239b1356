// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/servus-altissimi/researcher/internal/httputil"
)

// Registry base URLs as package variables so tests can point them at a
// local server.
var (
	doiOrgBase   = "https://doi.org"
	crossrefBase = "https://api.crossref.org"
	dataciteBase = "https://api.datacite.org"
)

// resolverAgent identifies registry traffic separately from the rotating
// browser agents used for page scraping.
const resolverAgent = "researcher-metadata/1.0"

// DOIOrgSource performs DOI content negotiation against doi.org,
// requesting CSL JSON.
type DOIOrgSource struct {
	Client *httputil.PacedClient
}

func (s *DOIOrgSource) Name() string { return "doi.org" }

// cslRecord is the subset of a CSL JSON item the chain cares about. The
// title field is a string in most records but some registries emit an
// array, so it is decoded leniently.
type cslRecord struct {
	DOI      string          `json:"DOI"`
	Title    json.RawMessage `json:"title"`
	Abstract string          `json:"abstract"`
}

func (r cslRecord) title() string {
	var s string
	if err := json.Unmarshal(r.Title, &s); err == nil {
		return s
	}
	var arr []string
	if err := json.Unmarshal(r.Title, &arr); err == nil && len(arr) > 0 {
		return arr[0]
	}
	return ""
}

func (s *DOIOrgSource) Lookup(ctx context.Context, doi string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doiOrgBase+"/"+doi, nil)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("Accept", "application/vnd.citationstyles.csl+json")
	req.Header.Set("User-Agent", resolverAgent)

	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("doi.org returned HTTP %d", resp.StatusCode)
	}

	var rec cslRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Metadata{}, err
	}
	// A record without a DOI field is a soft-404 landing page, not CSL.
	if rec.DOI == "" {
		return Metadata{}, fmt.Errorf("doi.org response missing DOI field")
	}
	return Metadata{Title: rec.title(), Abstract: rec.Abstract}, nil
}

// CrossRefSource queries the CrossRef works API.
type CrossRefSource struct {
	Client *httputil.PacedClient
}

func (s *CrossRefSource) Name() string { return "CrossRef" }

func (s *CrossRefSource) Lookup(ctx context.Context, doi string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefBase+"/works/"+doi, nil)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", resolverAgent)

	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("crossref returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Message struct {
			Title    []string `json:"title"`
			Abstract string   `json:"abstract"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Metadata{}, err
	}

	md := Metadata{Abstract: body.Message.Abstract}
	if len(body.Message.Title) > 0 {
		md.Title = body.Message.Title[0]
	}
	return md, nil
}

// DataCiteSource queries the DataCite REST API, the registry of record
// for datasets and preprint DOIs CrossRef does not cover.
type DataCiteSource struct {
	Client *httputil.PacedClient
}

func (s *DataCiteSource) Name() string { return "DataCite" }

func (s *DataCiteSource) Lookup(ctx context.Context, doi string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dataciteBase+"/dois/"+doi, nil)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", resolverAgent)

	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("datacite returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Attributes struct {
				Titles []struct {
					Title string `json:"title"`
				} `json:"titles"`
				Descriptions []struct {
					Description string `json:"description"`
				} `json:"descriptions"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Metadata{}, err
	}

	var md Metadata
	if ts := body.Data.Attributes.Titles; len(ts) > 0 {
		md.Title = ts[0].Title
	}
	if ds := body.Data.Attributes.Descriptions; len(ds) > 0 {
		md.Abstract = ds[0].Description
	}
	return md, nil
}

// DefaultSources builds the standard registry chain sharing one paced
// client.
func DefaultSources(client *httputil.PacedClient) []Source {
	return []Source{
		&DOIOrgSource{Client: client},
		&CrossRefSource{Client: client},
		&DataCiteSource{Client: client},
	}
}
