// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webui serves a small control panel over the pipeline: browse
// and search saved records, tail the run log, launch searches, and
// probe the external services.
package webui

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/servus-altissimi/researcher/internal/logbuf"
	"github.com/servus-altissimi/researcher/internal/store"
	"github.com/servus-altissimi/researcher/pkg/types"
)

//go:embed index.html
var indexHTML string

// SearchRequest is the payload launching a pipeline run from the UI.
type SearchRequest struct {
	Subject    string  `json:"subject" binding:"required"`
	Instance   string  `json:"instance"`
	MaxResults int     `json:"max_results"`
	Model      string  `json:"model"`
	NoAI       bool    `json:"no_ai"`
	TimeRange  string  `json:"time_range"`
	Category   string  `json:"category"`
	Engines    string  `json:"engines"`
	MinScore   float64 `json:"min_score"`
	OllamaURL  string  `json:"ollama_url"`
}

// StatusMessage is the generic JSON reply for control endpoints.
type StatusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RunFunc executes one pipeline run for the given request.
type RunFunc func(ctx context.Context, req SearchRequest, log *logbuf.Logger) (types.RunStats, error)

// Server wires the control panel routes.
type Server struct {
	ResultsPath string
	Log         *logbuf.Logger
	Index       *store.Index // optional; nil falls back to substring search
	Run         RunFunc

	// running guards against overlapping runs; the store's dedup set
	// is loaded once per run and concurrent runs would race on the
	// results file.
	running atomic.Bool

	probeClient *http.Client
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.probeClient == nil {
		s.probeClient = &http.Client{Timeout: 5 * time.Second}
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/results", s.handleResults)
	r.GET("/logs", s.handleLogs)
	r.POST("/search", s.handleSearch)
	r.POST("/clear_results", s.handleClearResults)
	r.POST("/validate", s.handleValidate)
	return r
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// handleResults returns saved records newest first, optionally filtered
// by ?q=. With an FTS index the query is ranked; otherwise it is a
// case-insensitive substring match over title, abstract, and DOI.
func (s *Server) handleResults(c *gin.Context) {
	query := c.Query("q")

	if query != "" && s.Index != nil {
		records, err := s.Index.Search(c.Request.Context(), query, 100)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, nonNil(records))
		return
	}

	records, err := store.ReadRecords(s.ResultsPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	records = store.FilterRecords(records, query)

	// Newest saved first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	c.JSON(http.StatusOK, nonNil(records))
}

func (s *Server) handleLogs(c *gin.Context) {
	lines := s.Log.Lines()
	if lines == nil {
		lines = []string{}
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) handleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, StatusMessage{
			Status:  "error",
			Message: "A search is already running",
		})
		return
	}

	s.Log.Logf("Starting search for: %s", req.Subject)
	go func() {
		defer s.running.Store(false)
		if _, err := s.Run(context.Background(), req, s.Log); err != nil {
			s.Log.Logf("Search error: %v", err)
			return
		}
		s.Log.Log("Search completed!")
	}()

	c.JSON(http.StatusOK, StatusMessage{
		Status:  "ok",
		Message: "Search started in background",
	})
}

func (s *Server) handleClearResults(c *gin.Context) {
	st, err := store.Open(s.ResultsPath)
	if err == nil {
		err = st.Clear()
	}
	if err != nil {
		c.JSON(http.StatusOK, StatusMessage{
			Status:  "error",
			Message: "Could not clear results",
		})
		return
	}
	c.JSON(http.StatusOK, StatusMessage{
		Status:  "ok",
		Message: "All results permanently cleared",
	})
}

// ValidateRequest asks the server to probe an external service.
type ValidateRequest struct {
	URL         string `json:"url" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"`
}

// handleValidate probes a SearXNG instance or Ollama daemon so the UI
// can show reachability before a run is launched.
func (s *Server) handleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	base := strings.TrimSuffix(req.URL, "/")
	switch req.ServiceType {
	case "searxng":
		resp, err := s.probeClient.Get(base + "/search?q=test&format=json")
		if err != nil {
			c.JSON(http.StatusOK, StatusMessage{Status: "error", Message: fmt.Sprintf("Cannot reach SearXNG: %v", err)})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.JSON(http.StatusOK, StatusMessage{Status: "error", Message: fmt.Sprintf("SearXNG returned status: %d", resp.StatusCode)})
			return
		}
		c.JSON(http.StatusOK, StatusMessage{Status: "ok", Message: "SearXNG instance is reachable"})

	case "ollama":
		resp, err := s.probeClient.Get(base + "/api/tags")
		if err != nil {
			c.JSON(http.StatusOK, StatusMessage{Status: "error", Message: fmt.Sprintf("Cannot reach Ollama: %v", err)})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.JSON(http.StatusOK, StatusMessage{Status: "error", Message: fmt.Sprintf("Ollama returned status: %d", resp.StatusCode)})
			return
		}

		var tags struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&tags); err == nil && len(tags.Models) > 0 {
			names := make([]string, len(tags.Models))
			for i, m := range tags.Models {
				names[i] = m.Name
			}
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"message": "Ollama is reachable",
				"models":  names,
			})
			return
		}
		c.JSON(http.StatusOK, StatusMessage{Status: "ok", Message: "Ollama is reachable"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown service_type"})
	}
}

func nonNil(records []store.Record) []store.Record {
	if records == nil {
		return []store.Record{}
	}
	return records
}
