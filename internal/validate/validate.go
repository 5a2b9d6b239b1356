// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate scores candidate papers against the research subject
// with a local Ollama model. The stage fails open: when the model is
// disabled or unreachable the candidate is accepted with a sentinel
// verdict so one flaky daemon never silently empties a run.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/servus-altissimi/researcher/internal/logbuf"
	"github.com/servus-altissimi/researcher/pkg/types"
)

// Sentinel verdicts. DisabledVerdict's score of 1.1 sits above any real
// model score so disabled-run records are recognizable in the results
// file; ErrorVerdict marks papers accepted because the model could not
// be asked.
var (
	DisabledVerdict = types.Verdict{Accepted: true, Score: 1.1, Reason: "AI disabled -_-"}
	ErrorVerdict    = types.Verdict{Accepted: true, Score: 0.7, Reason: "AI error, accepted by default"}
)

// abstractPreviewBytes caps how much abstract goes into the prompt.
const abstractPreviewBytes = 400

var promptTmpl = template.Must(template.New("relevance").Parse(
	`You are evaluating if a scientific paper is relevant to a research topic.

Research Topic: "{{.Subject}}"

Paper Title: "{{.Title}}"

Abstract: "{{.Abstract}}"

Rate the relevance from 0.0 to 1.0 and give a ONE to TWO sentence explanation.

Format your response EXACTLY like this:
SCORE: 0.85
REASON: This paper directly addresses machine learning algorithms for classification tasks.

Be very strict only give high scores (0.85+) if the paper is directly about the topic.`))

// Validator asks an Ollama daemon to rate one paper at a time.
type Validator struct {
	Client   *http.Client
	BaseURL  string
	Model    string
	MinScore float64
	Disabled bool
	Log      *logbuf.Logger
	Verbose  bool
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Validate rates title/abstract against subject. It never returns an
// error to the caller; model failures produce ErrorVerdict.
func (v *Validator) Validate(ctx context.Context, subject, title, abstract string) types.Verdict {
	if v.Disabled {
		return DisabledVerdict
	}

	var prompt bytes.Buffer
	err := promptTmpl.Execute(&prompt, struct {
		Subject, Title, Abstract string
	}{subject, title, SafeTruncate(abstract, abstractPreviewBytes)})
	if err != nil {
		if v.Verbose {
			v.Log.Logf("  [AI] Error: %v", err)
		}
		return ErrorVerdict
	}

	body, err := json.Marshal(generateRequest{Model: v.Model, Prompt: prompt.String(), Stream: false})
	if err != nil {
		return ErrorVerdict
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(v.BaseURL, "/")+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return ErrorVerdict
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.Client.Do(req)
	if err != nil {
		if v.Verbose {
			v.Log.Logf("  [AI] Error: %v", err)
		}
		return ErrorVerdict
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if v.Verbose {
			v.Log.Logf("  [AI] Error: ollama returned HTTP %d", resp.StatusCode)
		}
		return ErrorVerdict
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		if v.Verbose {
			v.Log.Logf("  [AI] Error: %v", err)
		}
		return ErrorVerdict
	}

	score, reason := ParseResponse(gr.Response)
	return types.Verdict{Accepted: score >= v.MinScore, Score: score, Reason: reason}
}

// ParseResponse extracts a score and reason from free-form model output.
// The score comes from the first line containing "SCORE:" (case
// insensitive); if that line does not parse, any numeric token in the
// text serves, and 0.5 is the final fallback. The reason is the text
// after the colon on the first "REASON:" line, or everything past the
// first line when no such label exists.
func ParseResponse(text string) (float64, string) {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")

	score := math.NaN()
	for _, line := range lines {
		if strings.Contains(strings.ToUpper(line), "SCORE:") {
			if _, after, ok := strings.Cut(line, ":"); ok {
				if f, err := strconv.ParseFloat(strings.TrimSpace(after), 64); err == nil {
					score = f
				}
			}
			break
		}
	}
	if math.IsNaN(score) {
		for _, word := range strings.Fields(text) {
			if f, err := strconv.ParseFloat(word, 64); err == nil {
				score = f
				break
			}
		}
	}
	if math.IsNaN(score) {
		score = 0.5
	}

	var reason string
	found := false
	for _, line := range lines {
		if strings.Contains(strings.ToUpper(line), "REASON:") {
			if _, after, ok := strings.Cut(line, ":"); ok {
				reason = strings.TrimSpace(after)
				found = true
			}
			break
		}
	}
	if !found && len(lines) > 1 {
		reason = strings.TrimSpace(strings.Join(lines[1:], " "))
	}

	return score, reason
}

// SafeTruncate cuts s to at most max bytes without splitting a UTF-8
// sequence.
func SafeTruncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
