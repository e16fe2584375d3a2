// Package extract pulls structured load data out of rate confirmation PDFs
// with the Gemini API. Models are tried in order with bounded retries, so a
// flaky or overloaded model falls through to the next one.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/fleetdesk/fleetdesk/internal/logger"
)

var (
	// ErrNotConfigured marks a missing API key.
	ErrNotConfigured = errors.New("extraction is not configured")
	// ErrAllModelsFailed is returned after every configured model has been
	// exhausted.
	ErrAllModelsFailed = errors.New("all extraction models failed")
	// ErrNoJSON marks a model response with no parseable JSON object.
	ErrNoJSON = errors.New("model response contains no JSON object")
)

const (
	defaultTimeout   = 30 * time.Second
	attemptsPerModel = 2
	backoffStep      = time.Second
)

// ExtractedStop is one pickup or delivery pulled from the document.
type ExtractedStop struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	ScheduledAt string `json:"scheduled_at"`
}

// ExtractedBroker is the broker block pulled from the document.
type ExtractedBroker struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	MCNumber string `json:"mc_number"`
}

// ExtractedLoad is the structured result of a rate confirmation extraction.
// Confidence is the model's own 0-100 estimate and is advisory only.
type ExtractedLoad struct {
	ReferenceCode string          `json:"reference_code"`
	LoadType      string          `json:"load_type"`
	TemperatureF  *int            `json:"temperature_f"`
	Rate          string          `json:"rate"`
	Pickups       []ExtractedStop `json:"pickups"`
	Deliveries    []ExtractedStop `json:"deliveries"`
	Broker        ExtractedBroker `json:"broker"`
	Confidence    int             `json:"confidence"`
}

// Config holds the API key and the ordered model fallback chain.
type Config struct {
	APIKey  string
	Models  []string
	Timeout time.Duration
}

// generator is the model call behind Extract, swapped out in tests.
type generator interface {
	generate(ctx context.Context, model, prompt string, pdf []byte) (string, error)
}

// Extractor runs rate confirmation extraction over a model fallback chain.
type Extractor struct {
	cfg Config
	gen generator
}

// New creates an Extractor backed by the Gemini API.
func New(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"gemini-2.5-flash-lite", "gemini-2.5-flash"}
	}
	return &Extractor{cfg: cfg, gen: &geminiGenerator{apiKey: cfg.APIKey}}
}

const extractionPrompt = `You are reading a freight rate confirmation PDF.
Return ONLY a JSON object with exactly these fields:
{
  "reference_code": string,      // the load / order / pro number
  "load_type": string,           // one of: dry_van, reefer, flatbed
  "temperature_f": number|null,  // required temperature, null unless reefer
  "rate": string,                // total linehaul rate as a decimal string
  "pickups": [{"name": string, "address": string, "city": string, "state": string, "zip": string, "scheduled_at": string}],
  "deliveries": [{"name": string, "address": string, "city": string, "state": string, "zip": string, "scheduled_at": string}],
  "broker": {"name": string, "contact": string, "phone": string, "email": string, "mc_number": string},
  "confidence": number           // 0-100, your confidence in this extraction
}
Use empty strings for fields you cannot find. Dates as RFC 3339 when possible.`

// Extract tries each configured model in order, twice per model with a
// linear backoff, and returns the first successfully parsed result.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) (*ExtractedLoad, error) {
	if e.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrAllModelsFailed)
	}

	var lastErr error
	for _, model := range e.cfg.Models {
		for attempt := 1; attempt <= attemptsPerModel; attempt++ {
			if attempt > 1 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(attempt-1) * backoffStep):
				}
			}

			load, err := e.extractOnce(ctx, model, pdf)
			if err == nil {
				return load, nil
			}
			lastErr = err
			logger.Warnw("extraction attempt failed",
				"model", model,
				"attempt", attempt,
				"error", err,
			)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrAllModelsFailed, lastErr)
}

func (e *Extractor) extractOnce(ctx context.Context, model string, pdf []byte) (*ExtractedLoad, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	text, err := e.gen.generate(callCtx, model, extractionPrompt, pdf)
	if err != nil {
		return nil, err
	}

	jsonText, err := firstJSONObject(text)
	if err != nil {
		return nil, err
	}

	var load ExtractedLoad
	if err := json.Unmarshal([]byte(jsonText), &load); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if load.Confidence < 0 {
		load.Confidence = 0
	}
	if load.Confidence > 100 {
		load.Confidence = 100
	}
	return &load, nil
}

// firstJSONObject returns the substring spanning the first "{" through its
// matching "}". Models wrap responses in prose or markdown fences, so the
// object is located by brace depth rather than trimming.
func firstJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}

// geminiGenerator is the real Gemini API call. A client is created per call
// because the SDK binds the client to the request context.
type geminiGenerator struct {
	apiKey string
}

func (g *geminiGenerator) generate(ctx context.Context, model, prompt string, pdf []byte) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create model client: %w", err)
	}

	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{
				MIMEType: "application/pdf",
				Data:     pdf,
			}},
		},
	}
	result, err := client.Models.GenerateContent(ctx, model, []*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("model returned no content")
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	return text, nil
}
