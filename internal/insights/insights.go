// Package insights turns a flight dataset into a short narrative through a
// text-generation model.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

var (
	ErrEmptyPayload  = errors.New("insights: empty payload")
	ErrMissingAPIKey = errors.New("insights: missing api key")
	ErrEmptyResponse = errors.New("insights: model returned no text")
)

// Generator produces insights for an arbitrary JSON dataset.
type Generator interface {
	Generate(ctx context.Context, payload json.RawMessage) (string, error)
}

const promptTemplate = `You are a data analyst for an airline company.

Here is the flight dataset:
%s

Generate insights including:
- Most common routes
- Time patterns (peak hours or days)
- Status trends (delayed, scheduled, etc.)
- Anomalies or demand spikes

Keep it short and business-friendly.`

// Prompt embeds the dataset into the analyst instruction sent to the model.
func Prompt(payload json.RawMessage) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(string(payload)))
}

// Gemini generates insights with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a client for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, payload json.RawMessage) (string, error) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return "", ErrEmptyPayload
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(payload)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Unavailable is the Generator used when no model is configured. Every call
// fails with ErrMissingAPIKey.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, json.RawMessage) (string, error) {
	return "", ErrMissingAPIKey
}
