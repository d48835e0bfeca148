// Package gemini implements analysis.Generator on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"docvault/internal/analysis"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

type Generator struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed generator.
func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, analysis.ErrConfiguration
	}
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: c, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, p analysis.Prompt) (*analysis.Generation, error) {
	parts := []*genai.Part{{Text: p.Text}}
	if p.Attachment != nil {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{Data: p.Attachment.Data, MIMEType: p.Attachment.MimeType}})
	}

	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: p.System}}}
	}
	if p.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Role: "user", Parts: parts}}, cfg)
	if err != nil {
		return nil, classify(err)
	}

	gen := &analysis.Generation{Text: res.Text()}
	if res.UsageMetadata != nil {
		gen.Usage = &analysis.Usage{
			Model:        g.model,
			InputTokens:  int64(res.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(res.UsageMetadata.CandidatesTokenCount),
		}
	}
	return gen, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return fmt.Errorf("%w: %v", analysis.ErrUnavailable, err)
		}
		apiErr = *ptr
	}
	if isAuthFailure(apiErr.Code, apiErr.Message) {
		return fmt.Errorf("%w: %s", analysis.ErrAuth, apiErr.Message)
	}
	return fmt.Errorf("%w: gemini %d: %s", analysis.ErrUnavailable, apiErr.Code, apiErr.Message)
}

// Gemini reports an invalid key as 400 INVALID_ARGUMENT.
func isAuthFailure(code int, message string) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		return strings.Contains(strings.ToLower(message), "api key")
	}
	return false
}
