// Package openai implements analysis.Generator on any OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docvault/internal/analysis"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gpt-4o-mini"

type Generator struct {
	client openai.Client
	model  string
}

// New creates a chat-completions generator. baseURL may be empty for the public endpoint.
func New(apiKey, model, baseURL string) (*Generator, error) {
	if apiKey == "" {
		return nil, analysis.ErrConfiguration
	}
	if model == "" {
		model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Generator{client: openai.NewClient(opts...), model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, p analysis.Prompt) (*analysis.Generation, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(p.Text)}
	if p.Attachment != nil {
		parts = append(parts, attachmentPart(p.Attachment))
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	messages = append(messages, openai.UserMessage(parts))

	res, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", analysis.ErrMalformedResponse)
	}

	return &analysis.Generation{
		Text: res.Choices[0].Message.Content,
		Usage: &analysis.Usage{
			Model:        g.model,
			InputTokens:  res.Usage.PromptTokens,
			OutputTokens: res.Usage.CompletionTokens,
		},
	}, nil
}

func attachmentPart(a *analysis.Attachment) openai.ChatCompletionContentPartUnionParam {
	dataURL := dataURL(a.MimeType, a.Data)
	if strings.HasPrefix(a.MimeType, "image/") {
		return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL})
	}
	return openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
		FileData: openai.String(dataURL),
		Filename: openai.String("document"),
	})
}

func dataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: status %d", analysis.ErrAuth, apiErr.StatusCode)
		}
		return fmt.Errorf("%w: status %d", analysis.ErrUnavailable, apiErr.StatusCode)
	}
	return fmt.Errorf("%w: %v", analysis.ErrUnavailable, err)
}
