// Package analysis wraps the remote vision/text model behind a small capability interface.
//
// The Client turns raw file bytes or a free-text query into typed results and reports the
// token usage of each call. It never records cost itself; callers decide what to do with
// the Usage attached to each result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docvault/internal/model"
)

var (
	// ErrConfiguration means no credential is configured for the remote model.
	ErrConfiguration = errors.New("analysis client is not configured: ANALYSIS_API_KEY is not set")
	// ErrAuth means the remote model rejected the credential.
	ErrAuth = errors.New("analysis provider rejected the credential: check ANALYSIS_API_KEY")
	// ErrMalformedResponse means the model output could not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("analysis provider returned a malformed response")
	// ErrUnavailable covers transport failures, timeouts and non-auth provider errors.
	ErrUnavailable = errors.New("analysis provider is unavailable")
)

// Usage holds the token counters reported by one remote call.
type Usage struct {
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Description is the metadata extracted from one file.
type Description struct {
	DocumentType string
	Description  string
	Keywords     []string
	Country      string
	TypicalUse   string
	Usage        *Usage
}

// Interpretation is the model's reading of a natural-language query against the corpus.
type Interpretation struct {
	Topic               string                   `json:"topic"`
	SearchTerms         []string                 `json:"search_terms"`
	MatchingDocumentIDs []string                 `json:"matching_document_ids"`
	RequiredDocuments   []model.RequiredDocument `json:"required_documents"`
	Usage               *Usage                   `json:"-"`
}

// Client is the capability the ingestion and search pipelines depend on.
type Client interface {
	Describe(ctx context.Context, content []byte, mimeType string) (*Description, error)
	InterpretQuery(ctx context.Context, query string, corpus []model.DocumentSummary) (*Interpretation, error)
}

// Attachment is inline binary content sent with a prompt.
type Attachment struct {
	Data     []byte
	MimeType string
}

// Prompt is a single provider-agnostic model request.
type Prompt struct {
	System     string
	Text       string
	Attachment *Attachment
	JSON       bool
}

// Generation is the raw text a provider produced plus its usage.
type Generation struct {
	Text  string
	Usage *Usage
}

// Generator performs one remote model call. Implementations map provider errors onto
// ErrAuth and ErrUnavailable.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (*Generation, error)
}

// Options tunes a Client.
type Options struct {
	// Timeout bounds every remote call. Zero means 60 seconds.
	Timeout time.Duration
}

type client struct {
	gen     Generator
	timeout time.Duration
}

// NewClient builds a Client on top of a Generator.
func NewClient(gen Generator, opts Options) Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if gen == nil {
		gen = Unconfigured()
	}
	return &client{gen: gen, timeout: opts.Timeout}
}

func (c *client) Describe(ctx context.Context, content []byte, mimeType string) (*Description, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("describe: %w: empty content", ErrMalformedResponse)
	}
	gen, err := c.generate(ctx, Prompt{
		System:     describeSystemPrompt,
		Text:       describePrompt,
		Attachment: &Attachment{Data: content, MimeType: mimeType},
		JSON:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	desc, err := decodeDescription(gen.Text)
	if err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	desc.Usage = gen.Usage
	return desc, nil
}

func (c *client) InterpretQuery(ctx context.Context, query string, corpus []model.DocumentSummary) (*Interpretation, error) {
	text, err := interpretPrompt(query, corpus)
	if err != nil {
		return nil, fmt.Errorf("interpret query: %w", err)
	}
	gen, err := c.generate(ctx, Prompt{System: interpretSystemPrompt, Text: text, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("interpret query: %w", err)
	}
	in, err := decodeInterpretation(gen.Text, query)
	if err != nil {
		return nil, fmt.Errorf("interpret query: %w", err)
	}
	in.Usage = gen.Usage
	return in, nil
}

func (c *client) generate(ctx context.Context, p Prompt) (*Generation, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gen, err := c.gen.Generate(callCtx, p)
	if err != nil {
		if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrAuth) ||
			errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if gen == nil {
		return nil, fmt.Errorf("%w: empty generation", ErrMalformedResponse)
	}
	return gen, nil
}

type unconfigured struct{}

// Unconfigured returns a Generator whose every call fails with ErrConfiguration.
// It lets the process start without a credential.
func Unconfigured() Generator {
	return unconfigured{}
}

func (unconfigured) Generate(context.Context, Prompt) (*Generation, error) {
	return nil, ErrConfiguration
}
