package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"docvault/internal/model"
)

// describePayload is the JSON shape the describe prompt asks for.
type describePayload struct {
	DocumentType string   `json:"document_type"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	Country      string   `json:"country"`
	TypicalUse   string   `json:"typical_use"`
}

type interpretPayload struct {
	Topic               string            `json:"topic"`
	SearchTerms         []string          `json:"search_terms"`
	MatchingDocumentIDs []flexibleID      `json:"matching_document_ids"`
	RequiredDocuments   []requiredPayload `json:"required_documents"`
}

type requiredPayload struct {
	Name       string     `json:"name"`
	DocumentID flexibleID `json:"document_id"`
	HowToGet   string     `json:"how_to_get"`
}

// flexibleID accepts ids the model emits as strings or bare numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("invalid document id %s", b)
	}
	*f = flexibleID(b)
	return nil
}

// extractJSON strips markdown fences and surrounding prose, returning the outermost object.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in model output", ErrMalformedResponse)
	}
	return s[start : end+1], nil
}

func decodeDescription(raw string) (*Description, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var p describePayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	p.DocumentType = strings.TrimSpace(p.DocumentType)
	p.Description = strings.TrimSpace(p.Description)
	if p.DocumentType == "" {
		return nil, fmt.Errorf("%w: document_type is missing", ErrMalformedResponse)
	}
	if p.Description == "" {
		return nil, fmt.Errorf("%w: description is missing", ErrMalformedResponse)
	}

	return &Description{
		DocumentType: p.DocumentType,
		Description:  p.Description,
		Keywords:     cleanStrings(p.Keywords),
		Country:      strings.TrimSpace(p.Country),
		TypicalUse:   strings.TrimSpace(p.TypicalUse),
	}, nil
}

func decodeInterpretation(raw, query string) (*Interpretation, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var p interpretPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	in := &Interpretation{
		Topic:               strings.TrimSpace(p.Topic),
		SearchTerms:         cleanStrings(p.SearchTerms),
		MatchingDocumentIDs: []string{},
		RequiredDocuments:   []model.RequiredDocument{},
	}
	if in.Topic == "" {
		in.Topic = query
	}
	for _, id := range p.MatchingDocumentIDs {
		if id != "" {
			in.MatchingDocumentIDs = append(in.MatchingDocumentIDs, string(id))
		}
	}
	for _, r := range p.RequiredDocuments {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		in.RequiredDocuments = append(in.RequiredDocuments, model.RequiredDocument{
			Name:       name,
			DocumentID: string(r.DocumentID),
			HowToGet:   strings.TrimSpace(r.HowToGet),
		})
	}
	return in, nil
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
