package service

import (
	"strings"

	"docvault/internal/analysis"
	"docvault/internal/model"
)

// FallbackInterpretation is used when the remote interpreter is unavailable: the query
// lower-cased and split on whitespace, dropping tokens of two characters or fewer.
func FallbackInterpretation(query string) *analysis.Interpretation {
	terms := make([]string, 0)
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(tok)) > 2 {
			terms = append(terms, tok)
		}
	}
	return &analysis.Interpretation{
		Topic:               query,
		SearchTerms:         terms,
		MatchingDocumentIDs: []string{},
		RequiredDocuments:   []model.RequiredDocument{},
	}
}

// ResolveMatches picks documents from snapshot, which must be ordered newest first.
// Explicit ids win; unknown ids are ignored. Without ids, a document matches when any term
// is a case-insensitive substring of its keywords, description, document type or display name.
func ResolveMatches(snapshot []model.Document, in *analysis.Interpretation) []model.Document {
	out := make([]model.Document, 0)
	if len(in.MatchingDocumentIDs) > 0 {
		wanted := make(map[string]struct{}, len(in.MatchingDocumentIDs))
		for _, id := range in.MatchingDocumentIDs {
			wanted[id] = struct{}{}
		}
		for _, d := range snapshot {
			if _, ok := wanted[d.ID]; ok {
				out = append(out, d)
			}
		}
		return out
	}

	terms := make([]string, 0, len(in.SearchTerms))
	for _, t := range in.SearchTerms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return out
	}
	for _, d := range snapshot {
		if documentMatches(d, terms) {
			out = append(out, d)
		}
	}
	return out
}

func documentMatches(d model.Document, terms []string) bool {
	fields := make([]string, 0, len(d.AIKeywords)+3)
	for _, k := range d.AIKeywords {
		fields = append(fields, strings.ToLower(k))
	}
	fields = append(fields,
		strings.ToLower(d.AIDescription),
		strings.ToLower(d.AIDocumentType),
		strings.ToLower(d.DisplayName),
	)
	for _, t := range terms {
		for _, f := range fields {
			if strings.Contains(f, t) {
				return true
			}
		}
	}
	return false
}

// EnrichRequired marks each required document as held when its id is among the matches.
func EnrichRequired(required []model.RequiredDocument, matches []model.Document) []model.RequiredDocumentStatus {
	held := make(map[string]struct{}, len(matches))
	for _, d := range matches {
		held[d.ID] = struct{}{}
	}
	out := make([]model.RequiredDocumentStatus, 0, len(required))
	for _, r := range required {
		_, ok := held[r.DocumentID]
		out = append(out, model.RequiredDocumentStatus{
			RequiredDocument: r,
			HasDocument:      r.DocumentID != "" && ok,
		})
	}
	return out
}
