package analysis

import (
	"encoding/json"
	"fmt"

	"docvault/internal/model"
)

const describeSystemPrompt = `You are a document analyst. You receive a scanned document, photo or PDF and describe it for a personal document archive. Answer with a single JSON object and nothing else.`

const describePrompt = `Analyse the attached file and return a JSON object with exactly these fields:

{
  "document_type": "short name of the kind of document, e.g. Passport, Driver License, Electricity Bill",
  "description": "one or two sentences describing the content, owner and issuer when visible",
  "keywords": ["20 to 30 short search keywords covering type, issuer, purpose, synonyms and related terms"],
  "country": "issuing country when it can be determined, otherwise empty",
  "typical_use": "what this document is usually needed for, otherwise empty"
}

Rules:
- keywords must be lower case, without duplicates, each at most four words.
- include both the local-language and the English names of the document type when they differ.
- do not invent personal data that is not visible in the file.`

const interpretSystemPrompt = `You help a person find documents in their personal archive. You receive a request and a JSON list of the documents they own. Answer with a single JSON object and nothing else.`

const interpretTemplate = `Request: %q

Documents owned (JSON):
%s

Return a JSON object with exactly these fields:

{
  "topic": "short restatement of what the person is trying to do",
  "search_terms": ["5 to 15 lower case terms that would appear in keywords or descriptions of relevant documents"],
  "matching_document_ids": ["ids from the list above that are relevant to the request"],
  "required_documents": [
    {"name": "document usually required for this task", "document_id": "id from the list when the person owns it, otherwise empty", "how_to_get": "short hint on how to obtain it when not owned"}
  ]
}

Only use ids that appear in the list. Leave matching_document_ids empty when nothing matches.`

func interpretPrompt(query string, corpus []model.DocumentSummary) (string, error) {
	if corpus == nil {
		corpus = []model.DocumentSummary{}
	}
	list, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode corpus: %w", err)
	}
	return fmt.Sprintf(interpretTemplate, query, list), nil
}
