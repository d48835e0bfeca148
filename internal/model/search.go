package model

// RequiredDocument describes a document a user may need for a topic,
// whether or not they currently have it.
type RequiredDocument struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id,omitempty"`
	HowToGet   string `json:"how_to_get,omitempty"`
}

// RequiredDocumentStatus is a RequiredDocument annotated with possession.
type RequiredDocumentStatus struct {
	RequiredDocument
	HasDocument bool `json:"has_document"`
}
