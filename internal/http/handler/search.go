package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Success             bool                           `json:"success"`
	Topic               string                         `json:"topic"`
	Documents           []model.Document               `json:"documents"`
	MatchingDocumentIDs []string                       `json:"matchingDocumentIds"`
	SearchResults       []model.RequiredDocumentStatus `json:"searchResults"`
	SearchTerms         []string                       `json:"searchTerms"`
	Degraded            bool                           `json:"degraded"`
}

// Search godoc
// @Summary Natural-language document search
// @Description Interprets the query against the whole corpus. When the analysis model is
// @Description unavailable the search degrades to local term matching and degraded is true.
// @Tags search
// @Accept json
// @Param body body searchRequest true "query"
// @Success 200 {object} searchResponse
// @Failure 400 {object} errorPayload
// @Router /search [post]
func Search(searchSvc service.SearchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := searchSvc.Search(c.UserContext(), req.Query)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(searchResponse{
			Success:             true,
			Topic:               res.Topic,
			Documents:           res.Documents,
			MatchingDocumentIDs: res.MatchingDocumentIDs,
			SearchResults:       res.RequiredDocuments,
			SearchTerms:         res.SearchTerms,
			Degraded:            res.Degraded,
		})
	}
}
