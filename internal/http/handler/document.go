package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/service"
)

// uploadFields are the multipart fields accepted by the upload endpoint, in order.
var uploadFields = []string{"files", "file"}

// MaxFilesPerUpload caps the number of files one upload request may carry.
const MaxFilesPerUpload = 10

// DownloadURLExpiry bounds the lifetime of presigned download links.
const DownloadURLExpiry = 15 * time.Minute

type uploadResponse struct {
	Success   bool             `json:"success"`
	Documents []model.Document `json:"documents"`
}

type listResponse struct {
	Success   bool             `json:"success"`
	Documents []model.Document `json:"documents"`
	Total     int              `json:"total"`
}

type renameRequest struct {
	DisplayName string `json:"display_name"`
}

// ListDocuments godoc
// @Summary List documents
// @Tags documents
// @Param limit query int false "page size, 0 or absent returns every document" default(0)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} listResponse
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		docs := res.Items
		if docs == nil {
			docs = []model.Document{}
		}
		return c.JSON(listResponse{Success: true, Documents: docs, Total: res.Total})
	}
}

// UploadDocuments godoc
// @Summary Upload and analyze one or more documents
// @Description multipart/form-data with one or more files in field "files" (or "file")
// @Tags documents
// @Accept mpfd
// @Success 201 {object} uploadResponse
// @Failure 400 {object} errorPayload "FILE_REQUIRED, FILE_OPEN_ERROR, TOO_MANY_FILES or validation"
// @Failure 422 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /upload [post]
func UploadDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		var headers []*multipart.FileHeader
		for _, field := range uploadFields {
			headers = append(headers, form.File[field]...)
		}
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if len(headers) > MaxFilesPerUpload {
			return writeError(c, fiber.StatusBadRequest, "TOO_MANY_FILES",
				"at most "+strconv.Itoa(MaxFilesPerUpload)+" files per upload")
		}

		files := make([]service.UploadFile, 0, len(headers))
		for _, fh := range headers {
			uf, err := readUpload(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			files = append(files, uf)
		}

		docs, err := docSvc.Upload(c.UserContext(), files)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{Success: true, Documents: docs})
	}
}

func readUpload(fh *multipart.FileHeader) (service.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.UploadFile{}, err
	}
	return service.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     content,
	}, nil
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// RenameDocument godoc
// @Summary Rename a document
// @Tags documents
// @Param id path string true "document id"
// @Param body body renameRequest true "new display name"
// @Success 200 {object} model.Document
// @Router /documents/{id} [patch]
func RenameDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req renameRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.Rename(c.UserContext(), id, req.DisplayName)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
// @Summary Delete a document and its stored file
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Router /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument godoc
// @Summary Redirect to a short-lived download URL
// @Tags documents
// @Param id path string true "document id"
// @Success 302
// @Router /documents/{id}/file [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := docSvc.FileURL(c.UserContext(), id, DownloadURLExpiry)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrPersistence) {
				return writeServiceError(c, err)
			}
			return writeError(c, fiber.StatusBadGateway, "STORAGE_UNAVAILABLE", "cannot create download link")
		}
		return c.Redirect(u, fiber.StatusFound)
	}
}

func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
