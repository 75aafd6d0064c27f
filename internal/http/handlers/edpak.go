package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/academy-backend/internal/http/response"
	"github.com/yungbote/academy-backend/internal/modules/edpak"
	"github.com/yungbote/academy-backend/internal/platform/apierr"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/services"
)

const multipartOverhead = 1 << 20

type EdpakHandler struct {
	log      *logger.Logger
	edpak    services.EdpakService
	maxBytes int64
}

func NewEdpakHandler(log *logger.Logger, edpakService services.EdpakService, maxArchiveBytes int64) *EdpakHandler {
	if maxArchiveBytes <= 0 {
		maxArchiveBytes = edpak.DefaultMaxArchiveBytes
	}
	return &EdpakHandler{
		log:      log.With("handler", "EdpakHandler"),
		edpak:    edpakService,
		maxBytes: maxArchiveBytes,
	}
}

type importFromURLRequest struct {
	BlobURL string `json:"blobUrl" binding:"required"`
}

type importResponse struct {
	CourseID string            `json:"course_id"`
	Summary  string            `json:"summary"`
	Stats    edpak.ImportStats `json:"stats"`
	Warnings []string          `json:"warnings"`
}

// Import accepts either a multipart "file" field or a JSON {"blobUrl"} body.
func (h *EdpakHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		res *edpak.Result
		err error
	)
	switch contentType := c.ContentType(); {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		raw, _, aerr := h.readArchiveUpload(c)
		if aerr != nil {
			response.RespondAPIError(c, aerr)
			return
		}
		res, err = h.edpak.ImportArchive(ctx, raw)
	case contentType == "application/json":
		var req importFromURLRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil || strings.TrimSpace(req.BlobURL) == "" {
			response.RespondError(c, http.StatusBadRequest, "invalid_upload", errors.New("blobUrl is required"))
			return
		}
		res, err = h.edpak.ImportFromURL(ctx, strings.TrimSpace(req.BlobURL))
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_upload",
			fmt.Errorf("expected multipart/form-data or application/json, got %q", contentType))
		return
	}
	if err != nil {
		h.log.Warn("edpak import rejected", "kind", edpak.KindOf(err), "error", err)
		response.RespondAPIError(c, importError(err))
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	response.RespondCreated(c, importResponse{
		CourseID: res.CourseID.String(),
		Summary:  res.Summary,
		Stats:    res.Stats,
		Warnings: warnings,
	})
}

// UploadBlob stores an archive in the edpak bucket and returns its blob URL.
func (h *EdpakHandler) UploadBlob(c *gin.Context) {
	raw, name, aerr := h.readArchiveUpload(c)
	if aerr != nil {
		response.RespondAPIError(c, aerr)
		return
	}
	stored, err := h.edpak.StoreArchive(c.Request.Context(), name, bytes.NewReader(raw))
	if err != nil {
		h.log.Error("edpak archive upload failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "upload_failed", err)
		return
	}
	response.RespondCreated(c, stored)
}

func (h *EdpakHandler) readArchiveUpload(c *gin.Context) ([]byte, string, *apierr.Error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", apierr.New(http.StatusRequestEntityTooLarge, "archive_too_large", fmt.Errorf("archive exceeds %d bytes", h.maxBytes))
		}
		return nil, "", apierr.BadRequest("invalid_upload", fmt.Errorf("file field is required: %w", err))
	}
	if !IsArchiveFilename(fh.Filename) {
		return nil, "", apierr.BadRequest("invalid_upload", fmt.Errorf("file %q must have a .zip or .edpak extension", fh.Filename))
	}
	if fh.Size == 0 {
		return nil, "", apierr.BadRequest("empty_archive", errors.New("uploaded archive is empty"))
	}
	if fh.Size > h.maxBytes {
		return nil, "", apierr.New(http.StatusRequestEntityTooLarge, "archive_too_large", fmt.Errorf("archive exceeds %d bytes", h.maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", apierr.BadRequest("invalid_upload", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, "", apierr.BadRequest("invalid_upload", err)
	}
	return raw, fh.Filename, nil
}

func IsArchiveFilename(name string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(name))) {
	case ".zip", ".edpak":
		return true
	default:
		return false
	}
}

// importError maps importer failures onto HTTP statuses. Everything raised
// before the first write is the client's problem.
func importError(err error) *apierr.Error {
	switch kind := edpak.KindOf(err); kind {
	case edpak.KindFetch, edpak.KindEmptyArchive, edpak.KindInvalidArchive, edpak.KindManifestParse, edpak.KindManifestValidation:
		return apierr.BadRequest(string(kind), err)
	case edpak.KindPersistence:
		switch {
		case edpak.IsRetryableStore(err):
			return apierr.New(http.StatusServiceUnavailable, "persistence_unavailable", err)
		case edpak.IsConflictStore(err):
			return apierr.New(http.StatusConflict, "persistence_conflict", err)
		}
		return apierr.Internal(string(kind), err)
	default:
		return apierr.Internal("import_failed", err)
	}
}
