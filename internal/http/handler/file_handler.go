package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"go.uber.org/zap"
)

// FileHandler handles HTTP requests for file upload and download
type FileHandler struct {
	fileService *service.FileService
	logger      *zap.Logger
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(fileService *service.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// UploadFile godoc
// @Summary Upload file
// @Description Upload a file via multipart form. An optional proposalId field attaches it to a proposal.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File content"
// @Param proposalId formData string false "Proposal to attach the file to"
// @Success 201 {object} domain.FileDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	maxSize := h.fileService.MaxUploadSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field in form data")
		return
	}
	defer file.Close()

	var proposalID *uuid.UUID
	if raw := r.FormValue("proposalId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid proposalId: must be a valid UUID")
			return
		}
		proposalID = &id
	}

	contentType := header.Header.Get("Content-Type")
	dto, err := h.fileService.Upload(r.Context(), proposalID, header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload file")
		return
	}

	w.Header().Set("Location", dto.URL)
	respondJSON(w, http.StatusCreated, dto)
}

// ListFiles godoc
// @Summary List files
// @Description Get the tenant's files, optionally filtered by proposal
// @Tags Files
// @Produce json
// @Param proposalId query string false "Filter by proposal"
// @Success 200 {array} domain.FileDTO
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	var proposalID *uuid.UUID
	if raw := r.URL.Query().Get("proposalId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid proposalId: must be a valid UUID")
			return
		}
		proposalID = &id
	}

	files, err := h.fileService.List(r.Context(), proposalID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list files")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

// DownloadFile godoc
// @Summary Download file
// @Description Stream the file content with its stored content type
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	file, body, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "download file")
		return
	}
	defer body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("file download interrupted",
			zap.String("file_id", id.String()),
			zap.Error(err),
		)
	}
}

// DeleteFile godoc
// @Summary Delete file
// @Description Delete a file and its stored content
// @Tags Files
// @Param id path string true "File ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
