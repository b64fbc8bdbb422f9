package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"go.uber.org/zap"
)

// EnrichmentHandler handles HTTP requests for AI content generation
// and lookup enrichment
type EnrichmentHandler struct {
	enrichmentService *service.EnrichmentService
	logger            *zap.Logger
}

// NewEnrichmentHandler creates a new EnrichmentHandler
func NewEnrichmentHandler(enrichmentService *service.EnrichmentService, logger *zap.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
		logger:            logger,
	}
}

// GenerateSection godoc
// @Summary Generate section content
// @Description Draft content for one proposal section through the model fallback chain
// @Tags Enrichment
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body domain.GenerateSectionRequest true "Generation request"
// @Success 200 {object} domain.GenerateSectionResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/generate [post]
func (h *EnrichmentHandler) GenerateSection(w http.ResponseWriter, r *http.Request) {
	proposalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID: must be a valid UUID")
		return
	}

	var req domain.GenerateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.enrichmentService.GenerateSection(r.Context(), proposalID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "generate section content")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// EnrichLogo godoc
// @Summary Enrich organization logo
// @Description Find and store a logo for an organization through the provider chain
// @Tags Enrichment
// @Accept json
// @Produce json
// @Param request body domain.EnrichLogoRequest true "Logo request"
// @Success 200 {object} domain.EnrichLogoResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Security BearerAuth
// @Router /enrichment/logo [post]
func (h *EnrichmentHandler) EnrichLogo(w http.ResponseWriter, r *http.Request) {
	var req domain.EnrichLogoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.enrichmentService.EnrichLogo(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "enrich logo")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// EnrichProfile godoc
// @Summary Enrich contact profile
// @Description Fill a contact's title, background, and photo from their public profile
// @Tags Enrichment
// @Accept json
// @Produce json
// @Param request body domain.EnrichProfileRequest true "Profile request"
// @Success 200 {object} domain.EnrichProfileResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Security BearerAuth
// @Router /enrichment/profile [post]
func (h *EnrichmentHandler) EnrichProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.EnrichProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.enrichmentService.EnrichProfile(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "enrich profile")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
