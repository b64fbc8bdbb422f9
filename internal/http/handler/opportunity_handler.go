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

// OpportunityHandler handles HTTP requests for opportunities
type OpportunityHandler struct {
	opportunityService *service.OpportunityService
	logger             *zap.Logger
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(opportunityService *service.OpportunityService, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityService: opportunityService,
		logger:             logger,
	}
}

// ListOpportunities godoc
// @Summary List opportunities
// @Description Get the tenant's opportunities with an optional status filter
// @Tags Opportunities
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, active, archived)
// @Success 200 {array} domain.OpportunityDTO
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /opportunities [get]
func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	status := domain.OpportunityStatus(r.URL.Query().Get("status"))

	opportunities, err := h.opportunityService.List(r.Context(), status)
	if err != nil {
		respondServiceError(w, h.logger, err, "list opportunities")
		return
	}

	respondJSON(w, http.StatusOK, opportunities)
}

// GetOpportunity godoc
// @Summary Get opportunity
// @Description Get an opportunity by ID
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID: must be a valid UUID")
		return
	}

	opportunity, err := h.opportunityService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opportunity)
}

// CreateOpportunity godoc
// @Summary Create opportunity
// @Description Capture an inbound RFP or lead from a URL, file, or manual entry
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param request body domain.CreateOpportunityRequest true "Opportunity data"
// @Success 201 {object} domain.OpportunityDTO
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /opportunities [post]
func (h *OpportunityHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	opportunity, err := h.opportunityService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create opportunity")
		return
	}

	w.Header().Set("Location", "/api/v1/opportunities/"+opportunity.ID.String())
	respondJSON(w, http.StatusCreated, opportunity)
}

// UpdateOpportunity godoc
// @Summary Update opportunity
// @Description Update an opportunity's status and captured details
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param request body domain.UpdateOpportunityRequest true "Opportunity data"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID: must be a valid UUID")
		return
	}

	var req domain.UpdateOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	opportunity, err := h.opportunityService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opportunity)
}

// DeleteOpportunity godoc
// @Summary Delete opportunity
// @Description Delete an opportunity and its team
// @Tags Opportunities
// @Param id path string true "Opportunity ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID: must be a valid UUID")
		return
	}

	if err := h.opportunityService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete opportunity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
