package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"go.uber.org/zap"
)

// OrganizationHandler handles HTTP requests for organizations
type OrganizationHandler struct {
	orgService *service.OrganizationService
	logger     *zap.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *service.OrganizationService, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		logger:     logger,
	}
}

// ListOrganizations godoc
// @Summary List organizations
// @Description Get the customer organizations owned by the tenant, with contact and proposal counts
// @Tags Organizations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations [get]
func (h *OrganizationHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	orgs, total, err := h.orgService.List(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list organizations")
		return
	}

	respondJSON(w, http.StatusOK, paginated(orgs, total, page, pageSize))
}

// SearchOrganizations godoc
// @Summary Search organizations
// @Description Case-insensitive name prefix search over the tenant's organizations
// @Tags Organizations
// @Produce json
// @Param q query string true "Name prefix"
// @Param limit query int false "Max results" default(20)
// @Success 200 {array} domain.OrganizationDTO
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations/search [get]
func (h *OrganizationHandler) SearchOrganizations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orgs, err := h.orgService.Search(r.Context(), query, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "search organizations")
		return
	}

	respondJSON(w, http.StatusOK, orgs)
}

// GetOrganization godoc
// @Summary Get organization
// @Description Get an organization by ID
// @Tags Organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} domain.OrganizationDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid organization ID: must be a valid UUID")
		return
	}

	org, err := h.orgService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get organization")
		return
	}

	respondJSON(w, http.StatusOK, org)
}

// CreateOrganization godoc
// @Summary Create organization
// @Description Create a customer organization owned by the tenant
// @Tags Organizations
// @Accept json
// @Produce json
// @Param request body domain.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} domain.OrganizationDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	org, err := h.orgService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create organization")
		return
	}

	w.Header().Set("Location", "/api/v1/organizations/"+org.ID.String())
	respondJSON(w, http.StatusCreated, org)
}

// UpdateOrganization godoc
// @Summary Update organization
// @Description Partially update an organization; omitted fields are preserved
// @Tags Organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body domain.UpdateOrganizationRequest true "Organization data"
// @Success 200 {object} domain.OrganizationDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations/{id} [patch]
func (h *OrganizationHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid organization ID: must be a valid UUID")
		return
	}

	var req domain.UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	org, err := h.orgService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update organization")
		return
	}

	respondJSON(w, http.StatusOK, org)
}

// DeleteOrganization godoc
// @Summary Delete organization
// @Description Delete an organization and its contacts, teams, and permissions
// @Tags Organizations
// @Param id path string true "Organization ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid organization ID: must be a valid UUID")
		return
	}

	if err := h.orgService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete organization")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parsePagination reads page/pageSize query params with defaults
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

// paginated wraps list data in the standard pagination envelope
func paginated(data interface{}, total int64, page, pageSize int) domain.PaginatedResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
