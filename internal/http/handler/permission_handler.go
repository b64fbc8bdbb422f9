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

// PermissionHandler handles HTTP requests for role edges
type PermissionHandler struct {
	permissionService *service.PermissionService
	logger            *zap.Logger
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(permissionService *service.PermissionService, logger *zap.Logger) *PermissionHandler {
	return &PermissionHandler{
		permissionService: permissionService,
		logger:            logger,
	}
}

// SetPermission godoc
// @Summary Set permission
// @Description Grant or change a contact's role on an organization or proposal. Setting an existing edge updates the role in place.
// @Tags Permissions
// @Accept json
// @Produce json
// @Param request body domain.SetPermissionRequest true "Permission data"
// @Success 200 {object} domain.PermissionDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /permissions [put]
func (h *PermissionHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	var req domain.SetPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	perm, err := h.permissionService.Set(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "set permission")
		return
	}

	respondJSON(w, http.StatusOK, perm)
}

// ListPermissions godoc
// @Summary List permissions
// @Description Get all role edges on a target entity
// @Tags Permissions
// @Produce json
// @Param targetEntity path string true "Target entity" Enums(organization, proposal)
// @Param targetId path string true "Target entity ID"
// @Success 200 {array} domain.PermissionDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Security BearerAuth
// @Router /permissions/{targetEntity}/{targetId} [get]
func (h *PermissionHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	targetEntity, targetID, ok := h.parseTargetParams(w, r)
	if !ok {
		return
	}

	perms, err := h.permissionService.ListByTarget(r.Context(), targetEntity, targetID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list permissions")
		return
	}

	respondJSON(w, http.StatusOK, perms)
}

// RemovePermission godoc
// @Summary Remove permission
// @Description Remove a contact's role edge from a target entity. The sole lead of a proposal cannot be removed.
// @Tags Permissions
// @Param targetEntity path string true "Target entity" Enums(organization, proposal)
// @Param targetId path string true "Target entity ID"
// @Param contactId path string true "Contact ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /permissions/{targetEntity}/{targetId}/{contactId} [delete]
func (h *PermissionHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	targetEntity, targetID, ok := h.parseTargetParams(w, r)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(chi.URLParam(r, "contactId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID: must be a valid UUID")
		return
	}

	if err := h.permissionService.Remove(r.Context(), contactID, targetEntity, targetID); err != nil {
		respondServiceError(w, h.logger, err, "remove permission")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PermissionHandler) parseTargetParams(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	targetEntity := chi.URLParam(r, "targetEntity")
	if targetEntity != domain.TargetOrganization && targetEntity != domain.TargetProposal {
		respondWithError(w, http.StatusBadRequest, "Invalid target entity: must be one of organization, proposal")
		return "", uuid.Nil, false
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "targetId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid target ID: must be a valid UUID")
		return "", uuid.Nil, false
	}

	return targetEntity, targetID, true
}
