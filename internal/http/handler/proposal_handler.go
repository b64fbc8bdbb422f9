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

// ProposalHandler handles HTTP requests for proposals, their sections,
// messages, and view tracking
type ProposalHandler struct {
	proposalService *service.ProposalService
	logger          *zap.Logger
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(proposalService *service.ProposalService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		logger:          logger,
	}
}

// ListProposals godoc
// @Summary List proposals
// @Description Get the tenant's proposals, newest first
// @Tags Proposals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals [get]
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	proposals, total, err := h.proposalService.List(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list proposals")
		return
	}

	respondJSON(w, http.StatusOK, paginated(proposals, total, page, pageSize))
}

// GetProposal godoc
// @Summary Get proposal
// @Description Get a proposal by ID with its sections
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id} [get]
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	proposal, err := h.proposalService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get proposal")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// CreateProposal godoc
// @Summary Create proposal
// @Description Create a draft proposal. The creator becomes the proposal's lead.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param request body domain.CreateProposalRequest true "Proposal data"
// @Success 201 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals [post]
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create proposal")
		return
	}

	w.Header().Set("Location", "/api/v1/proposals/"+proposal.ID.String())
	respondJSON(w, http.StatusCreated, proposal)
}

// UpdateProposal godoc
// @Summary Update proposal
// @Description Update a proposal's title, status, and recipients
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body domain.UpdateProposalRequest true "Proposal data"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id} [put]
func (h *ProposalHandler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update proposal")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// DeleteProposal godoc
// @Summary Delete proposal
// @Description Delete a proposal and its permissions, team, messages, and views. Requires the lead role.
// @Tags Proposals
// @Param id path string true "Proposal ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	if err := h.proposalService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete proposal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSection godoc
// @Summary Add section
// @Description Add a section to a proposal, appended or inserted at a position
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body domain.AddSectionRequest true "Section data"
// @Success 201 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/sections [post]
func (h *ProposalHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	var req domain.AddSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.AddSection(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add section")
		return
	}

	respondJSON(w, http.StatusCreated, proposal)
}

// UpdateSection godoc
// @Summary Update section
// @Description Update one section of a proposal by its ID
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param sectionId path string true "Section ID"
// @Param request body domain.UpdateSectionRequest true "Section data"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/sections/{sectionId} [put]
func (h *ProposalHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	sectionID := chi.URLParam(r, "sectionId")

	var req domain.UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.UpdateSection(r.Context(), id, sectionID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update section")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// RemoveSection godoc
// @Summary Remove section
// @Description Remove one section from a proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Param sectionId path string true "Section ID"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/sections/{sectionId} [delete]
func (h *ProposalHandler) RemoveSection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	sectionID := chi.URLParam(r, "sectionId")

	proposal, err := h.proposalService.RemoveSection(r.Context(), id, sectionID)
	if err != nil {
		respondServiceError(w, h.logger, err, "remove section")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// ReorderSections godoc
// @Summary Reorder sections
// @Description Rewrite the section order. The ID list must be a permutation of the current sections.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body domain.ReorderSectionsRequest true "Ordered section IDs"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/sections/reorder [put]
func (h *ProposalHandler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	var req domain.ReorderSectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proposal, err := h.proposalService.ReorderSections(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "reorder sections")
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// ListMessages godoc
// @Summary List messages
// @Description Get the discussion thread of a proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {array} domain.ProposalMessageDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/messages [get]
func (h *ProposalHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	messages, err := h.proposalService.ListMessages(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list messages")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// AddMessage godoc
// @Summary Add message
// @Description Post a message to a proposal's discussion thread
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body domain.CreateProposalMessageRequest true "Message data"
// @Success 201 {object} domain.ProposalMessageDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/messages [post]
func (h *ProposalHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	var req domain.CreateProposalMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	message, err := h.proposalService.AddMessage(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add message")
		return
	}

	respondJSON(w, http.StatusCreated, message)
}

// RecordView godoc
// @Summary Record view
// @Description Log that the proposal was opened. Works without authentication for shared links.
// @Tags Proposals
// @Param id path string true "Proposal ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /proposals/{id}/views [post]
func (h *ProposalHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	if err := h.proposalService.RecordView(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "record view")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListViews godoc
// @Summary List views
// @Description Get recent views of a proposal with the total count
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Param limit query int false "Max views returned" default(50)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /proposals/{id}/views [get]
func (h *ProposalHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	views, total, err := h.proposalService.ListViews(r.Context(), id, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "list views")
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:     views,
		Total:    total,
		Page:     1,
		PageSize: len(views),
	})
}

func parseProposalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID: must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
