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

// TeamHandler handles HTTP requests for team rosters
type TeamHandler struct {
	teamService *service.TeamService
	logger      *zap.Logger
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService *service.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		logger:      logger,
	}
}

// ListMembers godoc
// @Summary List team members
// @Description Get the roster of a team
// @Tags Teams
// @Produce json
// @Param teamType path string true "Team type" Enums(organization, proposal, solution, opportunity)
// @Param teamId path string true "Team ID (the entity's ID)"
// @Success 200 {array} domain.TeamMemberDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamType}/{teamId}/members [get]
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	teamID, teamType, ok := h.parseTeamParams(w, r)
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(r.Context(), teamID, teamType)
	if err != nil {
		respondServiceError(w, h.logger, err, "list team members")
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// AddMember godoc
// @Summary Add team member
// @Description Add a contact to a team
// @Tags Teams
// @Accept json
// @Produce json
// @Param teamType path string true "Team type" Enums(organization, proposal, solution, opportunity)
// @Param teamId path string true "Team ID (the entity's ID)"
// @Param request body domain.AddTeamMemberRequest true "Member data"
// @Success 201 {object} domain.TeamMemberDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamType}/{teamId}/members [post]
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, teamType, ok := h.parseTeamParams(w, r)
	if !ok {
		return
	}

	var req domain.AddTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.teamService.AddMember(r.Context(), teamID, teamType, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add team member")
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

// RemoveMember godoc
// @Summary Remove team member
// @Description Remove a contact from a team
// @Tags Teams
// @Param teamType path string true "Team type" Enums(organization, proposal, solution, opportunity)
// @Param teamId path string true "Team ID (the entity's ID)"
// @Param contactId path string true "Contact ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamType}/{teamId}/members/{contactId} [delete]
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, teamType, ok := h.parseTeamParams(w, r)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(chi.URLParam(r, "contactId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID: must be a valid UUID")
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), teamID, teamType, contactID); err != nil {
		respondServiceError(w, h.logger, err, "remove team member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) parseTeamParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, domain.TeamType, bool) {
	teamType := domain.TeamType(chi.URLParam(r, "teamType"))
	if !teamType.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid team type: must be one of organization, proposal, solution, opportunity")
		return uuid.Nil, "", false
	}

	teamID, err := uuid.Parse(chi.URLParam(r, "teamId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID: must be a valid UUID")
		return uuid.Nil, "", false
	}

	return teamID, teamType, true
}
