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

// SolutionHandler handles HTTP requests for the solution library
type SolutionHandler struct {
	solutionService *service.SolutionService
	logger          *zap.Logger
}

// NewSolutionHandler creates a new SolutionHandler
func NewSolutionHandler(solutionService *service.SolutionService, logger *zap.Logger) *SolutionHandler {
	return &SolutionHandler{
		solutionService: solutionService,
		logger:          logger,
	}
}

// ListSolutions godoc
// @Summary List solutions
// @Description Get the tenant's solutions with an optional status filter
// @Tags Solutions
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, published, archived)
// @Success 200 {array} domain.SolutionDTO
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /solutions [get]
func (h *SolutionHandler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	status := domain.SolutionStatus(r.URL.Query().Get("status"))

	solutions, err := h.solutionService.List(r.Context(), status)
	if err != nil {
		respondServiceError(w, h.logger, err, "list solutions")
		return
	}

	respondJSON(w, http.StatusOK, solutions)
}

// GetSolution godoc
// @Summary Get solution
// @Description Get a solution by ID
// @Tags Solutions
// @Produce json
// @Param id path string true "Solution ID"
// @Success 200 {object} domain.SolutionDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /solutions/{id} [get]
func (h *SolutionHandler) GetSolution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid solution ID: must be a valid UUID")
		return
	}

	solution, err := h.solutionService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get solution")
		return
	}

	respondJSON(w, http.StatusOK, solution)
}

// CreateSolution godoc
// @Summary Create solution
// @Description Create a draft solution
// @Tags Solutions
// @Accept json
// @Produce json
// @Param request body domain.CreateSolutionRequest true "Solution data"
// @Success 201 {object} domain.SolutionDTO
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /solutions [post]
func (h *SolutionHandler) CreateSolution(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	solution, err := h.solutionService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create solution")
		return
	}

	w.Header().Set("Location", "/api/v1/solutions/"+solution.ID.String())
	respondJSON(w, http.StatusCreated, solution)
}

// UpdateSolution godoc
// @Summary Update solution
// @Description Update a solution's title, status, sections, and media
// @Tags Solutions
// @Accept json
// @Produce json
// @Param id path string true "Solution ID"
// @Param request body domain.UpdateSolutionRequest true "Solution data"
// @Success 200 {object} domain.SolutionDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /solutions/{id} [put]
func (h *SolutionHandler) UpdateSolution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid solution ID: must be a valid UUID")
		return
	}

	var req domain.UpdateSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	solution, err := h.solutionService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update solution")
		return
	}

	respondJSON(w, http.StatusOK, solution)
}

// DeleteSolution godoc
// @Summary Delete solution
// @Description Delete a solution and its team
// @Tags Solutions
// @Param id path string true "Solution ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /solutions/{id} [delete]
func (h *SolutionHandler) DeleteSolution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid solution ID: must be a valid UUID")
		return
	}

	if err := h.solutionService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete solution")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
