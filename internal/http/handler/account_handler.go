package handler

import (
	"encoding/json"
	"net/http"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"go.uber.org/zap"
)

// AccountHandler handles HTTP requests for the tenant's billing account
type AccountHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// GetAccount godoc
// @Summary Get account
// @Description Get the tenant's billing account
// @Tags Account
// @Produce json
// @Success 200 {object} domain.AccountDTO
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /account [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetMine(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get account")
		return
	}

	respondJSON(w, http.StatusOK, account)
}

// UpdateAccount godoc
// @Summary Update account
// @Description Update the tenant's billing account. Requires the owner role.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body domain.UpdateAccountRequest true "Account data"
// @Success 200 {object} domain.AccountDTO
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Security BearerAuth
// @Router /account [put]
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	account, err := h.accountService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update account")
		return
	}

	respondJSON(w, http.StatusOK, account)
}
