package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/config"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles passkey ceremonies and session endpoints
type AuthHandler struct {
	passkeys     *auth.PasskeyService
	authService  *service.AuthService
	tokens       *auth.TokenManager
	cookieName   string
	cookieSecure bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(passkeys *auth.PasskeyService, authService *service.AuthService, tokens *auth.TokenManager, cfg *config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		passkeys:     passkeys,
		authService:  authService,
		tokens:       tokens,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		logger:       logger,
	}
}

// StartRegistration godoc
// @Summary Start passkey registration
// @Description Begin a WebAuthn registration ceremony. Unknown emails are provisioned as new tenants.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.StartPasskeyRegistrationRequest true "Registration data"
// @Success 200 {object} domain.StartPasskeyCeremonyResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /auth/passkey/start-registration [post]
func (h *AuthHandler) StartRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.StartPasskeyRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sessionID, options, err := h.passkeys.StartRegistration(r.Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		h.logger.Error("failed to start passkey registration", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to start registration")
		return
	}

	respondJSON(w, http.StatusOK, domain.StartPasskeyCeremonyResponse{
		SessionID: sessionID,
		Options:   options,
	})
}

// FinishRegistration godoc
// @Summary Finish passkey registration
// @Description Verify the authenticator response, store the credential, and sign the contact in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.FinishPasskeyCeremonyRequest true "Ceremony result"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /auth/passkey/verify-registration [post]
func (h *AuthHandler) FinishRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.FinishPasskeyCeremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	credentialJSON, err := json.Marshal(req.Credential)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid credential payload")
		return
	}

	contact, err := h.passkeys.FinishRegistration(r.Context(), req.SessionID, credentialJSON)
	if err != nil {
		h.logger.Warn("passkey registration failed", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "Registration could not be verified")
		return
	}

	h.respondWithSession(w, r, contact)
}

// StartLogin godoc
// @Summary Start passkey login
// @Description Begin a WebAuthn authentication ceremony for a registered email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.StartPasskeyLoginRequest true "Login data"
// @Success 200 {object} domain.StartPasskeyCeremonyResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/passkey/start-authentication [post]
func (h *AuthHandler) StartLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.StartPasskeyLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sessionID, options, err := h.passkeys.StartLogin(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrNoAccess) {
			// Same answer for unknown email and missing passkey
			respondWithError(w, http.StatusUnauthorized, "No passkey registered for this email")
			return
		}
		h.logger.Error("failed to start passkey login", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to start login")
		return
	}

	respondJSON(w, http.StatusOK, domain.StartPasskeyCeremonyResponse{
		SessionID: sessionID,
		Options:   options,
	})
}

// FinishLogin godoc
// @Summary Finish passkey login
// @Description Verify the assertion and establish a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.FinishPasskeyCeremonyRequest true "Ceremony result"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/passkey/verify-authentication [post]
func (h *AuthHandler) FinishLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.FinishPasskeyCeremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	credentialJSON, err := json.Marshal(req.Credential)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid credential payload")
		return
	}

	contact, err := h.passkeys.FinishLogin(r.Context(), req.SessionID, credentialJSON)
	if err != nil {
		h.logger.Warn("passkey login failed", zap.Error(err))
		respondWithError(w, http.StatusUnauthorized, "Login could not be verified")
		return
	}

	h.respondWithSession(w, r, contact)
}

// Logout godoc
// @Summary Log out
// @Description Clear the session cookie
// @Tags Auth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Description Get the authenticated contact with organization and role
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get current user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// ListCredentials godoc
// @Summary List passkeys
// @Description List the authenticated contact's registered passkey credentials
// @Tags Auth
// @Produce json
// @Success 200 {array} domain.PasskeyCredentialDTO
// @Failure 401 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/credentials [get]
func (h *AuthHandler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.authService.ListCredentials(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list credentials")
		return
	}

	respondJSON(w, http.StatusOK, creds)
}

// respondWithSession issues a session token for the contact, sets the
// session cookie, and answers with the token and user profile
func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, contact *domain.Contact) {
	token, err := h.tokens.Issue(contact.ID, contact.OrganizationID, contact.Email)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to establish session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokens.TTL()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// Me needs tenant context, which middleware has not set for
	// ceremony endpoints
	ctx := auth.WithTenantContext(r.Context(), &auth.TenantContext{
		ContactID:      contact.ID,
		OrganizationID: contact.OrganizationID,
		Email:          contact.Email,
	})
	user, err := h.authService.Me(ctx)
	if err != nil {
		respondServiceError(w, h.logger, err, "load user profile")
		return
	}

	respondJSON(w, http.StatusOK, domain.LoginResponse{
		Token: token,
		User:  *user,
	})
}
