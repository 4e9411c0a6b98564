package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	_ "github.com/driftscope/driftscope/pkg/models" // swagger type reference
	"github.com/driftscope/driftscope/internal/version"
	"go.uber.org/zap"
)

// Handler serves the authentication and user management endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
	demo    bool
}

// NewHandler wraps a Service for HTTP exposure.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// EnableDemoMode makes Middleware inject synthetic viewer claims instead
// of validating tokens. Write protection in demo deployments comes from
// the server's read-only middleware, not from here.
func (h *Handler) EnableDemoMode() {
	h.demo = true
}

// RegisterRoutes mounts the auth API on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Reachable without a token; the login flow has to be.
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/mfa/verify", h.handleVerifyMFA)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/v1/auth/logout", h.handleLogout)
	mux.HandleFunc("POST /api/v1/auth/setup", h.handleSetup)
	mux.HandleFunc("GET /api/v1/auth/setup/status", h.handleSetupStatus)

	// Authenticated self-service endpoints.
	mux.HandleFunc("GET /api/v1/auth/me", h.handleMe)
	mux.HandleFunc("POST /api/v1/auth/totp/setup", h.handleTOTPSetup)
	mux.HandleFunc("POST /api/v1/auth/totp/enable", h.handleTOTPEnable)
	mux.HandleFunc("POST /api/v1/auth/totp/disable", h.handleTOTPDisable)

	// User management. The middleware authenticates; the handlers check
	// for the admin role.
	mux.HandleFunc("GET /api/v1/users", h.handleListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", h.handleGetUser)
	mux.HandleFunc("PUT /api/v1/users/{id}", h.handleUpdateUser)
	mux.HandleFunc("DELETE /api/v1/users/{id}", h.handleDeleteUser)
}

// Middleware returns the JWT authentication middleware. In demo mode it
// returns the demo middleware instead, which accepts every API request
// as a read-only viewer.
func (h *Handler) Middleware() func(http.Handler) http.Handler {
	if h.demo {
		return DemoAuthMiddleware()
	}
	return AuthMiddleware(h.service.Tokens())
}

// handleLogin checks credentials and hands out a token pair, or an MFA
// challenge when the account has TOTP enabled.
//
//	@Summary		Login
//	@Description	Trade a username and password for a JWT token pair.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login credentials"
//	@Success		200		{object}	TokenPair
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Failure		500		{object}	models.APIProblem
//	@Router			/auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserDisabled):
			writeAuthError(w, http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, ErrAccountLocked):
			writeAuthError(w, http.StatusUnauthorized, "account temporarily locked, try again later")
		default:
			h.logger.Error("login error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	if result.MFARequired {
		writeJSON(w, http.StatusOK, MFARequiredResponse{
			MFARequired: true,
			MFAToken:    result.MFAToken,
		})
		return
	}
	writeJSON(w, http.StatusOK, result.Tokens)
}

// handleVerifyMFA completes the second login step.
//
//	@Summary		Verify MFA
//	@Description	Finish an MFA login by presenting the MFA token with a TOTP or recovery code.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MFAVerifyRequest	true	"MFA token and code"
//	@Success		200		{object}	TokenPair
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Router			/auth/mfa/verify [post]
func (h *Handler) handleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MFAToken string `json:"mfa_token"`
		Code     string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MFAToken == "" || req.Code == "" {
		writeAuthError(w, http.StatusBadRequest, "mfa_token and code are required")
		return
	}

	pair, err := h.service.VerifyMFA(r.Context(), req.MFAToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidMFACode), errors.Is(err, ErrUserDisabled):
			writeAuthError(w, http.StatusUnauthorized, "invalid MFA token or code")
		default:
			h.logger.Error("MFA verify error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "MFA verification failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh rotates a refresh token into a fresh token pair.
//
//	@Summary		Refresh tokens
//	@Description	Trade a valid refresh token for a new token pair. The old refresh token is revoked.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	TokenPair
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Failure		500		{object}	models.APIProblem
//	@Router			/auth/refresh [post]
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeAuthError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUserDisabled):
			writeAuthError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		default:
			h.logger.Error("refresh error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "token refresh failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// handleLogout ends a session by revoking its refresh token.
//
//	@Summary		Logout
//	@Description	Revoke a refresh token to end a session.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	LogoutRequest	true	"Refresh token to revoke"
//	@Success		204		"No Content"
//	@Failure		400		{object}	models.APIProblem
//	@Failure		500		{object}	models.APIProblem
//	@Router			/auth/logout [post]
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeAuthError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetup bootstraps the first admin account on a fresh install.
//
//	@Summary		Initial setup
//	@Description	Create the first admin account. Only works while no users exist.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SetupRequest	true	"Admin account details"
//	@Success		201		{object}	User
//	@Failure		400		{object}	models.APIProblem
//	@Failure		409		{object}	models.APIProblem
//	@Router			/auth/setup [post]
func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}

	user, err := h.service.Setup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrSetupComplete) {
			writeAuthError(w, http.StatusConflict, "setup already completed")
			return
		}
		writeAuthError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleSetupStatus tells the UI whether setup is still pending.
//
//	@Summary		Check setup status
//	@Description	Reports whether the initial admin account still needs to be created.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SetupStatusResponse
//	@Router			/auth/setup/status [get]
func (h *Handler) handleSetupStatus(w http.ResponseWriter, r *http.Request) {
	needed, err := h.service.NeedsSetup(r.Context())
	if err != nil {
		h.logger.Error("setup status check failed", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to check setup status")
		return
	}
	writeJSON(w, http.StatusOK, SetupStatusResponse{
		SetupRequired: needed,
		Version:       version.Short(),
	})
}

// handleMe returns the authenticated user's account.
//
//	@Summary		Current user
//	@Description	Returns the account behind the presented access token.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	User
//	@Failure		401	{object}	models.APIProblem
//	@Router			/auth/me [get]
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := h.caller(w, r)
	if claims == nil {
		return
	}

	user, err := h.service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeAuthError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		h.logger.Error("me lookup error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleTOTPSetup begins TOTP enrollment for the authenticated user.
//
//	@Summary		Begin TOTP setup
//	@Description	Generates a TOTP secret and otpauth URL for enrollment.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	TOTPSetupResponse
//	@Failure		401	{object}	models.APIProblem
//	@Router			/auth/totp/setup [post]
func (h *Handler) handleTOTPSetup(w http.ResponseWriter, r *http.Request) {
	claims := h.caller(w, r)
	if claims == nil {
		return
	}

	secret, url, err := h.service.BeginTOTPEnrollment(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("TOTP setup error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to begin TOTP setup")
		return
	}
	writeJSON(w, http.StatusOK, TOTPSetupResponse{Secret: secret, OTPAuthURL: url})
}

// handleTOTPEnable confirms enrollment with a code and returns recovery codes.
//
//	@Summary		Enable TOTP
//	@Description	Confirms TOTP enrollment with a valid code. Returns one-time recovery codes.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		TOTPEnableRequest	true	"TOTP code"
//	@Success		200		{object}	RecoveryCodesResponse
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Router			/auth/totp/enable [post]
func (h *Handler) handleTOTPEnable(w http.ResponseWriter, r *http.Request) {
	claims := h.caller(w, r)
	if claims == nil {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeAuthError(w, http.StatusBadRequest, "code is required")
		return
	}

	codes, err := h.service.ConfirmTOTPEnrollment(r.Context(), claims.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMFACode), errors.Is(err, ErrTOTPNotConfigured):
			writeAuthError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("TOTP enable error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "failed to enable TOTP")
		}
		return
	}
	writeJSON(w, http.StatusOK, RecoveryCodesResponse{RecoveryCodes: codes})
}

// handleTOTPDisable turns off TOTP after verifying the user's password.
//
//	@Summary		Disable TOTP
//	@Description	Disables TOTP for the authenticated user after password verification.
//	@Tags			auth
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	TOTPDisableRequest	true	"Account password"
//	@Success		204		"No Content"
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Router			/auth/totp/disable [post]
func (h *Handler) handleTOTPDisable(w http.ResponseWriter, r *http.Request) {
	claims := h.caller(w, r)
	if claims == nil {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "password is required")
		return
	}

	if err := h.service.DisableTOTP(r.Context(), claims.UserID, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			writeAuthError(w, http.StatusUnauthorized, "invalid password")
		default:
			h.logger.Error("TOTP disable error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "failed to disable TOTP")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListUsers returns every account, admin only.
//
//	@Summary		List users
//	@Description	Returns every user account. Requires admin role.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		User
//	@Failure		401	{object}	models.APIProblem
//	@Failure		403	{object}	models.APIProblem
//	@Failure		500	{object}	models.APIProblem
//	@Router			/users [get]
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleGetUser looks up one account by ID, admin only.
//
//	@Summary		Get user
//	@Description	Returns a single user by ID. Requires admin role.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	User
//	@Failure		401	{object}	models.APIProblem
//	@Failure		403	{object}	models.APIProblem
//	@Failure		404	{object}	models.APIProblem
//	@Failure		500	{object}	models.APIProblem
//	@Router			/users/{id} [get]
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	user, err := h.service.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeAuthError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("get user error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "failed to get user")
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser applies partial edits to an account, admin only.
//
//	@Summary		Update user
//	@Description	Update a user's email, role, or disabled status. Requires admin role.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"User ID"
//	@Param			request	body		UpdateUserRequest	true	"Updated user fields"
//	@Success		200		{object}	User
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Failure		403		{object}	models.APIProblem
//	@Failure		404		{object}	models.APIProblem
//	@Failure		500		{object}	models.APIProblem
//	@Router			/users/{id} [put]
func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Role     string `json:"role"`
		Disabled bool   `json:"disabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	role := Role(req.Role)
	if !ValidRoles[role] {
		writeAuthError(w, http.StatusBadRequest, "invalid role: must be admin, operator, or viewer")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), r.PathValue("id"), req.Email, role, req.Disabled)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeAuthError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("update user error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser drops an account, admin only.
//
//	@Summary		Delete user
//	@Description	Delete a user account by ID. Requires admin role.
//	@Tags			users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	models.APIProblem
//	@Failure		403	{object}	models.APIProblem
//	@Failure		404	{object}	models.APIProblem
//	@Failure		500	{object}	models.APIProblem
//	@Router			/users/{id} [delete]
func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	if err := h.service.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeAuthError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("delete user error", zap.Error(err))
			writeAuthError(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// caller returns the request's claims, or writes a 401 and returns nil.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) *Claims {
	claims := UserFromContext(r.Context())
	if claims == nil {
		writeAuthError(w, http.StatusUnauthorized, "authentication required")
	}
	return claims
}

// requireAdmin gates an endpoint on the admin role, writing 401 or 403
// itself when the caller falls short.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims := h.caller(w, r)
	if claims == nil {
		return false
	}
	if Role(claims.Role) != RoleAdmin {
		writeAuthError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}

// decodeBody decodes a JSON request body into v. On malformed input it
// writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// authProblem is the RFC 7807 body for auth failures.
type authProblem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// writeAuthError emits the problem+json failure shape shared by every
// auth endpoint.
func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authProblem{
		Type:   "https://driftscope.dev/problems/auth-error",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
