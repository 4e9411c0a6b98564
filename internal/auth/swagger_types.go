package auth

// LoginRequest carries the credentials for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" example:"opsadmin"`
	Password string `json:"password" example:"a-long-passphrase"`
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" example:"c2FtcGxlLXJlZnJlc2g..."`
}

// LogoutRequest is the body for POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" example:"c2FtcGxlLXJlZnJlc2g..."`
}

// SetupRequest creates the first admin account via POST /auth/setup.
type SetupRequest struct {
	Username string `json:"username" example:"opsadmin"`
	Email    string `json:"email" example:"ops@driftscope.dev"`
	Password string `json:"password" example:"a-long-passphrase"`
}

// UpdateUserRequest is the body for PUT /users/{id}.
type UpdateUserRequest struct {
	Email    string `json:"email" example:"ops@driftscope.dev"`
	Role     string `json:"role" example:"operator"`
	Disabled bool   `json:"disabled" example:"false"`
}

// SetupStatusResponse answers GET /auth/setup/status.
type SetupStatusResponse struct {
	SetupRequired bool   `json:"setup_required" example:"true"`
	Version       string `json:"version" example:"0.3.0"`
}

// MFARequiredResponse is returned from POST /auth/login when the account
// has TOTP enabled.
type MFARequiredResponse struct {
	MFARequired bool   `json:"mfa_required" example:"true"`
	MFAToken    string `json:"mfa_token" example:"eyJhbGciOiJIUzI1NiIs..."`
}

// MFAVerifyRequest is the body for POST /auth/mfa/verify.
type MFAVerifyRequest struct {
	MFAToken string `json:"mfa_token" example:"eyJhbGciOiJIUzI1NiIs..."`
	Code     string `json:"code" example:"123456"`
}

// TOTPSetupResponse answers POST /auth/totp/setup.
type TOTPSetupResponse struct {
	Secret     string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	OTPAuthURL string `json:"otpauth_url" example:"otpauth://totp/DriftScope:opsadmin?secret=..."`
}

// TOTPEnableRequest is the body for POST /auth/totp/enable.
type TOTPEnableRequest struct {
	Code string `json:"code" example:"123456"`
}

// TOTPDisableRequest is the body for POST /auth/totp/disable.
type TOTPDisableRequest struct {
	Password string `json:"password" example:"a-long-passphrase"`
}

// RecoveryCodesResponse answers POST /auth/totp/enable.
type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes" example:"a1b2c3d4,e5f6g7h8"`
}
