// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"kbpress/internal/middleware"
	"kbpress/internal/models"
	"kbpress/internal/store"
	"kbpress/internal/token"
)

// AuthHandler serves admin authentication and account endpoints.
type AuthHandler struct {
	admins *store.AdminStore
	tokens *token.Manager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(admins *store.AdminStore, tokens *token.Manager) *AuthHandler {
	return &AuthHandler{admins: admins, tokens: tokens}
}

type setupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type sessionResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	Admin       *models.Admin `json:"admin"`
}

// Setup creates the first admin account. It is a one-time endpoint:
// once any admin exists it always answers 409.
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	count, err := h.admins.Count()
	if err != nil {
		writeInternal(w, err)
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, codeAlreadyInitialized, "An admin account already exists.")
		return
	}

	var req setupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := validateUsername(req.Username); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}
	if ferr := validatePassword(req.Password); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	// CreateFirst re-checks the guard inside a transaction, so a setup
	// request racing this one cannot create a second account.
	admin, err := h.admins.CreateFirst(req.Username, req.Password)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if admin == nil {
		writeError(w, http.StatusConflict, codeAlreadyInitialized, "An admin account already exists.")
		return
	}

	tok, err := h.tokens.Issue(admin.ID)
	if err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{AccessToken: tok, TokenType: "bearer", Admin: admin})
}

// Login exchanges credentials for a bearer token. When the account has
// an active second factor, a valid TOTP code is required as well.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}

	admin, err := h.admins.FindByUsername(req.Username)
	if err != nil {
		writeInternal(w, err)
		return
	}
	// Same response for unknown user and wrong password, to avoid
	// leaking which usernames exist.
	if admin == nil || !h.admins.CheckPassword(admin, req.Password) {
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid username or password.")
		return
	}

	if admin.HasTOTP() {
		if req.TOTPCode == "" || !totp.Validate(req.TOTPCode, *admin.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, codeTOTPRequired, "A valid authenticator code is required.")
			return
		}
	}

	tok, err := h.tokens.Issue(admin.ID)
	if err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{AccessToken: tok, TokenType: "bearer", Admin: admin})
}

// Me returns the authenticated admin's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.AdminFromCtx(r.Context()))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword updates the authenticated admin's password after
// re-verifying the current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminFromCtx(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if !h.admins.CheckPassword(admin, req.OldPassword) {
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Current password is incorrect.")
		return
	}
	if ferr := validatePassword(req.NewPassword); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, "new_password")
		return
	}

	if err := h.admins.UpdatePassword(admin.ID, req.NewPassword); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type twoFASetupResponse struct {
	Secret      string `json:"secret"`
	OTPAuthURL  string `json:"otpauth_url"`
	QRPNGBase64 string `json:"qr_png_base64"`
}

// TwoFASetup generates a fresh TOTP secret and returns it with an
// otpauth URL and an inline QR code. The factor stays inactive until
// TwoFAEnable verifies a code against it.
func (h *AuthHandler) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "KBPress",
		AccountName: admin.Username,
	})
	if err != nil {
		writeInternal(w, err)
		return
	}

	if err := h.admins.SetTOTPSecret(admin.ID, key.Secret()); err != nil {
		writeInternal(w, err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, twoFASetupResponse{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		QRPNGBase64: base64.StdEncoding.EncodeToString(png),
	})
}

type twoFACodeRequest struct {
	Code string `json:"code"`
}

// TwoFAEnable activates the second factor once the admin proves they
// hold the secret by submitting a current code.
func (h *AuthHandler) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminFromCtx(r.Context())

	var req twoFACodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if admin.TOTPSecret == nil || *admin.TOTPSecret == "" {
		writeError(w, http.StatusConflict, codeValidation, "Run 2FA setup before enabling.")
		return
	}
	if !totp.Validate(req.Code, *admin.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, codeTOTPRequired, "Invalid authenticator code.")
		return
	}

	if err := h.admins.EnableTOTP(admin.ID); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

// TwoFADisable deactivates the second factor. A valid current code is
// required so a hijacked session cannot silently weaken the account.
func (h *AuthHandler) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminFromCtx(r.Context())

	var req twoFACodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if !admin.HasTOTP() {
		writeError(w, http.StatusConflict, codeValidation, "2FA is not enabled.")
		return
	}
	if !totp.Validate(req.Code, *admin.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, codeTOTPRequired, "Invalid authenticator code.")
		return
	}

	if err := h.admins.DisableTOTP(admin.ID); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}
