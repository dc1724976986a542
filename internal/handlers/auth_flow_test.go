package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"kbpress/internal/models"
)

func TestSetupOnlyRunsOnce(t *testing.T) {
	env := newTestEnv(t)

	count, err := env.admins.Count()
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}

	if count == 0 {
		rec := env.request(t, http.MethodPost, "/api/kb/admin/setup", "", map[string]string{
			"username": "first-admin",
			"password": "first-password",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("initial setup: got %d, want 201: %s", rec.Code, rec.Body.String())
		}
		session := decode[struct {
			AccessToken string        `json:"access_token"`
			TokenType   string        `json:"token_type"`
			Admin       *models.Admin `json:"admin"`
		}](t, rec)
		if session.AccessToken == "" {
			t.Error("setup response missing token")
		}
		if session.TokenType != "bearer" {
			t.Errorf("token_type = %q, want bearer", session.TokenType)
		}
		t.Cleanup(func() { env.db.Exec(`DELETE FROM admins WHERE id = $1`, session.Admin.ID) })
	} else {
		// Make sure at least one stays around for the conflict check below.
		env.adminToken(t)
	}

	rec := env.request(t, http.MethodPost, "/api/kb/admin/setup", "", map[string]string{
		"username": "second-admin",
		"password": "second-password",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat setup: got %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "already_initialized" {
		t.Errorf("error code = %q, want already_initialized", code)
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	username := fmt.Sprintf("login-%s", uuid.New().String()[:8])
	admin, err := env.admins.Create(username, "right-password")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() { env.db.Exec(`DELETE FROM admins WHERE id = $1`, admin.ID) })

	rec := env.request(t, http.MethodPost, "/api/kb/admin/login", "", map[string]string{
		"username": username,
		"password": "right-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	session := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, rec)
	if session.AccessToken == "" {
		t.Fatal("login response missing token")
	}

	// The issued token works against a protected route.
	rec = env.request(t, http.MethodGet, "/api/kb/admin/me", session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got %d, want 200", rec.Code)
	}
	me := decode[models.Admin](t, rec)
	if me.Username != username {
		t.Errorf("me username = %q, want %q", me.Username, username)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	username := fmt.Sprintf("badlogin-%s", uuid.New().String()[:8])
	admin, err := env.admins.Create(username, "right-password")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() { env.db.Exec(`DELETE FROM admins WHERE id = $1`, admin.ID) })

	wrongPassword := env.request(t, http.MethodPost, "/api/kb/admin/login", "", map[string]string{
		"username": username,
		"password": "wrong-password",
	})
	unknownUser := env.request(t, http.MethodPost, "/api/kb/admin/login", "", map[string]string{
		"username": "nobody-" + uuid.New().String()[:8],
		"password": "whatever-password",
	})

	// Identical status and code for both, so usernames cannot be probed.
	for name, rec := range map[string]int{"wrong password": wrongPassword.Code, "unknown user": unknownUser.Code} {
		if rec != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want 401", name, rec)
		}
	}
	if code := errorCode(t, wrongPassword); code != "invalid_credentials" {
		t.Errorf("error code = %q, want invalid_credentials", code)
	}
	if code := errorCode(t, unknownUser); code != "invalid_credentials" {
		t.Errorf("error code = %q, want invalid_credentials", code)
	}
}

func TestLoginWithSecondFactor(t *testing.T) {
	env := newTestEnv(t)

	username := fmt.Sprintf("totp-%s", uuid.New().String()[:8])
	admin, err := env.admins.Create(username, "totp-password")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() { env.db.Exec(`DELETE FROM admins WHERE id = $1`, admin.ID) })

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: username})
	if err != nil {
		t.Fatalf("generate totp key: %v", err)
	}
	if err := env.admins.SetTOTPSecret(admin.ID, key.Secret()); err != nil {
		t.Fatalf("set totp secret: %v", err)
	}
	if err := env.admins.EnableTOTP(admin.ID); err != nil {
		t.Fatalf("enable totp: %v", err)
	}

	// Correct password without a code is not enough.
	rec := env.request(t, http.MethodPost, "/api/kb/admin/login", "", map[string]string{
		"username": username,
		"password": "totp-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no code: got %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "totp_required" {
		t.Errorf("error code = %q, want totp_required", code)
	}

	// A current code completes the login.
	otpCode, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	rec = env.request(t, http.MethodPost, "/api/kb/admin/login", "", map[string]string{
		"username":  username,
		"password":  "totp-password",
		"totp_code": otpCode,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("with code: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	username := fmt.Sprintf("chpass-%s", uuid.New().String()[:8])
	admin, err := env.admins.Create(username, "old-password")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() { env.db.Exec(`DELETE FROM admins WHERE id = $1`, admin.ID) })

	tok, err := env.tokens.Issue(admin.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// Wrong current password is rejected.
	rec := env.request(t, http.MethodPut, "/api/kb/admin/password", tok, map[string]string{
		"old_password": "not-the-password",
		"new_password": "brand-new-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current: got %d, want 401", rec.Code)
	}

	// Too-short replacement is rejected.
	rec = env.request(t, http.MethodPut, "/api/kb/admin/password", tok, map[string]string{
		"old_password": "old-password",
		"new_password": "tiny",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short new password: got %d, want 422", rec.Code)
	}

	rec = env.request(t, http.MethodPut, "/api/kb/admin/password", tok, map[string]string{
		"old_password": "old-password",
		"new_password": "brand-new-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	updated, err := env.admins.FindByID(admin.ID)
	if err != nil {
		t.Fatalf("reload admin: %v", err)
	}
	if !env.admins.CheckPassword(updated, "brand-new-password") {
		t.Error("new password not persisted")
	}
}
