package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/session"
)

// newAuthTestApp registers the auth routes with an in-memory session store
// so the tests run without Redis.
func newAuthTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newControllerTestDB(t)
	session.SetSessionStore(fibersession.New(fibersession.Config{
		KeyLookup: "cookie:session_id",
	}))

	app := fiber.New()
	app.Post("/register", HandleAuthRegister)
	app.Get("/activate", HandleAuthActivate)
	app.Post("/login", HandleAuthLogin)
	app.Post("/logout", HandleAuthLogout)
	app.Post("/forgot-password", HandleForgotPassword)
	app.Post("/reset-password", HandleResetPassword)
	return app, db
}

func createActiveUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	user, err := models.CreateUser("Reset User", email, password, 3)
	require.NoError(t, err)
	user.Status = models.STATUS_ACTIVE
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRegisterActivateLogin(t *testing.T) {
	app, db := newAuthTestApp(t)
	t.Setenv("STARTING_CREDITS", "3")

	resp, parsed := doJSON(t, app, http.MethodPost, "/register", fiber.Map{
		"username": "New User",
		"email":    "New.User@Example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "new.user@example.com", parsed["email"])
	assert.Equal(t, models.STATUS_INACTIVE, parsed["status"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "new.user@example.com").First(&user).Error)
	assert.Equal(t, int64(3), user.Credits)
	require.NotEmpty(t, user.ActivationToken)

	// Login before activation is refused
	resp, parsed = doJSON(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "new.user@example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "account_inactive", parsed["error"])

	// Activate via the mailed token
	resp, _ = doJSON(t, app, http.MethodGet, "/activate?token="+user.ActivationToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.Equal(t, models.STATUS_ACTIVE, user.Status)
	assert.Empty(t, user.ActivationToken)

	// Token is single use
	resp, _ = doJSON(t, app, http.MethodGet, "/activate?token="+user.ActivationToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Now the login succeeds and sets a session cookie
	resp, parsed = doJSON(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "New.User@Example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "New User", parsed["username"])

	var sessionCookie string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_id" {
			sessionCookie = cookie.Value
		}
	}
	assert.NotEmpty(t, sessionCookie)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newAuthTestApp(t)

	body := fiber.Map{
		"username": "First User",
		"email":    "taken@example.com",
		"password": "s3cret-password",
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, parsed := doJSON(t, app, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email_taken", parsed["error"])
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	app, db := newAuthTestApp(t)

	user, err := models.CreateUser("Known User", "known@example.com", "right-password", 3)
	require.NoError(t, err)
	user.Status = models.STATUS_ACTIVE
	require.NoError(t, db.Create(user).Error)

	// Unknown email and wrong password produce the same answer
	resp, parsed := doJSON(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "unknown@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "login_failed", parsed["error"])
	unknownMsg := parsed["message"]

	resp, parsed = doJSON(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "known@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "login_failed", parsed["error"])
	assert.Equal(t, unknownMsg, parsed["message"])
}

func TestForgotAndResetPassword(t *testing.T) {
	app, db := newAuthTestApp(t)
	user := createActiveUser(t, db, "reset@example.com", "old-password-1")

	resp, parsed := doJSON(t, app, http.MethodPost, "/forgot-password", fiber.Map{
		"email": "Reset@Example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["ok"])

	require.NoError(t, db.First(user, user.ID).Error)
	require.NotEmpty(t, user.ResetToken)
	require.NotNil(t, user.ResetSentAt)

	// Too-short passwords are refused before the token is consumed
	resp, parsed = doJSON(t, app, http.MethodPost, "/reset-password", fiber.Map{
		"token":    user.ResetToken,
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_password", parsed["error"])

	resp, _ = doJSON(t, app, http.MethodPost, "/reset-password", fiber.Map{
		"token":    user.ResetToken,
		"password": "new-password-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The token is single use and the new password logs in
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Empty(t, reloaded.ResetToken)
	assert.True(t, reloaded.CheckPassword("new-password-1"))
	assert.False(t, reloaded.CheckPassword("old-password-1"))

	resp, parsed = doJSON(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "reset@example.com",
		"password": "new-password-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reset@example.com", parsed["email"])
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	app, db := newAuthTestApp(t)

	// Unknown address gets the same answer as a known one
	resp, parsed := doJSON(t, app, http.MethodPost, "/forgot-password", fiber.Map{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["ok"])

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("reset_token <> ''").Count(&count).Error)
	assert.Zero(t, count)
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	app, db := newAuthTestApp(t)
	user := createActiveUser(t, db, "reset2@example.com", "old-password-1")

	resp, parsed := doJSON(t, app, http.MethodPost, "/reset-password", fiber.Map{
		"token":    "not-a-real-token",
		"password": "new-password-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_token", parsed["error"])

	// Expired tokens are refused and the password stays put
	require.NoError(t, user.GenerateResetToken())
	expired := time.Now().Add(-models.ResetTokenTTL - time.Minute)
	user.ResetSentAt = &expired
	require.NoError(t, db.Save(user).Error)

	resp, parsed = doJSON(t, app, http.MethodPost, "/reset-password", fiber.Map{
		"token":    user.ResetToken,
		"password": "new-password-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "expired_token", parsed["error"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.CheckPassword("old-password-1"))
}

func TestUpdatePassword(t *testing.T) {
	user, err := models.CreateUser("Password User", "change@example.com", "old-password-1", 3)
	require.NoError(t, err)
	user.Status = models.STATUS_ACTIVE

	app, db := newInterviewTestApp(t, user)
	app.Put("/user/password", HandleUpdateUserPassword)

	resp, parsed := doJSON(t, app, http.MethodPut, "/user/password", fiber.Map{
		"current_password": "wrong-password",
		"new_password":     "new-password-1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "wrong_password", parsed["error"])

	resp, _ = doJSON(t, app, http.MethodPut, "/user/password", fiber.Map{
		"current_password": "old-password-1",
		"new_password":     "new-password-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.CheckPassword("new-password-1"))
}

func TestLoginDisabledAccount(t *testing.T) {
	app, db := newAuthTestApp(t)

	user, err := models.CreateUser("Banned User", "banned@example.com", "s3cret-password", 3)
	require.NoError(t, err)
	user.Status = models.STATUS_DISABLED
	require.NoError(t, db.Create(user).Error)

	resp, parsed := doJSON(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "banned@example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "account_disabled", parsed["error"])
}
