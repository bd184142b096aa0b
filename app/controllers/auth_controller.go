package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
	"github.com/RUDRA212003/Career-mock/internal/pkg/hcaptcha"
	"github.com/RUDRA212003/Career-mock/internal/pkg/jobqueue"
	"github.com/RUDRA212003/Career-mock/internal/pkg/session"
	"github.com/RUDRA212003/Career-mock/internal/pkg/statistics"
	"github.com/RUDRA212003/Career-mock/internal/pkg/usercontext"
)

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleAuthRegister creates a new recruiter account and queues the
// activation mail.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}

	if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
		valid, err := hcaptcha.Verify(req.CaptchaToken)
		if err != nil || !valid {
			if err != nil {
				fmt.Printf("hCaptcha validation error: %v\n", err)
			}
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "Captcha validation failed. Please try again.")
		}
	}

	startingCredits := int64(env.GetEnvInt("STARTING_CREDITS", models.DefaultStartingCredits))
	user, err := models.CreateUser(req.Username, strings.ToLower(strings.TrimSpace(req.Email)), req.Password, startingCredits)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_user", err.Error())
	}
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create activation token")
	}

	if err := database.GetDB().Create(user).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create account")
	}

	payload := jobqueue.ActivationMailJobPayload{
		Email:           user.Email,
		Username:        user.Name,
		ActivationToken: user.ActivationToken,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendActivationMail, payload.ToMap()); err != nil {
		fmt.Printf("Failed to enqueue activation mail for %s: %v\n", user.Email, err)
	}

	// Update statistics after registration
	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"status":  user.Status,
		"message": "account created, check your inbox for the activation link",
	})
}

// HandleAuthActivate activates an account via the mailed token.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "activation token missing")
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("activation_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "invalid_token", "activation token not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "activation failed")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := db.Save(&user).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "activation failed")
	}

	return c.JSON(fiber.Map{"ok": true, "message": "account activated"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword issues a password reset token and queues the reset
// mail. The response is identical whether or not the address exists, so the
// endpoint cannot be used to probe for accounts.
func HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "an email address is required")
	}

	genericResponse := fiber.Map{"ok": true, "message": "if the address is registered, a reset link is on its way"}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return c.JSON(genericResponse)
	}
	// OAuth accounts have no local password to reset.
	if user.Password == "" {
		return c.JSON(genericResponse)
	}

	if err := user.GenerateResetToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create reset token")
	}
	if err := db.Save(&user).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create reset token")
	}

	payload := jobqueue.PasswordResetMailJobPayload{
		Email:      user.Email,
		Username:   user.Name,
		ResetToken: user.ResetToken,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendPasswordResetMail, payload.ToMap()); err != nil {
		fmt.Printf("Failed to enqueue password reset mail for %s: %v\n", user.Email, err)
	}

	return c.JSON(genericResponse)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleResetPassword sets a new password for the account behind a valid,
// unexpired reset token. The token is single-use.
func HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "reset token missing")
	}
	if len(req.Password) < 8 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_password", "password must be at least 8 characters")
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("reset_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusBadRequest, "invalid_token", "reset token not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "password reset failed")
	}

	if user.IsResetTokenExpired() {
		return jsonError(c, fiber.StatusBadRequest, "expired_token", "reset token has expired, request a new one")
	}

	if err := user.SetPassword(req.Password); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "password reset failed")
	}
	user.ResetToken = ""
	user.ResetSentAt = nil
	if err := db.Save(&user).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "password reset failed")
	}

	return c.JSON(fiber.Map{"ok": true, "message": "password updated, you can log in now"})
}

// HandleAuthLogin authenticates by email and password and starts a session.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	var user models.User
	result := database.GetDB().Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user)
	if result.Error != nil {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed", "There is a problem with the login process")
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed", "There is a problem with the login process")
	}

	if user.Status == models.STATUS_DISABLED {
		return jsonError(c, fiber.StatusForbidden, "account_disabled", "this account is disabled")
	}
	if user.Status == models.STATUS_INACTIVE {
		return jsonError(c, fiber.StatusForbidden, "account_inactive", "activate your account first")
	}

	if err := startUserSession(c, &user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not start session")
	}

	database.GetDB().Model(&user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"credits":  user.Credits,
	})
}

// HandleAuthLogout destroys the current session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load session")
	}

	if err := sess.Destroy(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not destroy session")
	}

	return c.JSON(fiber.Map{"ok": true})
}

// startUserSession writes the authenticated user into a fresh session.
func startUserSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyUserEmail, user.Email)
	sess.Set(usercontext.KeyUserRole, user.Role)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)

	return sess.Save()
}
