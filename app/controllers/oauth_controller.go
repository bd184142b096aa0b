package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
)

// HandleOAuthBegin redirects to the provider's consent screen.
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	// Complete OAuth with provider and obtain unified user
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "oauth_failed", fmt.Sprintf("OAuth failed: %v", err))
	}

	db := database.GetDB()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "oauth_failed", "provider returned no email address")
	}

	var appUser models.User
	res := db.Where("email = ?", email).First(&appUser)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		startingCredits := int64(env.GetEnvInt("STARTING_CREDITS", models.DefaultStartingCredits))
		name := firstNonEmpty(u.Name, u.NickName, email)
		newUser, err := models.CreateOAuthUser(name, email, u.Provider, u.AvatarURL, startingCredits)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", fmt.Sprintf("create user failed: %v", err))
		}
		if err := db.Create(newUser).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "create user failed")
		}
		appUser = *newUser
	} else if res.Error != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "db error")
	}

	if appUser.Status == models.STATUS_DISABLED {
		return jsonError(c, fiber.StatusForbidden, "account_disabled", "this account is disabled")
	}

	if err := startUserSession(c, &appUser); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "session save failed")
	}

	// Update last login timestamp
	_ = db.Model(&appUser).UpdateColumn("last_login_at", time.Now()).Error

	redirectTo := env.GetEnv("OAUTH_SUCCESS_REDIRECT", "/")
	return c.Redirect(redirectTo, fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
