package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/app/repository"
	"github.com/RUDRA212003/Career-mock/internal/pkg/credits"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/usercontext"
	"github.com/RUDRA212003/Career-mock/internal/pkg/utils"
)

// HandleGetUserAccount returns account information for the authenticated user.
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	stats, err := repo.GetStatsByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load statistics")
	}

	// OAuth users bring their own avatar, everyone else gets a Gravatar
	avatarURL := account.AvatarURL
	if avatarURL == "" {
		avatarURL = utils.GetGravatarURL(account.Email, 200)
	}

	return c.JSON(fiber.Map{
		"id":            account.ID,
		"username":      account.Name,
		"email":         account.Email,
		"role":          account.Role,
		"status":        account.Status,
		"company":       account.Company,
		"avatar_url":    avatarURL,
		"credits":       account.Credits,
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"stats": fiber.Map{
			"interviews": fiber.Map{
				"count": stats.InterviewCount,
			},
			"results": fiber.Map{
				"count": stats.ResultCount,
			},
		},
	})
}

// HandleGetUserCredits returns the caller's current credit balance.
func HandleGetUserCredits(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	balance, err := credits.Balance(database.GetDB(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load balance")
	}

	return c.JSON(fiber.Map{"credits": balance})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleUpdateUserPassword changes the caller's password after checking the
// current one.
func HandleUpdateUserPassword(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req updatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_password", "password must be at least 8 characters")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	if account.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "oauth_account", "this account signs in through an external provider")
	}
	if !account.CheckPassword(req.CurrentPassword) {
		return jsonError(c, fiber.StatusUnauthorized, "wrong_password", "current password is incorrect")
	}

	if err := account.SetPassword(req.NewPassword); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update password")
	}
	if err := repo.Update(account); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update password")
	}

	return c.JSON(fiber.Map{"ok": true})
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Company  string `json:"company"`
}

// HandleUpdateUserProfile updates the caller's display name and company.
func HandleUpdateUserProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	if name := strings.TrimSpace(req.Username); name != "" {
		account.Name = name
	}
	account.Company = strings.TrimSpace(req.Company)

	if err := account.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_user", err.Error())
	}
	if err := repo.Update(account); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update user")
	}

	return c.JSON(fiber.Map{
		"id":       account.ID,
		"username": account.Name,
		"company":  account.Company,
	})
}
