package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/app/repository"
	"github.com/RUDRA212003/Career-mock/internal/pkg/billing"
	"github.com/RUDRA212003/Career-mock/internal/pkg/credits"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/jobqueue"
	"github.com/RUDRA212003/Career-mock/internal/pkg/statistics"
	"github.com/RUDRA212003/Career-mock/internal/pkg/usercontext"
)

// HandleAdminDashboard returns the headline numbers plus 30-day trends.
func HandleAdminDashboard(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	repos := repository.GetGlobalFactory()
	userDaily, err := repos.GetUserRepository().GetDailyStats(startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load user stats")
	}
	interviewDaily, err := repos.GetInterviewRepository().GetDailyStats(startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load interview stats")
	}

	return c.JSON(fiber.Map{
		"totals": fiber.Map{
			"users":            stats.TotalUsers,
			"interviews":       stats.TotalInterviews,
			"interviews_today": stats.TodayInterviews,
			"results":          stats.TotalResults,
		},
		"daily": fiber.Map{
			"users":      userDaily,
			"interviews": interviewDaily,
		},
	})
}

// HandleAdminListUsers returns users with their usage stats, optionally
// filtered by a search query.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	query := strings.TrimSpace(c.Query("q"))
	var (
		users []repository.UserWithStats
		err   error
	)
	if query != "" {
		users, err = repo.SearchWithStats(query)
	} else {
		offset, limit := parsePagination(c, 50, 200)
		users, err = repo.GetWithStats(offset, limit)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load users")
	}

	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not count users")
	}

	items := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		items = append(items, fiber.Map{
			"id":              u.User.ID,
			"username":        u.User.Name,
			"email":           u.User.Email,
			"role":            u.User.Role,
			"status":          u.User.Status,
			"credits":         u.User.Credits,
			"interview_count": u.InterviewCount,
			"result_count":    u.ResultCount,
			"created_at":      u.User.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{"users": items, "total": total})
}

// HandleAdminListInterviews returns all interviews for moderation.
func HandleAdminListInterviews(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 50, 200)

	repo := repository.GetGlobalFactory().GetInterviewRepository()
	interviews, err := repo.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load interviews")
	}
	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not count interviews")
	}

	return c.JSON(fiber.Map{"interviews": interviews, "total": total})
}

// HandleAdminSettlementIssues lists webhook events with verification or
// settlement problems, the worklist for manual payment reconciliation.
func HandleAdminSettlementIssues(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil {
		limit = 50
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	events, err := svc.ListSettlementIssues(limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load settlement issues")
	}

	return c.JSON(fiber.Map{"events": events})
}

type creditAdjustmentRequest struct {
	UserID     uint   `json:"user_id"`
	Delta      int64  `json:"delta"`
	Reason     string `json:"reason"`
	WebhookRef string `json:"webhook_ref"`
}

// HandleAdminAdjustCredits applies a manual credit correction with an audit
// record. The balance change and the audit insert commit together.
func HandleAdminAdjustCredits(c *fiber.Ctx) error {
	adminCtx := usercontext.GetUserContext(c)

	var req creditAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}
	if req.UserID == 0 || req.Delta == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "user_id and a non-zero delta are required")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "a reason is required")
	}

	adjustment := &models.CreditAdjustment{
		UserID:     req.UserID,
		AdminID:    adminCtx.UserID,
		Delta:      req.Delta,
		Reason:     strings.TrimSpace(req.Reason),
		WebhookRef: strings.TrimSpace(req.WebhookRef),
	}

	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := credits.Adjust(tx, req.UserID, req.Delta); err != nil {
			return err
		}
		return tx.Create(adjustment).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "user not found")
		}
		if errors.Is(txErr, credits.ErrInsufficientCredit) {
			return jsonError(c, fiber.StatusConflict, "insufficient_credit", "adjustment would make the balance negative")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not apply adjustment")
	}

	balance, err := credits.Balance(database.GetDB(), req.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load balance")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"adjustment": adjustment,
		"credits":    balance,
	})
}

// HandleAdminListAdjustments returns the credit adjustment audit trail.
func HandleAdminListAdjustments(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 50, 200)

	adjustments, err := repository.GetGlobalFactory().GetCreditAdjustmentRepository().List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load adjustments")
	}

	return c.JSON(fiber.Map{"adjustments": adjustments})
}

// HandleAdminSweepOrders manually triggers the abandoned-order sweep.
func HandleAdminSweepOrders(c *fiber.Ctx) error {
	if err := jobqueue.GetManager().RunOrderSweepOnce(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "sweep failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}
