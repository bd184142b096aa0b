package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/app/repository"
	"github.com/RUDRA212003/Career-mock/internal/pkg/aiservice"
	"github.com/RUDRA212003/Career-mock/internal/pkg/credits"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
	"github.com/RUDRA212003/Career-mock/internal/pkg/jobqueue"
	"github.com/RUDRA212003/Career-mock/internal/pkg/shortener"
	"github.com/RUDRA212003/Career-mock/internal/pkg/statistics"
	"github.com/RUDRA212003/Career-mock/internal/pkg/usercontext"
)

const interviewSlugLength = 10

// newAIGenerator builds the question/feedback generator. Tests replace it
// with a stub.
var newAIGenerator = func() aiservice.Generator {
	return aiservice.NewClientFromEnv()
}

type createInterviewRequest struct {
	JobPosition    string   `json:"job_position"`
	JobDescription string   `json:"job_description"`
	Duration       string   `json:"duration"`
	Types          []string `json:"types"`
}

// HandleCreateInterview creates an interview for the logged-in recruiter.
// Question generation happens before any credit is spent; the credit
// deduction and the interview insert then commit together, so a failed
// generation never costs a credit and a failed insert never loses one.
func HandleCreateInterview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}
	req.JobPosition = strings.TrimSpace(req.JobPosition)
	if req.JobPosition == "" || strings.TrimSpace(req.Duration) == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "job_position and duration are required")
	}

	db := database.GetDB()

	// Friendly early check; the transactional decrement below is what
	// actually enforces the balance.
	balance, err := credits.Balance(db, userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load credit balance")
	}
	if balance < 1 {
		return jsonError(c, fiber.StatusPaymentRequired, "insufficient_credit", "not enough credits to create an interview")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	questionsJSON, _, err := generateQuestions(ctx, req)
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "generation_failed", "question generation failed, no credit was spent")
	}

	slug, err := uniqueInterviewSlug()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create interview link")
	}

	typesJSON, err := json.Marshal(req.Types)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid interview types")
	}

	expiresDays := env.GetEnvInt("INTERVIEW_EXPIRES_DAYS", 7)
	interview := &models.Interview{
		Slug:           slug,
		UserID:         userCtx.UserID,
		JobPosition:    req.JobPosition,
		JobDescription: req.JobDescription,
		Duration:       req.Duration,
		TypesJSON:      string(typesJSON),
		QuestionsJSON:  questionsJSON,
		Status:         models.InterviewStatusActive,
		ExpiresAt:      time.Now().AddDate(0, 0, expiresDays),
	}
	if err := interview.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := credits.Consume(tx, userCtx.UserID); err != nil {
			return err
		}
		return tx.Create(interview).Error
	})
	if txErr != nil {
		if errors.Is(txErr, credits.ErrInsufficientCredit) {
			return jsonError(c, fiber.StatusPaymentRequired, "insufficient_credit", "not enough credits to create an interview")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create interview")
	}

	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(interviewResponse(interview))
}

// HandleListInterviews returns the recruiter's interviews.
func HandleListInterviews(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c, 20, 100)

	repo := repository.GetGlobalFactory().GetInterviewRepository()
	interviews, err := repo.GetByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load interviews")
	}

	items := make([]fiber.Map, 0, len(interviews))
	for i := range interviews {
		items = append(items, interviewResponse(&interviews[i]))
	}
	return c.JSON(fiber.Map{"interviews": items})
}

// HandleGetInterview returns one of the recruiter's interviews with its
// candidate results.
func HandleGetInterview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	interview, err := loadOwnedInterview(c, userCtx)
	if err != nil {
		return err
	}

	results, err := repository.GetGlobalFactory().GetInterviewResultRepository().GetByInterviewID(interview.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load results")
	}

	resp := interviewResponse(interview)
	resp["questions_json"] = interview.QuestionsJSON
	resp["results"] = results
	return c.JSON(resp)
}

type inviteRequest struct {
	Email         string `json:"email"`
	CandidateName string `json:"candidate_name"`
}

// HandleSendInterviewInvite queues an invitation mail for a candidate.
func HandleSendInterviewInvite(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	interview, err := loadOwnedInterview(c, userCtx)
	if err != nil {
		return err
	}
	if !interview.IsOpen(time.Now()) {
		return jsonError(c, fiber.StatusConflict, "interview_closed", "this interview is no longer open")
	}

	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "email is required")
	}

	payload := jobqueue.InterviewInviteJobPayload{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		CandidateName: strings.TrimSpace(req.CandidateName),
		JobPosition:   interview.JobPosition,
		InterviewSlug: interview.Slug,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendInterviewInvite, payload.ToMap()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not queue invitation")
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleArchiveInterview closes an interview to new candidates.
func HandleArchiveInterview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	interview, err := loadOwnedInterview(c, userCtx)
	if err != nil {
		return err
	}

	interview.Status = models.InterviewStatusArchived
	if err := repository.GetGlobalFactory().GetInterviewRepository().Update(interview); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not archive interview")
	}

	return c.JSON(interviewResponse(interview))
}

// loadOwnedInterview loads the :id interview and checks ownership. Admins may
// access any interview.
func loadOwnedInterview(c *fiber.Ctx, userCtx usercontext.UserContext) (*models.Interview, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid interview id")
	}

	interview, err := repository.GetGlobalFactory().GetInterviewRepository().GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "interview not found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load interview")
	}
	if interview.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return nil, jsonError(c, fiber.StatusNotFound, "not_found", "interview not found")
	}
	return interview, nil
}

func generateQuestions(ctx context.Context, req createInterviewRequest) (string, *aiservice.QuestionSet, error) {
	gen := newAIGenerator()
	return gen.GenerateInterviewQuestions(ctx, req.JobPosition, req.JobDescription, req.Duration, req.Types)
}

// uniqueInterviewSlug generates a share slug, retrying on the unlikely
// collision.
func uniqueInterviewSlug() (string, error) {
	repo := repository.GetGlobalFactory().GetInterviewRepository()
	for attempt := 0; attempt < 5; attempt++ {
		slug, err := shortener.GenerateSecureSlug(interviewSlugLength)
		if err != nil {
			return "", err
		}
		exists, err := repo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique slug")
}

func interviewResponse(i *models.Interview) fiber.Map {
	return fiber.Map{
		"id":           i.ID,
		"slug":         i.Slug,
		"job_position": i.JobPosition,
		"duration":     i.Duration,
		"types_json":   i.TypesJSON,
		"status":       i.Status,
		"expires_at":   i.ExpiresAt.UTC().Format(time.RFC3339),
		"created_at":   i.CreatedAt.UTC().Format(time.RFC3339),
	}
}
