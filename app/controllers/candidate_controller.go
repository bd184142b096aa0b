package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/app/repository"
	"github.com/RUDRA212003/Career-mock/internal/pkg/jobqueue"
	counter "github.com/RUDRA212003/Career-mock/internal/pkg/metrics/counter"
	"github.com/RUDRA212003/Career-mock/internal/pkg/statistics"
)

// HandleGetPublicInterview returns the joinable view of an interview by its
// share slug. No authentication; the slug is the capability.
func HandleGetPublicInterview(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))

	interview, err := repository.GetGlobalFactory().GetInterviewRepository().GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "interview not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load interview")
	}
	if !interview.IsOpen(time.Now()) {
		return jsonError(c, fiber.StatusGone, "interview_closed", "this interview is no longer open")
	}

	if err := counter.AddInterviewView(interview.ID); err != nil {
		log.Errorf("[Candidate] Failed to count view for interview %d: %v", interview.ID, err)
	}

	return c.JSON(fiber.Map{
		"slug":           interview.Slug,
		"job_position":   interview.JobPosition,
		"duration":       interview.Duration,
		"types_json":     interview.TypesJSON,
		"questions_json": interview.QuestionsJSON,
		"expires_at":     interview.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type submitResultRequest struct {
	CandidateName  string          `json:"candidate_name"`
	CandidateEmail string          `json:"candidate_email"`
	Transcript     json.RawMessage `json:"transcript"`
}

// HandleSubmitInterviewResult stores a candidate's finished session and
// generates AI feedback over the transcript. Resubmitting with the same email
// replaces the earlier result.
func HandleSubmitInterviewResult(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))

	repo := repository.GetGlobalFactory()
	interview, err := repo.GetInterviewRepository().GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "interview not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load interview")
	}
	if !interview.IsOpen(time.Now()) {
		return jsonError(c, fiber.StatusGone, "interview_closed", "this interview is no longer open")
	}

	var req submitResultRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}
	req.CandidateName = strings.TrimSpace(req.CandidateName)
	req.CandidateEmail = strings.ToLower(strings.TrimSpace(req.CandidateEmail))
	if req.CandidateName == "" || req.CandidateEmail == "" || len(req.Transcript) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "candidate_name, candidate_email and transcript are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	gen := newAIGenerator()
	feedbackJSON, feedback, err := gen.GenerateFeedback(ctx, interview.JobPosition, req.CandidateName, string(req.Transcript))
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "generation_failed", "feedback generation failed, please retry")
	}

	resultRepo := repo.GetInterviewResultRepository()
	result, err := resultRepo.GetByInterviewAndEmail(interview.ID, req.CandidateEmail)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load result")
	}
	if result == nil {
		result = &models.InterviewResult{
			InterviewID:    interview.ID,
			CandidateEmail: req.CandidateEmail,
		}
	}

	result.CandidateName = req.CandidateName
	result.TranscriptJSON = string(req.Transcript)
	result.FeedbackJSON = feedbackJSON
	result.Rating = feedback.Rating
	result.Recommendation = normalizeRecommendation(feedback.Recommendation)

	if result.ID == 0 {
		err = resultRepo.Create(result)
	} else {
		err = resultRepo.Update(result)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not store result")
	}

	archivePayload := jobqueue.ArchiveTranscriptJobPayload{ResultID: result.ID}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeArchiveTranscript, archivePayload.ToMap()); err != nil {
		log.Errorf("[Candidate] Failed to enqueue transcript archive for result %d: %v", result.ID, err)
	}

	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":             result.ID,
		"rating":         result.Rating,
		"recommendation": result.Recommendation,
		"feedback_json":  result.FeedbackJSON,
	})
}

func normalizeRecommendation(rec string) string {
	switch strings.ToLower(strings.TrimSpace(rec)) {
	case models.RecommendationYes:
		return models.RecommendationYes
	case models.RecommendationNo:
		return models.RecommendationNo
	default:
		return models.RecommendationMaybe
	}
}
