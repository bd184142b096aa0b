package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/RUDRA212003/Career-mock/app/repository"
	"github.com/RUDRA212003/Career-mock/internal/pkg/s3backup"
)

// processArchiveTranscriptJob copies a finished interview transcript to the
// configured S3 bucket. With S3_BACKUP_ENABLED=false the job is a no-op so
// enqueueing callers never have to check the config themselves.
func (q *Queue) processArchiveTranscriptJob(ctx context.Context, job *Job) error {
	payload, err := ArchiveTranscriptJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid archive transcript payload: %w", err)
	}
	if payload.ResultID == 0 {
		return fmt.Errorf("archive transcript payload missing result id")
	}

	cfg, err := s3backup.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid S3 config: %w", err)
	}
	if !cfg.IsEnabled() {
		log.Debugf("[JobQueue] Transcript archive disabled, skipping result %d", payload.ResultID)
		return nil
	}

	repos := repository.GetGlobalFactory()
	result, err := repos.GetInterviewResultRepository().GetByID(payload.ResultID)
	if err != nil {
		return fmt.Errorf("failed to load result %d: %w", payload.ResultID, err)
	}
	interview, err := repos.GetInterviewRepository().GetByID(result.InterviewID)
	if err != nil {
		return fmt.Errorf("failed to load interview %d: %w", result.InterviewID, err)
	}

	client, err := s3backup.NewClient(cfg)
	if err != nil {
		return err
	}

	created := result.CreatedAt
	key := cfg.TranscriptObjectKey(interview.Slug, result.ID, created.Year(), int(created.Month()))
	return client.UploadObject(ctx, key, []byte(result.TranscriptJSON), "application/json")
}
