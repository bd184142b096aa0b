package jobqueue

import (
	"fmt"

	"github.com/RUDRA212003/Career-mock/internal/pkg/mail"
)

// processActivationMailJob sends the account activation mail for a job
func (q *Queue) processActivationMailJob(job *Job) error {
	payload, err := ActivationMailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid activation mail payload: %w", err)
	}
	if payload.Email == "" || payload.ActivationToken == "" {
		return fmt.Errorf("activation mail payload missing email or token")
	}

	return mail.SendActivationMail(payload.Email, payload.Username, payload.ActivationToken)
}

// processPasswordResetMailJob sends the password reset mail for a job
func (q *Queue) processPasswordResetMailJob(job *Job) error {
	payload, err := PasswordResetMailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid password reset mail payload: %w", err)
	}
	if payload.Email == "" || payload.ResetToken == "" {
		return fmt.Errorf("password reset mail payload missing email or token")
	}

	return mail.SendPasswordResetMail(payload.Email, payload.Username, payload.ResetToken)
}

// processInterviewInviteJob sends a candidate invitation mail for a job
func (q *Queue) processInterviewInviteJob(job *Job) error {
	payload, err := InterviewInviteJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid interview invite payload: %w", err)
	}
	if payload.Email == "" || payload.InterviewSlug == "" {
		return fmt.Errorf("interview invite payload missing email or slug")
	}

	return mail.SendInterviewInvite(payload.Email, payload.CandidateName, payload.JobPosition, payload.InterviewSlug)
}
