package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeSendActivationMail    JobType = "send_activation_mail"
	JobTypeSendPasswordResetMail JobType = "send_password_reset_mail"
	JobTypeSendInterviewInvite   JobType = "send_interview_invite"
	JobTypeArchiveTranscript     JobType = "archive_transcript"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ActivationMailJobPayload contains the payload for account activation mails
type ActivationMailJobPayload struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	ActivationToken string `json:"activation_token"`
}

// ToMap converts the payload to a map for storage
func (p ActivationMailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"email":            p.Email,
		"username":         p.Username,
		"activation_token": p.ActivationToken,
	}
}

// FromMap creates a payload from a map
func ActivationMailJobPayloadFromMap(data map[string]interface{}) (*ActivationMailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ActivationMailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// PasswordResetMailJobPayload contains the payload for password reset mails
type PasswordResetMailJobPayload struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	ResetToken string `json:"reset_token"`
}

// ToMap converts the payload to a map for storage
func (p PasswordResetMailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"email":       p.Email,
		"username":    p.Username,
		"reset_token": p.ResetToken,
	}
}

// FromMap creates a payload from a map
func PasswordResetMailJobPayloadFromMap(data map[string]interface{}) (*PasswordResetMailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PasswordResetMailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// InterviewInviteJobPayload contains the payload for candidate invite mails
type InterviewInviteJobPayload struct {
	Email         string `json:"email"`
	CandidateName string `json:"candidate_name"`
	JobPosition   string `json:"job_position"`
	InterviewSlug string `json:"interview_slug"`
}

// ToMap converts the payload to a map for storage
func (p InterviewInviteJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"email":          p.Email,
		"candidate_name": p.CandidateName,
		"job_position":   p.JobPosition,
		"interview_slug": p.InterviewSlug,
	}
}

// FromMap creates a payload from a map
func InterviewInviteJobPayloadFromMap(data map[string]interface{}) (*InterviewInviteJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload InterviewInviteJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// ArchiveTranscriptJobPayload contains the payload for off-site transcript backups
type ArchiveTranscriptJobPayload struct {
	ResultID uint `json:"result_id"`
}

// ToMap converts the payload to a map for storage
func (p ArchiveTranscriptJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"result_id": p.ResultID,
	}
}

// FromMap creates a payload from a map
func ArchiveTranscriptJobPayloadFromMap(data map[string]interface{}) (*ArchiveTranscriptJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ArchiveTranscriptJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
