package jobqueue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Activation Mail", JobTypeSendActivationMail, "send_activation_mail"},
		{"Interview Invite", JobTypeSendInterviewInvite, "send_interview_invite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	job := &Job{
		ID:         "test-job",
		Type:       JobTypeSendInterviewInvite,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("smtp unreachable")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestJobExhaustsRetries(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}

	job.MarkAsFailed("first")
	assert.True(t, job.IsRetryable())
	job.MarkAsFailed("second")
	assert.False(t, job.IsRetryable())
}

func TestInterviewInvitePayloadRoundTrip(t *testing.T) {
	payload := InterviewInviteJobPayload{
		Email:         "candidate@example.com",
		CandidateName: "Jordan",
		JobPosition:   "Backend Engineer",
		InterviewSlug: "a1b2c3d4e5",
	}

	restored, err := InterviewInviteJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestArchiveTranscriptPayloadRoundTrip(t *testing.T) {
	payload := ArchiveTranscriptJobPayload{ResultID: 42}
	job := &Job{Type: JobTypeArchiveTranscript, Payload: payload.ToMap()}

	// JSON numbers come back as float64, FromMap must restore the uint.
	data, err := json.Marshal(job)
	require.NoError(t, err)
	var stored Job
	require.NoError(t, json.Unmarshal(data, &stored))

	restored, err := ArchiveTranscriptJobPayloadFromMap(stored.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestActivationMailPayloadFromJob(t *testing.T) {
	payload := ActivationMailJobPayload{
		Email:           "new@example.com",
		Username:        "newuser",
		ActivationToken: "tok123",
	}
	job := &Job{Type: JobTypeSendActivationMail, Payload: payload.ToMap()}

	// Payloads survive the JSON round trip through Redis storage.
	data, err := json.Marshal(job)
	require.NoError(t, err)
	var stored Job
	require.NoError(t, json.Unmarshal(data, &stored))

	restored, err := ActivationMailJobPayloadFromMap(stored.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}
