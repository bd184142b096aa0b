package models

import "time"

const (
	RecommendationYes   = "yes"
	RecommendationNo    = "no"
	RecommendationMaybe = "maybe"
)

// InterviewResult stores one candidate's completed session for an interview:
// the raw conversation transcript as submitted by the client and the
// AI-generated feedback over it.
type InterviewResult struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	InterviewID    uint      `gorm:"not null;index" json:"interview_id"`
	CandidateName  string    `gorm:"type:varchar(150);not null" json:"candidate_name"`
	CandidateEmail string    `gorm:"type:varchar(200);not null;index" json:"candidate_email"`
	TranscriptJSON string    `gorm:"type:longtext;not null" json:"transcript_json"`
	FeedbackJSON   string    `gorm:"type:longtext;not null;default:''" json:"feedback_json"`
	Rating         int       `gorm:"not null;default:0" json:"rating"`
	Recommendation string    `gorm:"type:varchar(10);not null;default:'maybe'" json:"recommendation"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
