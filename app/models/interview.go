package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	InterviewStatusActive   = "active"
	InterviewStatusExpired  = "expired"
	InterviewStatusArchived = "archived"
)

// Interview is a recruiter-created mock interview. Candidates join through
// the public slug; the generated question set is stored as raw JSON the way
// the LLM service produced it.
type Interview struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Slug           string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"slug"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	JobPosition    string    `gorm:"type:varchar(200);not null" json:"job_position" validate:"required,min=2,max=200"`
	JobDescription string    `gorm:"type:text" json:"job_description" validate:"max=5000"`
	Duration       string    `gorm:"type:varchar(20);not null" json:"duration" validate:"required"`
	TypesJSON      string    `gorm:"type:text;not null;default:'[]'" json:"types_json"`
	QuestionsJSON  string    `gorm:"type:longtext;not null" json:"questions_json"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ViewCount      int64     `gorm:"not null;default:0" json:"view_count"`
	ExpiresAt      time.Time `gorm:"type:timestamp;not null" json:"expires_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Interview) Validate() error {
	v := validator.New()

	return v.Struct(i)
}

// IsOpen reports whether candidates may still join the interview.
func (i *Interview) IsOpen(now time.Time) bool {
	return i.Status == InterviewStatusActive && now.Before(i.ExpiresAt)
}
