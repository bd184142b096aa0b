package repository

import (
	"strings"

	"github.com/RUDRA212003/Career-mock/app/models"
	"gorm.io/gorm"
)

// interviewResultRepository implements the InterviewResultRepository interface
type interviewResultRepository struct {
	db *gorm.DB
}

// NewInterviewResultRepository creates a new interview result repository instance
func NewInterviewResultRepository(db *gorm.DB) InterviewResultRepository {
	return &interviewResultRepository{db: db}
}

// Create creates a new interview result in the database
func (r *interviewResultRepository) Create(result *models.InterviewResult) error {
	return r.db.Create(result).Error
}

// GetByID retrieves a result by its ID
func (r *interviewResultRepository) GetByID(id uint) (*models.InterviewResult, error) {
	var result models.InterviewResult
	err := r.db.First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByInterviewID retrieves all candidate results for an interview
func (r *interviewResultRepository) GetByInterviewID(interviewID uint) ([]models.InterviewResult, error) {
	var results []models.InterviewResult
	err := r.db.Where("interview_id = ?", interviewID).
		Order("created_at DESC").
		Find(&results).Error
	return results, err
}

// GetByInterviewAndEmail retrieves a candidate's result for an interview
func (r *interviewResultRepository) GetByInterviewAndEmail(interviewID uint, email string) (*models.InterviewResult, error) {
	var result models.InterviewResult
	err := r.db.Where("interview_id = ? AND candidate_email = ?", interviewID, strings.ToLower(strings.TrimSpace(email))).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Update updates an existing interview result
func (r *interviewResultRepository) Update(result *models.InterviewResult) error {
	return r.db.Save(result).Error
}

// Count returns the total number of interview results
func (r *interviewResultRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.InterviewResult{}).Count(&count).Error
	return count, err
}

// CountByInterviewID returns the number of results for an interview
func (r *interviewResultRepository) CountByInterviewID(interviewID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.InterviewResult{}).Where("interview_id = ?", interviewID).Count(&count).Error
	return count, err
}
