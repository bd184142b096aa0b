package repository

import (
	"time"

	"github.com/RUDRA212003/Career-mock/app/models"
	"gorm.io/gorm"
)

// interviewRepository implements the InterviewRepository interface
type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository creates a new interview repository instance
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

// Create creates a new interview in the database
func (r *interviewRepository) Create(interview *models.Interview) error {
	return r.db.Create(interview).Error
}

// GetByID retrieves an interview by its ID
func (r *interviewRepository) GetByID(id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.db.First(&interview, id).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

// GetBySlug retrieves an interview by its share slug
func (r *interviewRepository) GetBySlug(slug string) (*models.Interview, error) {
	var interview models.Interview
	err := r.db.Where("slug = ?", slug).First(&interview).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

// GetByUserID retrieves a recruiter's interviews, newest first
func (r *interviewRepository) GetByUserID(userID uint, offset, limit int) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&interviews).Error
	return interviews, err
}

// Update updates an existing interview
func (r *interviewRepository) Update(interview *models.Interview) error {
	return r.db.Save(interview).Error
}

// Delete deletes an interview by its ID
func (r *interviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Interview{}, id).Error
}

// List retrieves a paginated list of all interviews
func (r *interviewRepository) List(offset, limit int) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&interviews).Error
	return interviews, err
}

// Count returns the total number of interviews
func (r *interviewRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Interview{}).Count(&count).Error
	return count, err
}

// CountByUserID returns the number of interviews created by a user
func (r *interviewRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Interview{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SlugExists checks whether a share slug is already taken
func (r *interviewRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Interview{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// GetDailyStats returns daily interview creation statistics for a date range
func (r *interviewRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return dailyCreationStats(r.db.Model(&models.Interview{}), startDate, endDate)
}
