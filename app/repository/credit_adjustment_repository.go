package repository

import (
	"github.com/RUDRA212003/Career-mock/app/models"
	"gorm.io/gorm"
)

// creditAdjustmentRepository implements the CreditAdjustmentRepository interface
type creditAdjustmentRepository struct {
	db *gorm.DB
}

// NewCreditAdjustmentRepository creates a new credit adjustment repository instance
func NewCreditAdjustmentRepository(db *gorm.DB) CreditAdjustmentRepository {
	return &creditAdjustmentRepository{db: db}
}

// Create records a manual credit correction
func (r *creditAdjustmentRepository) Create(adjustment *models.CreditAdjustment) error {
	return r.db.Create(adjustment).Error
}

// GetByUserID retrieves all adjustments applied to a user, newest first
func (r *creditAdjustmentRepository) GetByUserID(userID uint) ([]models.CreditAdjustment, error) {
	var adjustments []models.CreditAdjustment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&adjustments).Error
	return adjustments, err
}

// List retrieves a paginated list of all adjustments
func (r *creditAdjustmentRepository) List(offset, limit int) ([]models.CreditAdjustment, error) {
	var adjustments []models.CreditAdjustment
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&adjustments).Error
	return adjustments, err
}
