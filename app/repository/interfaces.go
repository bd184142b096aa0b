package repository

import (
	"time"

	"github.com/RUDRA212003/Career-mock/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetStatsByUserID(userID uint) (*UserStats, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetWithStats(offset, limit int) ([]UserWithStats, error)
	SearchWithStats(query string) ([]UserWithStats, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// InterviewRepository defines the interface for interview-related database operations
type InterviewRepository interface {
	Create(interview *models.Interview) error
	GetByID(id uint) (*models.Interview, error)
	GetBySlug(slug string) (*models.Interview, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Interview, error)
	Update(interview *models.Interview) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Interview, error)
	Count() (int64, error)
	CountByUserID(userID uint) (int64, error)
	SlugExists(slug string) (bool, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// InterviewResultRepository defines the interface for candidate result operations
type InterviewResultRepository interface {
	Create(result *models.InterviewResult) error
	GetByID(id uint) (*models.InterviewResult, error)
	GetByInterviewID(interviewID uint) ([]models.InterviewResult, error)
	GetByInterviewAndEmail(interviewID uint, email string) (*models.InterviewResult, error)
	Update(result *models.InterviewResult) error
	Count() (int64, error)
	CountByInterviewID(interviewID uint) (int64, error)
}

// CreditAdjustmentRepository defines the interface for manual credit corrections
type CreditAdjustmentRepository interface {
	Create(adjustment *models.CreditAdjustment) error
	GetByUserID(userID uint) ([]models.CreditAdjustment, error)
	List(offset, limit int) ([]models.CreditAdjustment, error)
}

// UserWithStats represents a user with additional statistics
type UserWithStats struct {
	User           models.User
	InterviewCount int64
	ResultCount    int64
}

// UserStats provides aggregated counts for a single user (interviews created,
// candidate results received).
type UserStats struct {
	InterviewCount int64
	ResultCount    int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User             UserRepository
	Interview        InterviewRepository
	InterviewResult  InterviewResultRepository
	CreditAdjustment CreditAdjustmentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:             NewUserRepository(db),
		Interview:        NewInterviewRepository(db),
		InterviewResult:  NewInterviewResultRepository(db),
		CreditAdjustment: NewCreditAdjustmentRepository(db),
	}
}
