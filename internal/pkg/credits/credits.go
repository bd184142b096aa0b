package credits

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
)

// ErrInsufficientCredit is returned when a debit is attempted on a zero
// balance. It is an expected, user-facing outcome.
var ErrInsufficientCredit = errors.New("insufficient credits")

// Consume debits one credit. The check and the decrement are a single
// conditional UPDATE, so two requests racing on the last credit can never
// both succeed and the balance can never go negative.
func Consume(db *gorm.DB, userID uint) error {
	result := db.Model(&models.User{}).
		Where("id = ? AND credits > 0", userID).
		UpdateColumn("credits", gorm.Expr("credits - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the balance is zero or the user does not exist.
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientCredit
	}
	return nil
}

// Grant credits amount to the user's balance as a single atomic increment.
// Callers (settlement, admin adjustments) run this inside their own
// transaction together with their audit record.
func Grant(db *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return errors.New("grant amount must be positive")
	}
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Adjust applies a signed delta to the balance for manual corrections.
// Negative deltas are conditional on the balance staying non-negative.
func Adjust(db *gorm.DB, userID uint, delta int64) error {
	if delta == 0 {
		return errors.New("adjustment delta must be non-zero")
	}
	if delta > 0 {
		return Grant(db, userID, delta)
	}

	result := db.Model(&models.User{}).
		Where("id = ? AND credits >= ?", userID, -delta).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientCredit
	}
	return nil
}

// Balance reads the current credit balance.
func Balance(db *gorm.DB, userID uint) (int64, error) {
	var user models.User
	if err := db.Select("credits").First(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.Credits, nil
}
