package repository

import (
	"fmt"
	"time"

	"github.com/RUDRA212003/Career-mock/app/models"
	"gorm.io/gorm"
)

// dailyCreationStats groups rows of the given model query by creation day.
// MySQL in production, sqlite in tests.
func dailyCreationStats(query *gorm.DB, startDate, endDate time.Time) ([]models.DailyStats, error) {
	dateExpr := "DATE_FORMAT(created_at, '%Y-%m-%d')"
	if query.Dialector.Name() == "sqlite" {
		dateExpr = "strftime('%Y-%m-%d', created_at)"
	}

	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}
	err := query.
		Select(dateExpr + " as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group(dateExpr).
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}
	return dailyStats, nil
}
