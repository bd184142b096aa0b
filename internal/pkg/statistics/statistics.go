package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/cache"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
)

const (
	CacheKeyInterviewsTotal = "statistics:interviews:total"
	CacheKeyInterviewsDaily = "statistics:interviews:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers           = "statistics:users:total"
	CacheKeyResults         = "statistics:results:total"
	CacheExpiration         = 30 * time.Minute
)

// StatisticsData holds the headline numbers for the admin dashboard
type StatisticsData struct {
	TodayInterviews int
	TotalUsers      int
	TotalInterviews int
	TotalResults    int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache checks whether the cache refresh interval has elapsed
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the statistics cache when it is stale
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalInterviews int64
	if err := db.Model(&models.Interview{}).Count(&totalInterviews).Error; err != nil {
		log.Printf("Error counting total interviews: %v", err)
		return err
	}

	var todayInterviews int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.Interview{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayInterviews).Error; err != nil {
		log.Printf("Error counting today's interviews: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	var totalResults int64
	if err := db.Model(&models.InterviewResult{}).Count(&totalResults).Error; err != nil {
		log.Printf("Error counting total interview results: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyInterviewsTotal, strconv.FormatInt(totalInterviews, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total interviews: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyInterviewsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayInterviews, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's interviews: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyResults, strconv.FormatInt(totalResults, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total interview results: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Total Interviews: %d, Today's Interviews: %d, Total Users: %d, Total Results: %d",
		totalInterviews, todayInterviews, totalUsers, totalResults)

	return nil
}

// GetTotalInterviews returns the total number of interviews from cache or database
func GetTotalInterviews() int {
	return cachedCount(CacheKeyInterviewsTotal, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.Interview{}).Count(&count).Error
		return count, err
	})
}

// GetTodayInterviews returns the number of interviews created today from cache or database
func GetTodayInterviews() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyInterviewsDaily, today)

	return cachedCount(dailyKey, func(db *gorm.DB) (int64, error) {
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		var count int64
		err := db.Model(&models.Interview{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&count).Error
		return count, err
	})
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	return cachedCount(CacheKeyUsers, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetTotalResults returns the total number of candidate results from cache or database
func GetTotalResults() int {
	return cachedCount(CacheKeyResults, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.InterviewResult{}).Count(&count).Error
		return count, err
	})
}

// cachedCount reads a counter from the cache, falling back to the database
// and repopulating the cache on a miss.
func cachedCount(cacheKey string, count func(db *gorm.DB) (int64, error)) int {
	val, err := cache.Get(cacheKey)
	if err != nil {
		n, dbErr := count(database.GetDB())
		if dbErr != nil {
			log.Printf("Error counting for %s: %v", cacheKey, dbErr)
			return 0
		}

		if err := cache.Set(cacheKey, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", cacheKey, err)
		}
		return int(n)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return int(n)
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayInterviews: GetTodayInterviews(),
		TotalUsers:      GetTotalUsers(),
		TotalInterviews: GetTotalInterviews(),
		TotalResults:    GetTotalResults(),
	}
}
