package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/RUDRA212003/Career-mock/internal/pkg/billing"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
	metrics "github.com/RUDRA212003/Career-mock/internal/pkg/metrics/counter"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	sweepTicker        *time.Ticker
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetEnvInt("JOB_QUEUE_WORKERS", 3)

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Abandoned order sweep interval in minutes
	sweepInterval := time.Duration(env.GetEnvInt("ORDER_SWEEP_INTERVAL_MINUTES", 30)) * time.Minute
	m.sweepTicker = time.NewTicker(sweepInterval)
	m.wg.Add(1)
	go m.orderSweepWorker()

	// Flush interview view counters from Redis to the database every 30 seconds
	m.counterFlushTicker = time.NewTicker(30 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.sweepTicker != nil {
		m.sweepTicker.Stop()
	}
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// counterFlushWorker periodically flushes pending view counters from Redis to DB
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			// Final flush so shutdown does not lose pending counts
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[JobQueue Manager] Final counter flush error: %v", err)
			}
			return
		case <-m.counterFlushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// orderSweepWorker periodically marks stale unpaid credit orders as abandoned
func (m *Manager) orderSweepWorker() {
	defer m.wg.Done()

	maxAge := time.Duration(env.GetEnvInt("ORDER_ABANDON_AFTER_HOURS", 24)) * time.Hour
	log.Infof("[JobQueue Manager] Started order sweep worker (maxAge=%s)", maxAge)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Order sweep worker stopping")
			return
		case <-m.sweepTicker.C:
			if err := m.runOrderSweepOnce(maxAge); err != nil {
				log.Errorf("[JobQueue Manager] Order sweep error: %v", err)
			}
		}
	}
}

func (m *Manager) runOrderSweepOnce(maxAge time.Duration) error {
	svc := billing.NewServiceFromDB(database.GetDB())
	_, err := svc.SweepAbandonedOrders(maxAge)
	return err
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// RunOrderSweepOnce exposes a manual trigger for a single sweep (admin use).
func (m *Manager) RunOrderSweepOnce() error {
	maxAge := time.Duration(env.GetEnvInt("ORDER_ABANDON_AFTER_HOURS", 24)) * time.Hour
	return m.runOrderSweepOnce(maxAge)
}
