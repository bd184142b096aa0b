package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/RUDRA212003/Career-mock/internal/pkg/cache"
)

const (
	jobDataPrefix    = "jobs:data:"
	jobPendingKey    = "jobs:pending"
	jobProcessingKey = "jobs:processing"
	jobStatsKey      = "jobs:stats"

	DefaultMaxRetries = 3

	// Unfinished job records expire on their own so a crashed deployment
	// cannot leave garbage behind forever.
	jobTTL = 24 * time.Hour

	// A job stuck in the processing list longer than this is assumed to
	// belong to a dead worker and gets requeued.
	stuckJobAge = 10 * time.Minute
)

// Queue is a Redis-backed work queue. Pending job ids live in a list,
// in-flight ids are parked on a processing list via BRPOPLPUSH so nothing is
// lost when a worker dies mid-job.
type Queue struct {
	client  *redis.Client
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}
	return &Queue{
		client:  cache.GetClient(),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the worker goroutines and the stuck-job recovery loop.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true

	log.Infof("[JobQueue] Starting %d workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	q.wg.Add(1)
	go q.recoveryLoop(time.Minute)
}

// Stop signals all workers and blocks until they exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}

	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

// EnqueueJob stores a new job and pushes its id onto the pending list.
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	ctx := context.Background()
	now := time.Now()

	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobDataPrefix+job.ID, data, jobTTL)
	pipe.LPush(ctx, jobPendingKey, job.ID)
	pipe.HIncrBy(ctx, jobStatsKey, string(JobStatusPending), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Infof("[JobQueue] Enqueued job %s (Type: %s)", job.ID, job.Type)
	return job, nil
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[JobQueue] Worker %d started", id)

	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			log.Infof("[JobQueue] Worker %d stopping", id)
			return
		default:
		}

		job, err := q.dequeueJob(ctx)
		if err != nil {
			if err != redis.Nil {
				log.Errorf("[JobQueue] Worker %d: dequeue failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if job != nil {
			log.Infof("[JobQueue] Worker %d processing job %s (Type: %s)", id, job.ID, job.Type)
			q.processJob(ctx, job)
		}
	}
}

// dequeueJob atomically moves one id from pending to processing and loads
// the job record behind it. A missing or corrupt record is dropped from the
// processing list so it cannot wedge the queue.
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	jobID, err := q.client.BRPopLPush(ctx, jobPendingKey, jobProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	data, err := q.client.Get(ctx, jobDataPrefix+jobID).Result()
	if err != nil {
		q.client.LRem(ctx, jobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("job data not found for id %s", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		q.client.LRem(ctx, jobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}
	return &job, nil
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.saveJob(ctx, job)

	var err error
	switch job.Type {
	case JobTypeSendActivationMail:
		err = q.processActivationMailJob(job)
	case JobTypeSendPasswordResetMail:
		err = q.processPasswordResetMailJob(job)
	case JobTypeSendInterviewInvite:
		err = q.processInterviewInviteJob(job)
	case JobTypeArchiveTranscript:
		err = q.processArchiveTranscriptJob(ctx, job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err == nil {
		log.Infof("[JobQueue] Job %s completed", job.ID)
		job.MarkAsCompleted()
		q.bumpStats(ctx, JobStatusCompleted, 1)
		// Completed jobs carry no value anymore, drop the record.
		if delErr := q.client.Del(ctx, jobDataPrefix+job.ID).Err(); delErr != nil {
			log.Errorf("[JobQueue] Failed to delete completed job %s: %v", job.ID, delErr)
		}
		q.client.LRem(ctx, jobProcessingKey, 1, job.ID)
		return
	}

	log.Errorf("[JobQueue] Job %s failed: %v", job.ID, err)
	job.MarkAsFailed(err.Error())

	if job.IsRetryable() {
		log.Infof("[JobQueue] Retrying job %s (attempt %d/%d)", job.ID, job.RetryCount, job.MaxRetries)
		job.MarkAsRetrying()
		// Linear backoff, one extra minute per attempt.
		time.AfterFunc(time.Minute*time.Duration(job.RetryCount), func() {
			q.client.LPush(ctx, jobPendingKey, job.ID)
		})
	} else {
		log.Errorf("[JobQueue] Job %s permanently failed after %d retries", job.ID, job.RetryCount)
		q.bumpStats(ctx, JobStatusFailed, 1)
	}

	q.saveJob(ctx, job)
	q.client.LRem(ctx, jobProcessingKey, 1, job.ID)
}

// recoveryLoop requeues jobs whose worker died while they sat on the
// processing list.
func (q *Queue) recoveryLoop(interval time.Duration) {
	defer q.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			q.recoverStuckJobs(ctx)
		}
	}
}

func (q *Queue) recoverStuckJobs(ctx context.Context) {
	ids, err := q.client.LRange(ctx, jobProcessingKey, 0, -1).Result()
	if err != nil {
		log.Errorf("[JobQueue] Recovery scan failed: %v", err)
		return
	}

	now := time.Now()
	for _, id := range ids {
		job, err := q.GetJob(ctx, id)
		if err != nil {
			// Record expired or is unreadable, drop the stray entry.
			if err != redis.Nil {
				log.Errorf("[JobQueue] Recovery read failed for %s: %v", id, err)
			}
			q.client.LRem(ctx, jobProcessingKey, 1, id)
			continue
		}
		if job.Status != JobStatusProcessing {
			q.client.LRem(ctx, jobProcessingKey, 1, id)
			continue
		}

		started := job.ProcessedAt
		if started == nil || started.IsZero() {
			fallback := job.UpdatedAt
			if fallback.IsZero() {
				fallback = job.CreatedAt
			}
			started = &fallback
		}
		if now.Sub(*started) <= stuckJobAge {
			continue
		}

		log.Warnf("[JobQueue] Requeuing stuck job %s (type=%s, age=%s)", job.ID, job.Type, now.Sub(*started))
		job.Status = JobStatusPending
		job.ErrorMsg = "requeued after worker loss"
		job.UpdatedAt = now
		q.saveJob(ctx, job)
		q.client.LRem(ctx, jobProcessingKey, 1, id)
		q.client.RPush(ctx, jobPendingKey, id)
	}
}

func (q *Queue) saveJob(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, jobDataPrefix+job.ID, data, jobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to save job %s: %v", job.ID, err)
	}
}

func (q *Queue) bumpStats(ctx context.Context, status JobStatus, delta int64) {
	if err := q.client.HIncrBy(ctx, jobStatsKey, string(status), delta).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to update job stats: %v", err)
	}
}

// GetJob loads a job record by id.
func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	data, err := q.client.Get(ctx, jobDataPrefix+jobID).Result()
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// GetJobStats returns per-status counters kept alongside the queue.
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	raw, err := q.client.HGetAll(ctx, jobStatsKey).Result()
	if err != nil {
		return nil, err
	}

	stats := make(map[JobStatus]int64, len(raw))
	for status, count := range raw {
		if n, err := json.Number(count).Int64(); err == nil {
			stats[JobStatus(status)] = n
		}
	}
	return stats, nil
}

// GetQueueSize returns the number of pending jobs.
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, jobPendingKey).Result()
}

// GetProcessingSize returns the number of in-flight jobs.
func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, jobProcessingKey).Result()
}
