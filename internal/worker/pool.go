package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursegen-backend/internal/metrics"
	"coursegen-backend/internal/models"
	"coursegen-backend/internal/pipeline"
)

const (
	QueueName = "queue:course-generation"

	popTimeout = 30 * time.Second
	lockTTL    = 10 * time.Minute
)

var errBadConfig = errors.New("invalid job config")

// Queue pushes generation jobs onto the redis list the pool reads from.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

func (q *Queue) Enqueue(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return q.redis.LPush(ctx, QueueName, string(data)).Err()
}

type courseGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest, progress pipeline.Progress) (*models.CourseRecord, error)
}

type jobStore interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	UpdateError(ctx context.Context, id string, errMsg string, retryCount int) error
	Complete(ctx context.Context, id, resultID string) error
}

type notifier interface {
	Status(ctx context.Context, ownerID, jobID string, step int, name string)
	Completed(ctx context.Context, ownerID, jobID, resultID string, kind models.OutputKind)
	Failed(ctx context.Context, ownerID, jobID, code, message string)
}

type Pool struct {
	redis       *redis.Client
	generator   courseGenerator
	jobs        jobStore
	notifier    notifier
	workerCount int
	logger      *zap.Logger
	requeue     func(job *models.Job, delay time.Duration)
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	generator courseGenerator,
	jobs jobStore,
	notifier notifier,
	workerCount int,
	logger *zap.Logger,
) *Pool {
	p := &Pool{
		redis:       redisClient,
		generator:   generator,
		jobs:        jobs,
		notifier:    notifier,
		workerCount: workerCount,
		logger:      logger.With(zap.String("component", "worker_pool")),
		stopChan:    make(chan struct{}),
	}
	p.requeue = p.pushAfter
	return p
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("started worker goroutines", zap.Int("count", p.workerCount))
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.With(zap.Int("worker", id))

	for {
		select {
		case <-p.stopChan:
			log.Info("worker shutting down")
			return
		default:
		}

		// Generations run to completion once started, so they do not
		// inherit a cancellable context.
		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, popTimeout, QueueName).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warn("queue pop failed", zap.Error(err))
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error("failed to parse job", zap.Error(err))
			continue
		}

		lockKey := "job_lock:" + job.ID
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			continue
		}

		log.Info("processing job", zap.String("job_id", job.ID), zap.String("type", job.Type))
		p.process(ctx, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// process runs one job through the generator. Jobs that are no longer
// pending, for example cancelled ones, are dropped.
func (p *Pool) process(ctx context.Context, job *models.Job) {
	current, err := p.jobs.GetByID(ctx, job.ID)
	if err != nil {
		p.logger.Error("failed to load job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	if current.Status != models.JobPending {
		p.logger.Info("skipping job", zap.String("job_id", job.ID), zap.String("status", current.Status))
		metrics.Jobs.WithLabelValues("skipped").Inc()
		return
	}

	if err := p.jobs.UpdateStatus(ctx, job.ID, models.JobProcessing); err != nil {
		p.logger.Warn("failed to mark job processing", zap.String("job_id", job.ID), zap.Error(err))
	}

	var req models.GenerationRequest
	if err := json.Unmarshal(job.ConfigJSON, &req); err != nil {
		p.handleFailure(ctx, job, fmt.Errorf("%w: %v", errBadConfig, err))
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = job.OwnerID
	}

	rec, err := p.generator.Generate(ctx, req, func(step int, name string) {
		p.notifier.Status(ctx, job.OwnerID, job.ID, step, name)
	})
	if err != nil {
		p.handleFailure(ctx, job, err)
		return
	}
	p.handleSuccess(ctx, job, rec)
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, rec *models.CourseRecord) {
	if err := p.jobs.Complete(ctx, job.ID, rec.ID); err != nil {
		p.logger.Error("failed to mark job completed", zap.String("job_id", job.ID), zap.Error(err))
	}
	p.notifier.Completed(ctx, job.OwnerID, job.ID, rec.ID, rec.OutputKind)
	metrics.Jobs.WithLabelValues("completed").Inc()

	p.logger.Info("job completed", zap.String("job_id", job.ID), zap.String("course_id", rec.ID))
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if retryable(err) && job.RetryCount < job.MaxRetries {
		p.logger.Warn("job failed, retrying",
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.RetryCount),
			zap.Error(err),
		)
		p.jobs.UpdateStatus(ctx, job.ID, models.JobPending)
		p.jobs.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
		metrics.Jobs.WithLabelValues("retried").Inc()

		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		p.requeue(job, backoff)
		return
	}

	p.logger.Error("job failed permanently", zap.String("job_id", job.ID), zap.Error(err))
	p.jobs.UpdateStatus(ctx, job.ID, models.JobFailed)
	p.jobs.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
	metrics.Jobs.WithLabelValues("failed").Inc()

	p.notifier.Failed(ctx, job.OwnerID, job.ID, errorCode(err), errMsg)
}

func (p *Pool) pushAfter(job *models.Job, delay time.Duration) {
	data, err := json.Marshal(job)
	if err != nil {
		p.logger.Error("failed to encode job for retry", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	time.AfterFunc(delay, func() {
		if err := p.redis.LPush(context.Background(), QueueName, string(data)).Err(); err != nil {
			p.logger.Error("failed to requeue job", zap.String("job_id", job.ID), zap.Error(err))
		}
	})
}

func retryable(err error) bool {
	return !errors.Is(err, pipeline.ErrPersistence) && !errors.Is(err, errBadConfig)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrGenerationFailed):
		return "GENERATION_FAILED"
	case errors.Is(err, pipeline.ErrPersistence):
		return "PERSISTENCE_FAILED"
	default:
		return "JOB_FAILED"
	}
}
