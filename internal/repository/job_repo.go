package repository

import (
	"context"
	"time"

	"coursegen-backend/internal/models"
)

type JobRepo struct {
	store DocumentStore
	now   func() time.Time
}

func NewJobRepo(store DocumentStore) *JobRepo {
	return &JobRepo{store: store, now: time.Now}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	j.Status = models.JobPending
	j.RetryCount = 0
	if j.MaxRetries <= 0 {
		j.MaxRetries = 1
	}
	j.CreatedAt = r.now().UTC()

	data, err := toData(j)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Create(ctx, CollectionJobs, data)
	if err != nil {
		return err
	}
	j.ID = id
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	data, err := r.store.Get(ctx, CollectionJobs, id)
	if err != nil {
		return nil, err
	}
	j := &models.Job{}
	if err := fromData(data, j); err != nil {
		return nil, err
	}
	j.ID = id
	return j, nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	fields := map[string]any{"status": status}
	if status == models.JobCompleted || status == models.JobFailed {
		fields["completed_at"] = r.now().UTC().Format(time.RFC3339Nano)
	}
	return r.store.Update(ctx, CollectionJobs, id, fields)
}

func (r *JobRepo) UpdateError(ctx context.Context, id string, errMsg string, retryCount int) error {
	return r.store.Update(ctx, CollectionJobs, id, map[string]any{
		"error_message": errMsg,
		"retry_count":   retryCount,
	})
}

// Complete marks the job completed and records the course it produced.
func (r *JobRepo) Complete(ctx context.Context, id, resultID string) error {
	return r.store.Update(ctx, CollectionJobs, id, map[string]any{
		"status":       models.JobCompleted,
		"result_id":    resultID,
		"completed_at": r.now().UTC().Format(time.RFC3339Nano),
	})
}
