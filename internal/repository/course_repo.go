package repository

import (
	"context"
	"sort"
	"time"

	"coursegen-backend/internal/models"
)

// CourseRepo stores one document per generated course in the courses
// collection. Listings decode only the descriptive fields.
type CourseRepo struct {
	store DocumentStore
	now   func() time.Time
}

func NewCourseRepo(store DocumentStore) *CourseRepo {
	return &CourseRepo{store: store, now: time.Now}
}

// Create persists rec and sets rec.ID to the store-assigned ID.
func (r *CourseRepo) Create(ctx context.Context, rec *models.CourseRecord) error {
	data, err := toData(rec)
	if err != nil {
		return err
	}
	delete(data, "id")

	id, err := r.store.Create(ctx, CollectionCourses, data)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (r *CourseRepo) GetByID(ctx context.Context, id string) (*models.CourseRecord, error) {
	data, err := r.store.Get(ctx, CollectionCourses, id)
	if err != nil {
		return nil, err
	}
	rec := &models.CourseRecord{}
	if err := fromData(data, rec); err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

// ListByOwner returns the owner's courses newest first.
func (r *CourseRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.CourseSummary, error) {
	docs, err := r.store.Query(ctx, CollectionCourses, "ownerId", ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.CourseSummary, 0, len(docs))
	for _, doc := range docs {
		var s models.CourseSummary
		if err := fromData(doc.Data, &s); err != nil {
			return nil, err
		}
		s.ID = doc.ID
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateDetails writes the non-nil descriptive fields of upd and stamps
// updatedAt. The output type is never written here.
func (r *CourseRepo) UpdateDetails(ctx context.Context, id string, upd models.CourseUpdate) (*models.CourseRecord, error) {
	fields := map[string]any{
		"updatedAt": r.now().UTC().Format(time.RFC3339Nano),
	}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Level != nil {
		fields["level"] = string(*upd.Level)
	}
	if upd.Duration != nil {
		fields["duration"] = *upd.Duration
	}
	if upd.ModuleCount != nil {
		fields["moduleCount"] = *upd.ModuleCount
	}

	if err := r.store.Update(ctx, CollectionCourses, id, fields); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionCourses, id)
}
