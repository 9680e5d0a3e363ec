package pipeline

import (
	"time"

	"coursegen-backend/internal/models"
)

// Assemble merges the request, normalized content and images into the record
// handed to persistence. The record has no ID until the store assigns one.
func Assemble(req models.GenerationRequest, content models.Content, images models.ImageAssetMap, now time.Time) (*models.CourseRecord, error) {
	if content == nil || (content.Kind() != req.OutputKind && !models.IsFallback(content)) {
		return nil, ErrContentMismatch
	}
	if images == nil {
		return nil, ErrMissingImages
	}

	now = now.UTC()
	return &models.CourseRecord{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Duration:    req.Duration,
		ModuleCount: req.ModuleCount,
		OutputKind:  req.OutputKind,
		OwnerID:     req.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Content:     models.ContentEnvelope{Content: content},
		Images:      images,
	}, nil
}
