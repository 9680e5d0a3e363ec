package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coursegen-backend/internal/metrics"
	"coursegen-backend/internal/models"
)

// TextGenerator sends a prompt to a generative text provider.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// CourseCreator persists a new record and assigns its ID.
type CourseCreator interface {
	Create(ctx context.Context, rec *models.CourseRecord) error
}

// Progress receives step notifications while a generation runs.
type Progress func(step int, name string)

const (
	StepPrompt = iota + 1
	StepGenerate
	StepImages
	StepSave
)

// Generator runs the whole pipeline for one request, strictly in sequence.
type Generator struct {
	text     TextGenerator
	enricher *Enricher
	store    CourseCreator
	logger   *zap.Logger
	now      func() time.Time
}

func NewGenerator(text TextGenerator, enricher *Enricher, store CourseCreator, logger *zap.Logger) *Generator {
	return &Generator{
		text:     text,
		enricher: enricher,
		store:    store,
		logger:   logger.With(zap.String("component", "generator")),
		now:      time.Now,
	}
}

// Generate builds the prompt, calls the text provider, normalizes the reply,
// resolves images and persists exactly one record.
//
// A provider error returns ErrGenerationFailed and persists nothing. A store
// error returns ErrPersistence. Malformed replies and image failures never
// produce an error.
func (g *Generator) Generate(ctx context.Context, req models.GenerationRequest, progress Progress) (*models.CourseRecord, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	start := g.now()
	log := g.logger.With(zap.String("owner_id", req.OwnerID), zap.String("kind", string(req.OutputKind)))

	progress(StepPrompt, "Building prompt")
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	progress(StepGenerate, "Generating course content")
	raw, err := g.text.GenerateText(ctx, prompt)
	if err != nil {
		metrics.Generations.WithLabelValues(string(req.OutputKind), "provider_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	normalized := ParseOrFallback(raw, req.OutputKind)
	metrics.NormalizeStages.WithLabelValues(string(normalized.Stage)).Inc()
	if normalized.Stage == StageFallback {
		log.Warn("model response unusable, using fallback content",
			zap.String("reason", normalized.Reason),
			zap.Int("response_length", len(raw)),
		)
	}

	progress(StepImages, "Generating images")
	images := g.enricher.Enrich(ctx, normalized.Content, req.Title, req.OutputKind)

	rec, err := Assemble(req, normalized.Content, images, g.now())
	if err != nil {
		return nil, err
	}

	progress(StepSave, "Saving course")
	if err := g.store.Create(ctx, rec); err != nil {
		metrics.Generations.WithLabelValues(string(req.OutputKind), "persistence_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	outcome := "success"
	if normalized.Stage == StageFallback {
		outcome = "fallback"
	}
	metrics.Generations.WithLabelValues(string(req.OutputKind), outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(string(req.OutputKind)).Observe(g.now().Sub(start).Seconds())

	log.Info("course generated",
		zap.String("course_id", rec.ID),
		zap.String("stage", string(normalized.Stage)),
		zap.Int("images", len(images)),
	)
	return rec, nil
}
