package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursegen-backend/internal/models"
)

type fakeText struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeText) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

type fakeCreator struct {
	created []*models.CourseRecord
	err     error
}

func (f *fakeCreator) Create(ctx context.Context, rec *models.CourseRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = "course-1"
	f.created = append(f.created, rec)
	return nil
}

func newTestGenerator(text TextGenerator, store CourseCreator) *Generator {
	enricher, _ := newTestEnricher(nil, nil)
	return NewGenerator(text, enricher, store, zap.NewNop())
}

func summaryRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Title: "Intro to Python", Level: models.LevelBeginner, ModuleCount: 1,
		OutputKind: models.KindSummary, OwnerID: "user_1",
	}
}

func TestGenerator_Success(t *testing.T) {
	text := &fakeText{reply: "```json\n{\"type\":\"summary\",\"summary\":\"Python is...\"}\n```"}
	store := &fakeCreator{}
	var steps []int

	rec, err := newTestGenerator(text, store).Generate(context.Background(), summaryRequest(), func(step int, name string) {
		steps = append(steps, step)
	})

	require.NoError(t, err)
	assert.Equal(t, "course-1", rec.ID)
	assert.Len(t, store.created, 1)
	assert.Equal(t, &models.Summary{Text: "Python is..."}, rec.Content.Content)
	assert.Contains(t, rec.Images, "cover")
	assert.Equal(t, []int{StepPrompt, StepGenerate, StepImages, StepSave}, steps)
	assert.Contains(t, text.prompt, "Intro to Python")
}

func TestGenerator_MalformedReplyStillPersists(t *testing.T) {
	store := &fakeCreator{}

	rec, err := newTestGenerator(&fakeText{reply: "I cannot generate this."}, store).Generate(context.Background(), summaryRequest(), nil)

	require.NoError(t, err)
	assert.Len(t, store.created, 1)
	assert.True(t, models.IsFallback(rec.Content.Content))
	assert.Equal(t, models.KindSummary, rec.OutputKind)
}

func TestGenerator_ProviderFailurePersistsNothing(t *testing.T) {
	store := &fakeCreator{}

	_, err := newTestGenerator(&fakeText{err: errors.New("quota exceeded")}, store).Generate(context.Background(), summaryRequest(), nil)

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Empty(t, store.created)
}

func TestGenerator_PersistenceFailureSurfaces(t *testing.T) {
	store := &fakeCreator{err: errors.New("connection refused")}

	_, err := newTestGenerator(&fakeText{reply: `{"type":"summary","summary":"s"}`}, store).Generate(context.Background(), summaryRequest(), nil)

	assert.ErrorIs(t, err, ErrPersistence)
}
