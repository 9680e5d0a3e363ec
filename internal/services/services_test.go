package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursegen-backend/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestHuggingFaceImages_SendsPromptAndReturnsBytes(t *testing.T) {
	var got hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		assert.Equal(t, "image/*", r.Header.Get("Accept"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	defer srv.Close()

	hf, err := NewHuggingFaceImages(HuggingFaceConfig{Token: "hf-token", ModelURL: srv.URL})
	require.NoError(t, err)

	data, err := hf.GenerateImage(context.Background(), "a cover", 512, 384)
	require.NoError(t, err)

	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "a cover", got.Inputs)
	assert.Equal(t, hfParameters{Width: 512, Height: 384, NumInferenceSteps: 25, GuidanceScale: 8.5}, got.Parameters)
}

func TestHuggingFaceImages_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	hf, err := NewHuggingFaceImages(HuggingFaceConfig{Token: "t", ModelURL: srv.URL})
	require.NoError(t, err)

	_, err = hf.GenerateImage(context.Background(), "x", 512, 512)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestProviderConstructors_RequireCredentials(t *testing.T) {
	_, err := NewHuggingFaceImages(HuggingFaceConfig{})
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = NewOpenAIImages(OpenAIConfig{})
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = NewOpenAIText(OpenAIConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = NewGeminiText(context.Background(), GeminiConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestImageSizeFor(t *testing.T) {
	assert.Equal(t, openai.CreateImageSize256x256, imageSizeFor(200, 100))
	assert.Equal(t, openai.CreateImageSize512x512, imageSizeFor(512, 512))
	assert.Equal(t, openai.CreateImageSize1024x1024, imageSizeFor(768, 512))
}

type fakePublisher struct {
	channel string
	message string
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.message, _ = message.(string)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestNotifier_PublishesToOwnerChannel(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, zap.NewNop())

	n.Completed(context.Background(), "owner-1", "job-1", "course-9", models.KindSummary)

	assert.Equal(t, "user_updates:owner-1", pub.channel)
	assert.JSONEq(t,
		`{"type":"completed","payload":{"job_id":"job-1","result_id":"course-9","result_type":"summary"}}`,
		pub.message)
}

func TestNotifier_StatusAndFailure(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, zap.NewNop())

	n.Status(context.Background(), "o", "j", 2, "Generating course content")
	assert.JSONEq(t, `{"type":"status_update","payload":{"job_id":"j","step":2,"step_name":"Generating course content"}}`, pub.message)

	n.Failed(context.Background(), "o", "j", "GENERATION_FAILED", "boom")
	assert.JSONEq(t, `{"type":"error","payload":{"job_id":"j","error_code":"GENERATION_FAILED","error_message":"boom"}}`, pub.message)
}

func TestNotifier_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	n := NewNotifier(pub, zap.NewNop())

	assert.NotPanics(t, func() {
		n.Status(context.Background(), "o", "j", 1, "Building prompt")
	})
}
