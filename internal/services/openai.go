package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"coursegen-backend/internal/metrics"
)

const (
	providerOpenAI      = "openai"
	providerOpenAIImage = "openai_image"
)

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible gateways
}

func newOpenAIClient(cfg OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredential)
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config), nil
}

// OpenAIText generates course JSON through the chat completions API.
type OpenAIText struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIText(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIText, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return &OpenAIText{
		client: client,
		model:  cfg.Model,
		logger: logger.With(zap.String("provider", providerOpenAI), zap.String("model", cfg.Model)),
	}, nil
}

func (s *OpenAIText) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert instructional designer. Reply with a single JSON object only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
		TopP:        0.95,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	metrics.ProviderDuration.WithLabelValues(providerOpenAI).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerOpenAI, "error").Inc()
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.ProviderRequests.WithLabelValues(providerOpenAI, "empty").Inc()
		return "", errEmptyResponse
	}
	if reason := resp.Choices[0].FinishReason; reason != openai.FinishReasonStop {
		s.logger.Warn("openai completion did not stop cleanly", zap.String("finish_reason", string(reason)))
	}

	metrics.ProviderRequests.WithLabelValues(providerOpenAI, "ok").Inc()
	return resp.Choices[0].Message.Content, nil
}

// OpenAIImages renders images with the image generation endpoint and
// returns the decoded bytes.
type OpenAIImages struct {
	client *openai.Client
	model  string
}

func NewOpenAIImages(cfg OpenAIConfig) (*OpenAIImages, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAIImages{client: client, model: openai.CreateImageModelDallE2}, nil
}

func (s *OpenAIImages) GenerateImage(ctx context.Context, prompt string, width, height int) ([]byte, error) {
	start := time.Now()
	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          s.model,
		N:              1,
		Size:           imageSizeFor(width, height),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	metrics.ProviderDuration.WithLabelValues(providerOpenAIImage).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerOpenAIImage, "error").Inc()
		return nil, fmt.Errorf("OpenAI image error: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		metrics.ProviderRequests.WithLabelValues(providerOpenAIImage, "empty").Inc()
		return nil, errEmptyResponse
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerOpenAIImage, "error").Inc()
		return nil, fmt.Errorf("decode image: %w", err)
	}
	metrics.ProviderRequests.WithLabelValues(providerOpenAIImage, "ok").Inc()
	return data, nil
}

// imageSizeFor picks the smallest square size the endpoint supports that
// covers the requested dimensions.
func imageSizeFor(width, height int) string {
	side := width
	if height > side {
		side = height
	}
	switch {
	case side <= 256:
		return openai.CreateImageSize256x256
	case side <= 512:
		return openai.CreateImageSize512x512
	default:
		return openai.CreateImageSize1024x1024
	}
}
