package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"coursegen-backend/internal/metrics"
)

const providerGemini = "gemini"

type GeminiConfig struct {
	APIKey         string
	Model          string
	ConcurrentReqs int
}

// GeminiText generates course JSON with a Gemini model. Concurrent calls
// are bounded by a token channel shared by all workers.
type GeminiText struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	logger   *zap.Logger
	rateChan chan struct{} // Token bucket
}

func NewGeminiText(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiText, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "application/json"

	if cfg.ConcurrentReqs <= 0 {
		cfg.ConcurrentReqs = 1
	}
	rateChan := make(chan struct{}, cfg.ConcurrentReqs)
	for i := 0; i < cfg.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiText{
		client:   client,
		model:    model,
		logger:   logger.With(zap.String("provider", providerGemini), zap.String("model", cfg.Model)),
		rateChan: rateChan,
	}, nil
}

func (s *GeminiText) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiText) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiText) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateText makes one model call and returns the concatenated text parts.
func (s *GeminiText) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	start := time.Now()
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	metrics.ProviderDuration.WithLabelValues(providerGemini).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerGemini, "error").Inc()
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			s.logger.Warn("gemini candidate did not stop cleanly",
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		metrics.ProviderRequests.WithLabelValues(providerGemini, "empty").Inc()
		return "", errEmptyResponse
	}
	metrics.ProviderRequests.WithLabelValues(providerGemini, "ok").Inc()
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
