package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"coursegen-backend/internal/metrics"
)

const providerHuggingFace = "huggingface"

// maxImageBytes bounds a single inference response.
const maxImageBytes = 10 << 20

type HuggingFaceConfig struct {
	Token    string
	ModelURL string
	Timeout  time.Duration
}

// HuggingFaceImages calls a text-to-image model on the Inference API.
type HuggingFaceImages struct {
	token    string
	modelURL string
	http     *http.Client
}

func NewHuggingFaceImages(cfg HuggingFaceConfig) (*HuggingFaceImages, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("huggingface: %w", ErrMissingCredential)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &HuggingFaceImages{
		token:    cfg.Token,
		modelURL: cfg.ModelURL,
		http:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

func (s *HuggingFaceImages) GenerateImage(ctx context.Context, prompt string, width, height int) ([]byte, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			Width:             width,
			Height:            height,
			NumInferenceSteps: 25,
			GuidanceScale:     8.5,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.modelURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := s.http.Do(req)
	metrics.ProviderDuration.WithLabelValues(providerHuggingFace).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerHuggingFace, "error").Inc()
		return nil, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerHuggingFace, "error").Inc()
		return nil, fmt.Errorf("read huggingface response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues(providerHuggingFace, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil, fmt.Errorf("huggingface returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	metrics.ProviderRequests.WithLabelValues(providerHuggingFace, "ok").Inc()
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
