package models

import (
	"encoding/json"
	"time"
)

const (
	JobTypeCourseGeneration = "course-generation"

	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

type Job struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Type         string          `json:"type"`
	ResultID     string          `json:"result_id,omitempty"`
	ConfigJSON   json.RawMessage `json:"config"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID    string `json:"job_id"`
	Step     int    `json:"step"`
	StepName string `json:"step_name"`
}

type CompletedEvent struct {
	JobID      string     `json:"job_id"`
	ResultID   string     `json:"result_id"`
	ResultType OutputKind `json:"result_type"`
}

type ErrorEvent struct {
	JobID        string `json:"job_id"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
	Details   interface{}       `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
