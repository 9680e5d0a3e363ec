package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"coursegen-backend/internal/export"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/models"
	"coursegen-backend/internal/repository"
	"coursegen-backend/internal/services"
)

type courseRepository interface {
	GetByID(ctx context.Context, id string) (*models.CourseRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.CourseSummary, error)
	UpdateDetails(ctx context.Context, id string, upd models.CourseUpdate) (*models.CourseRecord, error)
	Delete(ctx context.Context, id string) error
}

type jobCreator interface {
	Create(ctx context.Context, j *models.Job) error
	UpdateStatus(ctx context.Context, id string, status string) error
}

// JobQueue hands a stored job to the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, job *models.Job) error
}

type CourseHandler struct {
	courses     courseRepository
	jobs        jobCreator
	queue       JobQueue
	maxAttempts int
	logger      *zap.Logger
}

func NewCourseHandler(courses courseRepository, jobs jobCreator, queue JobQueue, maxAttempts int, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		jobs:        jobs,
		queue:       queue,
		maxAttempts: maxAttempts,
		logger:      logger.With(zap.String("handler", "courses")),
	}
}

// Generate validates the request, records a job and queues it.
func (h *CourseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	req.OwnerID = middleware.GetUserID(r.Context())
	if kind, ok := models.ParseOutputKind(string(req.OutputKind)); ok {
		req.OutputKind = kind
	}
	req.Title = strings.TrimSpace(req.Title)

	if fields := req.Validate(); fields != nil {
		handleServiceError(w, r, &services.ValidationError{Fields: fields})
		return
	}

	configBytes, _ := json.Marshal(req)
	job := &models.Job{
		OwnerID:    req.OwnerID,
		Type:       models.JobTypeCourseGeneration,
		ConfigJSON: configBytes,
		MaxRetries: h.maxAttempts,
	}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		h.logger.Error("failed to create job", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	if h.queue == nil {
		h.markFailed(r.Context(), job.ID)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Generation queue is unavailable", r))
		return
	}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("failed to enqueue course-generation job", zap.String("job_id", job.ID), zap.Error(err))
		h.markFailed(r.Context(), job.ID)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue generation job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

// markFailed keeps a job that never reached the queue from sitting in
// pending forever.
func (h *CourseHandler) markFailed(ctx context.Context, jobID string) {
	if err := h.jobs.UpdateStatus(ctx, jobID, models.JobFailed); err != nil {
		h.logger.Warn("failed to mark unqueued job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListByOwner(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("failed to list courses", zap.Error(err))
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"total":   len(courses),
	})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Update edits descriptive fields only. Changing the output type is
// rejected because the stored content was generated for it.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var upd models.CourseUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if fields := validateUpdate(upd, rec); fields != nil {
		handleServiceError(w, r, &services.ValidationError{Fields: fields})
		return
	}

	updated, err := h.courses.UpdateDetails(r.Context(), rec.ID, upd)
	if err != nil {
		h.logger.Error("failed to update course", zap.String("course_id", rec.ID), zap.Error(err))
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func validateUpdate(upd models.CourseUpdate, rec *models.CourseRecord) map[string]string {
	fields := map[string]string{}
	if upd.OutputKind != nil {
		kind, ok := models.ParseOutputKind(string(*upd.OutputKind))
		if !ok || kind != rec.OutputKind {
			fields["outputType"] = "Output type cannot be changed"
		}
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		fields["title"] = "Title is required"
	}
	if upd.Level != nil && !upd.Level.Valid() {
		fields["level"] = "Level must be Beginner, Intermediate or Advanced"
	}
	if upd.ModuleCount != nil && *upd.ModuleCount < 1 {
		fields["moduleCount"] = "Module count must be at least 1"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if err := h.courses.Delete(r.Context(), rec.ID); err != nil {
		h.logger.Error("failed to delete course", zap.String("course_id", rec.ID), zap.Error(err))
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Course deleted"})
}

// View returns what a viewer needs, or an unavailable marker with the raw
// content when the record cannot be rendered for its type.
func (h *CourseHandler) View(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.Render(rec))
}

func (h *CourseHandler) Narration(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	text, err := export.Narration(rec)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func (h *CourseHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	data, err := export.ExportPDF(rec)
	if err != nil {
		if !isClientExportError(err) {
			h.logger.Error("failed to export pdf", zap.String("course_id", rec.ID), zap.Error(err))
		}
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, fileSlug(rec.Title)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *CourseHandler) ExportPrint(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	page, err := export.PrintSummary(rec)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// loadOwned fetches the course named in the URL and checks that the caller
// owns it. It writes the error response itself.
func (h *CourseHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*models.CourseRecord, bool) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid course ID", r))
		return nil, false
	}

	rec, err := h.courses.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		handleServiceError(w, r, &services.NotFoundError{Message: "Course not found"})
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load course", zap.String("course_id", id), zap.Error(err))
		handleServiceError(w, r, err)
		return nil, false
	}
	if rec.OwnerID != middleware.GetUserID(r.Context()) {
		handleServiceError(w, r, &services.ForbiddenError{Message: "Access denied"})
		return nil, false
	}
	return rec, true
}

func isClientExportError(err error) bool {
	return errors.Is(err, export.ErrContentUnavailable) || errors.Is(err, export.ErrExportNotSupported)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func fileSlug(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return "course"
	}
	return slug
}
