// Package export selects a rendering strategy for a stored course by its
// output type and implements the per-type export operations.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"coursegen-backend/internal/models"
)

var (
	// ErrContentUnavailable means the record lacks the fields its output
	// type needs. The View for such a record carries the raw content.
	ErrContentUnavailable = errors.New("course content unavailable")

	// ErrExportNotSupported means the output type has no such export.
	ErrExportNotSupported = errors.New("export not supported for this output type")
)

const (
	ExportKindNarration = "narration"
	ExportKindPrint     = "print"
	ExportKindPDF       = "pdf"
)

type Unavailable struct {
	Reason string          `json:"reason"`
	Raw    json.RawMessage `json:"raw"`
}

// View is what a viewer needs to draw one course.
type View struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Level       models.Level            `json:"level"`
	Duration    string                  `json:"duration"`
	ModuleCount int                     `json:"moduleCount"`
	Kind        models.OutputKind       `json:"outputType"`
	CreatedAt   time.Time               `json:"createdAt"`
	Images      models.ImageAssetMap    `json:"images"`
	Content     *models.ContentEnvelope `json:"content,omitempty"`
	Exports     []string                `json:"exports"`
	Unavailable *Unavailable            `json:"unavailable,omitempty"`
}

// Render dispatches on the record's output type. It never fails: records
// that cannot be shown come back with Unavailable set.
func Render(rec *models.CourseRecord) View {
	v := View{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Level:       rec.Level,
		Duration:    rec.Duration,
		ModuleCount: rec.ModuleCount,
		Kind:        rec.ContentKind(),
		CreatedAt:   rec.CreatedAt,
		Images:      rec.Images,
		Exports:     []string{},
	}
	if v.Images == nil {
		v.Images = models.ImageAssetMap{}
	}

	if _, err := checkContent(rec); err != nil {
		v.Unavailable = &Unavailable{Reason: err.Error(), Raw: rawContent(rec)}
		return v
	}

	v.Content = &rec.Content
	switch v.Kind {
	case models.KindSlides:
		v.Exports = []string{ExportKindNarration}
	case models.KindSummary:
		v.Exports = []string{ExportKindNarration, ExportKindPrint}
	case models.KindDocument, models.KindCourse:
		v.Exports = []string{ExportKindNarration, ExportKindPDF}
	}
	return v
}

// checkContent returns the record's content when it has every field its
// output type requires.
func checkContent(rec *models.CourseRecord) (models.Content, error) {
	content := rec.Content.Content
	kind := rec.ContentKind()

	var reason string
	switch kind {
	case models.KindSlides:
		deck, ok := content.(*models.SlideDeck)
		if !ok || len(deck.Slides) == 0 {
			reason = "presentation has no slides"
		}
	case models.KindSummary:
		s, ok := content.(*models.Summary)
		if !ok || strings.TrimSpace(string(s.Text)) == "" {
			reason = "summary text is missing"
		}
	case models.KindDocument:
		d, ok := content.(*models.Document)
		if !ok || strings.TrimSpace(string(d.Body)) == "" {
			reason = "document body is missing"
		}
	case models.KindCourse:
		c, ok := content.(*models.Course)
		if !ok || len(c.Modules) == 0 {
			reason = "course has no modules"
		}
	default:
		reason = "unknown output type " + string(kind)
	}

	if reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrContentUnavailable, reason)
	}
	return content, nil
}

func rawContent(rec *models.CourseRecord) json.RawMessage {
	data, err := json.Marshal(rec.Content)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
