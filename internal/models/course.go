package models

import (
	"strings"
	"time"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// GenerationRequest is the input of a single course generation.
type GenerationRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       Level      `json:"level"`
	Duration    string     `json:"duration"`
	ModuleCount int        `json:"moduleCount"`
	OutputKind  OutputKind `json:"outputType"`
	OwnerID     string     `json:"ownerId"`
}

// Validate returns field-level problems, or nil when the request is usable.
func (r GenerationRequest) Validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "Title is required"
	}
	if !r.Level.Valid() {
		fields["level"] = "Level must be Beginner, Intermediate or Advanced"
	}
	if r.ModuleCount < 1 {
		fields["moduleCount"] = "Module count must be at least 1"
	}
	if !r.OutputKind.Valid() {
		fields["outputType"] = "Output type must be one of ppt, summary, pdf, full-course"
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		fields["ownerId"] = "Owner is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

type ImageSource string

const (
	ImageGenerated   ImageSource = "generated"
	ImagePlaceholder ImageSource = "placeholder"
)

type ImageRef struct {
	URL    string      `json:"url"`
	Source ImageSource `json:"source"`
}

// ImageAssetMap maps asset keys ("cover", "module:<title>", "slide:<index>",
// "section:<name>", "lesson:<title>") to resolved images.
type ImageAssetMap map[string]ImageRef

// CourseRecord is the persisted result of one generation.
type CourseRecord struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Level       Level           `json:"level"`
	Duration    string          `json:"duration"`
	ModuleCount int             `json:"moduleCount"`
	OutputKind  OutputKind      `json:"outputType"`
	OwnerID     string          `json:"ownerId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Content     ContentEnvelope `json:"content"`
	Images      ImageAssetMap   `json:"images"`
}

// ContentKind resolves the kind a viewer should use: the requested kind when
// set, otherwise whatever the stored content declares.
func (c *CourseRecord) ContentKind() OutputKind {
	if c.OutputKind != "" {
		return c.OutputKind
	}
	if c.Content.Content != nil {
		return c.Content.Kind()
	}
	return ""
}

// CourseSummary is the metadata view of a record used by owner listings.
type CourseSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       Level      `json:"level"`
	Duration    string     `json:"duration"`
	ModuleCount int        `json:"moduleCount"`
	OutputKind  OutputKind `json:"outputType"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CourseUpdate holds the editable descriptive fields. Nil means unchanged.
type CourseUpdate struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Level       *Level      `json:"level"`
	Duration    *string     `json:"duration"`
	ModuleCount *int        `json:"moduleCount"`
	OutputKind  *OutputKind `json:"outputType"`
}
