package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type OutputKind string

const (
	KindSlides   OutputKind = "ppt"
	KindSummary  OutputKind = "summary"
	KindDocument OutputKind = "pdf"
	KindCourse   OutputKind = "full-course"
)

// OutputKinds lists every known discriminant in a stable order.
var OutputKinds = []OutputKind{KindSlides, KindSummary, KindDocument, KindCourse}

func (k OutputKind) Valid() bool {
	switch k {
	case KindSlides, KindSummary, KindDocument, KindCourse:
		return true
	}
	return false
}

// ParseOutputKind accepts the canonical discriminants plus the loose spellings
// models tend to emit ("Full Course", "full_course", "PPT").
func ParseOutputKind(s string) (OutputKind, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch norm {
	case "ppt", "slides", "presentation":
		return KindSlides, true
	case "summary":
		return KindSummary, true
	case "pdf", "document":
		return KindDocument, true
	case "full-course", "fullcourse", "course":
		return KindCourse, true
	}
	return "", false
}

// Content is the normalized, kind-specific body of a generated course.
type Content interface {
	Kind() OutputKind
}

type Slide struct {
	Title      string   `json:"title"`
	Body       FlexText `json:"content"`
	ImageBrief string   `json:"imageDescription,omitempty"`
}

type SlideDeck struct {
	Slides          []Slide `json:"slides"`
	CoverImageBrief string  `json:"coverImageDescription,omitempty"`
}

func (*SlideDeck) Kind() OutputKind { return KindSlides }

type Summary struct {
	Text            FlexText `json:"summary"`
	CoverImageBrief string   `json:"coverImageDescription,omitempty"`
}

func (*Summary) Kind() OutputKind { return KindSummary }

type SectionImageBrief struct {
	Section    string `json:"section"`
	ImageBrief string `json:"imageDescription"`
}

type Document struct {
	Body            FlexText            `json:"content"`
	SectionImages   []SectionImageBrief `json:"sectionImages,omitempty"`
	CoverImageBrief string              `json:"coverImageDescription,omitempty"`
}

func (*Document) Kind() OutputKind { return KindDocument }

type Lesson struct {
	Title      string     `json:"title"`
	Content    FlexText   `json:"content,omitempty"`
	Duration   FlexText   `json:"duration,omitempty"`
	Objectives StringList `json:"objectives,omitempty"`
	Examples   StringList `json:"examples,omitempty"`
	KeyPoints  StringList `json:"keyPoints,omitempty"`
	Exercises  StringList `json:"exercises,omitempty"`
}

// UnmarshalJSON accepts a bare string as a title-only lesson.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*l = Lesson{Title: title}
		return nil
	}
	type plain Lesson
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Lesson(p)
	return nil
}

type Module struct {
	Title       string     `json:"moduleTitle"`
	Description FlexText   `json:"moduleDescription,omitempty"`
	ImageBrief  string     `json:"imageDescription,omitempty"`
	Lessons     []Lesson   `json:"lessons"`
	Assessment  FlexText   `json:"assessment,omitempty"`
	Resources   StringList `json:"resources,omitempty"`
}

type Course struct {
	Overview            FlexText   `json:"courseOverview,omitempty"`
	LearningObjectives  StringList `json:"learningObjectives,omitempty"`
	Modules             []Module   `json:"modules"`
	StudyPlan           FlexText   `json:"studyPlan,omitempty"`
	AdditionalResources StringList `json:"additionalResources,omitempty"`
	CoverImageBrief     string     `json:"coverImageDescription"`
	Error               string     `json:"error,omitempty"`
	OriginalContent     string     `json:"originalContent,omitempty"`
}

func (*Course) Kind() OutputKind { return KindCourse }

// IsFallback reports whether the course was synthesized after a failed parse.
func (c *Course) IsFallback() bool { return c.Error != "" }

// IsFallback reports whether c is the synthesized placeholder course.
func IsFallback(c Content) bool {
	course, ok := c.(*Course)
	return ok && course.IsFallback()
}

// StringList decodes either a JSON array of strings or a single string.
// Non-string array members are kept as their compact JSON text.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] != '[' {
		var one FlexText
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = StringList{string(one)}
		return nil
	}
	var items []FlexText
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(StringList, 0, len(items))
	for _, it := range items {
		out = append(out, string(it))
	}
	*s = out
	return nil
}

// FlexText is free text that tolerates a structured value in its place.
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexText(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*f = FlexText(buf.String())
	return nil
}

// ContentEnvelope carries a Content through JSON with a "type" discriminant.
type ContentEnvelope struct {
	Content
}

func (e ContentEnvelope) MarshalJSON() ([]byte, error) {
	if e.Content == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(e.Content)
	if err != nil {
		return nil, err
	}
	kind, err := json.Marshal(e.Content.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(kind)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func (e *ContentEnvelope) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		e.Content = nil
		return nil
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	kind, ok := ParseOutputKind(head.Type)
	if !ok {
		return fmt.Errorf("unknown content type %q", head.Type)
	}
	c, err := DecodeContent(kind, data)
	if err != nil {
		return err
	}
	e.Content = c
	return nil
}

// NewContent returns an empty variant for kind.
func NewContent(kind OutputKind) (Content, error) {
	switch kind {
	case KindSlides:
		return &SlideDeck{}, nil
	case KindSummary:
		return &Summary{}, nil
	case KindDocument:
		return &Document{}, nil
	case KindCourse:
		return &Course{}, nil
	}
	return nil, fmt.Errorf("unknown content type %q", kind)
}

// DecodeContent decodes data into the variant selected by kind.
func DecodeContent(kind OutputKind, data []byte) (Content, error) {
	c, err := NewContent(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", kind, err)
	}
	return c, nil
}
