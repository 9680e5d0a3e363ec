package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"coursegen-backend/internal/models"
)

// Stage names the cascade step that produced a parse.
type Stage string

const (
	StageDirect    Stage = "direct"
	StageRepaired  Stage = "repaired"
	StageExtracted Stage = "extracted"
	StageFallback  Stage = "fallback"
)

const (
	fallbackError        = "Original content parsing failed"
	originalContentLimit = 500
)

var errNoJSON = errors.New("no JSON value found")

// Normalized is the outcome of ParseOrFallback.
type Normalized struct {
	Content models.Content
	Stage   Stage
	// Reason is set when Stage is StageFallback.
	Reason string
}

// ParseOrFallback coerces raw model output into content of the requested
// kind. It never fails: when nothing usable can be recovered it returns the
// fallback course.
func ParseOrFallback(raw string, kind models.OutputKind) Normalized {
	data, stage, err := parseCascade(raw)
	if err != nil {
		return fallback(raw, err.Error())
	}
	content, err := decodeForKind(data, kind)
	if err != nil {
		return fallback(raw, err.Error())
	}
	return Normalized{Content: content, Stage: stage}
}

// parseCascade runs stages 1 to 4 and returns the first text that parses as
// JSON together with the stage that produced it.
func parseCascade(raw string) ([]byte, Stage, error) {
	cleaned := cleanResponse(raw)

	if cleaned != "" && json.Valid([]byte(cleaned)) {
		return []byte(cleaned), StageDirect, nil
	}

	repaired := applyRepairs(cleaned)
	if repaired != "" && json.Valid([]byte(repaired)) {
		return []byte(repaired), StageRepaired, nil
	}

	if extracted := extractJSONValue(cleaned); extracted != "" {
		if json.Valid([]byte(extracted)) {
			return []byte(extracted), StageExtracted, nil
		}
		if fixed := applyRepairs(extracted); json.Valid([]byte(fixed)) {
			return []byte(fixed), StageExtracted, nil
		}
	}

	return nil, StageFallback, errNoJSON
}

// cleanResponse removes markdown fences and anything before the first
// opening brace/bracket or after the last closing one.
func cleanResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

// extractJSONValue prefers an object span over an array span, which recovers
// objects preceded by bracketed prose such as "[note] {...}".
func extractJSONValue(s string) string {
	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start >= 0 && end > start {
		return s[start : end+1]
	}
	if start, end := strings.IndexByte(s, '['), strings.LastIndexByte(s, ']'); start >= 0 && end > start {
		return s[start : end+1]
	}
	return ""
}

// decodeForKind maps parsed JSON onto the variant for kind and checks the
// fields that kind cannot do without.
func decodeForKind(data []byte, kind models.OutputKind) (models.Content, error) {
	if !kind.Valid() {
		return nil, ErrUnknownOutputKind
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		wrapped, err := wrapArray(data, kind)
		if err != nil {
			return nil, err
		}
		data = wrapped
	}

	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.New("response is not a JSON object")
	}
	if head.Type != nil {
		declared, ok := models.ParseOutputKind(*head.Type)
		if !ok || declared != kind {
			return nil, errors.New("response type " + *head.Type + " does not match requested " + string(kind))
		}
	}

	content, err := models.DecodeContent(kind, data)
	if err != nil {
		return nil, err
	}
	if missing := missingField(content); missing != "" {
		return nil, errors.New("response is missing " + missing)
	}
	return content, nil
}

func wrapArray(data []byte, kind models.OutputKind) ([]byte, error) {
	var field string
	switch kind {
	case models.KindSlides:
		field = "slides"
	case models.KindCourse:
		field = "modules"
	default:
		return nil, errors.New("response is a list, expected an object")
	}
	return json.Marshal(map[string]json.RawMessage{field: data})
}

// missingField names the first required field absent from c, or "".
func missingField(c models.Content) string {
	switch v := c.(type) {
	case *models.SlideDeck:
		if len(v.Slides) == 0 {
			return "slides"
		}
	case *models.Summary:
		if strings.TrimSpace(string(v.Text)) == "" {
			return "summary"
		}
	case *models.Document:
		if strings.TrimSpace(string(v.Body)) == "" {
			return "content"
		}
	case *models.Course:
		if len(v.Modules) == 0 {
			return "modules"
		}
	}
	return ""
}

// FallbackContent is the placeholder course produced when a response cannot
// be recovered.
func FallbackContent(raw string) *models.Course {
	return &models.Course{
		Overview: "Course content could not be generated automatically.",
		Modules: []models.Module{{
			Title:      "Introduction",
			ImageBrief: "Educational visual for introduction",
			Lessons: []models.Lesson{{
				Title:   "Basic concepts and overview",
				Content: "Generation failed for this course. Try generating it again.",
			}},
		}},
		CoverImageBrief: "Professional course cover image",
		Error:           fallbackError,
		OriginalContent: truncateRunes(raw, originalContentLimit),
	}
}

func fallback(raw, reason string) Normalized {
	return Normalized{Content: FallbackContent(raw), Stage: StageFallback, Reason: reason}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
