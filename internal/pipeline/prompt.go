package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"coursegen-backend/internal/models"
)

// Schema templates, one per output kind. Field names here are the wire names
// the normalizer decodes.
const (
	slidesSchema = `{
  "type": "ppt",
  "coverImageDescription": %s,
  "slides": [
    {
      "title": "Slide title",
      "content": "Slide body text",
      "imageDescription": "Short description of an illustration for this slide"
    }
  ]
}`

	summarySchema = `{
  "type": "summary",
  "coverImageDescription": %s,
  "summary": "A 200-300 word summary of the course"
}`

	documentSchema = `{
  "type": "pdf",
  "coverImageDescription": %s,
  "content": "Long-form course text. Start each section with a numbered heading like '1. Topic' or a label like 'Overview:'",
  "sectionImages": [
    {
      "section": "Section name",
      "imageDescription": "Short description of an illustration for this section"
    }
  ]
}`

	courseSchema = `{
  "type": "full-course",
  "coverImageDescription": %s,
  "courseOverview": "Overview of the whole course",
  "learningObjectives": ["Objective"],
  "modules": [
    {
      "moduleTitle": "Module title",
      "moduleDescription": "What this module covers",
      "imageDescription": "Short description of an illustration for this module",
      "lessons": [
        {
          "title": "Lesson title",
          "content": "Lesson body text",
          "duration": "30 minutes",
          "objectives": ["Objective"],
          "examples": ["Example"],
          "keyPoints": ["Key point"],
          "exercises": ["Exercise"]
        }
      ],
      "assessment": "How learners are assessed for this module",
      "resources": ["Resource"]
    }
  ],
  "studyPlan": "Suggested schedule for working through the course",
  "additionalResources": ["Resource"]
}`
)

const formattingRules = `CRITICAL FORMATTING RULES:
- Respond with ONLY a single JSON object.
- Use double quotes for every key and every string value.
- No trailing commas.
- No comments.
- No markdown code fences and no text before or after the JSON.`

// BuildPrompt renders the generation prompt for req. It fails only for an
// output kind it has no template for.
func BuildPrompt(req models.GenerationRequest) (string, error) {
	var schema, task string
	switch req.OutputKind {
	case models.KindSlides:
		schema, task = slidesSchema, "a slide presentation"
	case models.KindSummary:
		schema, task = summarySchema, "a 200-300 word summary"
	case models.KindDocument:
		schema, task = documentSchema, "a long-form PDF document"
	case models.KindCourse:
		schema, task = courseSchema, fmt.Sprintf("a full course with %d modules", req.ModuleCount)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutputKind, req.OutputKind)
	}

	cover, _ := json.Marshal(fmt.Sprintf("Professional course cover image for %s", req.Title))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a detailed course %s for the following course.\n\n", task)

	sb.WriteString("COURSE DETAILS:\n")
	fmt.Fprintf(&sb, "Title: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", req.Description)
	}
	fmt.Fprintf(&sb, "Level: %s\n", req.Level)
	if req.Duration != "" {
		fmt.Fprintf(&sb, "Duration: %s\n", req.Duration)
	}
	fmt.Fprintf(&sb, "Modules: %d\n\n", req.ModuleCount)

	sb.WriteString("OUTPUT SCHEMA (follow these field names and nesting exactly):\n")
	fmt.Fprintf(&sb, schema, cover)
	sb.WriteString("\n\n")
	sb.WriteString(formattingRules)
	sb.WriteString("\n")

	return sb.String(), nil
}
