package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegen-backend/internal/models"
)

func sampleContent() map[models.OutputKind]models.Content {
	return map[models.OutputKind]models.Content{
		models.KindSlides: &models.SlideDeck{
			Slides: []models.Slide{
				{Title: "Intro", Body: "Welcome to the course", ImageBrief: "A bright classroom"},
				{Title: "Variables", Body: "x = 1"},
			},
			CoverImageBrief: "Laptop with code",
		},
		models.KindSummary: &models.Summary{
			Text:            "Python is a general purpose language.",
			CoverImageBrief: "Python logo",
		},
		models.KindDocument: &models.Document{
			Body: "1. Basics\nSyntax and types.\n\nTesting: write tests first.",
			SectionImages: []models.SectionImageBrief{
				{Section: "Basics", ImageBrief: "A syntax tree"},
			},
			CoverImageBrief: "Open book",
		},
		models.KindCourse: &models.Course{
			Overview:           "A practical course.",
			LearningObjectives: models.StringList{"Write scripts", "Read files"},
			Modules: []models.Module{{
				Title:       "Getting Started",
				Description: "Install and run Python.",
				ImageBrief:  "Terminal window",
				Lessons: []models.Lesson{{
					Title:      "Installing",
					Content:    "Download the installer.",
					Duration:   "15 minutes",
					Objectives: models.StringList{"Install Python"},
					Examples:   models.StringList{"python --version"},
					KeyPoints:  models.StringList{"Use a virtualenv"},
					Exercises:  models.StringList{"Run hello world"},
				}},
				Assessment: "Short quiz",
				Resources:  models.StringList{"python.org"},
			}},
			StudyPlan:           "One module per week.",
			AdditionalResources: models.StringList{"Real Python"},
			CoverImageBrief:     "Python course cover",
		},
	}
}

func TestParseOrFallback_ValidJSONRoundTrips(t *testing.T) {
	for kind, content := range sampleContent() {
		t.Run(string(kind), func(t *testing.T) {
			data, err := json.Marshal(models.ContentEnvelope{Content: content})
			require.NoError(t, err)

			got := ParseOrFallback(string(data), kind)

			assert.Equal(t, StageDirect, got.Stage)
			assert.Equal(t, kind, got.Content.Kind())
			assert.Equal(t, content, got.Content)
		})
	}
}

func TestParseOrFallback_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"I cannot generate this.",
		"{",
		"}{",
		"[[[",
		"```",
		"```json\n```",
		"{'a':",
		"null",
		"123",
		`"just a string"`,
		"[]",
		"{}",
		"{\"type\": 42}",
		"Here you go:\n```json\n{\"type\":\"ppt\",\"slides\":[]}\n```\nEnjoy!",
		"Курс по Python {\"type\": \"summary\"",
		strings.Repeat("{\"a\":", 200),
	}

	for _, kind := range models.OutputKinds {
		for _, in := range inputs {
			got := ParseOrFallback(in, kind)
			require.NotNil(t, got.Content, "input %q", in)
			assert.True(t, got.Content.Kind().Valid(), "input %q", in)
		}
	}
}

func TestParseOrFallback_FencedSummaryWithPreamble(t *testing.T) {
	raw := "Here's the summary:\n```json\n{\"type\":\"summary\",\"summary\":\"Python is...\"}\n```"

	got := ParseOrFallback(raw, models.KindSummary)

	assert.Equal(t, StageDirect, got.Stage)
	assert.Equal(t, &models.Summary{Text: "Python is..."}, got.Content)
}

func TestParseOrFallback_NoJSONReturnsFallback(t *testing.T) {
	got := ParseOrFallback("I cannot generate this.", models.KindSummary)

	assert.Equal(t, StageFallback, got.Stage)
	course, ok := got.Content.(*models.Course)
	require.True(t, ok)
	assert.Equal(t, models.KindCourse, course.Kind())
	assert.NotEmpty(t, course.Error)
	assert.Contains(t, course.OriginalContent, "I cannot generate this.")
	require.Len(t, course.Modules, 1)
	assert.Equal(t, "Introduction", course.Modules[0].Title)
	assert.Len(t, course.Modules[0].Lessons, 1)
}

func TestParseOrFallback_FallbackIsFixedPoint(t *testing.T) {
	first := ParseOrFallback("not json at all", models.KindCourse)
	require.Equal(t, StageFallback, first.Stage)

	data, err := json.Marshal(models.ContentEnvelope{Content: first.Content})
	require.NoError(t, err)

	second := ParseOrFallback(string(data), models.KindCourse)
	assert.Equal(t, first.Content, second.Content)

	// Requested as another kind, the fallback still comes back as a fallback.
	third := ParseOrFallback(string(data), models.KindSlides)
	course, ok := third.Content.(*models.Course)
	require.True(t, ok)
	assert.True(t, course.IsFallback())
	require.Len(t, course.Modules, 1)
	assert.Equal(t, "Introduction", course.Modules[0].Title)
}

func TestParseOrFallback_OriginalContentTruncated(t *testing.T) {
	raw := strings.Repeat("é", 800)

	got := ParseOrFallback(raw, models.KindCourse)

	course := got.Content.(*models.Course)
	assert.Equal(t, 500, len([]rune(course.OriginalContent)))
}

func TestParseOrFallback_Repairs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind models.OutputKind
		want models.Content
	}{
		{
			name: "bare keys and trailing comma",
			raw:  `{type: "summary", summary: "Python basics",}`,
			kind: models.KindSummary,
			want: &models.Summary{Text: "Python basics"},
		},
		{
			name: "single quotes with escaped apostrophe",
			raw:  `{'type': 'ppt', 'slides': [{'title': 'Intro', 'content': 'Don\'t panic'}]}`,
			kind: models.KindSlides,
			want: &models.SlideDeck{Slides: []models.Slide{{Title: "Intro", Body: "Don't panic"}}},
		},
		{
			name: "comments",
			raw:  "{\n  // generated\n  \"type\": \"summary\", /* inline */ \"summary\": \"Text\"\n}",
			kind: models.KindSummary,
			want: &models.Summary{Text: "Text"},
		},
		{
			name: "raw newline inside string",
			raw:  "{\"type\":\"summary\",\"summary\":\"Line one\nLine two\"}",
			kind: models.KindSummary,
			want: &models.Summary{Text: "Line one\nLine two"},
		},
		{
			name: "trailing comma followed by comment",
			raw:  "{\"type\":\"summary\",\"summary\":\"x\", // done\n}",
			kind: models.KindSummary,
			want: &models.Summary{Text: "x"},
		},
		{
			name: "apostrophe inside double quoted string survives",
			raw:  `{"type":"summary","summary":"It's fine",}`,
			kind: models.KindSummary,
			want: &models.Summary{Text: "It's fine"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseOrFallback(tc.raw, tc.kind)
			assert.Equal(t, StageRepaired, got.Stage, "reason: %s", got.Reason)
			assert.Equal(t, tc.want, got.Content)
		})
	}
}

func TestParseOrFallback_ExtractsObjectAfterBracketedProse(t *testing.T) {
	got := ParseOrFallback(`[note] {"type":"summary","summary":"S"}`, models.KindSummary)

	assert.Equal(t, StageExtracted, got.Stage)
	assert.Equal(t, &models.Summary{Text: "S"}, got.Content)
}

func TestParseOrFallback_KindMismatchFallsBack(t *testing.T) {
	got := ParseOrFallback(`{"type":"summary","summary":"S"}`, models.KindSlides)

	assert.Equal(t, StageFallback, got.Stage)
	assert.Contains(t, got.Reason, "does not match")
}

func TestParseOrFallback_MissingRequiredFieldFallsBack(t *testing.T) {
	tests := map[models.OutputKind]string{
		models.KindSlides:   `{"type":"ppt","slides":[]}`,
		models.KindSummary:  `{"type":"summary","summary":"  "}`,
		models.KindDocument: `{"type":"pdf","sectionImages":[]}`,
		models.KindCourse:   `{"type":"full-course","courseOverview":"x"}`,
	}
	for kind, raw := range tests {
		got := ParseOrFallback(raw, kind)
		assert.Equal(t, StageFallback, got.Stage, string(kind))
		assert.True(t, models.IsFallback(got.Content), string(kind))
	}
}

func TestParseOrFallback_LenientCourseShapes(t *testing.T) {
	raw := `{
		"type": "Full Course",
		"modules": [{"moduleTitle": "Basics", "lessons": ["Variables", {"title": "Loops", "content": "for x in y", "duration": 30}]}],
		"studyPlan": {"week1": "Basics"},
		"learningObjectives": "Understand loops",
		"coverImageDescription": "cover"
	}`

	got := ParseOrFallback(raw, models.KindCourse)

	require.Equal(t, StageDirect, got.Stage, got.Reason)
	course := got.Content.(*models.Course)
	require.Len(t, course.Modules, 1)
	assert.Equal(t, []models.Lesson{{Title: "Variables"}, {Title: "Loops", Content: "for x in y", Duration: "30"}}, course.Modules[0].Lessons)
	assert.Equal(t, models.FlexText(`{"week1":"Basics"}`), course.StudyPlan)
	assert.Equal(t, models.StringList{"Understand loops"}, course.LearningObjectives)
}

func TestParseOrFallback_StructuredTextLeaves(t *testing.T) {
	got := ParseOrFallback(`{"type":"ppt","slides":[{"title":"Intro","content":["a","b"]}]}`, models.KindSlides)

	require.Equal(t, StageDirect, got.Stage, got.Reason)
	assert.Equal(t, &models.SlideDeck{Slides: []models.Slide{{Title: "Intro", Body: `["a","b"]`}}}, got.Content)

	got = ParseOrFallback(`{"type":"summary","summary":{"intro":"Python is...","points":2}}`, models.KindSummary)

	require.Equal(t, StageDirect, got.Stage, got.Reason)
	assert.Equal(t, &models.Summary{Text: `{"intro":"Python is...","points":2}`}, got.Content)
}

func TestParseOrFallback_WrapsTopLevelArray(t *testing.T) {
	got := ParseOrFallback(`[{"title":"One","content":"Body"}]`, models.KindSlides)

	require.Equal(t, StageDirect, got.Stage)
	assert.Equal(t, &models.SlideDeck{Slides: []models.Slide{{Title: "One", Body: "Body"}}}, got.Content)
}

func TestParseOrFallback_MissingTypeUsesRequestedKind(t *testing.T) {
	got := ParseOrFallback(`{"summary":"No discriminant"}`, models.KindSummary)

	assert.Equal(t, StageDirect, got.Stage)
	assert.Equal(t, &models.Summary{Text: "No discriminant"}, got.Content)
}
