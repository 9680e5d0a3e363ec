package export

import (
	"strings"

	"coursegen-backend/internal/models"
)

// Narration returns the plain text a presentation layer reads aloud.
func Narration(rec *models.CourseRecord) (string, error) {
	content, err := checkContent(rec)
	if err != nil {
		return "", err
	}

	var parts []string
	switch c := content.(type) {
	case *models.SlideDeck:
		for _, s := range c.Slides {
			parts = append(parts, sentence(s.Title, string(s.Body)))
		}
	case *models.Summary:
		parts = append(parts, strings.TrimSpace(string(c.Text)))
	case *models.Document:
		parts = append(parts, strings.TrimSpace(string(c.Body)))
	case *models.Course:
		for _, m := range c.Modules {
			var lessons []string
			for _, l := range m.Lessons {
				if text := strings.TrimSpace(firstText(string(l.Content), l.Title)); text != "" {
					lessons = append(lessons, text)
				}
			}
			parts = append(parts, sentence("Module "+m.Title, strings.Join(lessons, " ")))
		}
	}
	return strings.Join(parts, " "), nil
}

func sentence(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	switch {
	case title == "":
		return body
	case body == "":
		return title + "."
	default:
		return title + ". " + body
	}
}

func firstText(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
