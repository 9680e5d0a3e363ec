package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"coursegen-backend/internal/models"
)

var printTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} - Course Summary</title>
<style>
body { font-family: Georgia, serif; max-width: 720px; margin: 40px auto; line-height: 1.6; color: #111827; }
h1 { font-size: 24px; border-bottom: 2px solid #111827; padding-bottom: 8px; }
.meta { color: #4B5563; font-size: 14px; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}} - Course Summary</h1>
<p class="meta">Level: {{.Level}}{{if .Duration}} | Duration: {{.Duration}}{{end}}</p>
{{if .Description}}<p><em>{{.Description}}</em></p>
{{end}}{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</body>
</html>
`))

// PrintSummary renders a summary record as a standalone printable page.
func PrintSummary(rec *models.CourseRecord) ([]byte, error) {
	content, err := checkContent(rec)
	if err != nil {
		return nil, err
	}
	summary, ok := content.(*models.Summary)
	if !ok {
		return nil, ErrExportNotSupported
	}

	data := struct {
		Title       string
		Level       models.Level
		Duration    string
		Description string
		Paragraphs  []string
	}{
		Title:       rec.Title,
		Level:       rec.Level,
		Duration:    rec.Duration,
		Description: rec.Description,
		Paragraphs:  paragraphs(string(summary.Text)),
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphs splits text on blank lines and folds single newlines.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
