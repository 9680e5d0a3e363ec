package export

import (
	"regexp"
	"strconv"
	"strings"

	"coursegen-backend/internal/models"
)

// sectionHeading matches document lines like "1. Basics" or "Testing:".
var sectionHeading = regexp.MustCompile(`^(\d+\.\s+\S.*|[A-Z][A-Za-z ]{0,60}:)$`)

func headerBlocks(rec *models.CourseRecord) []Block {
	blocks := []Block{{Style: StyleTitle, Text: rec.Title}}
	meta := "Level: " + string(rec.Level)
	if rec.Duration != "" {
		meta += " | Duration: " + rec.Duration
	}
	blocks = append(blocks, Block{Style: StyleMeta, Text: meta})
	if d := strings.TrimSpace(rec.Description); d != "" {
		blocks = append(blocks, Block{Style: StyleBody, Text: d})
	}
	return blocks
}

func documentBlocks(doc *models.Document) []Block {
	var blocks []Block
	var para []string
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Style: StyleBody, Text: strings.Join(para, " ")})
			para = nil
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(string(doc.Body), "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case sectionHeading.MatchString(line):
			flush()
			blocks = append(blocks, Block{Style: StyleHeading, Text: line})
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			flush()
			blocks = append(blocks, Block{Style: StyleBullet, Text: "- " + strings.TrimSpace(line[2:])})
		default:
			para = append(para, line)
		}
	}
	flush()
	return blocks
}

func courseBlocks(c *models.Course) []Block {
	var blocks []Block
	heading := func(text string) {
		blocks = append(blocks, Block{Style: StyleHeading, Text: text})
	}
	body := func(text string) {
		if t := strings.TrimSpace(text); t != "" {
			blocks = append(blocks, Block{Style: StyleBody, Text: t})
		}
	}
	list := func(label string, items models.StringList) {
		if len(items) == 0 {
			return
		}
		blocks = append(blocks, Block{Style: StyleSubheading, Text: label})
		for _, item := range items {
			if t := strings.TrimSpace(item); t != "" {
				blocks = append(blocks, Block{Style: StyleBullet, Text: "- " + t})
			}
		}
	}

	if c.Overview != "" {
		heading("Course Overview")
		body(string(c.Overview))
	}
	if len(c.LearningObjectives) > 0 {
		heading("Learning Objectives")
		list("By the end of this course you will:", c.LearningObjectives)
	}

	for i, m := range c.Modules {
		heading("Module " + strconv.Itoa(i+1) + ": " + m.Title)
		body(string(m.Description))
		for j, l := range m.Lessons {
			title := "Lesson " + strconv.Itoa(j+1) + ": " + l.Title
			if l.Duration != "" {
				title += " (" + string(l.Duration) + ")"
			}
			blocks = append(blocks, Block{Style: StyleSubheading, Text: title})
			body(string(l.Content))
			list("Objectives", l.Objectives)
			list("Examples", l.Examples)
			list("Key Points", l.KeyPoints)
			list("Exercises", l.Exercises)
		}
		if m.Assessment != "" {
			blocks = append(blocks, Block{Style: StyleSubheading, Text: "Assessment"})
			body(string(m.Assessment))
		}
		list("Resources", m.Resources)
	}

	if c.StudyPlan != "" {
		heading("Study Plan")
		body(string(c.StudyPlan))
	}
	if len(c.AdditionalResources) > 0 {
		heading("Additional Resources")
		list("Further reading", c.AdditionalResources)
	}
	return blocks
}
