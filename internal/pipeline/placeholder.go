package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const (
	placeholderBaseURL = "https://placehold.co/600x400"
	defaultColor       = "6B7280"
	placeholderWords   = 3
)

type paletteEntry struct {
	keywords []string
	color    string
}

// palette is matched top to bottom against whole words; the first hit wins.
// Technology names come before the broad subject areas so that "python data
// science" is colored as Python.
var palette = []paletteEntry{
	{[]string{"html"}, "E34F26"},
	{[]string{"css"}, "1572B6"},
	{[]string{"javascript"}, "F7DF1E"},
	{[]string{"typescript"}, "3178C6"},
	{[]string{"react"}, "61DAFB"},
	{[]string{"nextjs"}, "000000"},
	{[]string{"node", "nodejs"}, "339933"},
	{[]string{"python"}, "3776AB"},
	{[]string{"java"}, "007396"},
	{[]string{"angular"}, "DD0031"},
	{[]string{"vue"}, "4FC08D"},
	{[]string{"mongodb"}, "47A248"},
	{[]string{"sql"}, "4479A1"},
	{[]string{"aws"}, "FF9900"},
	{[]string{"docker"}, "2496ED"},
	{[]string{"kubernetes"}, "326CE5"},
	{[]string{"php"}, "777BB4"},
	{[]string{"c++"}, "00599C"},
	{[]string{"c#"}, "239120"},
	{[]string{"swift"}, "FA7343"},
	{[]string{"kotlin"}, "7F52FF"},
	{[]string{"rust"}, "000000"},
	{[]string{"go", "golang"}, "00ADD8"},
	{[]string{"programming", "code", "coding", "software"}, "3B82F6"},
	{[]string{"design", "creative", "art"}, "8B5CF6"},
	{[]string{"business", "marketing", "management"}, "10B981"},
	{[]string{"science", "math", "mathematics", "physics"}, "EF4444"},
}

// PlaceholderURL returns the deterministic stand-in image for prompt.
func PlaceholderURL(prompt string) string {
	return fmt.Sprintf("%s/%s/FFFFFF?text=%s&font=montserrat",
		placeholderBaseURL, placeholderColor(prompt), url.QueryEscape(placeholderText(prompt)))
}

func placeholderColor(prompt string) string {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	}) {
		words[w] = true
	}
	for _, entry := range palette {
		for _, kw := range entry.keywords {
			if words[kw] {
				return entry.color
			}
		}
	}
	return defaultColor
}

// placeholderText keeps the first few words longer than two characters,
// stripped to letters and digits.
func placeholderText(prompt string) string {
	var kept []string
	for _, w := range strings.Fields(prompt) {
		w = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, w)
		if len([]rune(w)) <= 2 {
			continue
		}
		kept = append(kept, w)
		if len(kept) == placeholderWords {
			break
		}
	}
	if len(kept) == 0 {
		return "Course"
	}
	return strings.Join(kept, " ")
}
