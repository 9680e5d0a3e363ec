package export

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Style int

const (
	StyleTitle Style = iota
	StyleMeta
	StyleHeading
	StyleSubheading
	StyleBody
	StyleBullet
)

// Block is one logical unit of text. Wrapping may turn it into many lines.
type Block struct {
	Style Style
	Text  string
}

// Line is a wrapped line placed at a vertical offset on its page.
type Line struct {
	Style Style
	Text  string
	Y     float64
}

type Page struct {
	Number int
	Lines  []Line
}

// Layout holds page geometry in millimetres.
type Layout struct {
	Top    float64
	Bottom float64
}

var DefaultLayout = Layout{Top: 20, Bottom: 270}

func lineHeight(s Style) float64 {
	switch s {
	case StyleTitle:
		return 10
	case StyleHeading:
		return 8
	case StyleSubheading:
		return 7
	default:
		return 6
	}
}

func gapAfter(s Style) float64 {
	switch s {
	case StyleTitle:
		return 6
	case StyleHeading, StyleSubheading, StyleBullet:
		return 2
	case StyleMeta:
		return 8
	default:
		return 4
	}
}

// Paginate places blocks top to bottom, starting a new page whenever the
// next line would cross the bottom margin. A block that fits on a fresh
// page is moved there whole; a longer block is split across pages.
// Headings are never left alone at the bottom of a page.
func Paginate(blocks []Block, wrap func(text string, style Style) []string, layout Layout) []Page {
	pages := []Page{{Number: 1}}
	y := layout.Top
	usable := layout.Bottom - layout.Top

	newPage := func() {
		pages = append(pages, Page{Number: len(pages) + 1})
		y = layout.Top
	}

	for i, b := range blocks {
		lines := wrap(b.Text, b.Style)
		if len(lines) == 0 {
			continue
		}
		lh := lineHeight(b.Style)
		height := float64(len(lines)) * lh

		// keep a heading with the first line of what follows
		need := height
		if (b.Style == StyleHeading || b.Style == StyleSubheading) && i+1 < len(blocks) {
			need += lineHeight(blocks[i+1].Style)
		}
		if y+need > layout.Bottom && need <= usable && y > layout.Top {
			newPage()
		}

		for _, text := range lines {
			if y+lh > layout.Bottom && y > layout.Top {
				newPage()
			}
			cur := &pages[len(pages)-1]
			cur.Lines = append(cur.Lines, Line{Style: b.Style, Text: text, Y: y + lh})
			y += lh
		}
		y += gapAfter(b.Style)
	}
	return pages
}

func FooterText(page, total int) string {
	return fmt.Sprintf("Page %d of %d", page, total)
}

// WrapText wraps on word boundaries so that no line exceeds width runes.
// Words longer than width are split.
func WrapText(text string, width int) []string {
	return wrapWords(text, func(s string) bool {
		return utf8.RuneCountInString(s) <= width
	})
}

// wrapWords greedily fills lines while fits reports true. Explicit
// newlines always break.
func wrapWords(text string, fits func(string) bool) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if fits(candidate) {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
				line = ""
			}
			for !fits(w) {
				head := splitToFit(w, fits)
				out = append(out, head)
				w = w[len(head):]
			}
			line = w
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// splitToFit returns the longest prefix of w that fits, at least one rune.
func splitToFit(w string, fits func(string) bool) string {
	end := 0
	for end < len(w) {
		_, size := utf8.DecodeRuneInString(w[end:])
		if end > 0 && !fits(w[:end+size]) {
			break
		}
		end += size
	}
	return w[:end]
}
