package pipeline

import (
	"regexp"
	"strings"
)

// Repairs operate on a lexed view of the text so that string literals and
// comments are never rewritten by rules meant for the surrounding syntax.

type segKind int

const (
	segCode segKind = iota
	segString
	segSingle
	segComment
)

type segment struct {
	kind segKind
	text string
}

// lex splits s into code, double-quoted string, single-quoted string and
// comment segments. Unterminated strings and comments run to the end of s.
func lex(s string) []segment {
	var segs []segment
	start := 0
	emit := func(kind segKind, end int) {
		if end > start {
			segs = append(segs, segment{kind: kind, text: s[start:end]})
		}
		start = end
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			emit(segCode, i)
			kind := segString
			if c == '\'' {
				kind = segSingle
			}
			j := i + 1
			for j < len(s) && s[j] != c {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				j = len(s)
			} else {
				j++
			}
			emit(kind, j)
			i = j
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			emit(segCode, i)
			j := strings.IndexByte(s[i:], '\n')
			if j < 0 {
				j = len(s)
			} else {
				j += i
			}
			emit(segComment, j)
			i = j
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			emit(segCode, i)
			j := strings.Index(s[i+2:], "*/")
			if j < 0 {
				j = len(s)
			} else {
				j += i + 4
			}
			emit(segComment, j)
			i = j
		default:
			i++
		}
	}
	emit(segCode, len(s))
	return segs
}

func join(segs []segment) string {
	var b strings.Builder
	for _, sg := range segs {
		b.WriteString(sg.text)
	}
	return b.String()
}

var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)(\s*:)`)

// quoteBareKeys turns {key: 1} into {"key": 1}.
func quoteBareKeys(s string) string {
	segs := lex(s)
	for i, sg := range segs {
		if sg.kind == segCode {
			segs[i].text = bareKeyRe.ReplaceAllString(sg.text, `$1"$2"$3`)
		}
	}
	return join(segs)
}

// normalizeQuotes rewrites single-quoted literals as double-quoted ones.
// Apostrophes inside double-quoted strings are left alone.
func normalizeQuotes(s string) string {
	segs := lex(s)
	for i, sg := range segs {
		if sg.kind != segSingle {
			continue
		}
		inner := strings.TrimPrefix(sg.text, "'")
		inner = strings.TrimSuffix(inner, "'")

		var b strings.Builder
		b.WriteByte('"')
		for j := 0; j < len(inner); j++ {
			c := inner[j]
			switch {
			case c == '\\' && j+1 < len(inner) && inner[j+1] == '\'':
				b.WriteByte('\'')
				j++
			case c == '\\' && j+1 < len(inner):
				b.WriteByte(c)
				b.WriteByte(inner[j+1])
				j++
			case c == '"':
				b.WriteString(`\"`)
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('"')
		segs[i] = segment{kind: segString, text: b.String()}
	}
	return join(segs)
}

// removeTrailingCommas drops a comma whose next significant character closes
// an object or array. Comments between the two are skipped over.
func removeTrailingCommas(s string) string {
	segs := lex(s)
	var b strings.Builder
	for i, sg := range segs {
		if sg.kind != segCode {
			b.WriteString(sg.text)
			continue
		}
		for j := 0; j < len(sg.text); j++ {
			c := sg.text[j]
			if c == ',' && closesNext(sg.text[j+1:], segs[i+1:]) {
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func closesNext(rest string, next []segment) bool {
	if r := strings.TrimSpace(rest); r != "" {
		return r[0] == '}' || r[0] == ']'
	}
	for _, sg := range next {
		switch sg.kind {
		case segComment:
			continue
		case segCode:
			if r := strings.TrimSpace(sg.text); r != "" {
				return r[0] == '}' || r[0] == ']'
			}
		default:
			return false
		}
	}
	return false
}

// stripComments removes // and /* */ comments outside string literals.
func stripComments(s string) string {
	segs := lex(s)
	var b strings.Builder
	for _, sg := range segs {
		if sg.kind == segComment {
			if strings.HasPrefix(sg.text, "/*") {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(sg.text)
	}
	return b.String()
}

var rawControlReplacer = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// escapeNewlines escapes raw line breaks and tabs inside string literals.
func escapeNewlines(s string) string {
	segs := lex(s)
	for i, sg := range segs {
		if sg.kind == segString || sg.kind == segSingle {
			segs[i].text = rawControlReplacer.Replace(sg.text)
		}
	}
	return join(segs)
}

// repairs run in this order; each sees the output of the previous one.
var repairs = []func(string) string{
	quoteBareKeys,
	normalizeQuotes,
	removeTrailingCommas,
	stripComments,
	escapeNewlines,
}

func applyRepairs(s string) string {
	for _, fix := range repairs {
		s = fix(s)
	}
	return s
}
