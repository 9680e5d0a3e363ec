package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteBareKeys(t *testing.T) {
	assert.Equal(t, `{"a": 1, "b": true, "c_d": null}`, quoteBareKeys(`{a: 1, b: true, c_d: null}`))
	assert.Equal(t, `{"a": "x, y: z"}`, quoteBareKeys(`{"a": "x, y: z"}`), "string content must not change")
}

func TestNormalizeQuotes(t *testing.T) {
	assert.Equal(t, `{"a": "say \"hi\""}`, normalizeQuotes(`{'a': 'say "hi"'}`))
	assert.Equal(t, `{"a": "it's"}`, normalizeQuotes(`{"a": "it's"}`))
}

func TestRemoveTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2 ] }`, removeTrailingCommas(`{"a": [1, 2, ], }`))
	assert.Equal(t, `{"a": "x,}"}`, removeTrailingCommas(`{"a": "x,}"}`))
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "{\"url\": \"http://x\" \n}", stripComments("{\"url\": \"http://x\" // link\n}"))
	assert.Equal(t, `{ "a": 1}`, stripComments(`{/* c */"a": 1}`))
}

func TestEscapeNewlines(t *testing.T) {
	assert.Equal(t, "{\"a\": \"one\\ntwo\\tthree\"}\n", escapeNewlines("{\"a\": \"one\ntwo\tthree\"}\n"))
}

func TestRepairsKeepNumbersAndBooleans(t *testing.T) {
	assert.Equal(t, `{"n": 3, "ok": false}`, applyRepairs(`{n: 3, ok: false,}`))
}
