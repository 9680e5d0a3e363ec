package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func charWrap(width int) func(string, Style) []string {
	return func(text string, _ Style) []string { return WrapText(text, width) }
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"the quick", "brown fox"}, WrapText("the quick brown fox", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, WrapText("abcdefghij", 4))
	assert.Equal(t, []string{"one", "two"}, WrapText("one\n\ntwo", 20))
	assert.Equal(t, []string{"héllo", "wörld"}, WrapText("héllo wörld", 5))
	assert.Empty(t, WrapText("   ", 10))
}

func TestPaginate_FooterTotalsMatchPageCount(t *testing.T) {
	var blocks []Block
	for i := 0; i < 60; i++ {
		blocks = append(blocks, Block{Style: StyleBody, Text: strings.Repeat("word ", 30)})
	}

	pages := Paginate(blocks, charWrap(80), DefaultLayout)

	require.Greater(t, len(pages), 1)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		require.NotEmpty(t, p.Lines)
		for _, l := range p.Lines {
			assert.LessOrEqual(t, l.Y, DefaultLayout.Bottom)
			assert.Greater(t, l.Y, DefaultLayout.Top)
		}
	}
	assert.Equal(t, "Page 3 of 7", FooterText(3, 7))
}

func TestPaginate_BlockMovesWholeToNextPage(t *testing.T) {
	layout := Layout{Top: 0, Bottom: 30}
	blocks := []Block{
		{Style: StyleBody, Text: "a b c"},
		{Style: StyleBody, Text: "d e f"},
	}

	// each word is its own 6mm line; the second block does not fit after the first
	pages := Paginate(blocks, charWrap(1), layout)

	require.Len(t, pages, 2)
	assert.Len(t, pages[0].Lines, 3)
	assert.Equal(t, "d", pages[1].Lines[0].Text)
}

func TestPaginate_OversizedBlockSplits(t *testing.T) {
	layout := Layout{Top: 0, Bottom: 30}
	blocks := []Block{{Style: StyleBody, Text: "a b c d e f g h i j k l"}}

	pages := Paginate(blocks, charWrap(1), layout)

	require.Len(t, pages, 3)
	assert.Len(t, pages[0].Lines, 5)
	assert.Len(t, pages[1].Lines, 5)
	assert.Len(t, pages[2].Lines, 2)
}

func TestPaginate_HeadingKeptWithBody(t *testing.T) {
	layout := Layout{Top: 0, Bottom: 30}
	blocks := []Block{
		{Style: StyleBody, Text: "a b c"},
		{Style: StyleHeading, Text: "H"},
		{Style: StyleBody, Text: "x"},
	}

	pages := Paginate(blocks, charWrap(1), layout)

	require.Len(t, pages, 2)
	assert.Equal(t, "H", pages[1].Lines[0].Text)
}

func TestPaginate_EmptyInputHasOnePage(t *testing.T) {
	pages := Paginate(nil, charWrap(10), DefaultLayout)
	assert.Len(t, pages, 1)
}
