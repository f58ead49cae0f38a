package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// All splitter tests use the heuristic counter (4 runes per token) so token
// arithmetic is predictable.
func testSplitter(budget, overlap int) *Splitter {
	return NewSplitter(budget, overlap, NewHeuristicCounter(4))
}

func TestSplitSectionEmpty(t *testing.T) {
	s := testSplitter(10, 2)

	chunks, next := s.SplitSection(Section{Content: "   \n  "}, "d1", "c1", 3)
	assert.Empty(t, chunks)
	assert.Equal(t, 3, next)
}

func TestSplitSectionSingleChunk(t *testing.T) {
	s := testSplitter(500, 50)
	sec := Section{Heading: strPtr("Обзор"), HeadingLevel: 2, Content: "Короткий текст раздела."}

	chunks, next := s.SplitSection(sec, "doc1", "client1", 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, next)

	ch := chunks[0]
	assert.Equal(t, "c_doc1_0", ch.ChunkID)
	assert.Equal(t, 0, ch.ChunkIndex)
	assert.Equal(t, "## Обзор\n\nКороткий текст раздела.", ch.Text)
	assert.Equal(t, "Обзор", *ch.Heading)
	assert.Equal(t, 2, ch.HeadingLevel)
	assert.Greater(t, ch.TokenCount, 0)
}

func TestSplitSectionStartIndexCarried(t *testing.T) {
	s := testSplitter(500, 50)
	sec := Section{Content: "немного текста"}

	chunks, next := s.SplitSection(sec, "doc9", "c", 7)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c_doc9_7", chunks[0].ChunkID)
	assert.Equal(t, 7, chunks[0].ChunkIndex)
	assert.Equal(t, 8, next)
}

func TestSplitSectionParagraphAccumulation(t *testing.T) {
	// Three 4-token paragraphs against a 10-token budget: the third flush
	// seeds the next chunk with a 3-token overlap tail.
	para := "aaaa bbbb cccc dddd" // 19 runes -> 4 tokens
	sec := Section{Content: para + "\n\n" + para + "\n\n" + para}
	s := testSplitter(10, 3)

	chunks, next := s.SplitSection(sec, "d", "c", 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, 2, next)

	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 10)
	}
	// Second chunk starts with the trailing words of the first.
	assert.True(t, strings.HasPrefix(chunks[1].Text, "bbbb cccc dddd aaaa"),
		"got %q", chunks[1].Text)
}

func TestSplitSectionNoOverlapWhenDisabled(t *testing.T) {
	para := "aaaa bbbb cccc dddd"
	sec := Section{Content: para + "\n\n" + para + "\n\n" + para}
	s := testSplitter(10, 0)

	chunks, _ := s.SplitSection(sec, "d", "c", 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, para, chunks[1].Text)
}

func TestSplitSectionSentenceFallback(t *testing.T) {
	// One 15-token paragraph with 5-token sentences against a 10-token
	// budget drops to sentence granularity.
	sec := Section{Content: "Aaaa bbbb cccc dddd. Eeee ffff gggg hhhh. Iiii jjjj kkkk llll."}
	s := testSplitter(10, 3)

	chunks, _ := s.SplitSection(sec, "d", "c", 0)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Aaaa bbbb cccc dddd. Eeee ffff gggg hhhh.", chunks[0].Text)
	assert.Equal(t, "Iiii jjjj kkkk llll.", chunks[1].Text)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 10)
	}
}

func TestSplitSectionOversizedSentence(t *testing.T) {
	// A single sentence above the budget is emitted oversized, not split.
	sentence := strings.Repeat("ффффф", 10) // 50 runes, 12 tokens, no boundaries
	sec := Section{Content: sentence}
	s := testSplitter(5, 0)

	chunks, _ := s.SplitSection(sec, "d", "c", 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, sentence, chunks[0].Text)
	assert.Greater(t, chunks[0].TokenCount, 5)
}

func TestSplitSectionChunksClassifiedIndependently(t *testing.T) {
	// Each flushed chunk is classified on its own text, so one section can
	// yield differently typed chunks.
	contract := "Настоящий договор определяет взаимные роли." // 4 words
	neutral := "aaaa bbbb cccc dddd"
	sec := Section{Content: contract + "\n\n" + neutral + "\n\n" + neutral}
	s := testSplitter(12, 0)

	chunks, _ := s.SplitSection(sec, "d", "c", 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, "contract", chunks[0].ChunkType)
	assert.Equal(t, GeneralChunkType, chunks[1].ChunkType)
}

func TestOverlapTail(t *testing.T) {
	s := testSplitter(100, 3)

	// Trailing words totalling at most 3 tokens, with a trailing space.
	assert.Equal(t, "bbbb cccc dddd ", s.overlapTail("aaaa bbbb cccc dddd"))

	assert.Equal(t, "", s.overlapTail(""))
	assert.Equal(t, "", testSplitter(100, 0).overlapTail("aaaa bbbb"))

	// Whole text within the overlap budget: everything is carried.
	assert.Equal(t, "aaaa bbbb ", testSplitter(100, 50).overlapTail("aaaa bbbb"))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Первое предложение. Второе! Третье? Хвост без точки")
	require.Len(t, got, 4)
	assert.Equal(t, "Первое предложение.", strings.TrimSpace(got[0]))
	assert.Equal(t, "Второе!", strings.TrimSpace(got[1]))
	assert.Equal(t, "Третье?", strings.TrimSpace(got[2]))
	assert.Equal(t, "Хвост без точки", strings.TrimSpace(got[3]))

	// No boundary without following whitespace.
	assert.Len(t, splitSentences("версия 1.2.3 без пробелов"), 1)
}
