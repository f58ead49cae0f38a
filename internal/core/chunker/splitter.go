package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/docrag/semantic-chunker/internal/models"
)

// Paragraphs are separated by a blank line, possibly carrying whitespace.
var paragraphRe = regexp.MustCompile(`\n\s*\n`)

// Splitter breaks a section into chunks no larger than the token budget,
// carrying an overlap of trailing tokens from one chunk into the next.
// It falls back from section to paragraph to sentence granularity; a single
// sentence above the budget is emitted oversized rather than split further.
type Splitter struct {
	budget  int
	overlap int
	counter TokenCounter
}

func NewSplitter(budget, overlap int, counter TokenCounter) *Splitter {
	if budget <= 0 {
		budget = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Splitter{budget: budget, overlap: overlap, counter: counter}
}

// SplitSection emits the section's chunks with indices starting at
// startIndex and returns them along with the next free index.
func (s *Splitter) SplitSection(sec Section, documentID, clientID string, startIndex int) ([]models.Chunk, int) {
	fullText := sec.Content
	if sec.Heading != nil {
		// Re-synthesize the heading line so the chunk text is self-contained.
		fullText = strings.Repeat("#", sec.HeadingLevel) + " " + *sec.Heading + "\n\n" + sec.Content
	}
	fullText = strings.TrimSpace(fullText)
	if fullText == "" {
		return nil, startIndex
	}

	b := &chunkBuilder{
		splitter:   s,
		section:    sec,
		documentID: documentID,
		clientID:   clientID,
		index:      startIndex,
	}

	// Whole section within budget: one chunk, no splitting.
	if n := s.counter.CountTokens(fullText); n <= s.budget {
		b.emit(fullText, n)
		return b.chunks, b.index
	}

	for _, para := range paragraphRe.Split(fullText, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := s.counter.CountTokens(para)
		switch {
		case n > s.budget:
			// Paragraph alone blows the budget: flush and go sentence-level.
			b.flush()
			b.addSentences(para)
		case b.tokens+n > s.budget:
			seed := s.overlapTail(b.text)
			b.flush()
			b.seedCounted(seed + para + "\n\n")
		default:
			b.add(para+"\n\n", n)
		}
	}
	b.flush()

	return b.chunks, b.index
}

// overlapTail collects trailing words of text until their token sum would
// exceed the overlap, returning them in original order with a trailing
// space. Empty when overlap is disabled or text is empty.
func (s *Splitter) overlapTail(text string) string {
	if s.overlap <= 0 || text == "" {
		return ""
	}
	words := strings.Fields(text)
	total := 0
	start := len(words)
	for start > 0 {
		n := s.counter.CountTokens(words[start-1])
		if total+n > s.overlap {
			break
		}
		total += n
		start--
	}
	if start == len(words) {
		return ""
	}
	return strings.Join(words[start:], " ") + " "
}

// chunkBuilder holds the running buffer and the chunks emitted so far for
// one section.
type chunkBuilder struct {
	splitter   *Splitter
	section    Section
	documentID string
	clientID   string
	index      int

	text   string
	tokens int
	chunks []models.Chunk
}

func (b *chunkBuilder) add(s string, tokens int) {
	b.text += s
	b.tokens += tokens
}

// seed replaces the buffer outright, trusting the caller's token count.
func (b *chunkBuilder) seed(s string, tokens int) {
	b.text = s
	b.tokens = tokens
}

// seedCounted replaces the buffer and recounts it, used when the seed mixes
// overlap words with fresh paragraph text.
func (b *chunkBuilder) seedCounted(s string) {
	b.seed(s, b.splitter.counter.CountTokens(s))
}

// flush emits the buffer as a chunk if it holds any non-blank text.
func (b *chunkBuilder) flush() {
	trimmed := strings.TrimSpace(b.text)
	if trimmed != "" {
		b.emit(trimmed, b.tokens)
	}
	b.text = ""
	b.tokens = 0
}

// addSentences accumulates an oversized paragraph sentence by sentence
// under the same budget. No word-level fallback here: a lone sentence above
// the budget stays in the buffer and is emitted oversized at the next flush.
func (b *chunkBuilder) addSentences(para string) {
	for _, sentence := range splitSentences(para) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		n := b.splitter.counter.CountTokens(sentence)
		if b.tokens+n > b.splitter.budget {
			b.flush()
			b.seed(sentence+" ", n)
		} else {
			b.add(sentence+" ", n)
		}
	}
}

// emit appends a finished chunk, classified against the section heading and
// the chunk's own text.
func (b *chunkBuilder) emit(text string, tokens int) {
	b.chunks = append(b.chunks, models.Chunk{
		ChunkID:      fmt.Sprintf("c_%s_%d", b.documentID, b.index),
		DocumentID:   b.documentID,
		ClientID:     b.clientID,
		ChunkIndex:   b.index,
		Text:         text,
		Heading:      b.section.Heading,
		HeadingLevel: b.section.HeadingLevel,
		ChunkType:    InferChunkType(b.section.Heading, text),
		TokenCount:   tokens,
	})
	b.index++
}

// splitSentences cuts text at whitespace following '.', '!' or '?'.
// A rune scan instead of a regexp: RE2 has no lookbehind.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}
