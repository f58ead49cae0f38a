package chunker

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts sub-word tokens in a text span. Implementations must
// be safe for concurrent use; the chunker itself keeps no state.
type TokenCounter interface {
	CountTokens(text string) int
}

// TiktokenCounter counts tokens with the cl100k_base encoding, the same
// scheme most current embedding models are calibrated against.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *TiktokenCounter) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// HeuristicCounter approximates token counts as runes / CharsPerToken.
// The default divisor of 4 is tuned for mixed Cyrillic/Latin text and is
// an approximation, not a guarantee.
type HeuristicCounter struct {
	CharsPerToken int
}

func NewHeuristicCounter(charsPerToken int) *HeuristicCounter {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return &HeuristicCounter{CharsPerToken: charsPerToken}
}

func (c *HeuristicCounter) CountTokens(text string) int {
	return utf8.RuneCountInString(text) / c.CharsPerToken
}

// NewTokenCounter returns a cl100k_base counter, degrading to the heuristic
// counter when the encoding cannot be loaded. It never fails.
func NewTokenCounter(charsPerToken int) TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Warn("cl100k_base unavailable, using approximate token counting", "error", err)
		return NewHeuristicCounter(charsPerToken)
	}
	return &TiktokenCounter{enc: enc}
}
