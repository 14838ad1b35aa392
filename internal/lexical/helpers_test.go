package lexical

import (
	"errors"
	"strings"
	"testing"
)

// wordParser splits on whitespace. Braces open indented blocks and parens
// open inline blocks, both closed by an end marker. Whitespace becomes
// alignment hints on the preceding token.
type wordParser struct{}

func (wordParser) Name() string { return "words" }

func (wordParser) Parse(text string, _ Settings, tb *TokenListBuilder, bb *BlockListBuilder) error {
	var open []int
	for i := 0; i < len(text); {
		c := text[i]
		switch c {
		case '\n':
			tb.AddAlign(tb.Last(), AlignNewLineAfter)
			i++
		case ' ', '\t':
			tb.AddAlign(tb.Last(), AlignSpaceAfter)
			i++
		case '{', '(':
			idx := tb.Add(1, i, i+1, ColorPunctuation, AlignNone)
			tb.DisableSimilarity(idx)
			open = append(open, idx)
			i++
		case '}', ')':
			idx := tb.Add(1, i, i+1, ColorPunctuation, AlignNone)
			tb.DisableSimilarity(idx)
			if len(open) == 0 {
				return errors.New("unbalanced close")
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			align := BlockAlignIndent
			if c == ')' {
				align = BlockAlignInline
			}
			bb.Add(start, idx, align, true)
			i++
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(" \t\n{}()", rune(text[j])) {
				j++
			}
			tb.Add(0, i, j, ColorName, AlignNone)
			i = j
		}
	}
	if len(open) > 0 {
		return errors.New("unbalanced open")
	}
	return nil
}

// fixedParser emits one token per space-separated word and the given blocks.
type fixedParser struct {
	blocks []Block
}

func (fixedParser) Name() string { return "fixed" }

func (p fixedParser) Parse(text string, _ Settings, tb *TokenListBuilder, bb *BlockListBuilder) error {
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == ' ' {
			if i > start {
				idx := tb.Add(0, start, i, ColorDefault, AlignNone)
				tb.AddAlign(idx, AlignSpaceAfter)
			}
			start = i + 1
		}
	}
	for _, b := range p.blocks {
		bb.Add(b.TokenStart, b.TokenEnd, b.Align, b.HasEndMarker)
	}
	return nil
}

// rawParser hands back exactly the tokens and blocks it was given.
type rawParser struct {
	tokens []Token
	blocks []Block
	err    error
}

func (rawParser) Name() string { return "raw" }

func (p rawParser) Parse(_ string, _ Settings, tb *TokenListBuilder, bb *BlockListBuilder) error {
	if p.err != nil {
		return p.err
	}
	for _, t := range p.tokens {
		tb.Add(t.Type, t.Start, t.End, t.Color, t.Align)
	}
	for _, b := range p.blocks {
		bb.Add(b.TokenStart, b.TokenEnd, b.Align, b.HasEndMarker)
	}
	return nil
}

func newTestEngine(t *testing.T, text string) *Engine {
	t.Helper()
	return newTestEngineWith(t, text, DefaultSettings(wordParser{}))
}

func newTestEngineWith(t *testing.T, text string, s Settings) *Engine {
	t.Helper()
	e, err := New(text, s, WithViewport(80, 25))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func visibleSet(e *Engine) []int {
	var out []int
	for i := range e.tokens {
		if e.tokens[i].IsVisible() {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// indexOf returns the index of the first token whose text is s.
func indexOf(t *testing.T, e *Engine, s string) int {
	t.Helper()
	for i := range e.tokens {
		if e.tokens[i].Text(e.text) == s {
			return i
		}
	}
	t.Fatalf("token %q not found", s)
	return -1
}
