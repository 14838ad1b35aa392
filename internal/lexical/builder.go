package lexical

import "fmt"

// Parser turns decoded text into tokens and blocks. Implementations must emit
// tokens in non-decreasing Start order with 0 <= Start <= End <= len(text),
// and blocks that reference valid token indices and nest without crossing.
// Parser values are compared with == to detect changes, so implementations
// should be pointers or comparable structs.
type Parser interface {
	Name() string
	Parse(text string, settings Settings, tokens *TokenListBuilder, blocks *BlockListBuilder) error
}

// Settings configures parsing and layout.
type Settings struct {
	Parser          Parser
	IndentWidth     int  // spaces per nesting level, 0..MaxIndentWidth
	IgnoreCase      bool // similarity hashing folds case
	PrettyFormat    bool // lay out by nesting instead of original positions
	MaxWidth        int  // wrap width for pretty format; 0 uses the viewport width
	ShowLineNumbers bool
}

const (
	DefaultIndentWidth = 4
	MaxIndentWidth     = 32
)

// DefaultSettings returns settings for p with pretty formatting on.
func DefaultSettings(p Parser) Settings {
	return Settings{
		Parser:          p,
		IndentWidth:     DefaultIndentWidth,
		PrettyFormat:    true,
		ShowLineNumbers: true,
	}
}

// Validate checks ranges and the presence of a parser.
func (s Settings) Validate() error {
	if s.Parser == nil {
		return fmt.Errorf("%w: no parser", ErrInvalidArgument)
	}
	if s.IndentWidth < 0 || s.IndentWidth > MaxIndentWidth {
		return fmt.Errorf("%w: indent width %d outside [0,%d]", ErrInvalidArgument, s.IndentWidth, MaxIndentWidth)
	}
	if s.MaxWidth < 0 {
		return fmt.Errorf("%w: negative max width %d", ErrInvalidArgument, s.MaxWidth)
	}
	return nil
}

// TokenListBuilder collects tokens from a Parser.
type TokenListBuilder struct {
	tokens []Token
}

// Add appends a token over text[start:end] and returns its index.
func (b *TokenListBuilder) Add(typ TokenType, start, end int, color TokenColor, align TokenAlign) int {
	return b.AddValue(typ, start, end, "", color, align)
}

// AddValue appends a token whose display text differs from the source span.
func (b *TokenListBuilder) AddValue(typ TokenType, start, end int, value string, color TokenColor, align TokenAlign) int {
	b.tokens = append(b.tokens, Token{
		Start:   start,
		End:     end,
		Type:    typ,
		Value:   value,
		BlockID: NoBlock,
		Align:   align,
		Color:   color,
	})
	return len(b.tokens) - 1
}

// AddAlign merges extra alignment hints into token i.
func (b *TokenListBuilder) AddAlign(i int, align TokenAlign) {
	if i >= 0 && i < len(b.tokens) {
		b.tokens[i].Align |= align
	}
}

// DisableSimilarity excludes token i from similarity highlighting.
func (b *TokenListBuilder) DisableSimilarity(i int) {
	if i >= 0 && i < len(b.tokens) {
		b.tokens[i].Status.SetHashDisabled(true)
	}
}

// Span returns the byte range of token i.
func (b *TokenListBuilder) Span(i int) (start, end int) {
	t := &b.tokens[i]
	return t.Start, t.End
}

// Len returns the number of tokens added so far.
func (b *TokenListBuilder) Len() int { return len(b.tokens) }

// Last returns the index of the last token, or -1.
func (b *TokenListBuilder) Last() int { return len(b.tokens) - 1 }

// BlockListBuilder collects blocks from a Parser.
type BlockListBuilder struct {
	blocks []Block
}

// Add appends a block over tokens [tokenStart, tokenEnd] and returns its index.
func (b *BlockListBuilder) Add(tokenStart, tokenEnd int, align BlockAlign, hasEndMarker bool) int {
	b.blocks = append(b.blocks, Block{
		TokenStart:   tokenStart,
		TokenEnd:     tokenEnd,
		Align:        align,
		HasEndMarker: hasEndMarker,
	})
	return len(b.blocks) - 1
}

// SetFoldMessage sets the text shown while block i is folded.
func (b *BlockListBuilder) SetFoldMessage(i int, msg string) {
	if i >= 0 && i < len(b.blocks) {
		b.blocks[i].FoldMessage = msg
	}
}

// Len returns the number of blocks added so far.
func (b *BlockListBuilder) Len() int { return len(b.blocks) }
