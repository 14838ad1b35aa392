package lexical

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NoBlock is the BlockID of a token that does not start a block.
const NoBlock = -1

// TokenType is the parser's classification id. The engine only compares it.
type TokenType uint32

// TokenStatus is the set of per-token flags owned by the engine.
type TokenStatus uint8

const (
	StatusVisible TokenStatus = 1 << iota
	StatusFolded              // only meaningful on block-start tokens
	StatusBlockStart
	StatusHashDisabled // excluded from similarity highlighting
	statusFiltered     // hidden through UpdateVisibilityStatus, independent of folds
)

func (s TokenStatus) IsVisible() bool      { return s&StatusVisible != 0 }
func (s TokenStatus) IsFolded() bool       { return s&StatusFolded != 0 }
func (s TokenStatus) IsBlockStarter() bool { return s&StatusBlockStart != 0 }
func (s TokenStatus) IsHashDisabled() bool { return s&StatusHashDisabled != 0 }

func (s *TokenStatus) set(flag TokenStatus, on bool) {
	if on {
		*s |= flag
	} else {
		*s &^= flag
	}
}

func (s *TokenStatus) SetVisible(on bool)      { s.set(StatusVisible, on) }
func (s *TokenStatus) SetFolded(on bool)       { s.set(StatusFolded, on) }
func (s *TokenStatus) SetBlockStart(on bool)   { s.set(StatusBlockStart, on) }
func (s *TokenStatus) SetHashDisabled(on bool) { s.set(StatusHashDisabled, on) }

func (s TokenStatus) isFiltered() bool { return s&statusFiltered != 0 }

// String lists the set flags, e.g. "visible|blockstart".
func (s TokenStatus) String() string {
	var parts []string
	if s.IsVisible() {
		parts = append(parts, "visible")
	}
	if s.IsFolded() {
		parts = append(parts, "folded")
	}
	if s.IsBlockStarter() {
		parts = append(parts, "blockstart")
	}
	if s.IsHashDisabled() {
		parts = append(parts, "nohash")
	}
	if s.isFiltered() {
		parts = append(parts, "filtered")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// TokenAlign carries the parser's spacing hints for pretty formatting.
type TokenAlign uint8

const (
	AlignNone          TokenAlign = 0
	AlignNewLineBefore TokenAlign = 1 << iota
	AlignNewLineAfter
	AlignSpaceBefore
	AlignSpaceAfter
)

// TokenColor is a display class; the view maps it to a style.
type TokenColor uint8

const (
	ColorDefault TokenColor = iota
	ColorKeyword
	ColorName
	ColorString
	ColorNumber
	ColorComment
	ColorOperator
	ColorPunctuation
	ColorDatatype
	ColorConstant
	ColorPreprocessor
	ColorError
)

var colorNames = [...]string{
	ColorDefault:      "default",
	ColorKeyword:      "keyword",
	ColorName:         "name",
	ColorString:       "string",
	ColorNumber:       "number",
	ColorComment:      "comment",
	ColorOperator:     "operator",
	ColorPunctuation:  "punctuation",
	ColorDatatype:     "datatype",
	ColorConstant:     "constant",
	ColorPreprocessor: "preprocessor",
	ColorError:        "error",
}

func (c TokenColor) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// Token is one classified span of the decoded text.
type Token struct {
	Start, End int // byte offsets into the decoded text, Start <= End
	Type       TokenType
	Value      string // materialized text; empty means text[Start:End]
	Hash       uint64
	Status     TokenStatus
	BlockID    int // block started by this token, or NoBlock
	Align      TokenAlign
	Color      TokenColor

	// Layout output, recomputed on every layout pass.
	X, Y, Width, Height int
}

func (t *Token) IsVisible() bool      { return t.Status.IsVisible() }
func (t *Token) IsFolded() bool       { return t.Status.IsFolded() }
func (t *Token) IsBlockStarter() bool { return t.Status.IsBlockStarter() }
func (t *Token) HasBlock() bool       { return t.BlockID != NoBlock }

// Text returns the token's display text.
func (t *Token) Text(text string) string {
	if t.Value != "" {
		return t.Value
	}
	return text[t.Start:t.End]
}

// UpdateHash recomputes the similarity hash. Tokens with hashing disabled
// always hash to 0.
func (t *Token) UpdateHash(text string, ignoreCase bool) {
	if t.Status.IsHashDisabled() {
		t.Hash = 0
		return
	}
	s := t.Text(text)
	if ignoreCase {
		s = strings.ToLower(s)
	}
	t.Hash = xxhash.Sum64String(s)
}

// Similar reports whether two tokens carry the same text for highlighting.
func Similar(a, b *Token) bool {
	if a.Status.IsHashDisabled() || b.Status.IsHashDisabled() {
		return false
	}
	return a.Hash != 0 && a.Hash == b.Hash
}
