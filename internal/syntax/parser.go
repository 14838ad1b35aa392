// Package syntax adapts chroma lexers to the lexical token model.
package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/wilbur182/lexview/internal/lexical"
)

// Parser runs a chroma lexer and turns its output into lexical tokens and
// bracket blocks. Whitespace becomes alignment hints on the preceding token.
type Parser struct {
	lexer chroma.Lexer
	name  string
}

// NewParser wraps lexer. A nil lexer selects plain text.
func NewParser(lexer chroma.Lexer) *Parser {
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Parser{
		lexer: chroma.Coalesce(lexer),
		name:  lexer.Config().Name,
	}
}

// ForFile detects the language of a file and returns a parser for it.
func ForFile(filename string, content []byte) *Parser {
	return NewParser(Detect(filename, content).Lexer)
}

// Name returns the lexer name.
func (p *Parser) Name() string { return p.name }

type openBracket struct {
	token int
	close byte
}

// Parse implements lexical.Parser.
func (p *Parser) Parse(text string, _ lexical.Settings, tb *lexical.TokenListBuilder, bb *lexical.BlockListBuilder) error {
	it, err := p.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}

	var open []openBracket
	off := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		v := tok.Value
		if off >= len(text) {
			break
		}
		// Lexers may append a final newline.
		if off+len(v) > len(text) {
			v = text[off:]
		}
		if !strings.HasPrefix(text[off:], v) {
			return fmt.Errorf("lexer %s output diverges from input at byte %d", p.name, off)
		}

		switch {
		case keepWhole(tok.Type):
			body := strings.TrimRightFunc(v, unicode.IsSpace)
			lead := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
			if lead > 0 {
				addSpace(tb, body[:lead])
			}
			if lead < len(body) {
				tb.Add(lexical.TokenType(tok.Type), off+lead, off+len(body), colorOf(tok.Type), lexical.AlignNone)
			}
			if len(body) < len(v) {
				addSpace(tb, v[len(body):])
			}
		case tok.Type.InCategory(chroma.Punctuation):
			p.addPunctuation(tb, bb, &open, text, tok.Type, off, v)
		default:
			addWords(tb, tok.Type, off, v)
		}
		off += len(v)
	}
	return nil
}

// keepWhole reports whether a token stays in one piece even when it contains
// whitespace.
func keepWhole(tt chroma.TokenType) bool {
	return tt.InCategory(chroma.Comment) || tt.InSubCategory(chroma.LiteralString)
}

// addSpace turns a whitespace run into an alignment hint on the last token.
func addSpace(tb *lexical.TokenListBuilder, ws string) {
	if strings.ContainsRune(ws, '\n') {
		tb.AddAlign(tb.Last(), lexical.AlignNewLineAfter)
	} else {
		tb.AddAlign(tb.Last(), lexical.AlignSpaceAfter)
	}
}

// addWords splits v at whitespace and adds each run as a token.
func addWords(tb *lexical.TokenListBuilder, tt chroma.TokenType, off int, v string) {
	for i := 0; i < len(v); {
		j := i
		space := isSpaceAt(v, i)
		for j < len(v) && isSpaceAt(v, j) == space {
			_, size := utf8.DecodeRuneInString(v[j:])
			j += size
		}
		if space {
			addSpace(tb, v[i:j])
		} else {
			tb.Add(lexical.TokenType(tt), off+i, off+j, colorOf(tt), lexical.AlignNone)
		}
		i = j
	}
}

func isSpaceAt(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

// addPunctuation adds one token per character and pairs brackets into blocks.
func (p *Parser) addPunctuation(tb *lexical.TokenListBuilder, bb *lexical.BlockListBuilder, open *[]openBracket, text string, tt chroma.TokenType, off int, v string) {
	for i := 0; i < len(v); {
		r, size := utf8.DecodeRuneInString(v[i:])
		if unicode.IsSpace(r) {
			addSpace(tb, v[i:i+size])
			i += size
			continue
		}
		idx := tb.Add(lexical.TokenType(tt), off+i, off+i+size, lexical.ColorPunctuation, lexical.AlignNone)
		tb.DisableSimilarity(idx)

		switch c := v[i]; c {
		case '{':
			*open = append(*open, openBracket{token: idx, close: '}'})
		case '(':
			*open = append(*open, openBracket{token: idx, close: ')'})
		case '[':
			*open = append(*open, openBracket{token: idx, close: ']'})
		case '}', ')', ']':
			closeBracket(tb, bb, open, text, idx, c)
		}
		i += size
	}
}

// closeBracket pairs the closer at token idx with the nearest matching opener.
// Openers above it on the stack are dropped; an unmatched closer is ignored.
func closeBracket(tb *lexical.TokenListBuilder, bb *lexical.BlockListBuilder, open *[]openBracket, text string, idx int, c byte) {
	stack := *open
	for k := len(stack) - 1; k >= 0; k-- {
		if stack[k].close != c {
			continue
		}
		start := stack[k].token
		*open = stack[:k]
		if idx == start+1 {
			return
		}
		align := lexical.BlockAlignInline
		if c == '}' {
			align = lexical.BlockAlignIndent
		}
		b := bb.Add(start, idx, align, true)
		if msg := foldMessage(tb, text, start, idx); msg != "" {
			bb.SetFoldMessage(b, msg)
		}
		return
	}
}

// foldMessage counts the source lines between a block's brackets.
func foldMessage(tb *lexical.TokenListBuilder, text string, start, end int) string {
	_, from := tb.Span(start)
	to, _ := tb.Span(end)
	n := strings.Count(text[from:to], "\n") - 1
	switch {
	case n < 1:
		return ""
	case n == 1:
		return "... 1 line"
	}
	return fmt.Sprintf("... %d lines", n)
}

// colorOf maps a chroma token type to a display class.
func colorOf(tt chroma.TokenType) lexical.TokenColor {
	switch {
	case tt == chroma.KeywordType:
		return lexical.ColorDatatype
	case tt == chroma.KeywordConstant, tt == chroma.NameConstant:
		return lexical.ColorConstant
	case tt.InCategory(chroma.Keyword):
		return lexical.ColorKeyword
	case tt.InSubCategory(chroma.LiteralString):
		return lexical.ColorString
	case tt.InSubCategory(chroma.LiteralNumber):
		return lexical.ColorNumber
	case tt.InSubCategory(chroma.CommentPreproc):
		return lexical.ColorPreprocessor
	case tt.InCategory(chroma.Comment):
		return lexical.ColorComment
	case tt.InCategory(chroma.Operator):
		return lexical.ColorOperator
	case tt.InCategory(chroma.Punctuation):
		return lexical.ColorPunctuation
	case tt == chroma.NameBuiltin, tt == chroma.NameClass:
		return lexical.ColorDatatype
	case tt.InCategory(chroma.Name):
		return lexical.ColorName
	case tt == chroma.Error:
		return lexical.ColorError
	}
	return lexical.ColorDefault
}
