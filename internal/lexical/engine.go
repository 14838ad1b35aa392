// Package lexical implements a token-based document view: it runs a Parser over
// decoded text, lays the tokens out either by nesting or by their original
// positions, and provides folding, navigation, selection and similarity
// highlighting over the result.
//
// All state lives in two flat arrays: tokens ordered by source offset and
// blocks ordered by their first token. Nesting is derived from index ranges.
// An Engine is driven from a single goroutine.
package lexical

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// Selection is an inclusive range of token indices.
type Selection struct {
	Start, End int
}

// NoSelection is the empty selection.
var NoSelection = Selection{Start: -1, End: -1}

// Empty reports whether no tokens are selected.
func (s Selection) Empty() bool { return s.Start < 0 }

// Contains reports whether token index i is selected.
func (s Selection) Contains(i int) bool {
	return !s.Empty() && i >= s.Start && i <= s.End
}

// Engine owns the token and block model for one document.
type Engine struct {
	text     string
	settings Settings
	logger   *slog.Logger

	tokens []Token
	blocks []Block

	cursor      int
	anchor      int
	selection   Selection
	currentHash uint64

	scrollX, scrollY int
	width, height    int

	lineCount      int // rows produced by the last layout
	lineNrWidth    int
	noItemsVisible bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithViewport sets the initial viewport size in cells.
func WithViewport(width, height int) Option {
	return func(e *Engine) {
		e.width, e.height = width, height
	}
}

// New parses text with settings.Parser and lays it out.
func New(text string, settings Settings, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		text:      text,
		settings:  settings,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		selection: NoSelection,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Reparse(); err != nil {
		return nil, err
	}
	return e, nil
}

// Name identifies the view.
func (e *Engine) Name() string { return "Lexical" }

// Text returns the decoded text the model was built from.
func (e *Engine) Text() string { return e.text }

// Settings returns the active settings.
func (e *Engine) Settings() Settings { return e.settings }

// SetText replaces the document and rebuilds the model.
func (e *Engine) SetText(text string) error {
	e.text = text
	return e.Reparse()
}

// SetSettings applies new settings. Changes to the parser, indentation or
// case sensitivity rebuild the model; layout-only changes relayout.
func (e *Engine) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	old := e.settings
	e.settings = s
	if old.Parser != s.Parser || old.IndentWidth != s.IndentWidth || old.IgnoreCase != s.IgnoreCase {
		return e.Reparse()
	}
	if !e.noItemsVisible {
		e.layout()
		e.EnsureCurrentItemIsVisible()
	}
	return nil
}

// Reparse discards the model and rebuilds it from the current text. On
// failure the model is left empty.
func (e *Engine) Reparse() error {
	var tb TokenListBuilder
	var bb BlockListBuilder

	e.tokens, e.blocks = nil, nil
	e.cursor, e.anchor = 0, 0
	e.selection = NoSelection
	e.currentHash = 0
	e.scrollX, e.scrollY = 0, 0
	e.lineCount, e.lineNrWidth = 0, 0
	e.noItemsVisible = true

	if err := e.settings.Parser.Parse(e.text, e.settings, &tb, &bb); err != nil {
		return fmt.Errorf("parse with %s: %w", e.settings.Parser.Name(), err)
	}
	tokens, blocks := tb.tokens, bb.blocks
	if err := validateModel(tokens, blocks, len(e.text)); err != nil {
		return fmt.Errorf("parser %s: %w", e.settings.Parser.Name(), err)
	}

	for i := range blocks {
		t := &tokens[blocks[i].TokenStart]
		t.Status.SetBlockStart(true)
		t.BlockID = i
	}
	for i := range tokens {
		tokens[i].Status.SetVisible(true)
		tokens[i].UpdateHash(e.text, e.settings.IgnoreCase)
	}
	e.tokens, e.blocks = tokens, blocks
	e.logger.Debug("lexical model built",
		"parser", e.settings.Parser.Name(), "tokens", len(tokens), "blocks", len(blocks))

	if len(tokens) == 0 {
		return nil
	}
	e.noItemsVisible = false
	e.layout()
	e.currentHash = e.tokens[0].Hash
	return nil
}

// validateModel checks the parser contract and sorts blocks by first token.
func validateModel(tokens []Token, blocks []Block, textLen int) error {
	prev := 0
	for i := range tokens {
		t := &tokens[i]
		if t.Start < 0 || t.Start > t.End || t.End > textLen {
			return fmt.Errorf("%w: token %d range [%d,%d) outside text of %d bytes", ErrInvalidArgument, i, t.Start, t.End, textLen)
		}
		if t.Start < prev {
			return fmt.Errorf("%w: token %d starts at %d before previous token at %d", ErrInvalidArgument, i, t.Start, prev)
		}
		prev = t.Start
	}

	for i := range blocks {
		b := &blocks[i]
		if b.TokenStart < 0 || b.TokenEnd >= len(tokens) || b.TokenStart > b.TokenEnd {
			return fmt.Errorf("%w: block %d token range [%d,%d] with %d tokens", ErrInvalidArgument, i, b.TokenStart, b.TokenEnd, len(tokens))
		}
		if b.HasEndMarker && b.TokenEnd == b.TokenStart {
			return fmt.Errorf("%w: block %d end marker is its start token", ErrInvalidArgument, i)
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].TokenStart < blocks[j].TokenStart
	})

	var stack []int
	for i := range blocks {
		b := &blocks[i]
		if i > 0 && blocks[i-1].TokenStart == b.TokenStart {
			return fmt.Errorf("%w: two blocks start at token %d", ErrInvalidArgument, b.TokenStart)
		}
		for len(stack) > 0 && blocks[stack[len(stack)-1]].TokenEnd < b.TokenStart {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && b.TokenEnd > blocks[stack[len(stack)-1]].TokenEnd {
			outer := blocks[stack[len(stack)-1]]
			return fmt.Errorf("%w: block [%d,%d] overlaps [%d,%d]", ErrInvalidArgument, b.TokenStart, b.TokenEnd, outer.TokenStart, outer.TokenEnd)
		}
		stack = append(stack, i)
	}
	return nil
}

// Len returns the number of tokens.
func (e *Engine) Len() int { return len(e.tokens) }

// Token returns token i. The pointer is invalidated by the next rebuild.
func (e *Engine) Token(i int) (*Token, error) {
	if i < 0 || i >= len(e.tokens) {
		return nil, fmt.Errorf("%w: token %d of %d", ErrOutOfRange, i, len(e.tokens))
	}
	return &e.tokens[i], nil
}

// BlockCount returns the number of blocks.
func (e *Engine) BlockCount() int { return len(e.blocks) }

// Block returns block i.
func (e *Engine) Block(i int) (*Block, error) {
	if i < 0 || i >= len(e.blocks) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrOutOfRange, i, len(e.blocks))
	}
	return &e.blocks[i], nil
}

// Cursor returns the current token index.
func (e *Engine) Cursor() int { return e.cursor }

// Selection returns the current selection.
func (e *Engine) Selection() Selection { return e.selection }

// NoItemsVisible reports whether there is nothing to show or navigate.
func (e *Engine) NoItemsVisible() bool { return e.noItemsVisible }

// LineCount returns the number of laid out rows.
func (e *Engine) LineCount() int { return e.lineCount }

// LineNumberWidth returns the gutter width in digits, or 0 when line numbers
// are off.
func (e *Engine) LineNumberWidth() int {
	if !e.settings.ShowLineNumbers {
		return 0
	}
	return e.lineNrWidth
}

// ScrollOffset returns the top-left cell of the viewport.
func (e *Engine) ScrollOffset() (x, y int) { return e.scrollX, e.scrollY }

// Viewport returns the viewport size in cells.
func (e *Engine) Viewport() (width, height int) { return e.width, e.height }

// Resize sets the viewport size. Without a fixed MaxWidth the pretty layout
// wraps at the viewport and is recomputed.
func (e *Engine) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	relayout := width != e.width && e.settings.PrettyFormat && e.settings.MaxWidth == 0
	e.width, e.height = width, height
	if e.noItemsVisible {
		return
	}
	if relayout {
		e.layout()
	}
	e.EnsureCurrentItemIsVisible()
}

// Scroll moves the viewport by dx, dy cells, clamped to the content.
func (e *Engine) Scroll(dx, dy int) {
	e.scrollX += dx
	e.scrollY += dy
	if maxY := e.lineCount - 1; e.scrollY > maxY {
		e.scrollY = maxY
	}
	if e.scrollX < 0 {
		e.scrollX = 0
	}
	if e.scrollY < 0 {
		e.scrollY = 0
	}
}
