// Package markdown renders markdown (the help overlay) to styled terminal
// lines with glamour, caching results per content, width and theme.
package markdown

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/wilbur182/lexview/internal/styles"
)

const (
	// MinWidthForMarkdown is the narrowest width rendered with glamour;
	// below it text is wrapped as plain lines.
	MinWidthForMarkdown = 30

	// MaxCacheEntries bounds the render cache. The oldest entry goes first.
	MaxCacheEntries = 32
)

// Renderer renders markdown with a glamour renderer that is rebuilt whenever
// the width or the theme's markdown style changes.
type Renderer struct {
	mu     sync.Mutex
	logger *slog.Logger

	term  *glamour.TermRenderer
	width int
	style string

	cache map[uint64][]string
	order []uint64
}

// NewRenderer creates a new markdown renderer. A nil logger discards.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		cache:  make(map[uint64][]string),
		logger: logger,
	}
}

// RenderContent renders content to lines no wider than width.
func (r *Renderer) RenderContent(content string, width int) []string {
	if content == "" {
		return []string{}
	}
	if width < MinWidthForMarkdown {
		return WrapText(plain(content), width)
	}

	style := styles.GetMarkdownTheme()
	key := cacheKey(content, width, style)

	r.mu.Lock()
	defer r.mu.Unlock()
	if lines, ok := r.cache[key]; ok {
		return lines
	}

	term, err := r.termFor(width, style)
	if err != nil {
		r.logger.Warn("glamour renderer error", "err", err)
		return WrapText(plain(content), width)
	}
	out, err := term.Render(content)
	if err != nil {
		r.logger.Warn("glamour render error", "err", err)
		return WrapText(plain(content), width)
	}

	lines := strings.Split(strings.TrimRight(out, "\n\r\t "), "\n")
	r.remember(key, lines)
	return lines
}

func (r *Renderer) remember(key uint64, lines []string) {
	if len(r.order) >= MaxCacheEntries {
		delete(r.cache, r.order[0])
		r.order = r.order[1:]
	}
	r.cache[key] = lines
	r.order = append(r.order, key)
}

// termFor returns a glamour renderer for width and style. Callers hold mu.
func (r *Renderer) termFor(width int, style string) (*glamour.TermRenderer, error) {
	if r.term != nil && r.width == width && r.style == style {
		return r.term, nil
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.term, r.width, r.style = term, width, style
	return term, nil
}

// cacheKey hashes content, width and style name with xxhash.
func cacheKey(content string, width int, style string) uint64 {
	h := xxhash.New()
	h.WriteString(content)
	h.Write([]byte{0, byte(width >> 8), byte(width), 0})
	h.WriteString(style)
	return h.Sum64()
}

// plain drops the markdown syntax the help text uses: heading marks, bold
// markers, table pipes and table separator rows.
func plain(content string) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.Trim(trimmed, "|-: ") == "" {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "# ")
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		trimmed = strings.ReplaceAll(trimmed, "`", "")
		if strings.HasPrefix(trimmed, "|") {
			cells := strings.Split(strings.Trim(trimmed, "|"), "|")
			for i := range cells {
				cells[i] = strings.TrimSpace(cells[i])
			}
			trimmed = strings.Join(cells, "  ")
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// WrapText wraps each line of text to maxWidth display cells. Blank lines
// are kept as paragraph breaks.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			if len(lines) > 0 && lines[len(lines)-1] != "" {
				lines = append(lines, "")
			}
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= maxWidth {
				current += " " + word
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
