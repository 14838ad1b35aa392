package styles

import (
	"regexp"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromastyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/wilbur182/lexview/internal/lexical"
)

// themeMu protects currentTheme and currentPalette.
var themeMu sync.RWMutex

// hexColorRegex validates hex color codes (#RRGGBB or #RRGGBBAA with alpha)
var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "monokai"

// Palette holds the UI colors derived from a chroma style.
type Palette struct {
	Text       string `json:"text"`
	Muted      string `json:"muted"`
	Subtle     string `json:"subtle"`
	Background string `json:"background"`
	Surface    string `json:"surface"`   // status bar, prompt
	Highlight  string `json:"highlight"` // cursor background
	Selection  string `json:"selection"` // selected token background
	Similar    string `json:"similar"`   // similar token background
	Accent     string `json:"accent"`    // fold markers, key hints
	Error      string `json:"error"`
	Border     string `json:"border"`

	// Per token class foregrounds, keyed by lexical.TokenColor.
	Tokens map[lexical.TokenColor]chroma.StyleEntry `json:"-"`

	MarkdownTheme string `json:"markdownTheme"` // glamour style name
}

// fallbackPalette supplies colors a style does not define.
var fallbackPalette = Palette{
	Text:       "#F9FAFB",
	Muted:      "#6B7280",
	Subtle:     "#4B5563",
	Background: "#111827",
	Surface:    "#1F2937",
	Highlight:  "#7C3AED",
	Selection:  "#374151",
	Similar:    "#2D3748",
	Accent:     "#F59E0B",
	Error:      "#EF4444",
	Border:     "#7C3AED",
}

// tokenTypes maps display classes to the chroma type whose style they take.
var tokenTypes = map[lexical.TokenColor]chroma.TokenType{
	lexical.ColorDefault:      chroma.Text,
	lexical.ColorKeyword:      chroma.Keyword,
	lexical.ColorName:         chroma.Name,
	lexical.ColorString:       chroma.LiteralString,
	lexical.ColorNumber:       chroma.LiteralNumber,
	lexical.ColorComment:      chroma.Comment,
	lexical.ColorOperator:     chroma.Operator,
	lexical.ColorPunctuation:  chroma.Punctuation,
	lexical.ColorDatatype:     chroma.KeywordType,
	lexical.ColorConstant:     chroma.NameConstant,
	lexical.ColorPreprocessor: chroma.CommentPreproc,
	lexical.ColorError:        chroma.Error,
}

var (
	currentTheme   = DefaultTheme
	currentPalette = PaletteFor(DefaultTheme)
)

// IsValidHexColor checks if a string is a valid hex color code (#RRGGBB or #RRGGBBAA)
func IsValidHexColor(hex string) bool {
	return hexColorRegex.MatchString(hex)
}

// IsValidTheme reports whether name is a registered chroma style.
func IsValidTheme(name string) bool {
	_, ok := chromastyles.Registry[name]
	return ok
}

// ListThemes returns the names of all chroma styles in sorted order.
func ListThemes() []string {
	return chromastyles.Names()
}

// GetCurrentThemeName returns the name of the active theme.
func GetCurrentThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// GetCurrentPalette returns the active palette.
func GetCurrentPalette() Palette {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentPalette
}

// PaletteFor derives a palette from the named chroma style. Unknown names use
// the chroma fallback style.
func PaletteFor(name string) Palette {
	style := chromastyles.Get(name)
	if style == nil {
		style = chromastyles.Fallback
	}
	p := fallbackPalette
	p.Tokens = make(map[lexical.TokenColor]chroma.StyleEntry, len(tokenTypes))

	bg := style.Get(chroma.Background)
	if bg.Background.IsSet() {
		p.Background = bg.Background.String()
		p.Surface = bg.Background.BrightenOrDarken(0.12).String()
		p.Selection = bg.Background.BrightenOrDarken(0.25).String()
		p.Similar = bg.Background.BrightenOrDarken(0.15).String()
	}
	if bg.Colour.IsSet() {
		p.Text = bg.Colour.String()
	}
	if e := style.Get(chroma.LineHighlight); e.Background.IsSet() {
		p.Selection = e.Background.String()
	}
	if e := style.Get(chroma.Comment); e.Colour.IsSet() {
		p.Muted = e.Colour.String()
	}
	if e := style.Get(chroma.LineNumbers); e.Colour.IsSet() {
		p.Subtle = e.Colour.String()
	}
	if e := style.Get(chroma.Keyword); e.Colour.IsSet() {
		p.Accent = e.Colour.String()
		p.Border = e.Colour.String()
	}
	if e := style.Get(chroma.Error); e.Colour.IsSet() {
		p.Error = e.Colour.String()
	}
	for c, tt := range tokenTypes {
		p.Tokens[c] = style.Get(tt)
	}

	p.MarkdownTheme = "dark"
	if bg.Background.IsSet() && bg.Background.Brightness() > 0.5 {
		p.MarkdownTheme = "light"
	}
	return p
}

// ApplyTheme activates the named chroma style with optional overrides. Override
// keys are palette fields ("text", "accent", ...) or token classes
// ("keyword", "comment", ...); invalid hex values are ignored.
func ApplyTheme(name string, overrides map[string]string) {
	if !IsValidTheme(name) {
		name = DefaultTheme
	}
	p := PaletteFor(name)
	applyOverrides(&p, overrides)

	themeMu.Lock()
	currentTheme = name
	currentPalette = p
	themeMu.Unlock()

	rebuildStyles(p)
}

func applyOverrides(p *Palette, overrides map[string]string) {
	for key, value := range overrides {
		if !IsValidHexColor(value) {
			continue
		}
		switch key {
		case "text":
			p.Text = value
		case "muted":
			p.Muted = value
		case "subtle":
			p.Subtle = value
		case "background":
			p.Background = value
		case "surface":
			p.Surface = value
		case "highlight":
			p.Highlight = value
		case "selection":
			p.Selection = value
		case "similar":
			p.Similar = value
		case "accent":
			p.Accent = value
		case "error":
			p.Error = value
		case "border":
			p.Border = value
		default:
			for c := range tokenTypes {
				if c.String() == key {
					e := p.Tokens[c]
					e.Colour = chroma.ParseColour(value)
					p.Tokens[c] = e
				}
			}
		}
	}
}

// GetMarkdownTheme returns the glamour style matching the active theme.
func GetMarkdownTheme() string {
	return GetCurrentPalette().MarkdownTheme
}
