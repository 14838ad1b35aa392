package styles

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/lexview/internal/lexical"
)

// Styles rebuilt by ApplyTheme. The Bubble Tea model only reads them from its
// update loop.
var (
	Body          lipgloss.Style
	Muted         lipgloss.Style
	Title         lipgloss.Style
	ErrorText     lipgloss.Style
	Gutter        lipgloss.Style
	GutterCurrent lipgloss.Style
	StatusBar     lipgloss.Style
	StatusMode    lipgloss.Style
	KeyHint       lipgloss.Style
	Prompt        lipgloss.Style
	Cursor        lipgloss.Style
	Selected      lipgloss.Style
	Similar       lipgloss.Style
	FoldMarker    lipgloss.Style
	HexOffset     lipgloss.Style
	HexASCII      lipgloss.Style
	ModalBox      lipgloss.Style
	Metadata      lipgloss.Style
	ScrollTrack   lipgloss.Style
	ScrollThumb   lipgloss.Style

	tokenStyles = map[lexical.TokenColor]lipgloss.Style{}
)

func init() {
	ApplyTheme(DefaultTheme, nil)
}

// rebuildStyles recreates all lipgloss styles from p.
func rebuildStyles(p Palette) {
	text := lipgloss.Color(p.Text)

	Body = lipgloss.NewStyle().Foreground(text)
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
	Title = lipgloss.NewStyle().Bold(true).Foreground(text)
	ErrorText = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)).Bold(true)

	Gutter = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Subtle)).
		Align(lipgloss.Right)
	GutterCurrent = Gutter.
		Foreground(text).
		Bold(true)

	StatusBar = lipgloss.NewStyle().
		Foreground(text).
		Background(lipgloss.Color(p.Surface))
	StatusMode = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Background)).
		Background(lipgloss.Color(p.Accent)).
		Bold(true).
		Padding(0, 1)
	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Muted)).
		Background(lipgloss.Color(p.Surface)).
		Padding(0, 1)
	Prompt = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Accent)).
		Bold(true)

	Cursor = lipgloss.NewStyle().
		Background(lipgloss.Color(p.Highlight)).
		Foreground(text)
	Selected = lipgloss.NewStyle().Background(lipgloss.Color(p.Selection))
	Similar = lipgloss.NewStyle().
		Background(lipgloss.Color(p.Similar)).
		Underline(true)
	FoldMarker = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Accent)).
		Background(lipgloss.Color(p.Surface))

	HexOffset = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Subtle))
	HexASCII = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Border)).
		Padding(0, 1)
	Metadata = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(p.Subtle)).
		Foreground(lipgloss.Color(p.Muted)).
		PaddingLeft(1)

	ScrollTrack = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border))
	ScrollThumb = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))

	styles := make(map[lexical.TokenColor]lipgloss.Style, len(p.Tokens))
	for c, entry := range p.Tokens {
		styles[c] = entryStyle(entry, text)
	}
	tokenStyles = styles
}

// entryStyle converts a chroma style entry to a lipgloss style. Italic is not
// applied; it breaks width calculations in some terminals.
func entryStyle(entry chroma.StyleEntry, fallback lipgloss.Color) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(fallback)
	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}
	return style
}

// Token returns the style for a token display class.
func Token(c lexical.TokenColor) lipgloss.Style {
	if s, ok := tokenStyles[c]; ok {
		return s
	}
	return Body
}
