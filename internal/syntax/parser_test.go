package syntax

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/wilbur182/lexview/internal/lexical"
)

func newEngine(t *testing.T, p *Parser, text string) *lexical.Engine {
	t.Helper()
	e, err := lexical.New(text, lexical.DefaultSettings(p), lexical.WithViewport(80, 25))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func tokenTexts(e *lexical.Engine) []string {
	out := make([]string, e.Len())
	for i := range out {
		tok, _ := e.Token(i)
		out[i] = tok.Text(e.Text())
	}
	return out
}

func TestParse_GoFunction(t *testing.T) {
	src := "func main() {\n\tx := 1\n}\n"
	e := newEngine(t, NewParser(lexers.Get("go")), src)

	got := strings.Join(tokenTexts(e), " ")
	if got != "func main ( ) { x := 1 }" {
		t.Errorf("unexpected tokens %q", got)
	}
	for i := 0; i < e.Len(); i++ {
		tok, _ := e.Token(i)
		if strings.TrimSpace(tok.Text(src)) != tok.Text(src) || tok.Text(src) == "" {
			t.Errorf("token %d has surrounding whitespace: %q", i, tok.Text(src))
		}
	}

	// Empty parens do not form a block.
	if e.BlockCount() != 1 {
		t.Fatalf("expected 1 block, got %d", e.BlockCount())
	}
	b, _ := e.Block(0)
	if b.TokenStart != 4 || b.TokenEnd != 8 || !b.HasEndMarker || b.Align != lexical.BlockAlignIndent {
		t.Errorf("unexpected block %+v", *b)
	}
	if b.FoldMessage != "... 1 line" {
		t.Errorf("expected fold message '... 1 line', got %q", b.FoldMessage)
	}

	kw, _ := e.Token(0)
	if kw.Color != lexical.ColorKeyword {
		t.Errorf("expected keyword color for func, got %s", kw.Color)
	}
	num, _ := e.Token(7)
	if num.Color != lexical.ColorNumber {
		t.Errorf("expected number color for 1, got %s", num.Color)
	}
	brace, _ := e.Token(4)
	if brace.Hash != 0 || !brace.Status.IsHashDisabled() {
		t.Error("expected punctuation to be excluded from similarity")
	}
	if x, _ := e.Token(5); x.Y != 1 || x.X != 4 {
		t.Errorf("expected x at (4,1) in pretty layout, got (%d,%d)", x.X, x.Y)
	}
}

func TestParse_SplitsCoalescedPunctuation(t *testing.T) {
	src := "f(g(x))"
	e := newEngine(t, NewParser(lexers.Get("go")), src)
	got := tokenTexts(e)
	want := []string{"f", "(", "g", "(", "x", ")", ")"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if e.BlockCount() != 2 {
		t.Fatalf("expected 2 nested blocks, got %d", e.BlockCount())
	}
	outer, _ := e.Block(0)
	inner, _ := e.Block(1)
	if !outer.Encloses(inner) || outer.Align != lexical.BlockAlignInline {
		t.Errorf("unexpected blocks %+v %+v", *outer, *inner)
	}
}

func TestParse_UnbalancedBrackets(t *testing.T) {
	e := newEngine(t, NewParser(lexers.Get("go")), "a ) b ( c [ d ]")
	if e.BlockCount() != 1 {
		t.Fatalf("expected only the [ ] block, got %d", e.BlockCount())
	}
	b, _ := e.Block(0)
	if tok, _ := e.Token(b.TokenStart); tok.Text(e.Text()) != "[" {
		t.Errorf("expected block to start at [, got %q", tok.Text(e.Text()))
	}
}

func TestParse_CommentKeptWhole(t *testing.T) {
	src := "/* a\n b */ x"
	e := newEngine(t, NewParser(lexers.Get("go")), src)
	if e.Len() != 2 {
		t.Fatalf("expected comment and identifier, got %v", tokenTexts(e))
	}
	c, _ := e.Token(0)
	if c.Color != lexical.ColorComment || c.Height != 2 {
		t.Errorf("expected two-line comment token, got color %s height %d", c.Color, c.Height)
	}
}

func TestParse_PlainText(t *testing.T) {
	e := newEngine(t, NewParser(nil), "hello  world\nagain")
	if got := strings.Join(tokenTexts(e), " "); got != "hello world again" {
		t.Errorf("unexpected tokens %q", got)
	}
	if e.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", e.LineCount())
	}
}

func TestParse_CRLF(t *testing.T) {
	src := "a := 1\r\nb := 2\r\n"
	e := newEngine(t, NewParser(lexers.Get("go")), src)
	last, _ := e.Token(e.Len() - 1)
	if last.Text(src) != "2" || src[last.Start:last.End] != "2" {
		t.Errorf("expected offsets to survive CRLF, got %q", src[last.Start:last.End])
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		language string
		method   string
	}{
		{"go by name", "main.go", "", "Go", MethodFilename},
		{"python by shebang", "script", "#!/usr/bin/env python3\nimport os\n", "Python", MethodClassifier},
		{"nothing to go on", "", "", "plaintext", MethodFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Detect(tt.filename, []byte(tt.content))
			if d.Language != tt.language || d.Method != tt.method {
				t.Errorf("Detect(%q) = %s via %s, want %s via %s", tt.filename, d.Language, d.Method, tt.language, tt.method)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	if !IsBinary([]byte{0x7f, 'E', 'L', 'F', 0, 0, 0, 1}) {
		t.Error("expected ELF header to be binary")
	}
	if IsBinary([]byte("package main\n")) {
		t.Error("expected Go source to be text")
	}
}
