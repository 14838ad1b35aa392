package syntax

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
)

// Detection strategies reported by Detect.
const (
	MethodFilename   = "filename"
	MethodExtension  = "extension"
	MethodClassifier = "classifier"
	MethodAnalyse    = "analyse"
	MethodFallback   = "fallback"
)

// Detection is the result of language detection.
type Detection struct {
	Lexer    chroma.Lexer
	Language string
	Method   string
}

// Detect picks a lexer for a file, trying the file name, then its extension,
// then content classification, then chroma's own analysers.
func Detect(filename string, content []byte) Detection {
	if filename != "" {
		if l := lexers.Match(filepath.Base(filename)); l != nil {
			return Detection{Lexer: l, Language: l.Config().Name, Method: MethodFilename}
		}
		if ext := filepath.Ext(filename); ext != "" {
			if l := lexers.Get(ext); l != nil {
				return Detection{Lexer: l, Language: l.Config().Name, Method: MethodExtension}
			}
		}
	}
	if len(content) > 0 {
		if lang := enry.GetLanguage(filepath.Base(filename), content); lang != "" {
			if l := lexers.Get(lang); l != nil {
				return Detection{Lexer: l, Language: l.Config().Name, Method: MethodClassifier}
			}
		}
		if l := lexers.Analyse(string(content)); l != nil {
			return Detection{Lexer: l, Language: l.Config().Name, Method: MethodAnalyse}
		}
	}
	return Detection{Lexer: lexers.Fallback, Language: lexers.Fallback.Config().Name, Method: MethodFallback}
}

// IsBinary reports whether content looks like binary data rather than text.
func IsBinary(content []byte) bool {
	return enry.IsBinary(content)
}
