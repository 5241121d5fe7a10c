// Package render turns stored text into display output: highlighted code
// snippets for the gallery and the terminal editor, and Markdown note bodies
// for the notes page.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultLanguage is used when a snippet gives no hint about its language.
// Most portfolio snippets are JavaScript.
const DefaultLanguage = "javascript"

const styleName = "monokai"

var (
	htmlFormatter = chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.TabWidth(4),
	)

	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			emoji.Emoji,
		),
		goldmark.WithRendererOptions(
			// Raw HTML in a note is escaped, never passed through.
			html.WithHardWraps(),
		),
	)

	// Links and images produced by Markdown survive; scripts and event
	// handlers do not.
	markdownPolicy = bluemonday.UGCPolicy()
)

func lexerFor(code, language string) chroma.Lexer {
	lexer := lexers.Get(language)
	if lexer == nil && language == "" {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Get(DefaultLanguage)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func style() *chroma.Style {
	if s := styles.Get(styleName); s != nil {
		return s
	}
	return styles.Fallback
}

// Highlight returns code as an inline-styled <pre> block. An empty language
// lets chroma guess. On any chroma failure the code is returned escaped.
func Highlight(code, language string) template.HTML {
	if strings.TrimSpace(code) == "" {
		return template.HTML("")
	}

	iterator, err := lexerFor(code, language).Tokenise(nil, code)
	if err != nil {
		return escapedPre(code)
	}

	var b bytes.Buffer
	if err := htmlFormatter.Format(&b, style(), iterator); err != nil {
		return escapedPre(code)
	}
	// chroma escapes every token it writes.
	return template.HTML(b.String())
}

// HighlightTerminal colors code with 256-color ANSI escapes for the TUI.
func HighlightTerminal(code, language string) string {
	if code == "" {
		return ""
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}
	iterator, err := lexerFor(code, language).Tokenise(nil, code)
	if err != nil {
		return code
	}

	var b bytes.Buffer
	if err := formatter.Format(&b, style(), iterator); err != nil {
		return code
	}
	return b.String()
}

// Markdown renders a note body to sanitized HTML.
func Markdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}

	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return escapedPre(src)
	}
	return template.HTML(markdownPolicy.SanitizeBytes(b.Bytes()))
}

func escapedPre(s string) template.HTML {
	return template.HTML("<pre>" + template.HTMLEscapeString(s) + "</pre>")
}
