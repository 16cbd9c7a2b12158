package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownOptions controls how markdown bearing blocks are converted to HTML.
type MarkdownOptions struct {
	// SafeMode drops raw HTML embedded in block content.
	SafeMode   bool
	HardWraps  bool
	Extensions []string
}

// Markdown converts block content with goldmark. It holds no per call state, so one instance
// can serve concurrent renders.
type Markdown struct {
	opts MarkdownOptions
}

// NewMarkdown constructs a converter. Unknown extension names are ignored.
func NewMarkdown(opts MarkdownOptions) *Markdown {
	return &Markdown{opts: opts}
}

// Convert renders source into HTML. Blank input yields an empty string.
func (m *Markdown) Convert(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	opts := MarkdownOptions{SafeMode: true}
	if m != nil {
		opts = m.opts
	}
	var buf bytes.Buffer
	if err := newEngine(opts).Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return buf.String(), nil
}

func newEngine(opts MarkdownOptions) goldmark.Markdown {
	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"typographer":   extension.Typographer,
}

// MarkdownExtensions lists the extension names accepted by MarkdownOptions, sorted.
func MarkdownExtensions() []string {
	return slices.Sorted(maps.Keys(extensionRegistry))
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify}
	}
	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
