package view

import (
	"bytes"
	stdhtml "html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// 内容可能直接包含编辑器产生的 HTML，交给 bluemonday 统一清洗
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts markdown (or embedded HTML) into sanitized HTML safe to emit unescaped.
func RenderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// PlainText strips every tag from content, used for dashboard excerpts.
func PlainText(content string, limit int) string {
	text := []rune(stdhtml.UnescapeString(bluemonday.StrictPolicy().Sanitize(content)))
	if limit > 0 && len(text) > limit {
		return string(text[:limit]) + "…"
	}
	return string(text)
}
