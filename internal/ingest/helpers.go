package ingest

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// normalizeSpace collapses runs of whitespace into one space and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanText(s string) string {
	return normalizeSpace(sanitizeUTF8(s))
}

// sanitizeUTF8 drops invalid byte sequences that Postgres rejects.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// SanitizeText strips any markup from pasted text and keeps line breaks.
func SanitizeText(s string) string {
	stripped := strictPolicy.Sanitize(sanitizeUTF8(s))
	stripped = html.UnescapeString(stripped)

	lines := strings.Split(strings.ReplaceAll(stripped, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = normalizeSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// HTMLToText converts an HTML page to plain text, dropping scripts and styles.
func HTMLToText(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return SanitizeText(page)
	}
	doc.Find("script, style, noscript, nav, footer").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, p, li, td, th, dt, dd").Each(func(_ int, sel *goquery.Selection) {
		if text := cleanText(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		return cleanText(doc.Text())
	}
	return strings.Join(blocks, "\n")
}

// TruncateText cuts a string to maxLen bytes on a rune boundary.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
