package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	rpdf "rsc.io/pdf"
)

// ExtractText converts an uploaded document to plain text based on its
// extension. Supported: .pdf, .txt, .md, .markdown, .html, .htm.
func ExtractText(filename string, content []byte) (string, error) {
	var text string

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		extracted, err := extractPDFText(content)
		if err != nil {
			return "", fmt.Errorf("pdf text extraction failed: %w", err)
		}
		text = extracted
	case ".txt", ".md", ".markdown":
		text = string(content)
	case ".html", ".htm":
		text = HTMLToText(string(content))
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDocument, ext)
	}

	text = SanitizeText(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}

func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		var lastY float64
		for i, fragment := range page.Content().Text {
			if i > 0 && fragment.Y != lastY {
				builder.WriteString("\n")
			}
			builder.WriteString(fragment.S)
			lastY = fragment.Y
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
