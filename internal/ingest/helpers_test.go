package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	in := "<p>Arts Council &amp; Friends</p>\n\n<script>alert(1)</script>  Documentary   Fund \r\n"
	got := SanitizeText(in)

	if strings.Contains(got, "<") || strings.Contains(got, "alert") {
		t.Fatalf("markup survived sanitizing: %q", got)
	}
	if !strings.Contains(got, "Arts Council & Friends") {
		t.Fatalf("entities should be unescaped: %q", got)
	}
	if !strings.Contains(got, "Documentary Fund") {
		t.Fatalf("whitespace should be collapsed: %q", got)
	}
}

func TestHTMLToText(t *testing.T) {
	page := `<html><head><style>p{}</style></head><body>
		<nav>Home | About</nav>
		<h1>Open calls</h1>
		<p>Documentary Fund closes <b>30 June 2025</b>.</p>
		<ul><li>Up to £10,000</li></ul>
		<script>track()</script>
	</body></html>`

	got := HTMLToText(page)
	want := "Open calls\nDocumentary Fund closes 30 June 2025.\nUp to £10,000"
	if got != want {
		t.Fatalf("HTMLToText = %q, want %q", got, want)
	}
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText("call.md", []byte("# Documentary Fund\n\nDeadline 30 June 2025"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Documentary Fund") {
		t.Fatalf("unexpected text: %q", text)
	}

	if _, err := ExtractText("call.docx", []byte("x")); !errors.Is(err, ErrUnsupportedDocument) {
		t.Fatalf("expected ErrUnsupportedDocument, got %v", err)
	}
	if _, err := ExtractText("empty.txt", []byte("  \n ")); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := ExtractText("broken.pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected error for broken pdf")
	}
}

func TestTruncateText_RuneBoundary(t *testing.T) {
	got := TruncateText("££££", 3)
	if got != "£" {
		t.Fatalf("expected a single pound sign, got %q", got)
	}
}
