package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

// MaxImportFileSize is the largest document the importer uploads.
const MaxImportFileSize = 10 << 20

var importExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

type ImportAPI interface {
	ImportText(ctx context.Context, text string) ([]models.Opportunity, error)
	ImportFile(ctx context.Context, filename string, r io.Reader) ([]models.Opportunity, error)
	ImportURL(ctx context.Context, pageURL string) ([]models.Opportunity, error)
}

// ImportResult holds the opportunities an import created. The server has
// already persisted them.
type ImportResult struct {
	Added []models.Opportunity
}

func (r ImportResult) Count() int { return len(r.Added) }

// Empty is the "no opportunities found" outcome. It is not an error.
func (r ImportResult) Empty() bool { return len(r.Added) == 0 }

// Importer sends text, documents or links for extraction and merges what
// comes back into the opportunity cache.
type Importer struct {
	api   ImportAPI
	cache *Cache[models.Opportunity]
}

func NewImporter(api ImportAPI, cache *Cache[models.Opportunity]) *Importer {
	if cache == nil {
		cache = NewCache(opportunityKey)
	}
	return &Importer{api: api, cache: cache}
}

func (im *Importer) FromText(ctx context.Context, text string) (ImportResult, error) {
	if strings.TrimSpace(text) == "" {
		return ImportResult{}, &ValidationError{Field: "text", Reason: "is required"}
	}
	return im.merge(im.api.ImportText(ctx, text))
}

// FromFile uploads a .pdf, .txt or .md document of at most
// MaxImportFileSize bytes.
func (im *Importer) FromFile(ctx context.Context, name string, r io.Reader) (ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !importExtensions[ext] {
		return ImportResult{}, &ValidationError{Field: "file", Reason: "must be a .pdf, .txt or .md document"}
	}

	content, err := io.ReadAll(io.LimitReader(r, MaxImportFileSize+1))
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(content) > MaxImportFileSize {
		return ImportResult{}, &ValidationError{Field: "file", Reason: "must not exceed 10 MiB"}
	}
	if len(content) == 0 {
		return ImportResult{}, &ValidationError{Field: "file", Reason: "is empty"}
	}

	return im.merge(im.api.ImportFile(ctx, filepath.Base(name), bytes.NewReader(content)))
}

// FromURL has the server fetch a public page and import what it lists.
func (im *Importer) FromURL(ctx context.Context, pageURL string) (ImportResult, error) {
	pageURL = strings.TrimSpace(pageURL)
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ImportResult{}, &ValidationError{Field: "url", Reason: "must be an http or https link"}
	}
	return im.merge(im.api.ImportURL(ctx, pageURL))
}

func (im *Importer) merge(added []models.Opportunity, err error) (ImportResult, error) {
	if err != nil {
		return ImportResult{}, err
	}
	im.cache.Upsert(added...)
	return ImportResult{Added: added}, nil
}

func opportunityKey(o models.Opportunity) uuid.UUID { return o.ID }
