package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/models"
)

var (
	ErrEmptyInput          = errors.New("no text to import")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrExtraction          = errors.New("opportunity extraction failed")
	ErrFetch               = errors.New("page fetch failed")
)

// FetchedDocument is a page retrieved for import-from-URL.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// Extractor turns free text into raw opportunity candidates.
type Extractor interface {
	ExtractOpportunities(ctx context.Context, text string) ([]ai.ExtractedOpportunity, error)
}

// OpportunityStore is the persistence the pipeline needs.
type OpportunityStore interface {
	OpportunityExists(ctx context.Context, funderName, programmeName string, deadline models.Date) (bool, error)
	CreateOpportunity(ctx context.Context, o *models.Opportunity) error
}

// Stats summarizes one import run.
type Stats struct {
	Found      int
	Saved      int
	NoDeadline int
	Incomplete int
	Duplicates int
	Failed     int
}
