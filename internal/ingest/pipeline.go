package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/models"
)

// maxExtractChars bounds the text sent to the extractor in one call.
const maxExtractChars = 48_000

// Pipeline turns text, documents and pages into persisted opportunities.
type Pipeline struct {
	Store     OpportunityStore
	Extractor Extractor
	Fetcher   Fetcher
}

func NewPipeline(store OpportunityStore, extractor Extractor, fetcher Fetcher) *Pipeline {
	if fetcher == nil {
		fetcher = NewCollyFetcher()
	}
	return &Pipeline{
		Store:     store,
		Extractor: extractor,
		Fetcher:   fetcher,
	}
}

// ImportText extracts opportunities from pasted text and saves the new ones.
// The returned slice holds only opportunities created by this call.
func (p *Pipeline) ImportText(ctx context.Context, text string) ([]models.Opportunity, error) {
	cleaned := SanitizeText(text)
	if cleaned == "" {
		return nil, ErrEmptyInput
	}
	return p.run(ctx, cleaned, "text")
}

// ImportDocument converts an uploaded file to text and imports it.
func (p *Pipeline) ImportDocument(ctx context.Context, filename string, content []byte) ([]models.Opportunity, error) {
	text, err := ExtractText(filename, content)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, text, filename)
}

// ImportURL fetches a page and imports the opportunities it lists.
func (p *Pipeline) ImportURL(ctx context.Context, pageURL string) ([]models.Opportunity, error) {
	doc, err := p.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if doc.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, pageURL, doc.StatusCode)
	}

	var text string
	if strings.Contains(doc.ContentType, "pdf") || strings.HasSuffix(strings.ToLower(doc.URL), ".pdf") {
		text, err = ExtractText("page.pdf", doc.Body)
		if err != nil {
			return nil, err
		}
	} else {
		text = HTMLToText(string(doc.Body))
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	return p.run(ctx, text, pageURL)
}

func (p *Pipeline) run(ctx context.Context, text, origin string) ([]models.Opportunity, error) {
	slog.Info("starting opportunity import", "origin", origin, "chars", len(text))

	candidates, err := p.Extractor.ExtractOpportunities(ctx, TruncateText(text, maxExtractChars))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	stats := Stats{Found: len(candidates)}
	seen := make(map[string]bool)
	var firstErr error
	created := make([]models.Opportunity, 0, len(candidates))

	for _, c := range candidates {
		opp, reason := NormalizeCandidate(c)
		if opp == nil {
			switch reason {
			case dropNoDeadline:
				stats.NoDeadline++
			default:
				stats.Incomplete++
			}
			slog.Info("skipping candidate", "funder", c.FunderName, "programme", c.ProgrammeName, "reason", reason)
			continue
		}

		key := dedupKey(opp.FunderName, opp.ProgrammeName, opp.Deadline)
		if seen[key] {
			stats.Duplicates++
			continue
		}
		seen[key] = true

		exists, err := p.Store.OpportunityExists(ctx, opp.FunderName, opp.ProgrammeName, opp.Deadline)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to check existing opportunity: %w", err)
			}
			stats.Failed++
			slog.Error("failed to check existing opportunity", "programme", opp.ProgrammeName, "error", err)
			continue
		}
		if exists {
			stats.Duplicates++
			continue
		}

		if err := p.Store.CreateOpportunity(ctx, opp); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				stats.Duplicates++
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to save opportunity %q: %w", opp.ProgrammeName, err)
			}
			stats.Failed++
			slog.Error("failed to save opportunity", "programme", opp.ProgrammeName, "error", err)
			continue
		}
		stats.Saved++
		created = append(created, *opp)
	}

	slog.Info("opportunity import complete",
		"origin", origin,
		"found", stats.Found,
		"saved", stats.Saved,
		"no_deadline", stats.NoDeadline,
		"incomplete", stats.Incomplete,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed,
	)
	// Whatever was saved is reported; the run only fails when nothing was.
	if len(created) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return created, nil
}

const (
	dropNoDeadline = "no parseable deadline"
	dropIncomplete = "missing funder or programme"
)

// NormalizeCandidate cleans an extracted candidate into an opportunity ready
// to save. It returns nil and a reason when the candidate is unusable.
func NormalizeCandidate(c ai.ExtractedOpportunity) (*models.Opportunity, string) {
	funder := cleanText(c.FunderName)
	programme := cleanText(c.ProgrammeName)
	if funder == "" || programme == "" {
		return nil, dropIncomplete
	}

	deadline, err := ParseDeadline(c.Deadline)
	if err != nil {
		return nil, dropNoDeadline
	}

	eligibility := c.Eligibility
	if eligibility == nil {
		eligibility = map[string]any{}
	}
	rules := c.BudgetRules
	if amount, ok := ParseAmount(c.Amount); ok {
		rules = amount.BudgetRules(rules)
	}
	if rules == nil {
		rules = map[string]any{}
	}

	return &models.Opportunity{
		FunderName:          funder,
		ProgrammeName:       programme,
		Deadline:            deadline,
		Status:              models.FundingToReview,
		EligibilityCriteria: eligibility,
		BudgetRules:         rules,
	}, ""
}

func dedupKey(funder, programme string, deadline models.Date) string {
	return strings.ToLower(funder) + "\x00" + strings.ToLower(programme) + "\x00" + deadline.String()
}
