package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	items []ai.ExtractedOpportunity
	err   error
	texts []string
}

func (f *fakeExtractor) ExtractOpportunities(_ context.Context, text string) ([]ai.ExtractedOpportunity, error) {
	f.texts = append(f.texts, text)
	return f.items, f.err
}

type memOpportunities struct {
	saved []models.Opportunity
	// failures answers CreateOpportunity for the named programme.
	failures map[string]error
}

func (m *memOpportunities) OpportunityExists(_ context.Context, funder, programme string, deadline models.Date) (bool, error) {
	for _, o := range m.saved {
		if strings.EqualFold(o.FunderName, funder) && strings.EqualFold(o.ProgrammeName, programme) && o.Deadline.Equal(deadline.Time) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOpportunities) CreateOpportunity(_ context.Context, o *models.Opportunity) error {
	if err := m.failures[o.ProgrammeName]; err != nil {
		return err
	}
	o.ID = uuid.New()
	m.saved = append(m.saved, *o)
	return nil
}

type fakeFetcher struct {
	doc *FetchedDocument
}

func (f fakeFetcher) Fetch(context.Context, string) (*FetchedDocument, error) {
	return f.doc, nil
}

func documentaryFund() ai.ExtractedOpportunity {
	return ai.ExtractedOpportunity{
		FunderName:    " Arts Council ",
		ProgrammeName: "Documentary   Fund",
		Deadline:      "30 June 2025",
		Amount:        "up to £10,000",
	}
}

func TestImportText_SavesNormalizedOpportunities(t *testing.T) {
	store := &memOpportunities{}
	extractor := &fakeExtractor{items: []ai.ExtractedOpportunity{
		documentaryFund(),
		{FunderName: "Lottery", ProgrammeName: "Rolling Grants", Deadline: "rolling"},
		{FunderName: "", ProgrammeName: "Nameless", Deadline: "2025-01-01"},
	}}
	p := NewPipeline(store, extractor, fakeFetcher{})

	created, err := p.ImportText(context.Background(), "<p>Call for documentaries</p>")
	require.NoError(t, err)
	require.Len(t, created, 1)

	opp := created[0]
	assert.NotEqual(t, uuid.Nil, opp.ID)
	assert.Equal(t, "Arts Council", opp.FunderName)
	assert.Equal(t, "Documentary Fund", opp.ProgrammeName)
	assert.Equal(t, "2025-06-30", opp.Deadline.String())
	assert.Equal(t, models.FundingToReview, opp.Status)
	assert.Equal(t, 10000.0, opp.BudgetRules["amount_max"])
	assert.Equal(t, "GBP", opp.BudgetRules["currency"])
	assert.NotNil(t, opp.EligibilityCriteria)
	assert.Equal(t, []string{"Call for documentaries"}, extractor.texts)
}

func TestImportText_SkipsExistingAndRepeated(t *testing.T) {
	store := &memOpportunities{}
	dup := documentaryFund()
	dup.FunderName = "ARTS COUNCIL"
	dup.Deadline = "2025-06-30"
	extractor := &fakeExtractor{items: []ai.ExtractedOpportunity{documentaryFund(), dup}}
	p := NewPipeline(store, extractor, fakeFetcher{})

	first, err := p.ImportText(context.Background(), "call")
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := p.ImportText(context.Background(), "call")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, store.saved, 1)
}

func TestImportText_ReportsWhatWasSaved(t *testing.T) {
	store := &memOpportunities{failures: map[string]error{
		"Raced Fund":  db.ErrDuplicate,
		"Broken Fund": errors.New("connection reset"),
	}}
	extractor := &fakeExtractor{items: []ai.ExtractedOpportunity{
		documentaryFund(),
		{FunderName: "Arts Council", ProgrammeName: "Raced Fund", Deadline: "2025-07-01"},
		{FunderName: "Arts Council", ProgrammeName: "Broken Fund", Deadline: "2025-07-02"},
		{FunderName: "NLPC", ProgrammeName: "Heritage Grants", Deadline: "2025-08-15"},
	}}
	p := NewPipeline(store, extractor, fakeFetcher{})

	created, err := p.ImportText(context.Background(), "four calls")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Documentary Fund", created[0].ProgrammeName)
	assert.Equal(t, "Heritage Grants", created[1].ProgrammeName)
}

func TestImportText_FailsWhenNothingSaved(t *testing.T) {
	store := &memOpportunities{failures: map[string]error{"Documentary Fund": errors.New("connection reset")}}
	p := NewPipeline(store, &fakeExtractor{items: []ai.ExtractedOpportunity{documentaryFund()}}, fakeFetcher{})

	created, err := p.ImportText(context.Background(), "call")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, created)
}

func TestImportText_EmptyExtractionIsNotAnError(t *testing.T) {
	p := NewPipeline(&memOpportunities{}, &fakeExtractor{}, fakeFetcher{})

	created, err := p.ImportText(context.Background(), "nothing to see")
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestImportText_Errors(t *testing.T) {
	p := NewPipeline(&memOpportunities{}, &fakeExtractor{err: errors.New("connection refused")}, fakeFetcher{})

	_, err := p.ImportText(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.ImportText(context.Background(), "call text")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestImportURL_ConvertsHTML(t *testing.T) {
	extractor := &fakeExtractor{items: []ai.ExtractedOpportunity{documentaryFund()}}
	fetcher := fakeFetcher{doc: &FetchedDocument{
		URL:         "https://example.org/funding",
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte("<html><body><p>Documentary Fund</p><p>Deadline 30 June 2025</p></body></html>"),
	}}
	p := NewPipeline(&memOpportunities{}, extractor, fetcher)

	created, err := p.ImportURL(context.Background(), "https://example.org/funding")
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, []string{"Documentary Fund\nDeadline 30 June 2025"}, extractor.texts)
}

func TestImportURL_UpstreamStatus(t *testing.T) {
	fetcher := fakeFetcher{doc: &FetchedDocument{URL: "https://example.org/x", StatusCode: 404}}
	p := NewPipeline(&memOpportunities{}, &fakeExtractor{}, fetcher)

	_, err := p.ImportURL(context.Background(), "https://example.org/x")
	assert.ErrorIs(t, err, ErrFetch)
}
