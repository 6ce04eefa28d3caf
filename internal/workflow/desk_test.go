package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/api/apitest"
	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDesk(t *testing.T) (*Desk, *apitest.Env) {
	t.Helper()
	env := apitest.New(t)
	c, err := client.New(env.URL())
	require.NoError(t, err)
	return NewDesk(c), env
}

func TestIssue12CoverStory(t *testing.T) {
	desk, _ := newDesk(t)
	ctx := context.Background()

	project, err := desk.CreateProject(ctx, client.CreateProject{Title: "Issue 12"})
	require.NoError(t, err)

	ed, err := desk.CreateSection(ctx, project.ID, "Cover Story", nil)
	require.NoError(t, err)
	assert.Equal(t, models.SectionDraft, ed.Snapshot().Status)
	assert.Equal(t, 1, ed.Snapshot().Version)

	sec, err := ed.Save(ctx, "Draft text")
	require.NoError(t, err)
	assert.Equal(t, 2, sec.Version)

	sec, err = ed.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SectionReview, sec.Status)

	sec, err = ed.Reject(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SectionDraft, sec.Status)

	sec, err = ed.Save(ctx, "Draft text, second pass")
	require.NoError(t, err)
	assert.Equal(t, 3, sec.Version)

	_, err = ed.Submit(ctx)
	require.NoError(t, err)
	sec, err = ed.Approve(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SectionLocked, sec.Status)

	_, err = ed.Save(ctx, "one more edit")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrIllegalTransition)
	assert.Equal(t, 3, ed.Snapshot().Version)
	assert.Equal(t, "Draft text, second pass", ed.Snapshot().ContentText)

	for _, step := range []func(context.Context) (models.Section, error){ed.Submit, ed.Approve, ed.Reject, ed.Lock} {
		_, err := step(ctx)
		assert.ErrorIs(t, err, client.ErrConflict)
	}
	_, err = ed.Review(ctx)
	assert.ErrorIs(t, err, ErrSectionLocked)

	cached, ok := desk.Sections.Get(sec.ID)
	require.True(t, ok)
	assert.Equal(t, models.SectionLocked, cached.Status)

	sections, err := desk.LoadSections(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, 3, sections[0].Version)
}

func TestArtsCouncilDocumentaryFund(t *testing.T) {
	desk, _ := newDesk(t)
	ctx := context.Background()

	opp, err := desk.CreateOpportunity(ctx, client.CreateOpportunity{
		FunderName:    "Arts Council",
		ProgrammeName: "Documentary Fund",
		Deadline:      "2025-06-01",
	})
	require.NoError(t, err)

	app, err := desk.CreateApplication(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionDraft, app.Snapshot().SubmissionStatus)

	_, err = desk.CreateApplication(ctx, opp.ID)
	assert.ErrorIs(t, err, client.ErrAlreadyExists)

	saved, err := app.SaveDraft(ctx, "A year inside the harbour co-op.", `{"personnel": 1000, "equipment": 500}`)
	require.NoError(t, err)
	require.NotNil(t, saved.NarrativeDraft)
	assert.Equal(t, "A year inside the harbour co-op.", *saved.NarrativeDraft)
	assert.InDelta(t, 1500, app.BudgetTotal(), 1e-9)

	submitted, err := app.SubmitForApproval(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, submitted.SubmissionStatus)

	_, err = app.SaveDraft(ctx, "late change", `{"personnel": 2000}`)
	assert.ErrorIs(t, err, ErrApplicationLocked)
	assert.InDelta(t, 1500, app.BudgetTotal(), 1e-9)

	reopened, ok, err := desk.ApplicationFor(ctx, opp.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SubmissionApproved, reopened.Snapshot().SubmissionStatus)
	assert.InDelta(t, 1500, reopened.BudgetTotal(), 1e-9)
}

func TestImportWithNoCandidatesIsEmpty(t *testing.T) {
	desk, env := newDesk(t)
	ctx := context.Background()
	env.AI.SetOpportunities()

	res, err := desk.Importer().FromText(ctx, "Nothing is open this month.")
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Zero(t, desk.Opportunities.Len())

	env.AI.SetOpportunities(
		ai.ExtractedOpportunity{FunderName: "Arts Council", ProgrammeName: "Documentary Fund", Deadline: "June 1, 2025"},
		ai.ExtractedOpportunity{FunderName: "Film Trust", ProgrammeName: "Shorts", Deadline: "30/09/2025"},
	)
	res, err = desk.Importer().FromText(ctx, "two calls")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count())
	assert.Equal(t, 2, desk.Opportunities.Len())

	res, err = desk.Importer().FromText(ctx, "the same two calls")
	require.NoError(t, err)
	assert.True(t, res.Empty())

	opps, err := desk.LoadOpportunities(ctx)
	require.NoError(t, err)
	assert.Len(t, opps, 2)
}

func TestScanTwiceKeepsAssetsUnique(t *testing.T) {
	desk, _ := newDesk(t)
	ctx := context.Background()

	dir := t.TempDir()
	for _, name := range []string{"cover.jpg", "portrait.png", "interview.wav", "release.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	project, err := desk.CreateProject(ctx, client.CreateProject{Title: "Issue 12"})
	require.NoError(t, err)

	created, err := desk.ScanDirectory(ctx, project.ID, dir)
	require.NoError(t, err)
	assert.Len(t, created, 4)

	created, err = desk.ScanDirectory(ctx, project.ID, dir)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Equal(t, 4, desk.Assets.Len())

	seen := map[string]bool{}
	for _, a := range desk.Assets.Items() {
		assert.False(t, seen[a.FilePath], a.FilePath)
		seen[a.FilePath] = true
	}

	credit := "Photo: R. Mokoena"
	first := desk.Assets.Items()[0]
	updated, err := desk.SetAssetRights(ctx, first.ID, models.RightsCleared, &credit)
	require.NoError(t, err)
	assert.Equal(t, models.RightsCleared, updated.RightsStatus)
	cached, _ := desk.Assets.Get(first.ID)
	assert.Equal(t, models.RightsCleared, cached.RightsStatus)

	_, err = desk.ScanDirectory(ctx, project.ID, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, client.ErrInvalid)
}

func TestOpenMissingSection(t *testing.T) {
	desk, _ := newDesk(t)

	ed, ok, err := desk.OpenSection(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ed)
}

func TestClearAllEmptiesCaches(t *testing.T) {
	desk, _ := newDesk(t)
	ctx := context.Background()

	_, err := desk.CreateProject(ctx, client.CreateProject{Title: "Issue 12"})
	require.NoError(t, err)
	require.Equal(t, 1, desk.Projects.Len())

	require.NoError(t, desk.ClearAll(ctx))
	assert.Zero(t, desk.Projects.Len())

	projects, err := desk.LoadProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	stats, err := desk.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Counts.Projects)
}
