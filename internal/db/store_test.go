package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/david/studio-desk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.ClearAll(ctx))

	t.Run("projects newest first", func(t *testing.T) {
		first := &models.Project{Title: "Issue 11", Status: models.ProjectPlanning}
		second := &models.Project{Title: "Issue 12", Status: models.ProjectPlanning}
		require.NoError(t, s.CreateProject(ctx, first))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, s.CreateProject(ctx, second))

		projects, err := s.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "Issue 12", projects[0].Title)

		updated, err := s.UpdateProjectStatus(ctx, first.ID, models.ProjectInProgress)
		require.NoError(t, err)
		assert.Equal(t, models.ProjectInProgress, updated.Status)
	})

	project := &models.Project{Title: "Issue 13", Status: models.ProjectPlanning}
	require.NoError(t, s.CreateProject(ctx, project))

	t.Run("section updates are conditional", func(t *testing.T) {
		sec := &models.Section{ProjectID: project.ID, Title: "Cover Story", Version: 1, Status: models.SectionDraft}
		require.NoError(t, s.CreateSection(ctx, sec))

		sec.ContentText = "Draft text"
		sec.Version = 2
		require.NoError(t, s.UpdateSection(ctx, sec, 1, models.SectionDraft))

		stale := *sec
		stale.Version = 2
		assert.ErrorIs(t, s.UpdateSection(ctx, &stale, 1, models.SectionDraft), ErrVersionConflict)

		got, err := s.GetSection(ctx, sec.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "Draft text", got.ContentText)
	})

	t.Run("sections ordered by index", func(t *testing.T) {
		require.NoError(t, s.CreateSection(ctx, &models.Section{ProjectID: project.ID, Title: "Intro", Version: 1, Status: models.SectionDraft, OrderIndex: -1}))
		sections, err := s.ListSections(ctx, project.ID)
		require.NoError(t, err)
		require.NotEmpty(t, sections)
		assert.Equal(t, "Intro", sections[0].Title)
	})

	t.Run("assets skip known paths", func(t *testing.T) {
		batch := []models.Asset{
			{ProjectID: project.ID, Type: models.AssetPhoto, FilePath: "/archive/a.jpg", RightsStatus: models.RightsUnknown, UsageScope: models.UsagePrint},
			{ProjectID: project.ID, Type: models.AssetAudio, FilePath: "/archive/b.wav", RightsStatus: models.RightsUnknown, UsageScope: models.UsagePrint},
		}
		created, err := s.CreateAssets(ctx, batch)
		require.NoError(t, err)
		assert.Len(t, created, 2)

		again, err := s.CreateAssets(ctx, batch)
		require.NoError(t, err)
		assert.Empty(t, again)

		all, err := s.ListAssets(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		credit := "Photo: J. Smith"
		updated, err := s.UpdateAssetRights(ctx, all[0].ID, models.RightsCleared, &credit)
		require.NoError(t, err)
		assert.Equal(t, models.RightsCleared, updated.RightsStatus)
		require.NotNil(t, updated.CreditLine)
		assert.Equal(t, credit, *updated.CreditLine)
	})

	t.Run("opportunities and applications", func(t *testing.T) {
		opp := &models.Opportunity{
			FunderName:    "Arts Council",
			ProgrammeName: "Documentary Fund",
			Deadline:      models.NewDate(2099, time.June, 30),
			Status:        models.FundingToReview,
			BudgetRules:   map[string]any{"amount_max": 10000.0},
		}
		require.NoError(t, s.CreateOpportunity(ctx, opp))

		exists, err := s.OpportunityExists(ctx, "arts council", "DOCUMENTARY FUND", models.NewDate(2099, time.June, 30))
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := s.GetOpportunity(ctx, opp.ID)
		require.NoError(t, err)
		assert.Equal(t, 10000.0, got.BudgetRules["amount_max"])
		assert.Equal(t, "2099-06-30", got.Deadline.String())

		app := &models.ApplicationPackage{OpportunityID: opp.ID, SubmissionStatus: models.SubmissionDraft}
		require.NoError(t, s.CreateApplication(ctx, app))
		assert.ErrorIs(t, s.CreateApplication(ctx, &models.ApplicationPackage{OpportunityID: opp.ID, SubmissionStatus: models.SubmissionDraft}), ErrDuplicate)

		narrative := "Our film"
		app.NarrativeDraft = &narrative
		app.BudgetJSON = models.Budget{"crew": 1000.0}
		require.NoError(t, s.UpdateApplication(ctx, app))

		loaded, err := s.GetApplicationByOpportunity(ctx, opp.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, loaded.ID)
		assert.Equal(t, 1000.0, loaded.BudgetJSON.Total())

		upcoming, err := s.UpcomingDeadlines(ctx, models.DateOf(time.Now()), 3)
		require.NoError(t, err)
		require.Len(t, upcoming, 1)
		assert.Equal(t, opp.ID, upcoming[0].ID)
	})

	t.Run("clear all", func(t *testing.T) {
		require.NoError(t, s.ClearAll(ctx))
		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DashboardCounts{}, counts)

		_, err = s.GetProject(ctx, project.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	opp := &models.Opportunity{FunderName: "A", ProgrammeName: "B", Deadline: models.NewDate(2030, 1, 1), BudgetRules: map[string]any{"cap": 1.0}}
	require.NoError(t, s.CreateOpportunity(ctx, opp))

	got, err := s.GetOpportunity(ctx, opp.ID)
	require.NoError(t, err)
	got.BudgetRules["cap"] = 99.0

	again, err := s.GetOpportunity(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.BudgetRules["cap"])
}

func TestPostgresStore(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("database unreachable: %v", err)
	}
	defer pool.Close()

	require.NoError(t, ApplyMigrations(context.Background(), pool))
	exerciseStore(t, NewPostgresStore(pool))
}
