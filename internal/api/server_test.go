package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/api/apitest"
	"github.com/david/studio-desk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

type conflictBody struct {
	Detail struct {
		Message string   `json:"message"`
		Code    string   `json:"code"`
		Errors  []string `json:"errors"`
	} `json:"detail"`
}

func TestHealth(t *testing.T) {
	env := apitest.New(t)

	status, body := do(t, http.MethodGet, env.Server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))
}

func TestSectionEndpoints(t *testing.T) {
	env := apitest.New(t)

	status, body := do(t, http.MethodPost, env.URL()+"/projects", map[string]any{"title": "Issue 12"})
	require.Equal(t, http.StatusCreated, status, string(body))
	project := decode[models.Project](t, body)
	assert.Equal(t, models.ProjectPlanning, project.Status)

	status, body = do(t, http.MethodPost, env.URL()+"/projects/"+project.ID.String()+"/sections", map[string]any{"title": "Cover Story"})
	require.Equal(t, http.StatusCreated, status, string(body))
	sec := decode[models.Section](t, body)
	assert.Equal(t, 1, sec.Version)
	assert.Equal(t, models.SectionDraft, sec.Status)

	secURL := env.URL() + "/sections/" + sec.ID.String()

	status, body = do(t, http.MethodPut, secURL, map[string]any{"content_text": "The harbour at dawn, photographed over a year."})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, 2, decode[models.Section](t, body).Version)

	status, _ = do(t, http.MethodPost, secURL+"/approve", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = do(t, http.MethodPost, secURL+"/submit", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.SectionReview, decode[models.Section](t, body).Status)

	status, body = do(t, http.MethodPut, secURL, map[string]any{"content_text": "late edit"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "illegal_transition", decode[conflictBody](t, body).Detail.Code)

	status, body = do(t, http.MethodPost, secURL+"/review", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "- Sharpen the lede of Cover Story", decode[string](t, body))

	status, body = do(t, http.MethodPost, secURL+"/approve", nil)
	require.Equal(t, http.StatusOK, status)
	locked := decode[models.Section](t, body)
	assert.Equal(t, models.SectionLocked, locked.Status)
	assert.Equal(t, 2, locked.Version)

	for _, action := range []string{"submit", "approve", "reject", "lock", "review"} {
		status, _ = do(t, http.MethodPost, secURL+"/"+action, nil)
		assert.Equal(t, http.StatusConflict, status, action)
	}

	status, body = do(t, http.MethodGet, env.URL()+"/projects/"+project.ID.String()+"/sections", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Section](t, body), 1)
}

func TestLockChecksReportProblems(t *testing.T) {
	env := apitest.New(t)

	_, body := do(t, http.MethodPost, env.URL()+"/projects", map[string]any{"title": "Issue 13"})
	project := decode[models.Project](t, body)
	_, body = do(t, http.MethodPost, env.URL()+"/projects/"+project.ID.String()+"/sections", map[string]any{"title": "Letters"})
	sec := decode[models.Section](t, body)

	status, body := do(t, http.MethodPost, env.URL()+"/sections/"+sec.ID.String()+"/lock", nil)
	require.Equal(t, http.StatusConflict, status)
	detail := decode[conflictBody](t, body).Detail
	assert.Equal(t, "lock_checks", detail.Code)
	assert.Contains(t, detail.Errors, "Content is too short to lock.")
}

func TestNotFoundAndBadRequests(t *testing.T) {
	env := apitest.New(t)

	status, body := do(t, http.MethodGet, env.URL()+"/sections/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Section not found", decode[map[string]string](t, body)["detail"])

	status, _ = do(t, http.MethodGet, env.URL()+"/sections/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, http.MethodPost, env.URL()+"/projects", map[string]any{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body), "title is required")
}

func TestScanDirectory(t *testing.T) {
	env := apitest.New(t)
	dir := t.TempDir()
	for _, name := range []string{"cover.jpg", "interview.mp3", "notes.docx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	_, body := do(t, http.MethodPost, env.URL()+"/projects", map[string]any{"title": "Issue 12"})
	project := decode[models.Project](t, body)
	scanURL := env.URL() + "/projects/" + project.ID.String() + "/scan"

	status, body := do(t, http.MethodPost, scanURL, map[string]any{"directory_path": dir})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Len(t, decode[[]models.Asset](t, body), 2)

	status, body = do(t, http.MethodPost, scanURL, map[string]any{"directory_path": dir})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Asset](t, body))

	status, body = do(t, http.MethodPost, scanURL, map[string]any{"directory_path": filepath.Join(dir, "missing")})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "Directory not found")

	_, body = do(t, http.MethodGet, env.URL()+"/projects/"+project.ID.String()+"/assets", nil)
	assets := decode[[]models.Asset](t, body)
	require.Len(t, assets, 2)

	status, body = do(t, http.MethodPut, env.URL()+"/assets/"+assets[0].ID.String(), map[string]any{
		"rights_status": "Cleared",
		"credit_line":   "Photo: R. Mokoena",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.Asset](t, body)
	assert.Equal(t, models.RightsCleared, updated.RightsStatus)
	require.NotNil(t, updated.CreditLine)

	status, _ = do(t, http.MethodPut, env.URL()+"/assets/"+assets[0].ID.String(), map[string]any{"rights_status": "Stolen"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestImportText(t *testing.T) {
	env := apitest.New(t)
	env.AI.SetOpportunities(
		ai.ExtractedOpportunity{FunderName: "Arts Council", ProgrammeName: "Documentary Fund", Deadline: "1 June 2025", Amount: "up to £20,000"},
		ai.ExtractedOpportunity{FunderName: "Arts Council", ProgrammeName: "No Date Fund", Deadline: "rolling"},
	)

	status, body := do(t, http.MethodPost, env.URL()+"/opportunities/import", map[string]any{"text": "Arts Council Documentary Fund closes 1 June 2025"})
	require.Equal(t, http.StatusOK, status, string(body))
	added := decode[[]models.Opportunity](t, body)
	require.Len(t, added, 1)
	assert.Equal(t, "2025-06-01", added[0].Deadline.String())
	assert.Equal(t, models.FundingToReview, added[0].Status)

	status, body = do(t, http.MethodPost, env.URL()+"/opportunities/import", map[string]any{"text": "the same text again"})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Opportunity](t, body))

	env.AI.SetErr(errors.New("model offline"))
	status, _ = do(t, http.MethodPost, env.URL()+"/opportunities/import", map[string]any{"text": "anything"})
	assert.Equal(t, http.StatusBadGateway, status)
}

func upload(t *testing.T, url, filename string, content []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestImportFile(t *testing.T) {
	env := apitest.New(t)
	env.AI.SetOpportunities(ai.ExtractedOpportunity{FunderName: "Film Trust", ProgrammeName: "Shorts", Deadline: "2025-09-30"})
	fileURL := env.URL() + "/opportunities/import/file"

	status, body := upload(t, fileURL, "call.md", []byte("# Shorts\nDeadline 30 September 2025"))
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Len(t, decode[[]models.Opportunity](t, body), 1)
	assert.Contains(t, env.AI.Prompts()[0], "Deadline 30 September 2025")

	status, _ = upload(t, fileURL, "call.docx", []byte("binary"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = upload(t, fileURL, "big.txt", bytes.Repeat([]byte("a"), (1<<20)+10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)

	status, _ = upload(t, fileURL, "blank.txt", []byte("   \n"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestResearch(t *testing.T) {
	env := apitest.New(t)
	env.Fetcher.AddPage("https://funders.example.org/calls",
		"<html><body><h2>Heritage Grant</h2><p>Closes 15 March 2026</p></body></html>")
	env.AI.SetOpportunities(ai.ExtractedOpportunity{FunderName: "Heritage Lottery", ProgrammeName: "Heritage Grant", Deadline: "15 March 2026"})

	status, body := do(t, http.MethodPost, env.URL()+"/opportunities/research", map[string]any{"url": "https://funders.example.org/calls"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Len(t, decode[[]models.Opportunity](t, body), 1)
	assert.Contains(t, env.AI.Prompts()[0], "Closes 15 March 2026")

	status, _ = do(t, http.MethodPost, env.URL()+"/opportunities/research", map[string]any{"url": "http://localhost:8081/api"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, http.MethodPost, env.URL()+"/opportunities/research", map[string]any{"url": "ftp://funders.example.org"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, env.URL()+"/opportunities/research", map[string]any{"url": "https://funders.example.org/gone"})
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestApplicationEndpoints(t *testing.T) {
	env := apitest.New(t)

	status, body := do(t, http.MethodPost, env.URL()+"/opportunities", map[string]any{
		"funder_name":    "Arts Council",
		"programme_name": "Documentary Fund",
		"deadline":       "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	opp := decode[models.Opportunity](t, body)

	status, body = do(t, http.MethodPost, env.URL()+"/opportunities", map[string]any{
		"funder_name":    "arts council",
		"programme_name": "documentary fund",
		"deadline":       "1 June 2025",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_exists", decode[conflictBody](t, body).Detail.Code)

	createURL := env.URL() + "/applications?opportunity_id=" + opp.ID.String()
	status, body = do(t, http.MethodPost, createURL, nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	app := decode[models.ApplicationPackage](t, body)
	assert.Equal(t, models.SubmissionDraft, app.SubmissionStatus)

	status, body = do(t, http.MethodPost, createURL, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_exists", decode[conflictBody](t, body).Detail.Code)

	appURL := env.URL() + "/applications/" + app.ID.String()
	status, _ = do(t, http.MethodPut, appURL, map[string]any{"budget_json": map[string]any{"crew": -5}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = do(t, http.MethodPut, appURL, map[string]any{
		"narrative_draft": "A year on the harbour.",
		"budget_json":     map[string]any{"crew": 12000, "travel": 3500.5},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.InDelta(t, 15500.5, decode[models.ApplicationPackage](t, body).BudgetJSON.Total(), 0.001)

	status, body = do(t, http.MethodPut, appURL, map[string]any{"submission_status": "Approved"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, models.SubmissionApproved, decode[models.ApplicationPackage](t, body).SubmissionStatus)

	status, body = do(t, http.MethodPut, appURL, map[string]any{"narrative_draft": "rewrite"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "locked", decode[conflictBody](t, body).Detail.Code)

	status, body = do(t, http.MethodGet, env.URL()+"/opportunities/"+opp.ID.String()+"/application", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, app.ID, decode[models.ApplicationPackage](t, body).ID)
}

func TestDashboardAndClear(t *testing.T) {
	env := apitest.New(t)
	do(t, http.MethodPost, env.URL()+"/projects", map[string]any{"title": "Issue 12"})

	status, body := do(t, http.MethodGet, env.URL()+"/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, status)
	stats := decode[models.DashboardStats](t, body)
	assert.Equal(t, 1, stats.Counts.Projects)

	status, _ = do(t, http.MethodDelete, env.URL()+"/projects/clear", nil)
	assert.Equal(t, http.StatusNoContent, status)

	_, body = do(t, http.MethodGet, env.URL()+"/projects", nil)
	assert.Empty(t, decode[[]models.Project](t, body))
}
