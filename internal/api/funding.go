package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/david/studio-desk/internal/ingest"
	"github.com/david/studio-desk/internal/models"
	"github.com/david/studio-desk/internal/studio"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var importExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

type createOpportunityRequest struct {
	FunderName          string         `json:"funder_name" validate:"required"`
	ProgrammeName       string         `json:"programme_name" validate:"required"`
	Deadline            string         `json:"deadline" validate:"required"`
	EligibilityCriteria map[string]any `json:"eligibility_criteria"`
	BudgetRules         map[string]any `json:"budget_rules"`
}

type updateOpportunityRequest struct {
	Status models.FundingStatus `json:"status" validate:"required,oneof='To Review' Pursuing Submitted Rejected Awarded"`
}

type importTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type researchRequest struct {
	URL string `json:"url" validate:"required"`
}

type updateApplicationRequest struct {
	NarrativeDraft   *string                  `json:"narrative_draft"`
	BudgetJSON       map[string]any           `json:"budget_json"`
	SubmissionStatus *models.SubmissionStatus `json:"submission_status" validate:"omitempty,oneof=Draft Approved Submitted"`
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	opps, err := s.Service.ListOpportunities(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opps)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	opp, err := s.Service.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleCreateOpportunity(c echo.Context) error {
	var req createOpportunityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	// Manual entries go through the same parser as imports.
	deadline, err := ingest.ParseDeadline(req.Deadline)
	if err != nil {
		return &studio.InputError{Field: "deadline", Reason: "is not a recognizable date"}
	}

	opp, err := s.Service.CreateOpportunity(c.Request().Context(), studio.NewOpportunity{
		FunderName:          req.FunderName,
		ProgrammeName:       req.ProgrammeName,
		Deadline:            deadline,
		EligibilityCriteria: req.EligibilityCriteria,
		BudgetRules:         req.BudgetRules,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, opp)
}

func (s *Server) handleUpdateOpportunity(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateOpportunityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	opp, err := s.Service.UpdateOpportunityStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleImportText(c echo.Context) error {
	var req importTextRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	added, err := s.Service.ImportText(c.Request().Context(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, added)
}

func (s *Server) handleImportFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Multipart field \"file\" is required")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !importExtensions[ext] {
		return &studio.InputError{Field: "file", Reason: fmt.Sprintf("type %q is not supported", ext)}
	}
	if fh.Size > s.maxUpload {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxUpload {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	added, err := s.Service.ImportDocument(c.Request().Context(), fh.Filename, content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, added)
}

func (s *Server) handleResearch(c echo.Context) error {
	var req researchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	target := strings.TrimSpace(req.URL)
	if err := s.checkPublicURL(target); err != nil {
		return err
	}
	added, err := s.Service.ImportURL(c.Request().Context(), target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, added)
}

func (s *Server) handleCreateApplication(c echo.Context) error {
	oppID, err := uuid.Parse(c.QueryParam("opportunity_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter opportunity_id must be a valid id")
	}
	app, err := s.Service.CreateApplication(c.Request().Context(), oppID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

func (s *Server) handleGetApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	app, err := s.Service.GetApplication(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) handleGetApplicationForOpportunity(c echo.Context) error {
	oppID, err := pathID(c)
	if err != nil {
		return err
	}
	app, err := s.Service.GetApplicationForOpportunity(c.Request().Context(), oppID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) handleUpdateApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateApplicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	app, err := s.Service.UpdateApplication(c.Request().Context(), id, studio.ApplicationUpdate{
		NarrativeDraft:   req.NarrativeDraft,
		BudgetJSON:       req.BudgetJSON,
		SubmissionStatus: req.SubmissionStatus,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}
