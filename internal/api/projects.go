package api

import (
	"net/http"

	"github.com/david/studio-desk/internal/models"
	"github.com/david/studio-desk/internal/studio"
	"github.com/labstack/echo/v4"
)

type createProjectRequest struct {
	Title         string       `json:"title" validate:"required"`
	StartDate     *models.Date `json:"start_date"`
	PrintDeadline *models.Date `json:"print_deadline"`
}

type updateProjectRequest struct {
	Status models.ProjectStatus `json:"status" validate:"required,oneof=Planning 'In Progress' Review Completed"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.Service.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := s.Service.CreateProject(c.Request().Context(), studio.NewProject{
		Title:         req.Title,
		StartDate:     req.StartDate,
		PrintDeadline: req.PrintDeadline,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleGetProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := s.Service.GetProject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := s.Service.UpdateProjectStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// handleClearAll wipes every table. Used to reset demo data.
func (s *Server) handleClearAll(c echo.Context) error {
	if err := s.Service.ClearAll(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
