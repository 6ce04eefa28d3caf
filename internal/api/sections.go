package api

import (
	"net/http"

	"github.com/david/studio-desk/internal/editorial"
	"github.com/labstack/echo/v4"
)

type createSectionRequest struct {
	Title      string `json:"title" validate:"required"`
	OrderIndex *int   `json:"order_index" validate:"omitempty,min=0"`
}

type saveSectionRequest struct {
	ContentText *string `json:"content_text" validate:"required"`
}

func (s *Server) handleListSections(c echo.Context) error {
	projectID, err := pathID(c)
	if err != nil {
		return err
	}
	sections, err := s.Service.ListSections(c.Request().Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sections)
}

func (s *Server) handleCreateSection(c echo.Context) error {
	projectID, err := pathID(c)
	if err != nil {
		return err
	}
	var req createSectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sec, err := s.Service.CreateSection(c.Request().Context(), projectID, req.Title, req.OrderIndex)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sec)
}

func (s *Server) handleGetSection(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sec, err := s.Service.GetSection(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sec)
}

func (s *Server) handleSaveSection(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req saveSectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sec, err := s.Service.SaveSection(c.Request().Context(), id, *req.ContentText)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sec)
}

func (s *Server) handleSubmitSection(c echo.Context) error {
	return s.transitionSection(c, editorial.ActionSubmit)
}

func (s *Server) handleApproveSection(c echo.Context) error {
	return s.transitionSection(c, editorial.ActionApprove)
}

func (s *Server) handleRejectSection(c echo.Context) error {
	return s.transitionSection(c, editorial.ActionReject)
}

func (s *Server) handleLockSection(c echo.Context) error {
	return s.transitionSection(c, editorial.ActionLock)
}

func (s *Server) transitionSection(c echo.Context, action editorial.Action) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sec, err := s.Service.TransitionSection(c.Request().Context(), id, action)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sec)
}

// handleReviewSection answers with the critique as a bare JSON string.
func (s *Server) handleReviewSection(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	feedback, err := s.Service.ReviewSection(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feedback)
}
