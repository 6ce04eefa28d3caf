package api

import (
	"net/http"

	"github.com/david/studio-desk/internal/models"
	"github.com/labstack/echo/v4"
)

type scanRequest struct {
	DirectoryPath string `json:"directory_path" validate:"required"`
}

type updateAssetRequest struct {
	RightsStatus models.RightsStatus `json:"rights_status" validate:"required,oneof=Unknown Requested Cleared Restricted"`
	CreditLine   *string             `json:"credit_line"`
}

func (s *Server) handleScanDirectory(c echo.Context) error {
	projectID, err := pathID(c)
	if err != nil {
		return err
	}
	var req scanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := s.Service.ScanDirectory(c.Request().Context(), projectID, req.DirectoryPath)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

func (s *Server) handleListAssets(c echo.Context) error {
	projectID, err := pathID(c)
	if err != nil {
		return err
	}
	assets, err := s.Service.ListAssets(c.Request().Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assets)
}

func (s *Server) handleUpdateAsset(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateAssetRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, err := s.Service.UpdateAssetRights(c.Request().Context(), id, req.RightsStatus, req.CreditLine)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
