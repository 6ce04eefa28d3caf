package studio

import (
	"context"
	"errors"
	"strings"

	"github.com/david/studio-desk/internal/archive"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

// ScanDirectory indexes media files under dir for a project and returns the
// assets created by this scan. Files already indexed are skipped.
func (s *Service) ScanDirectory(ctx context.Context, projectID uuid.UUID, dir string) ([]models.Asset, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, &InputError{Field: "directory_path", Reason: "is required"}
	}

	files, err := archive.Scan(dir)
	if errors.Is(err, archive.ErrDirectoryNotFound) {
		return nil, &BadRequestError{Message: err.Error(), Err: err}
	}
	if err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(files))
	for _, f := range files {
		assets = append(assets, models.Asset{
			ProjectID:    projectID,
			Type:         f.Type,
			FilePath:     f.Path,
			RightsStatus: models.RightsUnknown,
			UsageScope:   models.UsagePrint,
		})
	}
	created, err := s.store.CreateAssets(ctx, assets)
	if err != nil {
		return nil, mapStoreErr("Project", err)
	}
	return created, nil
}

func (s *Service) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListAssets(ctx, projectID)
}

// UpdateAssetRights changes the only editable asset fields. An empty credit
// line clears it.
func (s *Service) UpdateAssetRights(ctx context.Context, id uuid.UUID, rights models.RightsStatus, creditLine *string) (*models.Asset, error) {
	if creditLine != nil {
		trimmed := strings.TrimSpace(*creditLine)
		if trimmed == "" {
			creditLine = nil
		} else {
			creditLine = &trimmed
		}
	}
	a, err := s.store.UpdateAssetRights(ctx, id, rights, creditLine)
	return a, mapStoreErr("Asset", err)
}
