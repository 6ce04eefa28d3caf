package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

func (d *Desk) LoadAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	assets, err := d.api.ListAssets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, a := range d.Assets.Filter(func(a models.Asset) bool { return a.ProjectID == projectID }) {
		d.Assets.Remove(a.ID)
	}
	d.Assets.Upsert(assets...)
	return assets, nil
}

// ScanDirectory indexes the media under dir and returns only the newly
// created assets. The project's asset list is reloaded afterwards so the
// cache matches the server.
func (d *Desk) ScanDirectory(ctx context.Context, projectID uuid.UUID, dir string) ([]models.Asset, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &ValidationError{Field: "directory_path", Reason: "is required"}
	}

	done, err := d.Pending.Begin(projectID)
	if err != nil {
		return nil, err
	}
	defer done()

	created, err := d.api.ScanDirectory(ctx, projectID, dir)
	if err != nil {
		return nil, err
	}
	if _, err := d.LoadAssets(ctx, projectID); err != nil {
		slog.Warn("asset reload after scan failed", "project_id", projectID, "err", err)
		d.Assets.Upsert(created...)
	}
	return created, nil
}

// SetAssetRights updates the rights status and credit line. A blank credit
// line clears it.
func (d *Desk) SetAssetRights(ctx context.Context, id uuid.UUID, rights models.RightsStatus, creditLine *string) (*models.Asset, error) {
	done, err := d.Pending.Begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	a, err := d.api.UpdateAsset(ctx, id, rights, creditLine)
	if err != nil {
		return nil, err
	}
	d.Assets.Upsert(*a)
	return a, nil
}
