package studio

import (
	"context"

	"github.com/david/studio-desk/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	recentProjectsLimit    = 5
	upcomingDeadlinesLimit = 3
	recentAssetsLimit      = 5
)

// DashboardStats gathers counts and short lists concurrently.
func (s *Service) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	today := models.DateOf(s.now())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.store.Counts(gctx)
		stats.Counts = c
		return err
	})
	g.Go(func() error {
		p, err := s.store.RecentProjects(gctx, recentProjectsLimit)
		stats.RecentProjects = p
		return err
	})
	g.Go(func() error {
		o, err := s.store.UpcomingDeadlines(gctx, today, upcomingDeadlinesLimit)
		stats.UpcomingDeadlines = o
		return err
	})
	g.Go(func() error {
		a, err := s.store.RecentAssets(gctx, recentAssetsLimit)
		stats.RecentAssets = a
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
