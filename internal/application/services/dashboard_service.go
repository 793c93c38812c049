package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"uyadmin.io/cli/internal/core/domain"
)

// RecentLimit is how many properties the dashboard lists.
const RecentLimit = 5

type PropertyLister interface {
	List(ctx context.Context) ([]domain.Property, error)
}

type SavedPropertyLister interface {
	List(ctx context.Context) ([]domain.SavedProperty, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// Dashboard is one snapshot of the catalogue.
type Dashboard struct {
	Stats  domain.DashboardStats
	Recent []domain.Property
	// Errors holds one entry per source that failed to load.
	Errors []error
}

// DashboardService aggregates the three catalogue sources.
type DashboardService struct {
	properties PropertyLister
	saved      SavedPropertyLister
	categories CategoryLister
	logger     logrus.FieldLogger
}

func NewDashboardService(
	properties PropertyLister,
	saved SavedPropertyLister,
	categories CategoryLister,
	logger logrus.FieldLogger,
) *DashboardService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DashboardService{
		properties: properties,
		saved:      saved,
		categories: categories,
		logger:     logger,
	}
}

// Load fetches every source concurrently. A failing source counts as empty
// and is reported in Dashboard.Errors. The returned error is set only when
// the session expired or when every source failed.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	var (
		wg         sync.WaitGroup
		properties []domain.Property
		saved      []domain.SavedProperty
		categories []domain.Category
		errs       [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		properties, errs[0] = s.properties.List(ctx)
	}()
	go func() {
		defer wg.Done()
		saved, errs[1] = s.saved.List(ctx)
	}()
	go func() {
		defer wg.Done()
		categories, errs[2] = s.categories.List(ctx)
	}()
	wg.Wait()

	dash := &Dashboard{}
	for i, name := range []string{"properties", "saved properties", "categories"} {
		if errs[i] == nil {
			continue
		}
		if errors.Is(errs[i], domain.ErrUnauthorized) {
			return nil, domain.ErrUnauthorized
		}
		s.logger.WithError(errs[i]).WithField("source", name).Warn("dashboard source failed")
		dash.Errors = append(dash.Errors, fmt.Errorf("failed to load %s: %w", name, errs[i]))
	}
	if len(dash.Errors) == len(errs) {
		return dash, errors.Join(dash.Errors...)
	}

	dash.Stats = domain.DashboardStats{
		Properties:      len(properties),
		SavedProperties: len(saved),
		Categories:      len(categories),
	}
	for _, p := range properties {
		if p.IsActive() {
			dash.Stats.ActiveProperties++
		}
	}
	dash.Recent = mostRecent(properties, RecentLimit)
	return dash, nil
}

// mostRecent returns up to n properties, newest first. Ties keep backend order.
func mostRecent(properties []domain.Property, n int) []domain.Property {
	sorted := make([]domain.Property, len(properties))
	copy(sorted, properties)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
