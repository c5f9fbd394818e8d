package service

import (
	"context"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/lib/report"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"golang.org/x/sync/errgroup"
)

// DashboardService serves the dashboard and reports pages. Every aggregate
// is cached under a versioned key that task, category and user mutations
// invalidate.
type DashboardService struct {
	server     *server.Server
	tasks      TaskStore
	users      UserStore
	categories CategoryStore
	cache      Cache
	now        func() time.Time
}

func NewDashboardService(s *server.Server, tasks TaskStore, users UserStore, categories CategoryStore, cache Cache) *DashboardService {
	return &DashboardService{server: s, tasks: tasks, users: users, categories: categories, cache: cache, now: time.Now}
}

type snapshot struct {
	tasks      []task.Task
	users      []user.User
	categories []category.Category
}

// load fetches the rows an aggregate needs concurrently. Tasks are limited
// to those created since since; nil means all.
func (s *DashboardService) load(ctx context.Context, since *time.Time, withUsers, withCategories bool) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.tasks, err = s.tasks.All(ctx, since)
		return err
	})
	if withUsers {
		g.Go(func() error {
			var err error
			snap.users, err = s.users.All(ctx)
			return err
		})
	}
	if withCategories {
		g.Go(func() error {
			var err error
			snap.categories, err = s.categories.All(ctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// cached returns the cached value for key or computes and stores it.
func cached[T any](ctx context.Context, s *DashboardService, key string, compute func() (T, error)) (T, error) {
	var value T
	if s.cache.GetJSON(ctx, key, &value) {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	s.cache.SetJSON(ctx, key, value, s.server.Config.Cache.DashboardTTL)
	return value, nil
}

func (s *DashboardService) Metrics(ctx context.Context) (*dashboard.Metrics, error) {
	m, err := cached(ctx, s, s.cache.Key(ctx, "metrics"), func() (dashboard.Metrics, error) {
		snap, err := s.load(ctx, nil, true, false)
		if err != nil {
			return dashboard.Metrics{}, err
		}
		return ComputeMetrics(snap.tasks, snap.users, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *DashboardService) Charts(ctx context.Context) (*dashboard.Charts, error) {
	c, err := cached(ctx, s, s.cache.Key(ctx, "charts"), func() (dashboard.Charts, error) {
		snap, err := s.load(ctx, nil, true, true)
		if err != nil {
			return dashboard.Charts{}, err
		}
		return ComputeCharts(snap.tasks, snap.users, snap.categories), nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *DashboardService) Activity(ctx context.Context) ([]dashboard.Activity, error) {
	return cached(ctx, s, s.cache.Key(ctx, "activity"), func() ([]dashboard.Activity, error) {
		snap, err := s.load(ctx, nil, true, true)
		if err != nil {
			return nil, err
		}
		return ComputeActivity(snap.tasks, snap.users, snap.categories), nil
	})
}

func (s *DashboardService) Analytics(ctx context.Context, q *dashboard.RangeQuery) (*dashboard.Analytics, error) {
	a, err := cached(ctx, s, s.cache.Key(ctx, "analytics", string(q.Range)), func() (dashboard.Analytics, error) {
		now := s.now()
		snap, err := s.load(ctx, q.Range.Since(now), false, true)
		if err != nil {
			return dashboard.Analytics{}, err
		}
		return ComputeAnalytics(snap.tasks, snap.categories, q.Range, now), nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Report gathers the data of an exported document. Headline metrics cover
// the same range as the analytics. It is not cached: exports are rare and
// must reflect the moment they were generated.
func (s *DashboardService) Report(ctx context.Context, q *dashboard.RangeQuery) (*dashboard.Report, error) {
	now := s.now()
	snap, err := s.load(ctx, q.Range.Since(now), true, true)
	if err != nil {
		return nil, err
	}

	return &dashboard.Report{
		GeneratedAt: now,
		Range:       q.Range,
		Metrics:     ComputeMetrics(snap.tasks, snap.users, now),
		Analytics:   ComputeAnalytics(snap.tasks, snap.categories, q.Range, now),
	}, nil
}

// ExportedFile is a rendered report ready to be downloaded.
type ExportedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (s *DashboardService) Export(ctx context.Context, format report.Format, q *dashboard.RangeQuery) (*ExportedFile, error) {
	r, err := s.Report(ctx, q)
	if err != nil {
		return nil, err
	}

	data, err := report.Render(format, r)
	if err != nil {
		return nil, err
	}

	s.server.Logger.Info().
		Str("format", string(format)).
		Str("range", string(q.Range)).
		Int("size_bytes", len(data)).
		Msg("report exported")

	return &ExportedFile{
		Name:        report.Filename(format, r.GeneratedAt),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
