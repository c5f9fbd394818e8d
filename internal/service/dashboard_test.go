package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/lib/report"
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
)

func newTestDashboardService() (*DashboardService, *fakeTaskStore, *fakeCache) {
	tasks := newFakeTaskStore(fixtureTasks()...)
	c := newFakeCache()
	s := NewDashboardService(newTestServer(), tasks, newFakeUserStore(fixtureUsers()...), newFakeCategoryStore(fixtureCategories()...), c)
	s.now = func() time.Time { return testNow }
	return s, tasks, c
}

func TestDashboardService_MetricsCached(t *testing.T) {
	s, tasks, c := newTestDashboardService()
	ctx := context.Background()

	first, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTasks != 5 {
		t.Errorf("expected 5 tasks, got %d", first.TotalTasks)
	}

	// A write that bypasses the service is not visible until invalidation.
	tasks.tasks = tasks.tasks[:4]
	second, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalTasks != 5 || c.hits != 1 {
		t.Errorf("expected cached value, got %d tasks and %d hits", second.TotalTasks, c.hits)
	}

	c.Invalidate(ctx)
	third, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.TotalTasks != 4 {
		t.Errorf("expected fresh value after invalidation, got %d", third.TotalTasks)
	}
}

func TestDashboardService_ChartsAndActivity(t *testing.T) {
	s, _, _ := newTestDashboardService()
	ctx := context.Background()

	charts, err := s.Charts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(charts.TasksByStatus) != len(task.Statuses) {
		t.Errorf("expected %d status buckets, got %d", len(task.Statuses), len(charts.TasksByStatus))
	}

	activity, err := s.Activity(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(activity) == 0 || activity[0].ID != "task-3" {
		t.Errorf("unexpected activity feed %+v", activity)
	}
}

func TestDashboardService_AnalyticsRanges(t *testing.T) {
	s, tasks, c := newTestDashboardService()
	ctx := context.Background()

	a, err := s.Analytics(ctx, &dashboard.RangeQuery{Range: task.Range30Days})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.ProductivityTrend.Labels) != 30 {
		t.Errorf("expected 30 daily buckets, got %d", len(a.ProductivityTrend.Labels))
	}
	if tasks.since == nil || !tasks.since.Equal(testNow.AddDate(0, 0, -30)) {
		t.Errorf("unexpected since %v", tasks.since)
	}

	// Different ranges use different keys.
	if _, err := s.Analytics(ctx, &dashboard.RangeQuery{Range: task.RangeAll}); err != nil {
		t.Fatal(err)
	}
	if tasks.since != nil {
		t.Errorf("all range must not filter, got %v", tasks.since)
	}
	if c.hits != 0 {
		t.Errorf("expected no cache hits, got %d", c.hits)
	}
}

func TestDashboardService_Export(t *testing.T) {
	testCases := []struct {
		format report.Format
		magic  []byte
	}{
		{report.FormatCSV, []byte(report.Title)},
		{report.FormatXLSX, []byte("PK")},
		{report.FormatPDF, []byte("%PDF-")},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			s, _, _ := newTestDashboardService()

			file, err := s.Export(context.Background(), tc.format, &dashboard.RangeQuery{Range: task.Range7Days})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.HasPrefix(file.Data, tc.magic) {
				t.Errorf("unexpected content start %q", file.Data[:min(len(file.Data), 16)])
			}
			if file.Name != report.Filename(tc.format, testNow) || file.ContentType != tc.format.ContentType() {
				t.Errorf("unexpected file metadata %s %s", file.Name, file.ContentType)
			}
		})
	}
}

func TestDashboardService_ExportUnknownFormat(t *testing.T) {
	s, _, _ := newTestDashboardService()

	if _, err := s.Export(context.Background(), report.Format("docx"), &dashboard.RangeQuery{Range: task.Range7Days}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
