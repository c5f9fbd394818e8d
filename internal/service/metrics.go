package service

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
)

const (
	topAssigneeLimit  = 5
	uncategorizedName = "Uncategorized"
	uncategorizedHex  = "#9CA3AF"
	unknownUserName   = "Unknown User"
	systemUserName    = "System"

	recentTaskLimit     = 4
	recentUserLimit     = 2
	recentCategoryLimit = 2
)

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round1(float64(sum) / float64(n))
}

// formatDuration renders an average as "3.5h" below one day and "1.2d"
// otherwise.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0h"
	}
	hours := d.Hours()
	if hours < 24 {
		return strconv.FormatFloat(round1(hours), 'f', -1, 64) + "h"
	}
	return strconv.FormatFloat(round1(hours/24), 'f', -1, 64) + "d"
}

// ComputeMetrics aggregates the dashboard headline numbers.
func ComputeMetrics(tasks []task.Task, users []user.User, now time.Time) dashboard.Metrics {
	var m dashboard.Metrics
	var completedDuration time.Duration

	m.TotalTasks = len(tasks)
	for i := range tasks {
		t := &tasks[i]
		m.TotalPoints += t.Points

		switch t.Status {
		case task.StatusCompleted:
			m.CompletedTasks++
			m.CompletedPoints += t.Points
			if elapsed := t.UpdatedAt.Sub(t.CreatedAt); elapsed > 0 {
				completedDuration += elapsed
			}
		case task.StatusInProgress:
			m.ActiveTasks++
		case task.StatusTodo:
			m.TodoTasks++
		}

		if t.IsOverdue(now) {
			m.OverdueTasks++
		}
	}

	m.CompletionRate = percent(m.CompletedTasks, m.TotalTasks)

	m.TotalUsers = len(users)
	for i := range users {
		if users[i].IsActive() {
			m.ActiveUsers++
		}
	}

	m.AvgTimePerTask = "0h"
	if m.CompletedTasks > 0 {
		m.AvgTimePerTask = formatDuration(completedDuration / time.Duration(m.CompletedTasks))
	}

	return m
}

func userNames(users []user.User) map[int64]string {
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

// ComputeCharts builds the chart datasets of the dashboard page.
func ComputeCharts(tasks []task.Task, users []user.User, categories []category.Category) dashboard.Charts {
	return dashboard.Charts{
		TopAssignees:    topAssignees(tasks, users),
		TasksByCategory: tasksByCategory(tasks, categories),
		TasksByStatus:   tasksByStatus(tasks),
		TasksByPriority: tasksByPriority(tasks),
	}
}

// topAssignees credits every assignee of a completed task with its full
// points and returns the best five.
func topAssignees(tasks []task.Task, users []user.User) []dashboard.AssigneeStat {
	names := userNames(users)
	stats := make(map[int64]*dashboard.AssigneeStat)

	for i := range tasks {
		if tasks[i].Status != task.StatusCompleted {
			continue
		}
		for _, id := range tasks[i].Assignees() {
			s, ok := stats[id]
			if !ok {
				name, known := names[id]
				if !known {
					name = unknownUserName
				}
				s = &dashboard.AssigneeStat{UserID: id, Name: name}
				stats[id] = s
			}
			s.Points += tasks[i].Points
			s.CompletedTasks++
		}
	}

	out := make([]dashboard.AssigneeStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b dashboard.AssigneeStat) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.CompletedTasks, a.CompletedTasks); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	if len(out) > topAssigneeLimit {
		out = out[:topAssigneeLimit]
	}
	return out
}

// categoryIndex resolves a task's category, treating dangling ids as
// uncategorized.
type categoryIndex map[int64]category.Category

func newCategoryIndex(categories []category.Category) categoryIndex {
	idx := make(categoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

func (idx categoryIndex) lookup(id *int64) (category.Category, bool) {
	if id == nil {
		return category.Category{}, false
	}
	c, ok := idx[*id]
	return c, ok
}

func tasksByCategory(tasks []task.Task, categories []category.Category) []dashboard.CategoryCount {
	idx := newCategoryIndex(categories)
	counts := make(map[int64]int, len(categories))
	uncategorized := 0

	for i := range tasks {
		if c, ok := idx.lookup(tasks[i].CategoryID); ok {
			counts[c.ID]++
		} else {
			uncategorized++
		}
	}

	out := make([]dashboard.CategoryCount, 0, len(categories)+1)
	for _, c := range categories {
		id := c.ID
		out = append(out, dashboard.CategoryCount{CategoryID: &id, Category: c.Name, Color: c.Color, Count: counts[c.ID]})
	}
	if uncategorized > 0 {
		out = append(out, dashboard.CategoryCount{Category: uncategorizedName, Color: uncategorizedHex, Count: uncategorized})
	}
	return out
}

func tasksByStatus(tasks []task.Task) []dashboard.StatusCount {
	counts := make(map[task.Status]int, len(task.Statuses))
	for i := range tasks {
		counts[tasks[i].Status]++
	}

	out := make([]dashboard.StatusCount, len(task.Statuses))
	for i, s := range task.Statuses {
		out[i] = dashboard.StatusCount{Status: s, Count: counts[s]}
	}
	return out
}

func tasksByPriority(tasks []task.Task) []dashboard.PriorityCount {
	counts := make(map[task.Priority]int, len(task.Priorities))
	for i := range tasks {
		counts[tasks[i].Priority]++
	}

	out := make([]dashboard.PriorityCount, len(task.Priorities))
	for i, p := range task.Priorities {
		out[i] = dashboard.PriorityCount{Priority: p, Count: counts[p]}
	}
	return out
}

// ComputeActivity merges the latest task, user and category changes into
// one feed, newest first.
func ComputeActivity(tasks []task.Task, users []user.User, categories []category.Category) []dashboard.Activity {
	names := userNames(users)
	var feed []dashboard.Activity

	for _, t := range latest(tasks, recentTaskLimit, func(t task.Task) time.Time { return t.UpdatedAt }) {
		actor := systemUserName
		if ids := t.Assignees(); len(ids) > 0 {
			actor = unknownUserName
			if name, ok := names[ids[0]]; ok {
				actor = name
			}
		}

		kind, action := dashboard.ActivityCreated, "updated task"
		if t.Status == task.StatusCompleted {
			kind, action = dashboard.ActivityCompleted, "completed task"
		}

		feed = append(feed, dashboard.Activity{
			ID:        fmt.Sprintf("task-%d", t.ID),
			Type:      kind,
			User:      actor,
			Action:    action,
			Subject:   t.Title,
			Timestamp: t.UpdatedAt,
		})
	}

	for _, u := range latest(users, recentUserLimit, func(u user.User) time.Time { return u.UpdatedAt }) {
		feed = append(feed, dashboard.Activity{
			ID:        fmt.Sprintf("user-%d", u.ID),
			Type:      dashboard.ActivityUser,
			User:      u.Name,
			Action:    "joined the team",
			Timestamp: u.UpdatedAt,
		})
	}

	for _, c := range latest(categories, recentCategoryLimit, func(c category.Category) time.Time { return c.UpdatedAt }) {
		feed = append(feed, dashboard.Activity{
			ID:        fmt.Sprintf("category-%d", c.ID),
			Type:      dashboard.ActivityCreated,
			User:      systemUserName,
			Action:    "updated category",
			Subject:   c.Name,
			Timestamp: c.UpdatedAt,
		})
	}

	slices.SortStableFunc(feed, func(a, b dashboard.Activity) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return feed
}

// latest returns the n items with the most recent timestamp without
// reordering the caller's slice.
func latest[T any](items []T, n int, at func(T) time.Time) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return at(b).Compare(at(a))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ------------------------------------------------------------ analytics

type bucket struct {
	label      string
	start, end time.Time
}

// trendBuckets splits the report range into daily buckets for 7 and 30
// days, weekly buckets for 90 days and monthly buckets for "all". The
// monthly series starts at the oldest task and covers at most a year.
func trendBuckets(r task.Range, now time.Time, oldest time.Time) []bucket {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var out []bucket
	switch r {
	case task.Range30Days, task.Range7Days:
		days := 7
		if r == task.Range30Days {
			days = 30
		}
		for i := days - 1; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			out = append(out, bucket{label: start.Format("Jan 2"), start: start, end: start.AddDate(0, 0, 1)})
		}
	case task.Range90Days:
		for i := 12; i >= 0; i-- {
			start := today.AddDate(0, 0, -7*i-6)
			out = append(out, bucket{label: "Week of " + start.Format("Jan 2"), start: start, end: start.AddDate(0, 0, 7)})
		}
	default:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		first := month.AddDate(0, -11, 0)
		if !oldest.IsZero() {
			if o := time.Date(oldest.Year(), oldest.Month(), 1, 0, 0, 0, 0, now.Location()); o.After(first) {
				first = o
			}
		}
		for start := first; !start.After(month); start = start.AddDate(0, 1, 0) {
			out = append(out, bucket{label: start.Format("Jan 2006"), start: start, end: start.AddDate(0, 1, 0)})
		}
	}
	return out
}

// ComputeTrend counts completed tasks by the time they were last updated.
func ComputeTrend(tasks []task.Task, r task.Range, now time.Time) dashboard.ProductivityTrend {
	var oldest time.Time
	for i := range tasks {
		if oldest.IsZero() || tasks[i].CreatedAt.Before(oldest) {
			oldest = tasks[i].CreatedAt
		}
	}

	buckets := trendBuckets(r, now, oldest)
	trend := dashboard.ProductivityTrend{
		Labels:               make([]string, len(buckets)),
		TasksCompleted:       make([]int, len(buckets)),
		TotalPointsCompleted: make([]int, len(buckets)),
		AvgPointsPerTask:     make([]float64, len(buckets)),
	}

	for i, b := range buckets {
		trend.Labels[i] = b.label
	}

	for i := range tasks {
		t := &tasks[i]
		if t.Status != task.StatusCompleted {
			continue
		}
		for j, b := range buckets {
			if !t.UpdatedAt.Before(b.start) && t.UpdatedAt.Before(b.end) {
				trend.TasksCompleted[j]++
				trend.TotalPointsCompleted[j] += t.Points
				break
			}
		}
	}

	for i := range buckets {
		trend.AvgPointsPerTask[i] = mean(trend.TotalPointsCompleted[i], trend.TasksCompleted[i])
	}
	return trend
}

// ComputeCategoryBreakdown aggregates tasks per category. Tasks without a
// known category are reported under "Uncategorized".
func ComputeCategoryBreakdown(tasks []task.Task, categories []category.Category) []dashboard.CategoryBreakdown {
	idx := newCategoryIndex(categories)
	rows := make(map[int64]*dashboard.CategoryBreakdown, len(categories))
	out := make([]*dashboard.CategoryBreakdown, 0, len(categories)+1)

	for _, c := range categories {
		id := c.ID
		row := &dashboard.CategoryBreakdown{CategoryID: &id, Name: c.Name, Color: c.Color}
		rows[c.ID] = row
		out = append(out, row)
	}
	uncategorized := &dashboard.CategoryBreakdown{Name: uncategorizedName, Color: uncategorizedHex}

	for i := range tasks {
		t := &tasks[i]
		row := uncategorized
		if c, ok := idx.lookup(t.CategoryID); ok {
			row = rows[c.ID]
		}
		row.TaskCount++
		row.TotalPoints += t.Points
		if t.Status == task.StatusCompleted {
			row.CompletedTasks++
		}
	}
	if uncategorized.TaskCount > 0 {
		out = append(out, uncategorized)
	}

	result := make([]dashboard.CategoryBreakdown, len(out))
	for i, row := range out {
		row.AvgPoints = mean(row.TotalPoints, row.TaskCount)
		row.CompletionRate = percent(row.CompletedTasks, row.TaskCount)
		result[i] = *row
	}
	return result
}

func ComputePriorityDistribution(tasks []task.Task) dashboard.PriorityDistribution {
	var d dashboard.PriorityDistribution
	for i := range tasks {
		switch tasks[i].Priority {
		case task.PriorityLow:
			d.Low++
		case task.PriorityMedium:
			d.Medium++
		case task.PriorityHigh:
			d.High++
		case task.PriorityUrgent:
			d.Urgent++
		}
	}
	return d
}

// ComputePerformance derives the radar chart scores:
//
//	taskCompletion  completed / all tasks
//	onTimeDelivery  completed on or before the due date / completed with a due date
//	qualityScore    completed / (completed + cancelled)
//	collaboration   tasks with two or more assignees / all tasks
//	pointsAverage   mean points of completed tasks
//	efficiency      completed points / all points
func ComputePerformance(tasks []task.Task) dashboard.PerformanceMetrics {
	var total, completed, cancelled, dated, onTime, shared int
	var points, completedPoints int

	for i := range tasks {
		t := &tasks[i]
		total++
		points += t.Points

		if len(t.Assignees()) >= 2 {
			shared++
		}

		switch t.Status {
		case task.StatusCompleted:
			completed++
			completedPoints += t.Points
			if t.DueDate != nil {
				dated++
				if !t.UpdatedAt.After(*t.DueDate) {
					onTime++
				}
			}
		case task.StatusCancelled:
			cancelled++
		}
	}

	return dashboard.PerformanceMetrics{
		TaskCompletion: percent(completed, total),
		OnTimeDelivery: percent(onTime, dated),
		QualityScore:   percent(completed, completed+cancelled),
		Collaboration:  percent(shared, total),
		PointsAverage:  mean(completedPoints, completed),
		Efficiency:     percent(completedPoints, points),
	}
}

// ComputeAnalytics bundles every reports-page dataset for range r.
func ComputeAnalytics(tasks []task.Task, categories []category.Category, r task.Range, now time.Time) dashboard.Analytics {
	return dashboard.Analytics{
		Range:                r,
		ProductivityTrend:    ComputeTrend(tasks, r, now),
		CategoryBreakdown:    ComputeCategoryBreakdown(tasks, categories),
		PriorityDistribution: ComputePriorityDistribution(tasks),
		PerformanceMetrics:   ComputePerformance(tasks),
	}
}
