// Package dashboard holds the read-only aggregates served by the dashboard
// and reports endpoints.
package dashboard

import (
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

type Metrics struct {
	TotalTasks      int    `json:"totalTasks"`
	CompletedTasks  int    `json:"completedTasks"`
	ActiveTasks     int    `json:"activeTasks"`
	TodoTasks       int    `json:"todoTasks"`
	OverdueTasks    int    `json:"overdueTasks"`
	CompletionRate  int    `json:"completionRate"`
	TotalPoints     int    `json:"totalPoints"`
	CompletedPoints int    `json:"completedPoints"`
	ActiveUsers     int    `json:"activeUsers"`
	TotalUsers      int    `json:"totalUsers"`
	AvgTimePerTask  string `json:"avgTimePerTask"`
}

type AssigneeStat struct {
	UserID         int64  `json:"userId"`
	Name           string `json:"name"`
	Points         int    `json:"points"`
	CompletedTasks int    `json:"completedTasks"`
}

type CategoryCount struct {
	CategoryID *int64 `json:"categoryId"`
	Category   string `json:"category"`
	Color      string `json:"color"`
	Count      int    `json:"count"`
}

type StatusCount struct {
	Status task.Status `json:"status"`
	Count  int         `json:"count"`
}

type PriorityCount struct {
	Priority task.Priority `json:"priority"`
	Count    int           `json:"count"`
}

type Charts struct {
	TopAssignees    []AssigneeStat  `json:"topAssignees"`
	TasksByCategory []CategoryCount `json:"tasksByCategory"`
	TasksByStatus   []StatusCount   `json:"tasksByStatus"`
	TasksByPriority []PriorityCount `json:"tasksByPriority"`
}

// Activity types.
const (
	ActivityCompleted = "completed"
	ActivityCreated   = "created"
	ActivityUser      = "user"
)

type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Subject   string    `json:"task"`
	Timestamp time.Time `json:"timestamp"`
}

// ------------------------------------------------------------

type ProductivityTrend struct {
	Labels               []string  `json:"labels"`
	TasksCompleted       []int     `json:"tasksCompleted"`
	TotalPointsCompleted []int     `json:"totalPointsCompleted"`
	AvgPointsPerTask     []float64 `json:"avgPointsPerTask"`
}

type CategoryBreakdown struct {
	CategoryID     *int64  `json:"categoryId"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	TaskCount      int     `json:"taskCount"`
	CompletedTasks int     `json:"completedTasks"`
	TotalPoints    int     `json:"totalPoints"`
	AvgPoints      float64 `json:"avgPoints"`
	CompletionRate int     `json:"completionRate"`
}

type PriorityDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Urgent int `json:"urgent"`
}

// PerformanceMetrics are percentages except PointsAverage, which is the mean
// points of completed tasks.
type PerformanceMetrics struct {
	TaskCompletion int     `json:"taskCompletion"`
	OnTimeDelivery int     `json:"onTimeDelivery"`
	QualityScore   int     `json:"qualityScore"`
	Collaboration  int     `json:"collaboration"`
	PointsAverage  float64 `json:"pointsAverage"`
	Efficiency     int     `json:"efficiency"`
}

type Analytics struct {
	Range                task.Range           `json:"range"`
	ProductivityTrend    ProductivityTrend    `json:"productivityTrend"`
	CategoryBreakdown    []CategoryBreakdown  `json:"categoryBreakdown"`
	PriorityDistribution PriorityDistribution `json:"priorityDistribution"`
	PerformanceMetrics   PerformanceMetrics   `json:"performanceMetrics"`
}

// Report is everything an exported document contains.
type Report struct {
	GeneratedAt time.Time
	Range       task.Range
	Metrics     Metrics
	Analytics   Analytics
}

// ------------------------------------------------------------

type RangeQuery struct {
	Range task.Range `query:"range" validate:"omitempty,oneof=7days 30days 90days all"`
}

func (q *RangeQuery) Validate() error {
	if q.Range == "" {
		q.Range = task.Range7Days
	}
	return validation.Struct(q)
}
