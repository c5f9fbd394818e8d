package task

import (
	"strconv"
	"strings"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

const (
	MinPoints = 0
	MaxPoints = 100
)

type Task struct {
	model.Base
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	CategoryID  *int64     `json:"categoryId" db:"category_id"`
	Points      int        `json:"points" db:"points"`
	AssigneeIDs *string    `json:"assigneeIds" db:"assignee_ids"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
}

// Assignees parses the stored assignee list. Malformed entries are skipped so
// legacy rows never break reads.
func (t *Task) Assignees() []int64 {
	if t.AssigneeIDs == nil {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(*t.AssigneeIDs, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsOverdue reports whether an open task is past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return t.DueDate.Before(now)
}

// FormatAssigneeIDs is the inverse of validation.ParseIDList. An empty list
// is stored as NULL.
func FormatAssigneeIDs(ids []int64) *string {
	if len(ids) == 0 {
		return nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	joined := strings.Join(parts, ",")
	return &joined
}

// transitions lists the statuses reachable from each status. Staying in the
// same status is always allowed.
var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusTodo, StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusInProgress},
	StatusCancelled:  {StatusTodo},
}

func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ------------------------------------------------------------

// Range limits list and report queries by creation date.
type Range string

const (
	Range7Days  Range = "7days"
	Range30Days Range = "30days"
	Range90Days Range = "90days"
	RangeAll    Range = "all"
)

// Since returns the lower createdAt bound for r, or nil for "all" and the
// empty range.
func (r Range) Since(now time.Time) *time.Time {
	var days int
	switch r {
	case Range7Days:
		days = 7
	case Range30Days:
		days = 30
	case Range90Days:
		days = 90
	default:
		return nil
	}
	since := now.AddDate(0, 0, -days)
	return &since
}

// ------------------------------------------------------------

type ListTasksQuery struct {
	model.ListWindow
	Search     string `query:"search" validate:"omitempty,max=255"`
	Status     string `query:"status" validate:"omitempty,oneof=todo in-progress completed cancelled"`
	Priority   string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CategoryID *int64 `query:"categoryId" validate:"omitempty,min=1"`
	Range      Range  `query:"range" validate:"omitempty,oneof=7days 30days 90days all"`
}

func (q *ListTasksQuery) Validate() error {
	return validation.Struct(q)
}

// ------------------------------------------------------------

type GetTaskPayload struct {
	model.IDParam
}

func (p *GetTaskPayload) Validate() error {
	return validation.Struct(p)
}

// ------------------------------------------------------------

type CreateTaskPayload struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      *Status    `json:"status" validate:"omitempty,oneof=todo in-progress completed cancelled"`
	Priority    *Priority  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CategoryID  *int64     `json:"categoryId" validate:"omitempty,min=1"`
	Points      *int       `json:"points" validate:"omitempty,min=0,max=100"`
	AssigneeIDs *string    `json:"assigneeIds" validate:"omitempty,idlist"`
	DueDate     *time.Time `json:"dueDate"`
}

func (p *CreateTaskPayload) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	return validation.Struct(p)
}

// ------------------------------------------------------------

// UpdateTaskPayload is a partial update. Absent keys keep their value; the
// nullable columns are cleared by an explicit null.
type UpdateTaskPayload struct {
	model.IDParam
	Title       *string                   `json:"title" validate:"omitempty,min=1,max=255"`
	Description model.Nullable[string]    `json:"description" validate:"omitempty,max=5000"`
	Status      *Status                   `json:"status" validate:"omitempty,oneof=todo in-progress completed cancelled"`
	Priority    *Priority                 `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CategoryID  model.Nullable[int64]     `json:"categoryId" validate:"omitempty,min=1"`
	Points      *int                      `json:"points" validate:"omitempty,min=0,max=100"`
	AssigneeIDs model.Nullable[string]    `json:"assigneeIds" validate:"omitempty,idlist"`
	DueDate     model.Nullable[time.Time] `json:"dueDate"`
}

func (p *UpdateTaskPayload) Validate() error {
	// categoryId 0 is how some clients spell "no category".
	if p.CategoryID.Val != nil && *p.CategoryID.Val == 0 {
		p.CategoryID = model.Null[int64]()
	}
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		p.Title = &trimmed
		if trimmed == "" {
			return validation.CustomValidationErrors{{Field: "title", Message: "cannot be blank"}}
		}
	}
	return validation.Struct(p)
}

// ------------------------------------------------------------

type UpdateTaskStatusPayload struct {
	model.IDParam
	Status Status `json:"status" validate:"required,oneof=todo in-progress completed cancelled"`
}

func (p *UpdateTaskStatusPayload) Validate() error {
	return validation.Struct(p)
}

// ------------------------------------------------------------

type DeleteTaskPayload struct {
	model.IDParam
}

func (p *DeleteTaskPayload) Validate() error {
	return validation.Struct(p)
}
