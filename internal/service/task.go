package service

import (
	"context"
	"fmt"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

type TaskService struct {
	server     *server.Server
	tasks      TaskStore
	users      UserStore
	categories CategoryStore
	cache      Cache
	now        func() time.Time
}

func NewTaskService(s *server.Server, tasks TaskStore, users UserStore, categories CategoryStore, cache Cache) *TaskService {
	return &TaskService{server: s, tasks: tasks, users: users, categories: categories, cache: cache, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, q *task.ListTasksQuery) ([]task.Task, error) {
	return s.tasks.List(ctx, q, q.Range.Since(s.now()))
}

func (s *TaskService) Get(ctx context.Context, p *task.GetTaskPayload) (*task.Task, error) {
	return s.tasks.GetByID(ctx, p.ID)
}

func (s *TaskService) Create(ctx context.Context, p *task.CreateTaskPayload) (*task.Task, error) {
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	assignees, err := s.normalizeAssignees(ctx, p.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	t := &task.Task{
		Title:       p.Title,
		Description: p.Description,
		Status:      task.StatusTodo,
		Priority:    task.PriorityMedium,
		CategoryID:  p.CategoryID,
		AssigneeIDs: assignees,
		DueDate:     p.DueDate,
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Points != nil {
		t.Points = *p.Points
	}

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, p *task.UpdateTaskPayload) (*task.Task, error) {
	current, err := s.tasks.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Status != nil {
		if err := checkTransition(current.Status, *p.Status); err != nil {
			return nil, err
		}
	}

	if err := s.checkCategory(ctx, p.CategoryID.Val); err != nil {
		return nil, err
	}

	// null and "" both clear the assignees.
	if p.AssigneeIDs.Set {
		normalized, err := s.normalizeAssignees(ctx, p.AssigneeIDs.Val)
		if err != nil {
			return nil, err
		}
		p.AssigneeIDs = model.Nullable[string]{Set: true, Val: normalized}
	}

	updated, err := s.tasks.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, p *task.UpdateTaskStatusPayload) (*task.Task, error) {
	current, err := s.tasks.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if err := checkTransition(current.Status, p.Status); err != nil {
		return nil, err
	}

	updated, err := s.tasks.UpdateStatus(ctx, p.ID, p.Status)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, p *task.DeleteTaskPayload) error {
	if err := s.tasks.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func checkTransition(from, to task.Status) error {
	if task.CanTransition(from, to) {
		return nil
	}
	return errs.NewBadRequestError(
		fmt.Sprintf("Cannot change task status from %s to %s", from, to),
		true, errs.Code("INVALID_STATUS_TRANSITION"), nil, nil,
	)
}

func (s *TaskService) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}

	ok, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewBadRequestError("Category does not exist", true, errs.Code("TASK_CATEGORY_NOT_FOUND"),
			[]errs.FieldError{{Field: "categoryId", Error: "does not exist"}}, nil)
	}
	return nil
}

// normalizeAssignees parses, de-duplicates and checks the assignee list
// against the master users. A nil result means "no assignees".
func (s *TaskService) normalizeAssignees(ctx context.Context, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}

	ids, err := validation.ParseIDList(*raw)
	if err != nil {
		return nil, errs.NewBadRequestError("Invalid assignee list", true, errs.Code("INVALID_ASSIGNEES"),
			[]errs.FieldError{{Field: "assigneeIds", Error: err.Error()}}, nil)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	existing, err := s.users.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	var missing []errs.FieldError
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, errs.FieldError{Field: "assigneeIds", Error: fmt.Sprintf("user %d does not exist", id)})
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewBadRequestError("Unknown assignees", true, errs.Code("INVALID_ASSIGNEES"), missing, nil)
	}

	return task.FormatAssigneeIDs(ids), nil
}
