package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
)

type TaskHandler struct {
	Handler
	taskService *service.TaskService
}

func NewTaskHandler(s *server.Server, taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		Handler:     NewHandler(s),
		taskService: taskService,
	}
}

func (h *TaskHandler) List(c echo.Context, q *task.ListTasksQuery) ([]task.Task, error) {
	tasks, err := h.taskService.List(c.Request().Context(), q)
	return nonNil(tasks), err
}

func (h *TaskHandler) Get(c echo.Context, p *task.GetTaskPayload) (*task.Task, error) {
	return h.taskService.Get(c.Request().Context(), p)
}

func (h *TaskHandler) Create(c echo.Context, p *task.CreateTaskPayload) (*task.Task, error) {
	return h.taskService.Create(c.Request().Context(), p)
}

func (h *TaskHandler) Update(c echo.Context, p *task.UpdateTaskPayload) (*task.Task, error) {
	return h.taskService.Update(c.Request().Context(), p)
}

func (h *TaskHandler) UpdateStatus(c echo.Context, p *task.UpdateTaskStatusPayload) (*task.Task, error) {
	return h.taskService.UpdateStatus(c.Request().Context(), p)
}

func (h *TaskHandler) Delete(c echo.Context, p *task.DeleteTaskPayload) error {
	return h.taskService.Delete(c.Request().Context(), p)
}
