package service

import (
	"github.com/panjilaras/Dashboard-PI/internal/lib/cache"
	"github.com/panjilaras/Dashboard-PI/internal/lib/job"
	"github.com/panjilaras/Dashboard-PI/internal/repository"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

type Services struct {
	Auth      *AuthService
	User      *UserService
	Task      *TaskService
	Category  *CategoryService
	Dashboard *DashboardService
	Job       *job.JobService
}

// NewServices wires the services onto the repositories and registers the
// service-owned background handlers. The job service is started by the
// caller afterwards.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	dashboardCache := cache.New(s.Redis, s.Logger)

	var jobs Enqueuer
	if s.Job != nil {
		jobs = s.Job.Client
	}

	authService := NewAuthService(s, repos.Auth, repos.User, jobs, dashboardCache)

	if s.Job != nil {
		s.Job.Handle(job.TaskSessionCleanup, authService.HandleSessionCleanup)
		s.Job.Schedule(job.SessionCleanupSchedule, job.NewSessionCleanupTask())
	}

	return &Services{
		Auth:      authService,
		User:      NewUserService(s, repos.User, repos.Auth, jobs, dashboardCache),
		Task:      NewTaskService(s, repos.Task, repos.User, repos.Category, dashboardCache),
		Category:  NewCategoryService(s, repos.Category, dashboardCache),
		Dashboard: NewDashboardService(s, repos.Task, repos.User, repos.Category, dashboardCache),
		Job:       s.Job,
	}, nil
}
