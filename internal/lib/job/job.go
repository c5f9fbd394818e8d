// Package job runs background work on asynq: transactional emails and
// periodic maintenance.
package job

import (
	"github.com/hibiken/asynq"
	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/lib/email"
	"github.com/rs/zerolog"
)

type periodicTask struct {
	cronspec string
	task     *asynq.Task
}

type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	periodic  []periodicTask

	emailClient *email.Client
	logger      *zerolog.Logger
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		Logger: newAsynqLogger(logger),
	})

	j := &JobService{
		Client:      asynq.NewClient(redisOpt),
		server:      server,
		scheduler:   asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: newAsynqLogger(logger)}),
		mux:         asynq.NewServeMux(),
		emailClient: email.NewClient(cfg.Integration, logger),
		logger:      logger,
	}

	j.mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	j.mux.HandleFunc(TaskPasswordReset, j.handlePasswordResetEmailTask)
	j.mux.HandleFunc(TaskDefaultPassword, j.handleDefaultPasswordEmailTask)

	return j
}

// Handle registers an extra task handler. It must be called before Start.
func (j *JobService) Handle(pattern string, handler asynq.HandlerFunc) {
	j.mux.HandleFunc(pattern, handler)
}

// Schedule registers a periodic task. It must be called before Start.
func (j *JobService) Schedule(cronspec string, task *asynq.Task) {
	j.periodic = append(j.periodic, periodicTask{cronspec: cronspec, task: task})
}

func (j *JobService) Start() error {
	for _, p := range j.periodic {
		if _, err := j.scheduler.Register(p.cronspec, p.task); err != nil {
			return err
		}
	}

	j.logger.Info().Int("periodic_tasks", len(j.periodic)).Msg("starting background job server")

	if err := j.server.Start(j.mux); err != nil {
		return err
	}

	if len(j.periodic) > 0 {
		if err := j.scheduler.Start(); err != nil {
			return err
		}
	}

	return nil
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	if len(j.periodic) > 0 {
		j.scheduler.Shutdown()
	}
	j.server.Shutdown()
	j.Client.Close()
}
