package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcome         = "email:welcome"
	TaskPasswordReset   = "email:password_reset"
	TaskDefaultPassword = "email:default_password"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

type PasswordResetEmailPayload struct {
	To        string `json:"to"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
}

type DefaultPasswordEmailPayload struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func newEmailTask(taskType, queue string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		taskType,
		data,
		asynq.MaxRetry(3),
		asynq.Queue(queue),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	return newEmailTask(TaskWelcome, QueueDefault, WelcomeEmailPayload{To: to, Name: name})
}

// NewPasswordResetEmailTask goes to the critical queue: the user is waiting.
func NewPasswordResetEmailTask(to, name, token, expiresIn string) (*asynq.Task, error) {
	return newEmailTask(TaskPasswordReset, QueueCritical, PasswordResetEmailPayload{
		To: to, Name: name, Token: token, ExpiresIn: expiresIn,
	})
}

func NewDefaultPasswordEmailTask(to, name, password string) (*asynq.Task, error) {
	return newEmailTask(TaskDefaultPassword, QueueCritical, DefaultPasswordEmailPayload{
		To: to, Name: name, Password: password,
	})
}
