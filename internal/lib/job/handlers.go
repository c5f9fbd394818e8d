package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w", asynq.SkipRetry)
	}

	return j.sendEmail("welcome", p.To, func() error {
		return j.emailClient.SendWelcomeEmail(p.To, p.Name)
	})
}

func (j *JobService) handlePasswordResetEmailTask(ctx context.Context, t *asynq.Task) error {
	var p PasswordResetEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal password reset email payload: %w", asynq.SkipRetry)
	}

	return j.sendEmail("password_reset", p.To, func() error {
		return j.emailClient.SendPasswordResetEmail(p.To, p.Name, p.Token, p.ExpiresIn)
	})
}

func (j *JobService) handleDefaultPasswordEmailTask(ctx context.Context, t *asynq.Task) error {
	var p DefaultPasswordEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal default password email payload: %w", asynq.SkipRetry)
	}

	return j.sendEmail("default_password", p.To, func() error {
		return j.emailClient.SendDefaultPasswordEmail(p.To, p.Name, p.Password)
	})
}

// sendEmail logs around send. A returned error makes asynq retry the task.
func (j *JobService) sendEmail(kind, to string, send func() error) error {
	j.logger.Info().Str("type", kind).Str("to", to).Msg("processing email task")

	if err := send(); err != nil {
		j.logger.Error().Str("type", kind).Str("to", to).Err(err).Msg("failed to send email")
		return err
	}

	j.logger.Info().Str("type", kind).Str("to", to).Msg("successfully sent email")
	return nil
}
