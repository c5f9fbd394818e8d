// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated
// payloads, enforces the rules the database cannot (status transitions,
// assignee and category references, duplicate names), and keeps the auth
// tables, the dashboard cache and the email queue in step with the master
// data.
package service

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// enqueue schedules a background task. Email delivery is best effort, so a
// failure is logged and never returned to the caller.
func enqueue(ctx context.Context, q Enqueuer, logger *zerolog.Logger, build func() (*asynq.Task, error)) {
	if q == nil {
		return
	}

	t, err := build()
	if err != nil {
		logger.Error().Err(err).Msg("failed to build background task")
		return
	}

	info, err := q.EnqueueContext(ctx, t)
	if err != nil {
		logger.Error().Err(err).Str("task", t.Type()).Msg("failed to enqueue background task")
		return
	}

	logger.Debug().Str("task", t.Type()).Str("task_id", info.ID).Msg("enqueued background task")
}
