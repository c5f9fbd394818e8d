package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type seedUser struct {
	name, email, position, role string
}

type seedCategory struct {
	name, color string
}

type seedTask struct {
	title, description, status, priority, category string
	points                                         int
	assignees                                      []string
	createdAgo, updatedAgo                         time.Duration
	dueIn                                          time.Duration
}

const day = 24 * time.Hour

var (
	seedUsers = []seedUser{
		{"John Smith", "john.smith@company.com", "Project Manager", "admin"},
		{"Sarah Johnson", "sarah.johnson@company.com", "Developer", "member"},
		{"Mike Chen", "mike.chen@company.com", "QA Engineer", "member"},
	}

	seedCategories = []seedCategory{
		{"UAT", "#E6E6FA"},
		{"Datafix", "#ADD8E6"},
		{"Training", "#FFB6C1"},
		{"Task Force", "#FFDAB9"},
		{"Other", "#DDA0DD"},
	}

	seedTasks = []seedTask{
		{
			title:       "Complete UAT testing for login module",
			description: "Test all login scenarios including edge cases and security features",
			status:      "in-progress", priority: "high", category: "UAT", points: 8,
			assignees:  []string{"mike.chen@company.com"},
			createdAgo: 3 * day, updatedAgo: day, dueIn: 2 * day,
		},
		{
			title:       "Fix customer data inconsistencies in production",
			description: "Resolve data sync issues between customer and order tables",
			status:      "todo", priority: "high", category: "Datafix", points: 5,
			assignees:  []string{"sarah.johnson@company.com"},
			createdAgo: 2 * day, updatedAgo: 2 * day, dueIn: 5 * day,
		},
		{
			title:       "Conduct training session on new dashboard features",
			description: "Train team members on the new productivity management dashboard",
			status:      "completed", priority: "medium", category: "Training", points: 3,
			assignees:  []string{"john.smith@company.com", "sarah.johnson@company.com"},
			createdAgo: 7 * day, updatedAgo: day, dueIn: -day,
		},
	}
)

// Seed inserts sample users, categories and tasks. Rows that already exist
// are left untouched, so it is safe to run repeatedly.
func Seed(ctx context.Context, db *Database, logger *zerolog.Logger) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		userIDs := make(map[string]int64, len(seedUsers))
		for _, u := range seedUsers {
			_, err := tx.Exec(ctx, `
				INSERT INTO users (name, email, position, role, status, join_date)
				VALUES ($1, $2, $3, $4, 'active', TO_CHAR(CURRENT_DATE, 'YYYY-MM-DD'))
				ON CONFLICT (email) DO NOTHING
			`, u.name, u.email, u.position, u.role)
			if err != nil {
				return fmt.Errorf("seeding user %s: %w", u.email, err)
			}

			var id int64
			if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, u.email).Scan(&id); err != nil {
				return fmt.Errorf("looking up seeded user %s: %w", u.email, err)
			}
			userIDs[u.email] = id
		}
		logger.Info().Int("count", len(seedUsers)).Msg("users seeded")

		categoryIDs := make(map[string]int64, len(seedCategories))
		for _, c := range seedCategories {
			_, err := tx.Exec(ctx, `
				INSERT INTO task_categories (name, color)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, c.name, c.color)
			if err != nil {
				return fmt.Errorf("seeding category %s: %w", c.name, err)
			}

			var id int64
			if err := tx.QueryRow(ctx, `SELECT id FROM task_categories WHERE LOWER(name) = LOWER($1)`, c.name).Scan(&id); err != nil {
				return fmt.Errorf("looking up seeded category %s: %w", c.name, err)
			}
			categoryIDs[c.name] = id
		}
		logger.Info().Int("count", len(seedCategories)).Msg("task categories seeded")

		now := time.Now().UTC()
		for _, t := range seedTasks {
			ids := make([]string, 0, len(t.assignees))
			for _, email := range t.assignees {
				ids = append(ids, strconv.FormatInt(userIDs[email], 10))
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO tasks (title, description, status, priority, category_id, points, assignee_ids, due_date, created_at, updated_at)
				SELECT $1::text, $2::text, $3::text, $4::text, $5::bigint, $6::int, $7::text, $8::timestamptz, $9::timestamptz, $10::timestamptz
				WHERE NOT EXISTS (SELECT 1 FROM tasks WHERE title = $1)
			`,
				t.title, t.description, t.status, t.priority, categoryIDs[t.category], t.points,
				strings.Join(ids, ","), now.Add(t.dueIn), now.Add(-t.createdAgo), now.Add(-t.updatedAgo),
			)
			if err != nil {
				return fmt.Errorf("seeding task %q: %w", t.title, err)
			}
		}
		logger.Info().Int("count", len(seedTasks)).Msg("tasks seeded")

		return nil
	})
}
