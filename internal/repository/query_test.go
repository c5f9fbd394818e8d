package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
)

func TestBuildTaskFilters(t *testing.T) {
	categoryID := int64(4)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &task.ListTasksQuery{
		Search:     "login",
		Status:     "todo",
		Priority:   "high",
		CategoryID: &categoryID,
	}

	w := buildTaskFilters(q, &since)
	clause := w.clause()

	for _, want := range []string{"title ILIKE @search", "status = @status", "priority = @priority", "category_id = @category_id", "created_at >= @since"} {
		if !strings.Contains(clause, want) {
			t.Errorf("clause %q missing %q", clause, want)
		}
	}
	if strings.Count(clause, " AND ") != 4 {
		t.Errorf("expected 5 AND-ed predicates, got %q", clause)
	}
	if w.args["search"] != "%login%" || w.args["category_id"] != int64(4) {
		t.Errorf("unexpected args %v", w.args)
	}
}

func TestBuildTaskFilters_Empty(t *testing.T) {
	if got := buildTaskFilters(&task.ListTasksQuery{}, nil).clause(); got != "" {
		t.Errorf("expected no WHERE clause, got %q", got)
	}
}

func TestBuildUserFilters(t *testing.T) {
	w := buildUserFilters(&user.ListUsersQuery{Role: "admin", Status: "active"})
	if got := w.clause(); got != "WHERE role = @role AND status = @status" {
		t.Errorf("unexpected clause %q", got)
	}
}

func TestUpdateBuilder(t *testing.T) {
	b := newUpdateBuilder(9)
	if !b.empty() {
		t.Fatal("new builder should be empty")
	}

	b.set("title", "New title")
	b.set("points", 5)

	if got := b.clause(); got != "title = @title, points = @points" {
		t.Errorf("unexpected clause %q", got)
	}
	if b.args["id"] != int64(9) || b.args["points"] != 5 {
		t.Errorf("unexpected args %v", b.args)
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	if got := likePattern(" 100%_done "); got != `%100\%\_done%` {
		t.Errorf("unexpected pattern %q", got)
	}
}

func TestNotFound_WrapsOnlyNoRows(t *testing.T) {
	wrapped := notFound("tasks", pgx.ErrNoRows)
	if !errors.Is(wrapped, pgx.ErrNoRows) || !strings.HasPrefix(wrapped.Error(), "table:tasks:") {
		t.Errorf("unexpected wrapped error %v", wrapped)
	}

	other := errors.New("boom")
	if notFound("tasks", other) != other {
		t.Error("non ErrNoRows errors must pass through")
	}
}
