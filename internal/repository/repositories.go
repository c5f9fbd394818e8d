// Package repository is the data access layer.
//
// Repositories issue raw SQL through the shared pgx pool and scan rows into
// model structs with pgx.RowToStructByName. Lookup misses are wrapped with
// sqlerr.NotFound so the error handler can name the missing entity.
package repository

import (
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

type Repositories struct {
	User     *UserRepository
	Task     *TaskRepository
	Category *CategoryRepository
	Auth     *AuthRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User:     NewUserRepository(s),
		Task:     NewTaskRepository(s),
		Category: NewCategoryRepository(s),
		Auth:     NewAuthRepository(s),
	}
}
