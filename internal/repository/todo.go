package repository

import (
	"database/sql"
	"fmt"

	"todoservice/internal/models"
)

// Every statement in this file carries a user_id predicate; a todo is
// never returned or touched for a caller that does not own it.

// CreateTodo inserts a todo owned by userID and returns the stored row.
func (r *Repository) CreateTodo(userID int64, title string) (*models.Todo, error) {
	todo := &models.Todo{Title: title, UserID: userID}
	query := `
		INSERT INTO todo (title, user_id)
		VALUES ($1, $2)
		RETURNING id, complete, created_at`
	err := r.db.QueryRow(query, title, userID).
		Scan(&todo.ID, &todo.Complete, &todo.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// FindTodosByUserID returns all todos owned by userID, most recent first.
func (r *Repository) FindTodosByUserID(userID int64) ([]models.Todo, error) {
	query := `
		SELECT id, title, complete, created_at, user_id
		FROM todo
		WHERE user_id = $1
		ORDER BY id DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Complete, &t.CreatedAt, &t.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// FindTodo returns the todo if it exists and is owned by userID, or nil.
func (r *Repository) FindTodo(userID, id int64) (*models.Todo, error) {
	todo := &models.Todo{}
	query := `
		SELECT id, title, complete, created_at, user_id
		FROM todo
		WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRow(query, id, userID).
		Scan(&todo.ID, &todo.Title, &todo.Complete, &todo.CreatedAt, &todo.UserID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// UpdateTodo writes title and complete for the todo if owned by userID.
// A missing or foreign-owned todo is a no-op, not an error.
func (r *Repository) UpdateTodo(userID, id int64, title string, complete bool) error {
	query := `
		UPDATE todo
		SET title = $1, complete = $2
		WHERE id = $3 AND user_id = $4`
	if _, err := r.db.Exec(query, title, complete, id, userID); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// DeleteTodo removes the todo if owned by userID. A missing or
// foreign-owned todo is a no-op, not an error.
func (r *Repository) DeleteTodo(userID, id int64) error {
	query := `DELETE FROM todo WHERE id = $1 AND user_id = $2`
	if _, err := r.db.Exec(query, id, userID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// Stats summarizes stored activity for the ops digest.
type Stats struct {
	Users          int64
	Todos          int64
	CompletedTodos int64
}

// CollectStats returns aggregate counts across all users.
func (r *Repository) CollectStats() (*Stats, error) {
	stats := &Stats{}
	query := `
		SELECT
			(SELECT COUNT(*) FROM "user"),
			(SELECT COUNT(*) FROM todo),
			(SELECT COUNT(*) FROM todo WHERE complete)`
	err := r.db.QueryRow(query).
		Scan(&stats.Users, &stats.Todos, &stats.CompletedTodos)
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}
	return stats, nil
}
