package store

import (
	"context"
	"fmt"
	"time"
)

// Reminder is one stored reminder. DueDate is always a fully resolved
// YYYY-MM-DD string; day-only input is resolved before it reaches the store.
type Reminder struct {
	ID        int64
	UserID    string
	Text      string
	DueDate   string
	Category  string
	Completed bool
	CreatedAt time.Time
}

// AddReminder persists a reminder and returns its id.
func (s *Store) AddReminder(ctx context.Context, userID, text, dueDate, category string) (int64, error) {
	if category == "" {
		category = "Tagihan"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (user_id, text, due_date, category, completed, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, userID, text, dueDate, category, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("AddReminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("AddReminder: last insert id: %w", err)
	}
	return id, nil
}

// Reminders lists the user's reminders ordered by due date. Completed ones
// are excluded unless includeCompleted is set.
func (s *Store) Reminders(ctx context.Context, userID string, includeCompleted bool) ([]Reminder, error) {
	q := `
		SELECT id, user_id, text, due_date, category, completed, created_at
		FROM reminders WHERE user_id = ?`
	if !includeCompleted {
		q += ` AND completed = 0`
	}
	q += ` ORDER BY due_date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("Reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Text, &r.DueDate, &r.Category, &r.Completed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("Reminders: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Reminders: rows: %w", err)
	}
	return out, nil
}

// DueReminders returns all uncompleted reminders, across users, with a due
// date on or before asOf (YYYY-MM-DD). The notifier worker polls this.
func (s *Store) DueReminders(ctx context.Context, asOf string) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, due_date, category, completed, created_at
		FROM reminders WHERE completed = 0 AND due_date <= ?
		ORDER BY due_date ASC, id ASC
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("DueReminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Text, &r.DueDate, &r.Category, &r.Completed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("DueReminders: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("DueReminders: rows: %w", err)
	}
	return out, nil
}

// CompleteReminder marks a reminder done. Returns false when the id does not
// exist or belongs to another user.
func (s *Store) CompleteReminder(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET completed = 1 WHERE id = ? AND user_id = ? AND completed = 0`,
		id, userID)
	if err != nil {
		return false, fmt.Errorf("CompleteReminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("CompleteReminder: rows affected: %w", err)
	}
	return n > 0, nil
}
