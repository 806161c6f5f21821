package store

import (
	"context"
	"fmt"
	"time"
)

// Transaction is one persisted income or expense row.
type Transaction struct {
	ID          int64
	UserID      string
	Username    string
	Type        string // "income" or "expense"
	Amount      float64
	Category    string
	Description string
	CreatedAt   time.Time
}

// Balance is the derived financial snapshot for one user. It is recomputed
// on every call; there is deliberately no caching.
type Balance struct {
	Income  float64
	Expense float64
	Balance float64
}

// CategoryTotals accumulates per-category sums split by direction.
type CategoryTotals struct {
	Income  float64
	Expense float64
}

// AddTransaction persists one transaction and returns its id. The amount
// must be strictly positive; the schema enforces the same invariant.
func (s *Store) AddTransaction(ctx context.Context, userID, username, txType string, amount float64, category, description string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("AddTransaction: amount must be positive, got %v", amount)
	}
	if txType != "income" && txType != "expense" {
		return 0, fmt.Errorf("AddTransaction: invalid type %q", txType)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, username, type, amount, category, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, username, txType, amount, category, description, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("AddTransaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("AddTransaction: last insert id: %w", err)
	}
	return id, nil
}

// DeleteTransaction removes a transaction owned by userID. It returns false
// when the id does not exist or belongs to another user; nothing is mutated
// in that case.
func (s *Store) DeleteTransaction(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("DeleteTransaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteTransaction: rows affected: %w", err)
	}
	return n > 0, nil
}

// GetBalance computes the user's snapshot as aggregate sums over their rows.
func (s *Store) GetBalance(ctx context.Context, userID string) (Balance, error) {
	var b Balance
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		FROM transactions WHERE user_id = ?
	`, userID).Scan(&b.Income, &b.Expense)
	if err != nil {
		return Balance{}, fmt.Errorf("GetBalance: %w", err)
	}
	b.Balance = b.Income - b.Expense
	return b, nil
}

// RecentTransactions returns up to limit transactions, newest first.
func (s *Store) RecentTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, type, amount, category, description, created_at
		FROM transactions WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentTransactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// AllTransactions returns the user's full history in chronological order,
// for export and trend analysis.
func (s *Store) AllTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, type, amount, category, description, created_at
		FROM transactions WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("AllTransactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// CountTransactions reports how many rows the user owns.
func (s *Store) CountTransactions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountTransactions: %w", err)
	}
	return n, nil
}

// CategoryReport sums amounts per category for one user, split by direction.
func (s *Store) CategoryReport(ctx context.Context, userID string) (map[string]CategoryTotals, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, type, SUM(amount)
		FROM transactions WHERE user_id = ?
		GROUP BY category, type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("CategoryReport: %w", err)
	}
	defer rows.Close()

	report := make(map[string]CategoryTotals)
	for rows.Next() {
		var category, txType string
		var total float64
		if err := rows.Scan(&category, &txType, &total); err != nil {
			return nil, fmt.Errorf("CategoryReport: scan: %w", err)
		}
		t := report[category]
		if txType == "income" {
			t.Income += total
		} else {
			t.Expense += total
		}
		report[category] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CategoryReport: rows: %w", err)
	}
	return report, nil
}

func scanTransactions(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]Transaction, error) {
	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.Type, &t.Amount, &t.Category, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}
