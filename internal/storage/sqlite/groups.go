package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

// CreateGroup persists a group aggregate with its members and expense lines
// in one transaction. GroupID must already be assigned by the caller.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.ExpenseGroup) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		group.GroupID, group.GroupName, group.CreatedBy, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return storeErr("failed to insert group", err)
	}

	for i := range group.Members {
		m := &group.Members[i]
		if m.JoinedAt == 0 {
			m.JoinedAt = now
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, position, user_id, phone, name, joined_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			group.GroupID, i, m.UserID, m.Phone, m.Name, m.JoinedAt,
		)
		if err != nil {
			return storeErr("failed to insert member", err)
		}
	}

	for i := range group.Expenses {
		if err := insertExpense(ctx, tx, group.GroupID, i, &group.Expenses[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}
	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, groupID string, position int, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Date == 0 {
		e.Date = time.Now().Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, position, title, amount, category,
		 paid_by_user, paid_by_phone, split_type, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, groupID, position, e.Title, e.Amount, e.Category,
		e.PaidByUserID, e.PaidByPhone, e.SplitType, e.Date,
	)
	if err != nil {
		return storeErr("failed to insert expense", err)
	}

	for j, share := range e.SplitBetween {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, position, user_id, phone, amount)
			 VALUES (?, ?, ?, ?, ?)`,
			e.ID, j, share.UserID, share.Phone, share.Amount,
		)
		if err != nil {
			return storeErr("failed to insert split", err)
		}
	}
	return nil
}

// GetGroup retrieves the full aggregate including members and expense lines.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.ExpenseGroup, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	group := &models.ExpenseGroup{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at, updated_at FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.GroupID, &group.GroupName, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.NotFoundf("group %s", groupID)
	}
	if err != nil {
		return nil, storeErr("failed to get group", err)
	}

	if err := s.loadMembers(ctx, group); err != nil {
		return nil, err
	}
	if err := s.loadExpenses(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// GroupIDExists reports whether a group identifier is taken.
func (s *SQLiteStore) GroupIDExists(ctx context.Context, groupID string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM groups WHERE id = ?)`, groupID).Scan(&exists)
	if err != nil {
		return false, storeErr("failed to check group id", err)
	}
	return exists != 0, nil
}

// FindGroupsByMember returns groups whose member list contains the given user
// id or canonical phone, most recently updated first.
func (s *SQLiteStore) FindGroupsByMember(ctx context.Context, userID, phone string) ([]*models.ExpenseGroup, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT g.id
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE (? != '' AND m.user_id = ?) OR (? != '' AND m.phone = ?)
		ORDER BY g.updated_at DESC, g.id`,
		userID, userID, phone, phone,
	)
	if err != nil {
		return nil, storeErr("failed to find groups", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("failed to scan group id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating groups", err)
	}

	groups := make([]*models.ExpenseGroup, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes the aggregate wholesale; child rows cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
	if err != nil {
		return storeErr("failed to delete group", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundf("group %s", groupID)
	}
	return nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, group *models.ExpenseGroup) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, phone, name, joined_at FROM group_members
		 WHERE group_id = ? ORDER BY position`,
		group.GroupID,
	)
	if err != nil {
		return storeErr("failed to get members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Phone, &m.Name, &m.JoinedAt); err != nil {
			return storeErr("failed to scan member", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return storeErr("error iterating members", err)
	}
	return nil
}

func (s *SQLiteStore) loadExpenses(ctx context.Context, group *models.ExpenseGroup) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, category, paid_by_user, paid_by_phone, split_type, date
		 FROM expenses WHERE group_id = ? ORDER BY position`,
		group.GroupID,
	)
	if err != nil {
		return storeErr("failed to get expenses", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.Category,
			&e.PaidByUserID, &e.PaidByPhone, &e.SplitType, &e.Date); err != nil {
			return storeErr("failed to scan expense", err)
		}
		index[e.ID] = len(group.Expenses)
		group.Expenses = append(group.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return storeErr("error iterating expenses", err)
	}

	if len(group.Expenses) == 0 {
		return nil
	}

	// One query for every split row in the group.
	splitRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.user_id, s.phone, s.amount
		 FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? ORDER BY s.expense_id, s.position`,
		group.GroupID,
	)
	if err != nil {
		return storeErr("failed to get splits", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID string
		var share models.SplitShare
		if err := splitRows.Scan(&expenseID, &share.UserID, &share.Phone, &share.Amount); err != nil {
			return storeErr("failed to scan split", err)
		}
		if i, ok := index[expenseID]; ok {
			group.Expenses[i].SplitBetween = append(group.Expenses[i].SplitBetween, share)
		}
	}
	if err := splitRows.Err(); err != nil {
		return storeErr("error iterating splits", err)
	}
	return nil
}
