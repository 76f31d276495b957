package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

const userColumns = `id, full_name, email, password_hash, phone, profile_picture,
	provider, google_id, email_verified, last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var verified int
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.ProfilePicture,
		&user.Provider,
		&user.GoogleID,
		&verified,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.EmailVerified = verified != 0
	return user, nil
}

// CreateUser inserts a new user, generating ID and timestamps when unset.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = now
	}
	if user.Provider == "" {
		user.Provider = models.ProviderManual
	}
	user.Email = strings.ToLower(user.Email)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.FullName, user.Email, user.PasswordHash, user.Phone,
		user.ProfilePicture, user.Provider, user.GoogleID,
		boolInt(user.EmailVerified), user.LastLogin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return storeErr("failed to create user", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID, including group back-references.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, storeErr("failed to get user by ID", err)
	}

	if user.GroupIDs, err = s.groupRefs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, storeErr("failed to get user by email", err)
	}

	if user.GroupIDs, err = s.groupRefs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// UsersByPhones retrieves users matching any of the given canonical phone
// numbers, keyed by phone, in a single query. Unmatched numbers are omitted.
func (s *SQLiteStore) UsersByPhones(ctx context.Context, phones []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User)
	if len(phones) == 0 {
		return users, nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE phone IN (?` +
		strings.Repeat(", ?", len(phones)-1) + `)`
	args := make([]any, len(phones))
	for i, p := range phones {
		args[i] = p
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("failed to get users by phones", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("failed to scan user", err)
		}
		users[user.Phone] = user
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating users", err)
	}
	return users, nil
}

// UpdateUser persists mutable profile fields of an existing user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET full_name = ?, password_hash = ?, phone = ?, profile_picture = ?,
		    provider = ?, google_id = ?, email_verified = ?, last_login = ?,
		    updated_at = ?
		WHERE id = ?`,
		user.FullName, user.PasswordHash, user.Phone, user.ProfilePicture,
		user.Provider, user.GoogleID, boolInt(user.EmailVerified),
		user.LastLogin, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return storeErr("failed to update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundf("user %s", user.ID)
	}
	return nil
}

// DeleteUser removes a user and their group back-references.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return storeErr("failed to delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundf("user %s", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_groups WHERE user_id = ?`, id); err != nil {
		return storeErr("failed to delete user group refs", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}
	return nil
}

// AddGroupToUsers adds groupID to every listed user's back-reference set in
// one round trip. INSERT OR IGNORE gives set-union semantics.
func (s *SQLiteStore) AddGroupToUsers(ctx context.Context, userIDs []string, groupID string) error {
	if len(userIDs) == 0 {
		return nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `INSERT OR IGNORE INTO user_groups (user_id, group_id) VALUES `
	args := make([]any, 0, len(userIDs)*2)
	for i, id := range userIDs {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?)"
		args = append(args, id, groupID)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storeErr("failed to add group back-references", err)
	}
	return nil
}

// RemoveGroupFromUsers retracts groupID from every user holding it.
// Removing an absent reference is a no-op.
func (s *SQLiteStore) RemoveGroupFromUsers(ctx context.Context, groupID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM user_groups WHERE group_id = ?`, groupID); err != nil {
		return storeErr("failed to remove group back-references", err)
	}
	return nil
}

// groupRefs loads the back-reference set for one user.
func (s *SQLiteStore) groupRefs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id FROM user_groups WHERE user_id = ? ORDER BY group_id`, userID)
	if err != nil {
		return nil, storeErr("failed to get group refs", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("failed to scan group ref", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating group refs", err)
	}
	return ids, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
