package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

// UpsertPasswordReset stores a reset record, replacing any live one for the
// same email. A user only ever has one outstanding OTP.
func (s *SQLiteStore) UpsertPasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if reset.CreatedAt == 0 {
		reset.CreatedAt = time.Now().Unix()
	}
	reset.Email = strings.ToLower(reset.Email)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (email, code_hash, verified, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			code_hash = excluded.code_hash,
			verified = excluded.verified,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		reset.Email, reset.CodeHash, boolInt(reset.Verified), reset.ExpiresAt, reset.CreatedAt,
	)
	if err != nil {
		return storeErr("failed to upsert password reset", err)
	}
	return nil
}

// GetPasswordReset returns the live record for email, or (nil, nil).
func (s *SQLiteStore) GetPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	reset := &models.PasswordReset{}
	var verified int
	err := s.db.QueryRowContext(ctx,
		`SELECT email, code_hash, verified, expires_at, created_at
		 FROM password_resets WHERE email = ?`, strings.ToLower(email),
	).Scan(&reset.Email, &reset.CodeHash, &verified, &reset.ExpiresAt, &reset.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // No outstanding reset
	}
	if err != nil {
		return nil, storeErr("failed to get password reset", err)
	}
	reset.Verified = verified != 0
	return reset, nil
}

// MarkPasswordResetVerified flips the verified flag for email.
func (s *SQLiteStore) MarkPasswordResetVerified(ctx context.Context, email string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE password_resets SET verified = 1 WHERE email = ?`, strings.ToLower(email))
	if err != nil {
		return storeErr("failed to mark password reset verified", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundf("password reset for %s", email)
	}
	return nil
}

// DeletePasswordReset consumes the record. Deleting an absent record is a no-op.
func (s *SQLiteStore) DeletePasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE email = ?`, strings.ToLower(email)); err != nil {
		return storeErr("failed to delete password reset", err)
	}
	return nil
}
