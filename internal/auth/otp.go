package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

var (
	ErrOTPInvalid     = errors.New("invalid or expired code")
	ErrOTPNotVerified = errors.New("code has not been verified")
)

// OTPValidity is how long an issued code may be used.
const OTPValidity = 10 * time.Minute

// ResetStorage defines the persistence operations for password-reset records.
type ResetStorage interface {
	UpsertPasswordReset(ctx context.Context, reset *models.PasswordReset) error
	GetPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error)
	MarkPasswordResetVerified(ctx context.Context, email string) error
	DeletePasswordReset(ctx context.Context, email string) error
}

// OTPManager drives the password-reset state machine: Issue produces a fresh
// code (replacing any outstanding one), Verify checks the user's echo of it,
// and Consume authorizes exactly one password change for a verified code.
type OTPManager struct {
	storage ResetStorage
	now     func() time.Time
}

// NewOTPManager creates an OTP manager backed by the given storage.
func NewOTPManager(storage ResetStorage) *OTPManager {
	return &OTPManager{storage: storage, now: time.Now}
}

// Issue generates a 4-digit code for email, stores its hash with a
// ten-minute validity, and returns the plaintext for delivery. Any previous
// code for the same email is replaced.
func (m *OTPManager) Issue(ctx context.Context, email string) (string, error) {
	code := fmt.Sprintf("%d", 1000+rand.IntN(9000))

	reset := &models.PasswordReset{
		Email:     email,
		CodeHash:  hashCode(code),
		ExpiresAt: m.now().Add(OTPValidity).Unix(),
		CreatedAt: m.now().Unix(),
	}
	if err := m.storage.UpsertPasswordReset(ctx, reset); err != nil {
		return "", fmt.Errorf("failed to store reset code: %w", err)
	}
	return code, nil
}

// Verify checks the code against the outstanding record and marks it
// verified. Wrong, expired, or absent codes all yield ErrOTPInvalid.
func (m *OTPManager) Verify(ctx context.Context, email, code string) error {
	reset, err := m.storage.GetPasswordReset(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load reset code: %w", err)
	}
	if reset == nil || reset.ExpiresAt < m.now().Unix() || reset.CodeHash != hashCode(code) {
		return ErrOTPInvalid
	}
	if err := m.storage.MarkPasswordResetVerified(ctx, email); err != nil {
		return fmt.Errorf("failed to mark code verified: %w", err)
	}
	return nil
}

// Consume checks that a verified, unexpired code exists for email and
// deletes it, authorizing a single password change.
func (m *OTPManager) Consume(ctx context.Context, email string) error {
	reset, err := m.storage.GetPasswordReset(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load reset code: %w", err)
	}
	if reset == nil || reset.ExpiresAt < m.now().Unix() {
		return ErrOTPInvalid
	}
	if !reset.Verified {
		return ErrOTPNotVerified
	}
	if err := m.storage.DeletePasswordReset(ctx, email); err != nil {
		return fmt.Errorf("failed to consume reset code: %w", err)
	}
	return nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
