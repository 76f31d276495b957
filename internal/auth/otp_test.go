package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

// fakeResetStorage keeps reset records in memory, one per email.
type fakeResetStorage struct {
	records map[string]*models.PasswordReset
}

func newFakeResetStorage() *fakeResetStorage {
	return &fakeResetStorage{records: make(map[string]*models.PasswordReset)}
}

func (s *fakeResetStorage) UpsertPasswordReset(_ context.Context, reset *models.PasswordReset) error {
	copied := *reset
	s.records[reset.Email] = &copied
	return nil
}

func (s *fakeResetStorage) GetPasswordReset(_ context.Context, email string) (*models.PasswordReset, error) {
	r, ok := s.records[email]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (s *fakeResetStorage) MarkPasswordResetVerified(_ context.Context, email string) error {
	r, ok := s.records[email]
	if !ok {
		return models.NotFoundf("password reset for %s", email)
	}
	r.Verified = true
	return nil
}

func (s *fakeResetStorage) DeletePasswordReset(_ context.Context, email string) error {
	delete(s.records, email)
	return nil
}

func TestOTPManager(t *testing.T) {
	ctx := context.Background()
	codePattern := regexp.MustCompile(`^\d{4}$`)

	t.Run("issue produces a four digit code", func(t *testing.T) {
		m := NewOTPManager(newFakeResetStorage())
		code, err := m.Issue(ctx, "user@example.com")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if !codePattern.MatchString(code) {
			t.Errorf("code %q is not four digits", code)
		}
	})

	t.Run("issue verify consume happy path", func(t *testing.T) {
		m := NewOTPManager(newFakeResetStorage())
		code, _ := m.Issue(ctx, "user@example.com")

		if err := m.Verify(ctx, "user@example.com", code); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if err := m.Consume(ctx, "user@example.com"); err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		// The code is single-use.
		if err := m.Consume(ctx, "user@example.com"); !errors.Is(err, ErrOTPInvalid) {
			t.Errorf("expected ErrOTPInvalid after consumption, got %v", err)
		}
	})

	t.Run("wrong code rejected", func(t *testing.T) {
		m := NewOTPManager(newFakeResetStorage())
		code, _ := m.Issue(ctx, "user@example.com")

		wrong := "0000"
		if wrong == code {
			wrong = "0001"
		}
		if err := m.Verify(ctx, "user@example.com", wrong); !errors.Is(err, ErrOTPInvalid) {
			t.Errorf("expected ErrOTPInvalid, got %v", err)
		}
	})

	t.Run("expired code rejected", func(t *testing.T) {
		m := NewOTPManager(newFakeResetStorage())
		code, _ := m.Issue(ctx, "user@example.com")

		m.now = func() time.Time { return time.Now().Add(OTPValidity + time.Minute) }
		if err := m.Verify(ctx, "user@example.com", code); !errors.Is(err, ErrOTPInvalid) {
			t.Errorf("expected ErrOTPInvalid for expired code, got %v", err)
		}
	})

	t.Run("consume without verification refused", func(t *testing.T) {
		m := NewOTPManager(newFakeResetStorage())
		m.Issue(ctx, "user@example.com")

		if err := m.Consume(ctx, "user@example.com"); !errors.Is(err, ErrOTPNotVerified) {
			t.Errorf("expected ErrOTPNotVerified, got %v", err)
		}
	})

	t.Run("reissue replaces the previous code", func(t *testing.T) {
		m := NewOTPManager(newFakeResetStorage())
		first, _ := m.Issue(ctx, "user@example.com")
		second, _ := m.Issue(ctx, "user@example.com")

		if first != second {
			if err := m.Verify(ctx, "user@example.com", first); !errors.Is(err, ErrOTPInvalid) {
				t.Errorf("expected first code to be dead, got %v", err)
			}
		}
		if err := m.Verify(ctx, "user@example.com", second); err != nil {
			t.Errorf("expected second code to verify, got %v", err)
		}
	})
}
