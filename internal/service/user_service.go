package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chiragjethva03/sarvam-backend/internal/auth"
	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/phone"
	"github.com/chiragjethva03/sarvam-backend/internal/storage"
	"github.com/chiragjethva03/sarvam-backend/internal/upload"
)

// UserService owns profile reads and mutations for the authenticated user.
type UserService struct {
	store    storage.Store
	password *auth.PasswordAuthenticator
	uploader upload.Uploader
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store, uploader upload.Uploader) *UserService {
	return &UserService{
		store:    store,
		password: auth.NewPasswordAuthenticator(store),
		uploader: uploader,
	}
}

// Me returns the authenticated user's profile.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, models.NotFoundf("user %s", userID)
	}
	return user, nil
}

// UpdateDetails updates the user's mutable profile fields. Empty arguments
// leave the corresponding field unchanged. The phone number is stored in
// canonical digit form.
func (s *UserService) UpdateDetails(ctx context.Context, userID, fullName, rawPhone string) (*models.User, error) {
	slog.Info("UpdateDetails request received", "user_id", userID)

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if fullName != "" {
		user.FullName = fullName
	}
	if rawPhone != "" {
		canonical := phone.Canonical(rawPhone)
		if canonical == "" {
			return nil, models.Validationf("phone number has no digits")
		}
		user.Phone = canonical
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		slog.Error("UpdateDetails failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	slog.Info("ChangePassword request received", "user_id", userID)

	if err := s.password.ChangePassword(ctx, userID, current, next); err != nil {
		slog.Warn("ChangePassword failed", "user_id", userID, "error", err)
		return err
	}

	slog.Info("Password changed", "user_id", userID)

	return nil
}

// SetProfilePicture stores the uploaded image and records its URL on the
// user's profile.
func (s *UserService) SetProfilePicture(ctx context.Context, userID, filename, contentType string, data io.Reader) (*models.User, error) {
	slog.Info("SetProfilePicture request received", "user_id", userID)

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, "profile-pictures", filename, contentType, data)
	if err != nil {
		slog.Error("SetProfilePicture upload failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	user.ProfilePicture = url
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes the user, their posts, and their group
// back-references. Groups they created survive; the member entries keep the
// phone number so balances stay computable.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	slog.Info("DeleteAccount request received", "user_id", userID)

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	posts, err := s.store.ListPostsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}
	for _, p := range posts {
		if err := s.store.DeletePost(ctx, p.ID); err != nil {
			slog.Error("DeleteAccount could not delete post",
				"user_id", userID, "post_id", p.ID, "error", err)
		}
	}

	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		slog.Error("DeleteAccount failed", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("Account deleted", "user_id", userID)

	return nil
}
