package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chiragjethva03/sarvam-backend/internal/auth"
	"github.com/chiragjethva03/sarvam-backend/internal/mail"
	"github.com/chiragjethva03/sarvam-backend/internal/metrics"
	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/storage"
)

// AuthService implements account registration, login, Google sign-in, and
// the OTP-based password reset flow.
type AuthService struct {
	store      storage.Store
	password   *auth.PasswordAuthenticator
	jwtManager *auth.JWTManager
	otp        *auth.OTPManager
	mailer     mail.Mailer
	collector  *metrics.Collector
}

// NewAuthService creates a new AuthService.
func NewAuthService(store storage.Store, jwtManager *auth.JWTManager, mailer mail.Mailer, collector *metrics.Collector) *AuthService {
	return &AuthService{
		store:      store,
		password:   auth.NewPasswordAuthenticator(store),
		jwtManager: jwtManager,
		otp:        auth.NewOTPManager(store),
		mailer:     mailer,
		collector:  collector,
	}
}

// Signup registers a manual account and returns the user with a session token.
func (s *AuthService) Signup(ctx context.Context, fullName, email, password string) (*models.User, string, error) {
	slog.Info("Signup request received", "email", email)

	if fullName == "" || email == "" || password == "" {
		return nil, "", models.Validationf("full name, email and password are required")
	}

	user, err := s.password.Register(ctx, email, fullName, password)
	if err != nil {
		slog.Warn("Signup failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordSignup()
	}
	slog.Info("Signup successful", "user_id", user.ID)

	return user, token, nil
}

// Login authenticates a manual account and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	slog.Info("Login request received", "email", email)

	user, err := s.password.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordLogin()
	}
	slog.Info("Login successful", "user_id", user.ID)

	return user, token, nil
}

// GoogleSignIn upserts an account from a Google identity. An existing account
// with the same email is linked to the Google identity; otherwise a new
// account is created with no password. Returns the user and a session token.
func (s *AuthService) GoogleSignIn(ctx context.Context, googleID, email, fullName, picture string) (*models.User, string, error) {
	slog.Info("GoogleSignIn request received", "email", email)

	if googleID == "" || email == "" {
		return nil, "", models.Validationf("google id and email are required")
	}
	email = strings.ToLower(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}

	now := time.Now().Unix()
	if user == nil {
		user = &models.User{
			FullName:       fullName,
			Email:          email,
			Provider:       models.ProviderGoogle,
			GoogleID:       googleID,
			ProfilePicture: picture,
			EmailVerified:  true,
			LastLogin:      now,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create account: %w", err)
		}
		if s.collector != nil {
			s.collector.RecordSignup()
		}
		slog.Info("GoogleSignIn created account", "user_id", user.ID)
	} else {
		user.GoogleID = googleID
		user.EmailVerified = true
		user.LastLogin = now
		if user.ProfilePicture == "" {
			user.ProfilePicture = picture
		}
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to link account: %w", err)
		}
		slog.Info("GoogleSignIn linked account", "user_id", user.ID)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordLogin()
	}

	return user, token, nil
}

// ValidateEmail starts the password reset flow: it checks that a manual
// account exists for the email, issues a reset code, and mails it.
func (s *AuthService) ValidateEmail(ctx context.Context, email string) error {
	slog.Info("ValidateEmail request received", "email", email)

	if email == "" {
		return models.Validationf("email is required")
	}
	email = strings.ToLower(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return models.NotFoundf("no account for %s", email)
	}
	if user.PasswordHash == "" {
		return auth.ErrGoogleAccount
	}

	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to issue reset code: %w", err)
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
		code, int(auth.OTPValidity.Minutes()))
	if err := s.mailer.Send(ctx, email, "Password reset code", body); err != nil {
		slog.Error("ValidateEmail failed to send mail", "email", email, "error", err)
		return fmt.Errorf("failed to send reset code: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordOTPIssued()
	}
	slog.Info("Reset code issued", "email", email)

	return nil
}

// VerifyOTP checks a reset code for the email and marks it verified.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	slog.Info("VerifyOTP request received", "email", email)

	if email == "" || code == "" {
		return models.Validationf("email and code are required")
	}

	if err := s.otp.Verify(ctx, strings.ToLower(email), code); err != nil {
		slog.Warn("VerifyOTP failed", "email", email, "error", err)
		return err
	}

	slog.Info("Reset code verified", "email", email)

	return nil
}

// ResetPassword completes the reset flow: it consumes the verified code and
// replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	slog.Info("ResetPassword request received", "email", email)

	if email == "" {
		return models.Validationf("email is required")
	}
	email = strings.ToLower(email)

	if err := s.otp.Consume(ctx, email); err != nil {
		slog.Warn("ResetPassword refused", "email", email, "error", err)
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return models.NotFoundf("no account for %s", email)
	}

	if err := s.password.SetPassword(ctx, user, newPassword); err != nil {
		slog.Warn("ResetPassword failed", "email", email, "error", err)
		return err
	}

	slog.Info("Password reset", "user_id", user.ID)

	return nil
}
