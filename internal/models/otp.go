package models

// PasswordReset is the OTP record backing the password-reset flow.
// At most one live record exists per email; re-issuing replaces it.
type PasswordReset struct {
	// Email identifies the account being reset (lowercase).
	Email string

	// CodeHash is the SHA-256 hex digest of the 4-digit code. The plaintext
	// code is only ever held in memory long enough to email it.
	CodeHash string

	// Verified is set once the user has echoed the correct code back.
	// Only a verified, unexpired record authorizes a password change.
	Verified bool

	// ExpiresAt is the Unix timestamp after which the code is rejected.
	ExpiresAt int64

	// CreatedAt is the Unix timestamp when the code was issued.
	CreatedAt int64
}
