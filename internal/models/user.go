package models

// AuthProvider identifies how an account was created.
type AuthProvider string

const (
	// ProviderManual is a password-based signup.
	ProviderManual AuthProvider = "manual"
	// ProviderGoogle is a Google sign-in account. Google accounts have no
	// password credential; password login and password reset are rejected.
	ProviderGoogle AuthProvider = "google"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// FullName is the display name of the user.
	FullName string `json:"fullName"`

	// Email is the user's email address (unique, stored lowercase).
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password credential.
	// Empty for Google sign-in accounts.
	PasswordHash string `json:"-"`

	// Phone is the user's phone number in canonical normalized form.
	// Empty if never provided.
	Phone string `json:"phoneNumber,omitempty"`

	// ProfilePicture is the public URL of the profile image, if any.
	ProfilePicture string `json:"profilePicture,omitempty"`

	// Provider records whether the account was created manually or via Google.
	Provider AuthProvider `json:"authProvider"`

	// GoogleID is Google's subject identifier, set for Google accounts.
	GoogleID string `json:"-"`

	// EmailVerified is true for Google accounts and after OTP verification.
	EmailVerified bool `json:"isEmailVerified"`

	// GroupIDs is the back-reference set of expense groups this user
	// participates in. The group's own member list is authoritative; this set
	// is kept consistent with it on group create and delete.
	GroupIDs []string `json:"groupIds,omitempty"`

	// LastLogin is the Unix timestamp of the most recent login, 0 if never.
	LastLogin int64 `json:"lastLogin,omitempty"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last profile mutation.
	UpdatedAt int64 `json:"updatedAt"`
}
