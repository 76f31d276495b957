// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

// UserStore holds user identities and their group back-reference sets.
// Lookups that find nothing return (nil, nil); callers decide whether a
// missing user is an error.
type UserStore interface {
	// CreateUser persists a new user. ID and timestamps are populated by the
	// store when unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID, including the group back-reference set.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email (case-insensitive).
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UsersByPhones retrieves users whose canonical phone matches one of the
	// given numbers, keyed by that number, in a single query. Unmatched
	// numbers are omitted.
	UsersByPhones(ctx context.Context, phones []string) (map[string]*models.User, error)

	// UpdateUser persists mutable profile fields of an existing user.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes a user and their back-reference set.
	DeleteUser(ctx context.Context, id string) error

	// AddGroupToUsers adds groupID to every listed user's back-reference set
	// in one round trip. Adding an already-present reference is a no-op.
	AddGroupToUsers(ctx context.Context, userIDs []string, groupID string) error

	// RemoveGroupFromUsers retracts groupID from every user whose
	// back-reference set contains it, by full scan. Idempotent.
	RemoveGroupFromUsers(ctx context.Context, groupID string) error
}

// GroupStore holds expense group aggregates.
type GroupStore interface {
	// CreateGroup persists a new group aggregate with its members and
	// expense lines. GroupID must already be assigned.
	CreateGroup(ctx context.Context, group *models.ExpenseGroup) error

	// GetGroup retrieves the full aggregate. Returns an error wrapping
	// models.ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.ExpenseGroup, error)

	// GroupIDExists reports whether a group identifier is already taken.
	// Usable inside the identifier-generation retry loop.
	GroupIDExists(ctx context.Context, groupID string) (bool, error)

	// FindGroupsByMember returns every group whose member list contains the
	// given user id or canonical phone, most recently updated first. Either
	// argument may be empty; matching is an OR over the non-empty ones.
	FindGroupsByMember(ctx context.Context, userID, phone string) ([]*models.ExpenseGroup, error)

	// DeleteGroup removes the aggregate wholesale. Returns an error wrapping
	// models.ErrNotFound if absent.
	DeleteGroup(ctx context.Context, groupID string) error
}

// PostStore holds social posts and their like sets.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]*models.Post, error)
	ListPostsByUser(ctx context.Context, userID string) ([]*models.Post, error)
	DeletePost(ctx context.Context, id string) error

	// AddLike / RemoveLike mutate the like set with set semantics: repeating
	// an operation is a no-op.
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
}

// ResetStore holds password-reset OTP records, one live record per email.
type ResetStore interface {
	// UpsertPasswordReset stores a new record, replacing any existing one.
	UpsertPasswordReset(ctx context.Context, reset *models.PasswordReset) error

	// GetPasswordReset returns the live record for email, or (nil, nil).
	GetPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error)

	// MarkPasswordResetVerified flips the verified flag.
	MarkPasswordResetVerified(ctx context.Context, email string) error

	// DeletePasswordReset consumes the record. Idempotent.
	DeletePasswordReset(ctx context.Context, email string) error
}

// Store is the full persistence interface. The abstraction allows swapping
// storage backends without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	PostStore
	ResetStore

	// Close releases any resources held by the store.
	Close() error
}
