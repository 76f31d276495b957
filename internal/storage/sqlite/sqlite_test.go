package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sarvam-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamps", func(t *testing.T) {
		user := &models.User{FullName: "Aarav Shah", Email: "Aarav@Example.com"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if user.Email != "aarav@example.com" {
			t.Errorf("Expected lowercased email, got %s", user.Email)
		}
	})

	t.Run("GetUserByEmail is case-insensitive", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "AARAV@example.COM")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user == nil {
			t.Fatal("Expected user, got nil")
		}
		if user.FullName != "Aarav Shah" {
			t.Errorf("FullName = %s, want Aarav Shah", user.FullName)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil, got %v", user)
		}
	})

	t.Run("UsersByPhones matches in one query and omits unknowns", func(t *testing.T) {
		u1 := &models.User{FullName: "Bhavin", Email: "bhavin@example.com", Phone: "919876543210"}
		u2 := &models.User{FullName: "Chirag", Email: "chirag@example.com", Phone: "911234567890"}
		for _, u := range []*models.User{u1, u2} {
			if err := store.CreateUser(ctx, u); err != nil {
				t.Fatalf("CreateUser failed: %v", err)
			}
		}

		got, err := store.UsersByPhones(ctx, []string{"919876543210", "915550001111"})
		if err != nil {
			t.Fatalf("UsersByPhones failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 match, got %d", len(got))
		}
		if got["919876543210"].ID != u1.ID {
			t.Errorf("Matched wrong user: %v", got)
		}
	})

	t.Run("UpdateUser persists profile fields", func(t *testing.T) {
		user, _ := store.GetUserByEmail(ctx, "bhavin@example.com")
		user.FullName = "Bhavin Patel"
		user.Phone = "917700112233"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		again, _ := store.GetUserByID(ctx, user.ID)
		if again.FullName != "Bhavin Patel" || again.Phone != "917700112233" {
			t.Errorf("Update not persisted: %+v", again)
		}
	})

	t.Run("UpdateUser on missing user reports not found", func(t *testing.T) {
		err := store.UpdateUser(ctx, &models.User{ID: "missing", FullName: "X"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteUser removes user and back-references", func(t *testing.T) {
		user := &models.User{FullName: "Gone", Email: "gone@example.com"}
		store.CreateUser(ctx, user)
		store.AddGroupToUsers(ctx, []string{user.ID}, "SarvamEx9999")

		if err := store.DeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		got, _ := store.GetUserByID(ctx, user.ID)
		if got != nil {
			t.Error("Expected user to be gone")
		}
	})
}

func TestSQLiteStoreBackReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := &models.User{FullName: "Alice", Email: "alice@example.com"}
	bob := &models.User{FullName: "Bob", Email: "bob@example.com"}
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	t.Run("AddGroupToUsers is a batched set-union", func(t *testing.T) {
		ids := []string{alice.ID, bob.ID}
		if err := store.AddGroupToUsers(ctx, ids, "SarvamEx1234"); err != nil {
			t.Fatalf("AddGroupToUsers failed: %v", err)
		}
		// Repeating is a no-op, not an error.
		if err := store.AddGroupToUsers(ctx, ids, "SarvamEx1234"); err != nil {
			t.Fatalf("Repeated AddGroupToUsers failed: %v", err)
		}

		got, _ := store.GetUserByID(ctx, alice.ID)
		if len(got.GroupIDs) != 1 || got.GroupIDs[0] != "SarvamEx1234" {
			t.Errorf("GroupIDs = %v, want [SarvamEx1234]", got.GroupIDs)
		}
	})

	t.Run("RemoveGroupFromUsers retracts everywhere, idempotently", func(t *testing.T) {
		if err := store.RemoveGroupFromUsers(ctx, "SarvamEx1234"); err != nil {
			t.Fatalf("RemoveGroupFromUsers failed: %v", err)
		}
		if err := store.RemoveGroupFromUsers(ctx, "SarvamEx1234"); err != nil {
			t.Fatalf("Repeated RemoveGroupFromUsers failed: %v", err)
		}

		for _, u := range []*models.User{alice, bob} {
			got, _ := store.GetUserByID(ctx, u.ID)
			if len(got.GroupIDs) != 0 {
				t.Errorf("User %s still holds refs: %v", u.FullName, got.GroupIDs)
			}
		}
	})
}

func TestSQLiteStoreGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.ExpenseGroup{
		GroupID:   "SarvamEx4321",
		GroupName: "Goa Trip",
		CreatedBy: "creator-1",
		Members: []models.Member{
			{UserID: "creator-1"},
			{UserID: "user-2", Phone: "919876543210"},
			{Phone: "915550001111", Name: "Dinesh"},
		},
		Expenses: []models.Expense{
			{
				Title:        "Hotel",
				Amount:       6000,
				Category:     models.CategoryTravel,
				PaidByUserID: "creator-1",
				SplitType:    models.SplitUnequal,
				SplitBetween: []models.SplitShare{
					{UserID: "creator-1", Amount: 2000},
					{UserID: "user-2", Amount: 2000},
					{Phone: "915550001111", Amount: 2000},
				},
			},
		},
	}

	t.Run("CreateGroup and GetGroup round-trip the aggregate", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, "SarvamEx4321")
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.GroupName != "Goa Trip" || got.CreatedBy != "creator-1" {
			t.Errorf("Group header mismatch: %+v", got)
		}
		if len(got.Members) != 3 {
			t.Fatalf("Members = %d, want 3", len(got.Members))
		}
		if got.Members[2].Name != "Dinesh" {
			t.Errorf("Member order not preserved: %+v", got.Members)
		}
		if len(got.Expenses) != 1 {
			t.Fatalf("Expenses = %d, want 1", len(got.Expenses))
		}
		line := got.Expenses[0]
		if line.Title != "Hotel" || line.Category != models.CategoryTravel {
			t.Errorf("Expense mismatch: %+v", line)
		}
		if len(line.SplitBetween) != 3 {
			t.Errorf("SplitBetween = %d, want 3", len(line.SplitBetween))
		}
	})

	t.Run("GroupIDExists", func(t *testing.T) {
		exists, err := store.GroupIDExists(ctx, "SarvamEx4321")
		if err != nil || !exists {
			t.Errorf("GroupIDExists = %v, %v; want true, nil", exists, err)
		}
		exists, err = store.GroupIDExists(ctx, "SarvamEx0000")
		if err != nil || exists {
			t.Errorf("GroupIDExists = %v, %v; want false, nil", exists, err)
		}
	})

	t.Run("FindGroupsByMember matches user id and phone", func(t *testing.T) {
		byUser, err := store.FindGroupsByMember(ctx, "user-2", "")
		if err != nil {
			t.Fatalf("FindGroupsByMember failed: %v", err)
		}
		if len(byUser) != 1 || byUser[0].GroupID != "SarvamEx4321" {
			t.Errorf("Match by user id failed: %v", byUser)
		}

		byPhone, err := store.FindGroupsByMember(ctx, "", "915550001111")
		if err != nil {
			t.Fatalf("FindGroupsByMember failed: %v", err)
		}
		if len(byPhone) != 1 {
			t.Errorf("Match by phone failed: %v", byPhone)
		}

		none, err := store.FindGroupsByMember(ctx, "stranger", "")
		if err != nil {
			t.Fatalf("FindGroupsByMember failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no matches, got %v", none)
		}
	})

	t.Run("GetGroup returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "SarvamEx0000")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteGroup removes the aggregate wholesale", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, "SarvamEx4321"); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		_, err := store.GetGroup(ctx, "SarvamEx4321")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteGroup(ctx, "SarvamEx4321"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on repeated delete, got %v", err)
		}
	})
}

func TestSQLiteStorePosts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	post := &models.Post{
		UserID:      "author-1",
		Description: "Sunset at Marine Drive",
		Location:    "Mumbai",
		ImageURL:    "https://cdn.example.com/p/1.jpg",
	}

	t.Run("CreatePost and GetPost", func(t *testing.T) {
		if err := store.CreatePost(ctx, post); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
		got, err := store.GetPost(ctx, post.ID)
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if got.Description != post.Description || got.ImageURL != post.ImageURL {
			t.Errorf("Post mismatch: %+v", got)
		}
	})

	t.Run("likes have set semantics", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := store.AddLike(ctx, post.ID, "fan-1"); err != nil {
				t.Fatalf("AddLike failed: %v", err)
			}
		}
		got, _ := store.GetPost(ctx, post.ID)
		if len(got.Likes) != 1 {
			t.Errorf("Likes = %v, want exactly one", got.Likes)
		}

		if err := store.RemoveLike(ctx, post.ID, "fan-1"); err != nil {
			t.Fatalf("RemoveLike failed: %v", err)
		}
		if err := store.RemoveLike(ctx, post.ID, "fan-1"); err != nil {
			t.Fatalf("Repeated RemoveLike failed: %v", err)
		}
	})

	t.Run("ListPostsByUser filters and orders", func(t *testing.T) {
		other := &models.Post{UserID: "author-2", Description: "x", Location: "y", ImageURL: "z"}
		store.CreatePost(ctx, other)

		mine, err := store.ListPostsByUser(ctx, "author-1")
		if err != nil {
			t.Fatalf("ListPostsByUser failed: %v", err)
		}
		if len(mine) != 1 || mine[0].ID != post.ID {
			t.Errorf("ListPostsByUser = %v", mine)
		}

		all, err := store.ListPosts(ctx)
		if err != nil {
			t.Fatalf("ListPosts failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("ListPosts = %d posts, want 2", len(all))
		}
	})

	t.Run("DeletePost", func(t *testing.T) {
		if err := store.DeletePost(ctx, post.ID); err != nil {
			t.Fatalf("DeletePost failed: %v", err)
		}
		if err := store.DeletePost(ctx, post.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStorePasswordResets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("upsert replaces the live record", func(t *testing.T) {
		first := &models.PasswordReset{Email: "user@example.com", CodeHash: "aaa", ExpiresAt: 100}
		if err := store.UpsertPasswordReset(ctx, first); err != nil {
			t.Fatalf("UpsertPasswordReset failed: %v", err)
		}
		second := &models.PasswordReset{Email: "USER@example.com", CodeHash: "bbb", ExpiresAt: 200}
		if err := store.UpsertPasswordReset(ctx, second); err != nil {
			t.Fatalf("UpsertPasswordReset failed: %v", err)
		}

		got, err := store.GetPasswordReset(ctx, "user@example.com")
		if err != nil {
			t.Fatalf("GetPasswordReset failed: %v", err)
		}
		if got.CodeHash != "bbb" || got.ExpiresAt != 200 {
			t.Errorf("Expected replacement, got %+v", got)
		}
		if got.Verified {
			t.Error("Replacement should reset verified flag")
		}
	})

	t.Run("verify then consume", func(t *testing.T) {
		if err := store.MarkPasswordResetVerified(ctx, "user@example.com"); err != nil {
			t.Fatalf("MarkPasswordResetVerified failed: %v", err)
		}
		got, _ := store.GetPasswordReset(ctx, "user@example.com")
		if !got.Verified {
			t.Error("Expected verified flag set")
		}

		if err := store.DeletePasswordReset(ctx, "user@example.com"); err != nil {
			t.Fatalf("DeletePasswordReset failed: %v", err)
		}
		got, err := store.GetPasswordReset(ctx, "user@example.com")
		if err != nil || got != nil {
			t.Errorf("Expected consumed record, got %v, %v", got, err)
		}
	})

	t.Run("absent record", func(t *testing.T) {
		if err := store.MarkPasswordResetVerified(ctx, "nobody@example.com"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if err := store.DeletePasswordReset(ctx, "nobody@example.com"); err != nil {
			t.Errorf("Delete of absent record should be a no-op, got %v", err)
		}
	})
}
