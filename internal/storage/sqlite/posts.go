package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

// CreatePost persists a new post, generating ID and CreatedAt when unset.
func (s *SQLiteStore) CreatePost(ctx context.Context, post *models.Post) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt == 0 {
		post.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, description, location, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, post.UserID, post.Description, post.Location, post.ImageURL, post.CreatedAt,
	)
	if err != nil {
		return storeErr("failed to create post", err)
	}
	return nil
}

// GetPost retrieves a post by ID, including its like set.
func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	post := &models.Post{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, description, location, image_url, created_at
		 FROM posts WHERE id = ?`, id,
	).Scan(&post.ID, &post.UserID, &post.Description, &post.Location, &post.ImageURL, &post.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.NotFoundf("post %s", id)
	}
	if err != nil {
		return nil, storeErr("failed to get post", err)
	}

	if err := s.loadLikes(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns all posts, newest first, with their like sets.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.listPosts(ctx, `SELECT id, user_id, description, location, image_url, created_at
		FROM posts ORDER BY created_at DESC, id`)
}

// ListPostsByUser returns one user's posts, newest first.
func (s *SQLiteStore) ListPostsByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	return s.listPosts(ctx, `SELECT id, user_id, description, location, image_url, created_at
		FROM posts WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

func (s *SQLiteStore) listPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("failed to list posts", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.UserID, &post.Description,
			&post.Location, &post.ImageURL, &post.CreatedAt); err != nil {
			return nil, storeErr("failed to scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating posts", err)
	}

	for _, post := range posts {
		if err := s.loadLikes(ctx, post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// DeletePost removes a post; its like rows cascade.
func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return storeErr("failed to delete post", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundf("post %s", id)
	}
	return nil
}

// AddLike records a like; liking twice is a no-op.
func (s *SQLiteStore) AddLike(ctx context.Context, postID, userID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`, postID, userID)
	if err != nil {
		return storeErr("failed to add like", err)
	}
	return nil
}

// RemoveLike removes a like; removing an absent like is a no-op.
func (s *SQLiteStore) RemoveLike(ctx context.Context, postID, userID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return storeErr("failed to remove like", err)
	}
	return nil
}

func (s *SQLiteStore) loadLikes(ctx context.Context, post *models.Post) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY user_id`, post.ID)
	if err != nil {
		return storeErr("failed to get likes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return storeErr("failed to scan like", err)
		}
		post.Likes = append(post.Likes, userID)
	}
	if err := rows.Err(); err != nil {
		return storeErr("error iterating likes", err)
	}
	return nil
}
