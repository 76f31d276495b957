package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chiragjethva03/sarvam-backend/internal/metrics"
	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/storage"
	"github.com/chiragjethva03/sarvam-backend/internal/upload"
)

// PostService owns the social feed: post creation with image upload, the
// feed listing, like toggling, and owner-only deletion.
type PostService struct {
	store     storage.Store
	uploader  upload.Uploader
	collector *metrics.Collector
}

// NewPostService creates a new PostService.
func NewPostService(store storage.Store, uploader upload.Uploader, collector *metrics.Collector) *PostService {
	return &PostService{store: store, uploader: uploader, collector: collector}
}

// CreatePost stores the image and persists a post referencing it.
func (s *PostService) CreatePost(ctx context.Context, userID, description, location, filename, contentType string, image io.Reader) (*models.Post, error) {
	slog.Info("CreatePost request received", "user_id", userID)

	if description == "" || location == "" {
		return nil, models.Validationf("description and location are required")
	}
	if image == nil {
		return nil, models.Validationf("image is required")
	}

	url, err := s.uploader.Upload(ctx, "posts", filename, contentType, image)
	if err != nil {
		slog.Error("CreatePost upload failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	post := &models.Post{
		UserID:      userID,
		Description: description,
		Location:    location,
		ImageURL:    url,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		slog.Error("CreatePost failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordPostCreated()
	}
	slog.Info("Post created", "post_id", post.ID, "user_id", userID)

	return post, nil
}

// ListPosts returns the feed, newest first, decorated for the viewer.
// viewerID may be empty for anonymous reads; Liked is then always false.
func (s *PostService) ListPosts(ctx context.Context, viewerID string) ([]models.PostView, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return s.decorate(ctx, posts, viewerID)
}

// MyPosts returns the viewer's own posts, newest first.
func (s *PostService) MyPosts(ctx context.Context, userID string) ([]models.PostView, error) {
	posts, err := s.store.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return s.decorate(ctx, posts, userID)
}

// ToggleLike flips the viewer's like on a post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (liked bool, likesCount int, err error) {
	slog.Info("ToggleLike request received", "post_id", postID, "user_id", userID)

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return false, 0, err
	}

	already := false
	for _, id := range post.Likes {
		if id == userID {
			already = true
			break
		}
	}

	if already {
		err = s.store.RemoveLike(ctx, postID, userID)
		liked = false
		likesCount = len(post.Likes) - 1
	} else {
		err = s.store.AddLike(ctx, postID, userID)
		liked = true
		likesCount = len(post.Likes) + 1
	}
	if err != nil {
		slog.Error("ToggleLike failed", "post_id", postID, "error", err)
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}

	return liked, likesCount, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, postID, userID string) error {
	slog.Info("DeletePost request received", "post_id", postID, "user_id", userID)

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.Forbiddenf("only the author can delete a post")
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		slog.Error("DeletePost failed", "post_id", postID, "error", err)
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("Post deleted", "post_id", postID)

	return nil
}

// decorate attaches authors and like state. Authors are fetched once per
// distinct user.
func (s *PostService) decorate(ctx context.Context, posts []*models.Post, viewerID string) ([]models.PostView, error) {
	authors := make(map[string]*models.User)

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[p.UserID]
		if !ok {
			u, err := s.store.GetUserByID(ctx, p.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to load author: %w", err)
			}
			author = u
			authors[p.UserID] = author
		}

		liked := false
		if viewerID != "" {
			for _, id := range p.Likes {
				if id == viewerID {
					liked = true
					break
				}
			}
		}

		views = append(views, models.PostView{
			Post:       *p,
			Author:     author,
			LikesCount: len(p.Likes),
			Liked:      liked,
		})
	}

	return views, nil
}
