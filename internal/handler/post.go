package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chiragjethva03/sarvam-backend/internal/middleware"
	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/service"
)

// PostHandler serves the /api/posts routes.
type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, models.Validationf("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, models.Validationf("image file is required"))
		return
	}
	defer file.Close()

	post, err := h.posts.CreatePost(r.Context(), middleware.GetUserID(r.Context()),
		r.FormValue("description"), r.FormValue("location"),
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "post created",
		"post":    post,
	})
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.posts.ListPosts(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"posts":   views,
	})
}

func (h *PostHandler) My(w http.ResponseWriter, r *http.Request) {
	views, err := h.posts.MyPosts(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"posts":   views,
	})
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")

	liked, likesCount, err := h.posts.ToggleLike(r.Context(), postID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"liked":      liked,
		"likesCount": likesCount,
	})
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if err := h.posts.DeletePost(r.Context(), postID, middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "post deleted",
	})
}
