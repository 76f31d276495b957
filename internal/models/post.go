package models

// Post is an image-bearing social post.
type Post struct {
	// ID is the unique identifier for the post (UUID format).
	ID string `json:"id"`

	// UserID is the author, required.
	UserID string `json:"userId"`

	// Description is the post text, required.
	Description string `json:"description"`

	// Location is the free-text location tag, required.
	Location string `json:"location"`

	// ImageURL is the public URL of the uploaded image, required.
	ImageURL string `json:"imageUrl"`

	// Likes is the set of user IDs that liked the post.
	Likes []string `json:"-"`

	// CreatedAt is the Unix timestamp when the post was created.
	CreatedAt int64 `json:"createdAt"`
}

// PostView is a post decorated for a specific viewer.
type PostView struct {
	Post
	Author     *User `json:"author,omitempty"`
	LikesCount int   `json:"likesCount"`
	Liked      bool  `json:"liked"`
}
