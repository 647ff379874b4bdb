package store

import "time"

// User is the internal record, password hash included. Handlers must expose
// the auth.Principal projection instead of serializing this directly.
type User struct {
	ID          int     `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"-"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

type NewUser struct {
	Username    string
	Email       string
	Password    string
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

// UserUpdate merges non-nil fields over the existing record.
type UserUpdate struct {
	Username    *string
	Email       *string
	Password    *string
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

type Post struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Summary       *string    `json:"summary"`
	FeaturedImage *string    `json:"featured_image"`
	Category      *string    `json:"category"`
	AuthorID      int        `json:"author_id"`
	IsFeatured    bool       `json:"is_featured"`
	IsPublished   bool       `json:"is_published"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at"`
}

type NewPost struct {
	Title         string
	Content       string
	Summary       *string
	FeaturedImage *string
	Category      *string
	AuthorID      int
	IsFeatured    bool
	IsPublished   bool
}

type PostUpdate struct {
	Title         *string
	Content       *string
	Summary       *string
	FeaturedImage *string
	Category      *string
	IsFeatured    *bool
	IsPublished   *bool
}

type Comment struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	PostID    int       `json:"post_id"`
	AuthorID  int       `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type NewComment struct {
	Content  string
	PostID   int
	AuthorID int
}

type Tag struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type NewTag struct {
	Name        string
	Description *string
}

type PostTag struct {
	ID     int `json:"id"`
	PostID int `json:"post_id"`
	TagID  int `json:"tag_id"`
}

type Bookmark struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PostID    int       `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type NewBookmark struct {
	UserID int
	PostID int
}

// Session rows back the session manager. Tokens are opaque lookup keys;
// rows past their expiry are treated as absent.
type Session struct {
	Token  string    `json:"-"`
	UserID int       `json:"user_id"`
	Expiry time.Time `json:"expiry"`
}

// effectivePublishTime is the canonical sort key for post listings.
func effectivePublishTime(p *Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// applyPostUpdate merges an update over an existing post. Both backends use
// it so the publish-flip rule stays observably identical: flipping a post to
// published stamps publishedAt when unset, flipping to draft clears it.
func applyPostUpdate(p *Post, u PostUpdate, now time.Time) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Summary != nil {
		p.Summary = u.Summary
	}
	if u.FeaturedImage != nil {
		p.FeaturedImage = u.FeaturedImage
	}
	if u.Category != nil {
		p.Category = u.Category
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
	if u.IsPublished != nil {
		p.IsPublished = *u.IsPublished
		if p.IsPublished && p.PublishedAt == nil {
			t := now
			p.PublishedAt = &t
		}
		if !p.IsPublished {
			p.PublishedAt = nil
		}
	}
	p.UpdatedAt = now
}
