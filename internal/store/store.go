package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrDuplicateUsername      = errors.New("duplicate username")
	ErrDuplicateEmail         = errors.New("duplicate email")
	ErrDuplicateTag           = errors.New("duplicate tag name")
	ErrDuplicateTagAttachment = errors.New("tag already attached to post")
	ErrDuplicateBookmark      = errors.New("post already bookmarked")
)

// Store is the persistence contract shared by the volatile in-memory backend
// and the durable Postgres backend. Both must behave identically for every
// operation: same ordering, same ErrNotFound-vs-error distinctions, same
// uniqueness failures. Uniqueness is enforced at the storage boundary so
// concurrent check-then-insert callers cannot race past each other.
type Store interface {
	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, n NewUser) (*User, error)
	UpdateUser(ctx context.Context, id int, u UserUpdate) (*User, error)

	GetPost(ctx context.Context, id int) (*Post, error)
	// ListPosts orders by effective publish time descending, ties broken by
	// insertion order. Pagination is a plain slice over that ordering and is
	// only stable while the underlying set is not mutated between pages.
	ListPosts(ctx context.Context, limit, offset int) ([]Post, error)
	ListPostsByAuthor(ctx context.Context, authorID int) ([]Post, error)
	SearchPosts(ctx context.Context, query string) ([]Post, error)
	ListFeaturedPosts(ctx context.Context, limit int) ([]Post, error)
	CreatePost(ctx context.Context, n NewPost) (*Post, error)
	UpdatePost(ctx context.Context, id int, u PostUpdate) (*Post, error)
	// DeletePost removes only the post row. Comments, tag attachments and
	// bookmarks referencing it are left in place.
	DeletePost(ctx context.Context, id int) (bool, error)

	GetComment(ctx context.Context, id int) (*Comment, error)
	ListCommentsForPost(ctx context.Context, postID int) ([]Comment, error)
	CreateComment(ctx context.Context, n NewComment) (*Comment, error)
	DeleteComment(ctx context.Context, id int) (bool, error)

	GetTag(ctx context.Context, id int) (*Tag, error)
	GetTagByName(ctx context.Context, name string) (*Tag, error)
	CreateTag(ctx context.Context, n NewTag) (*Tag, error)
	ListTagsForPost(ctx context.Context, postID int) ([]Tag, error)
	AttachTag(ctx context.Context, postID, tagID int) (*PostTag, error)
	DetachTag(ctx context.Context, postID, tagID int) (bool, error)

	GetBookmark(ctx context.Context, id int) (*Bookmark, error)
	FindBookmark(ctx context.Context, userID, postID int) (*Bookmark, error)
	ListBookmarks(ctx context.Context, userID int) ([]Post, error)
	CreateBookmark(ctx context.Context, n NewBookmark) (*Bookmark, error)
	DeleteBookmark(ctx context.Context, id int) (bool, error)

	InsertSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) error
}
