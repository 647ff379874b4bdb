package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
)

// SQLStore is the durable Postgres backend. Uniqueness is delegated to the
// unique constraints created by the migrations; violation errors are mapped
// back to the same sentinels the in-memory backend returns.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const queryTimeout = 3 * time.Second

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	switch pqErr.Constraint {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	case "tags_name_key":
		return ErrDuplicateTag
	case "post_tags_post_id_tag_id_key":
		return ErrDuplicateTagAttachment
	case "bookmarks_user_id_post_id_key":
		return ErrDuplicateBookmark
	}
	return err
}

const userColumns = "id, username, email, password, display_name, avatar_url, bio"

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.DisplayName, &u.AvatarURL, &u.Bio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLStore) CreateUser(ctx context.Context, n NewUser) (*User, error) {
	query := `
		INSERT INTO users (username, email, password, display_name, avatar_url, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	u, err := scanUser(s.db.QueryRowContext(ctx, query, n.Username, n.Email, n.Password, n.DisplayName, n.AvatarURL, n.Bio))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return u, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, id int, upd UserUpdate) (*User, error) {
	query := `
		UPDATE users
		SET username = COALESCE($2, username),
			email = COALESCE($3, email),
			password = COALESCE($4, password),
			display_name = COALESCE($5, display_name),
			avatar_url = COALESCE($6, avatar_url),
			bio = COALESCE($7, bio)
		WHERE id = $1
		RETURNING ` + userColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id, upd.Username, upd.Email, upd.Password, upd.DisplayName, upd.AvatarURL, upd.Bio))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return u, nil
}

const postColumns = "id, title, content, summary, featured_image, category, author_id, is_featured, is_published, created_at, updated_at, published_at"

// postOrder matches the in-memory backend: effective publish time descending,
// insertion order breaking ties.
const postOrder = "ORDER BY COALESCE(published_at, created_at) DESC, id ASC"

func scanPost(row *sql.Row) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Summary, &p.FeaturedImage, &p.Category, &p.AuthorID, &p.IsFeatured, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]Post, error) {
	defer rows.Close()

	posts := make([]Post, 0)
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Summary, &p.FeaturedImage, &p.Category, &p.AuthorID, &p.IsFeatured, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *SQLStore) GetPost(ctx context.Context, id int) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPost(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLStore) ListPosts(ctx context.Context, limit, offset int) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ` + postOrder + ` LIMIT $1 OFFSET $2`

	limit, offset = clampPage(limit, offset)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (s *SQLStore) ListPostsByAuthor(ctx context.Context, authorID int) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ` + postOrder

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// likeEscaper neutralizes the LIKE pattern metacharacters so user queries
// match as literal substrings, the same as the in-memory backend.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *SQLStore) SearchPosts(ctx context.Context, query string) ([]Post, error) {
	stmt := `
		SELECT ` + postColumns + ` FROM posts
		WHERE title ILIKE $1 OR content ILIKE $1 OR summary ILIKE $1 ` + postOrder

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, stmt, "%"+likeEscaper.Replace(query)+"%")
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (s *SQLStore) ListFeaturedPosts(ctx context.Context, limit int) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE is_featured = true ` + postOrder + ` LIMIT $1`

	limit, _ = clampPage(limit, 0)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (s *SQLStore) CreatePost(ctx context.Context, n NewPost) (*Post, error) {
	query := `
		INSERT INTO posts (title, content, summary, featured_image, category, author_id, is_featured, is_published, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10)
		RETURNING ` + postColumns

	// Timestamps are computed here rather than in SQL so both backends stamp
	// the same clock.
	now := time.Now()
	var publishedAt *time.Time
	if n.IsPublished {
		publishedAt = &now
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPost(s.db.QueryRowContext(ctx, query, n.Title, n.Content, n.Summary, n.FeaturedImage, n.Category, n.AuthorID, n.IsFeatured, n.IsPublished, now, publishedAt))
}

// UpdatePost reads the row, merges the update in Go through the shared helper
// and writes the whole row back. Slower than dynamic SQL but guarantees the
// publish-flip behaviour cannot drift between backends.
func (s *SQLStore) UpdatePost(ctx context.Context, id int, upd PostUpdate) (*Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPostUpdate(p, upd, time.Now())

	query := `
		UPDATE posts
		SET title = $2, content = $3, summary = $4, featured_image = $5, category = $6,
			is_featured = $7, is_published = $8, updated_at = $9, published_at = $10
		WHERE id = $1
		RETURNING ` + postColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPost(s.db.QueryRowContext(ctx, query, id, p.Title, p.Content, p.Summary, p.FeaturedImage, p.Category, p.IsFeatured, p.IsPublished, p.UpdatedAt, p.PublishedAt))
}

func (s *SQLStore) deleteRow(ctx context.Context, query string, args ...any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *SQLStore) DeletePost(ctx context.Context, id int) (bool, error) {
	return s.deleteRow(ctx, `DELETE FROM posts WHERE id = $1`, id)
}

func (s *SQLStore) GetComment(ctx context.Context, id int) (*Comment, error) {
	query := `SELECT id, content, post_id, author_id, created_at FROM comments WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) ListCommentsForPost(ctx context.Context, postID int) ([]Comment, error) {
	query := `
		SELECT id, content, post_id, author_id, created_at FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC, id ASC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *SQLStore) CreateComment(ctx context.Context, n NewComment) (*Comment, error) {
	query := `
		INSERT INTO comments (content, post_id, author_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content, post_id, author_id, created_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Comment
	err := s.db.QueryRowContext(ctx, query, n.Content, n.PostID, n.AuthorID, time.Now()).Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) DeleteComment(ctx context.Context, id int) (bool, error) {
	return s.deleteRow(ctx, `DELETE FROM comments WHERE id = $1`, id)
}

func scanTag(row *sql.Row) (*Tag, error) {
	var t Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *SQLStore) GetTag(ctx context.Context, id int) (*Tag, error) {
	query := `SELECT id, name, description FROM tags WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanTag(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLStore) GetTagByName(ctx context.Context, name string) (*Tag, error) {
	query := `SELECT id, name, description FROM tags WHERE LOWER(name) = LOWER($1)`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanTag(s.db.QueryRowContext(ctx, query, name))
}

func (s *SQLStore) CreateTag(ctx context.Context, n NewTag) (*Tag, error) {
	query := `
		INSERT INTO tags (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	t, err := scanTag(s.db.QueryRowContext(ctx, query, n.Name, n.Description))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return t, nil
}

func (s *SQLStore) ListTagsForPost(ctx context.Context, postID int) ([]Tag, error) {
	query := `
		SELECT t.id, t.name, t.description FROM tags t
		INNER JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.id ASC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *SQLStore) AttachTag(ctx context.Context, postID, tagID int) (*PostTag, error) {
	query := `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES ($1, $2)
		RETURNING id, post_id, tag_id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var pt PostTag
	err := s.db.QueryRowContext(ctx, query, postID, tagID).Scan(&pt.ID, &pt.PostID, &pt.TagID)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return &pt, nil
}

func (s *SQLStore) DetachTag(ctx context.Context, postID, tagID int) (bool, error) {
	return s.deleteRow(ctx, `DELETE FROM post_tags WHERE post_id = $1 AND tag_id = $2`, postID, tagID)
}

func scanBookmark(row *sql.Row) (*Bookmark, error) {
	var b Bookmark
	if err := row.Scan(&b.ID, &b.UserID, &b.PostID, &b.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *SQLStore) GetBookmark(ctx context.Context, id int) (*Bookmark, error) {
	query := `SELECT id, user_id, post_id, created_at FROM bookmarks WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanBookmark(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLStore) FindBookmark(ctx context.Context, userID, postID int) (*Bookmark, error) {
	query := `SELECT id, user_id, post_id, created_at FROM bookmarks WHERE user_id = $1 AND post_id = $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanBookmark(s.db.QueryRowContext(ctx, query, userID, postID))
}

func (s *SQLStore) ListBookmarks(ctx context.Context, userID int) ([]Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.summary, p.featured_image, p.category, p.author_id, p.is_featured, p.is_published, p.created_at, p.updated_at, p.published_at
		FROM posts p
		INNER JOIN bookmarks b ON b.post_id = p.id
		WHERE b.user_id = $1
		ORDER BY b.id DESC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (s *SQLStore) CreateBookmark(ctx context.Context, n NewBookmark) (*Bookmark, error) {
	query := `
		INSERT INTO bookmarks (user_id, post_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, post_id, created_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	b, err := scanBookmark(s.db.QueryRowContext(ctx, query, n.UserID, n.PostID, time.Now()))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return b, nil
}

func (s *SQLStore) DeleteBookmark(ctx context.Context, id int) (bool, error) {
	return s.deleteRow(ctx, `DELETE FROM bookmarks WHERE id = $1`, id)
}

func (s *SQLStore) InsertSession(ctx context.Context, sess *Session) error {
	query := `INSERT INTO sessions (token, user_id, expiry) VALUES ($1, $2, $3)`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, query, sess.Token, sess.UserID, sess.Expiry)
	return err
}

func (s *SQLStore) GetSession(ctx context.Context, token string) (*Session, error) {
	query := `SELECT token, user_id, expiry FROM sessions WHERE token = $1 AND expiry > $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sess Session
	err := s.db.QueryRowContext(ctx, query, token, time.Now()).Scan(&sess.Token, &sess.UserID, &sess.Expiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *SQLStore) DeleteSession(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, query, token)
	return err
}

func (s *SQLStore) DeleteExpiredSessions(ctx context.Context) error {
	query := `DELETE FROM sessions WHERE expiry <= $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, query, time.Now())
	return err
}
