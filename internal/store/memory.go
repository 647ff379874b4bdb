package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is the volatile single-process backend. Ids are allocated
// monotonically from 1 per entity kind and never reused after deletion.
// It exists for development and tests only; nothing survives a restart.
type MemStore struct {
	mu sync.RWMutex

	users     map[int]User
	posts     map[int]Post
	comments  map[int]Comment
	tags      map[int]Tag
	postTags  map[int]PostTag
	bookmarks map[int]Bookmark
	sessions  map[string]Session

	userID     int
	postID     int
	commentID  int
	tagID      int
	postTagID  int
	bookmarkID int
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:     make(map[int]User),
		posts:     make(map[int]Post),
		comments:  make(map[int]Comment),
		tags:      make(map[int]Tag),
		postTags:  make(map[int]PostTag),
		bookmarks: make(map[int]Bookmark),
		sessions:  make(map[string]Session),
	}
}

func strPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// cloneUser copies the record so callers never share memory with the store.
func cloneUser(u User) *User {
	u.DisplayName = strPtr(u.DisplayName)
	u.AvatarURL = strPtr(u.AvatarURL)
	u.Bio = strPtr(u.Bio)
	return &u
}

func clonePost(p Post) *Post {
	p.Summary = strPtr(p.Summary)
	p.FeaturedImage = strPtr(p.FeaturedImage)
	p.Category = strPtr(p.Category)
	p.PublishedAt = timePtr(p.PublishedAt)
	return &p
}

func cloneTag(t Tag) *Tag {
	t.Description = strPtr(t.Description)
	return &t
}

func (m *MemStore) GetUser(_ context.Context, id int) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *MemStore) GetUserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) CreateUser(_ context.Context, n NewUser) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == n.Username {
			return nil, ErrDuplicateUsername
		}
		if u.Email == n.Email {
			return nil, ErrDuplicateEmail
		}
	}

	m.userID++
	u := User{
		ID:          m.userID,
		Username:    n.Username,
		Email:       n.Email,
		Password:    n.Password,
		DisplayName: strPtr(n.DisplayName),
		AvatarURL:   strPtr(n.AvatarURL),
		Bio:         strPtr(n.Bio),
	}
	m.users[u.ID] = u

	return cloneUser(u), nil
}

func (m *MemStore) UpdateUser(_ context.Context, id int, upd UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	for _, other := range m.users {
		if other.ID == id {
			continue
		}
		if upd.Username != nil && other.Username == *upd.Username {
			return nil, ErrDuplicateUsername
		}
		if upd.Email != nil && other.Email == *upd.Email {
			return nil, ErrDuplicateEmail
		}
	}

	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.DisplayName != nil {
		u.DisplayName = strPtr(upd.DisplayName)
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = strPtr(upd.AvatarURL)
	}
	if upd.Bio != nil {
		u.Bio = strPtr(upd.Bio)
	}
	m.users[id] = u

	return cloneUser(u), nil
}

// clampPage normalizes pagination arguments at the storage boundary so a
// negative limit or offset behaves as zero in both backends instead of
// panicking in one and erroring in the other.
func clampPage(limit, offset int) (int, int) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// sortedPosts returns posts ordered by effective publish time descending.
// Pre-sorting by id makes the stable sort break ties in insertion order.
func sortedPosts(posts []Post) []Post {
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	sort.SliceStable(posts, func(i, j int) bool {
		return effectivePublishTime(&posts[i]).After(effectivePublishTime(&posts[j]))
	})
	return posts
}

func (m *MemStore) collectPosts(keep func(*Post) bool) []Post {
	posts := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		if keep(&p) {
			posts = append(posts, *clonePost(p))
		}
	}
	return sortedPosts(posts)
}

func (m *MemStore) GetPost(_ context.Context, id int) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func (m *MemStore) ListPosts(_ context.Context, limit, offset int) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit, offset = clampPage(limit, offset)
	posts := m.collectPosts(func(*Post) bool { return true })

	if offset >= len(posts) {
		return []Post{}, nil
	}
	posts = posts[offset:]
	if limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *MemStore) ListPostsByAuthor(_ context.Context, authorID int) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collectPosts(func(p *Post) bool { return p.AuthorID == authorID }), nil
}

func (m *MemStore) SearchPosts(_ context.Context, query string) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	return m.collectPosts(func(p *Post) bool {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
			return true
		}
		return p.Summary != nil && strings.Contains(strings.ToLower(*p.Summary), q)
	}), nil
}

func (m *MemStore) ListFeaturedPosts(_ context.Context, limit int) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit, _ = clampPage(limit, 0)
	posts := m.collectPosts(func(p *Post) bool { return p.IsFeatured })
	if limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *MemStore) CreatePost(_ context.Context, n NewPost) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	m.postID++
	p := Post{
		ID:            m.postID,
		Title:         n.Title,
		Content:       n.Content,
		Summary:       strPtr(n.Summary),
		FeaturedImage: strPtr(n.FeaturedImage),
		Category:      strPtr(n.Category),
		AuthorID:      n.AuthorID,
		IsFeatured:    n.IsFeatured,
		IsPublished:   n.IsPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if n.IsPublished {
		t := now
		p.PublishedAt = &t
	}
	m.posts[p.ID] = p

	return clonePost(p), nil
}

func (m *MemStore) UpdatePost(_ context.Context, id int, upd PostUpdate) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyPostUpdate(&p, upd, time.Now())
	m.posts[id] = p

	return clonePost(p), nil
}

func (m *MemStore) DeletePost(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

func (m *MemStore) GetComment(_ context.Context, id int) (*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemStore) ListCommentsForPost(_ context.Context, postID int) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comments := make([]Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })

	return comments, nil
}

func (m *MemStore) CreateComment(_ context.Context, n NewComment) (*Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commentID++
	c := Comment{
		ID:        m.commentID,
		Content:   n.Content,
		PostID:    n.PostID,
		AuthorID:  n.AuthorID,
		CreatedAt: time.Now(),
	}
	m.comments[c.ID] = c

	return &c, nil
}

func (m *MemStore) DeleteComment(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return false, nil
	}
	delete(m.comments, id)
	return true, nil
}

func (m *MemStore) GetTag(_ context.Context, id int) (*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTag(t), nil
}

func (m *MemStore) GetTagByName(_ context.Context, name string) (*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tags {
		if strings.EqualFold(t.Name, name) {
			return cloneTag(t), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) CreateTag(_ context.Context, n NewTag) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tags {
		if strings.EqualFold(t.Name, n.Name) {
			return nil, ErrDuplicateTag
		}
	}

	m.tagID++
	t := Tag{
		ID:          m.tagID,
		Name:        n.Name,
		Description: strPtr(n.Description),
	}
	m.tags[t.ID] = t

	return cloneTag(t), nil
}

func (m *MemStore) ListTagsForPost(_ context.Context, postID int) ([]Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := make([]Tag, 0)
	for _, pt := range m.postTags {
		if pt.PostID != postID {
			continue
		}
		if t, ok := m.tags[pt.TagID]; ok {
			tags = append(tags, *cloneTag(t))
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })

	return tags, nil
}

func (m *MemStore) AttachTag(_ context.Context, postID, tagID int) (*PostTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pt := range m.postTags {
		if pt.PostID == postID && pt.TagID == tagID {
			return nil, ErrDuplicateTagAttachment
		}
	}

	m.postTagID++
	pt := PostTag{ID: m.postTagID, PostID: postID, TagID: tagID}
	m.postTags[pt.ID] = pt

	return &pt, nil
}

func (m *MemStore) DetachTag(_ context.Context, postID, tagID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, pt := range m.postTags {
		if pt.PostID == postID && pt.TagID == tagID {
			delete(m.postTags, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) GetBookmark(_ context.Context, id int) (*Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookmarks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemStore) FindBookmark(_ context.Context, userID, postID int) (*Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bookmarks {
		if b.UserID == userID && b.PostID == postID {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) ListBookmarks(_ context.Context, userID int) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	marks := make([]Bookmark, 0)
	for _, b := range m.bookmarks {
		if b.UserID == userID {
			marks = append(marks, b)
		}
	}
	// Most recently bookmarked first.
	sort.Slice(marks, func(i, j int) bool { return marks[i].ID > marks[j].ID })

	posts := make([]Post, 0, len(marks))
	for _, b := range marks {
		if p, ok := m.posts[b.PostID]; ok {
			posts = append(posts, *clonePost(p))
		}
	}
	return posts, nil
}

func (m *MemStore) CreateBookmark(_ context.Context, n NewBookmark) (*Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookmarks {
		if b.UserID == n.UserID && b.PostID == n.PostID {
			return nil, ErrDuplicateBookmark
		}
	}

	m.bookmarkID++
	b := Bookmark{
		ID:        m.bookmarkID,
		UserID:    n.UserID,
		PostID:    n.PostID,
		CreatedAt: time.Now(),
	}
	m.bookmarks[b.ID] = b

	return &b, nil
}

func (m *MemStore) DeleteBookmark(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookmarks[id]; !ok {
		return false, nil
	}
	delete(m.bookmarks, id)
	return true, nil
}

func (m *MemStore) InsertSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Token] = *s
	return nil
}

func (m *MemStore) GetSession(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok || !s.Expiry.After(time.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *MemStore) DeleteExpiredSessions(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for token, s := range m.sessions {
		if !s.Expiry.After(now) {
			delete(m.sessions, token)
		}
	}
	return nil
}
