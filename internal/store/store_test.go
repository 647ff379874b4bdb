package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

// Both backends run the same suite. Any behavioural difference between them
// is a bug, so every test takes the store through a factory.
func TestMemStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) store.Store {
		return store.NewMemStore()
	})
}

func TestSQLStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed store tests in short mode")
	}

	db := common.TestDB(t)

	runStoreSuite(t, func(t *testing.T) store.Store {
		_, err := db.Exec(`TRUNCATE users, posts, comments, tags, post_tags, bookmarks, sessions RESTART IDENTITY`)
		require.NoError(t, err)
		return store.NewSQLStore(db)
	})
}

func strp(s string) *string { return &s }

func boolp(b bool) *bool { return &b }

func createTestUser(t *testing.T, s store.Store, username, email string) *store.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), store.NewUser{
		Username: username,
		Email:    email,
		Password: "2f6c8e.9a1b3d",
	})
	require.NoError(t, err)
	return u
}

func createTestPost(t *testing.T, s store.Store, authorID int, title string, published bool) *store.Post {
	t.Helper()

	p, err := s.CreatePost(context.Background(), store.NewPost{
		Title:       title,
		Content:     "content of " + title,
		AuthorID:    authorID,
		IsPublished: published,
	})
	require.NoError(t, err)

	// Guarantees distinct effective publish times for ordering assertions.
	time.Sleep(5 * time.Millisecond)
	return p
}

func postTitles(posts []store.Post) []string {
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return titles
}

func runStoreSuite(t *testing.T, newStore func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("create user then get returns equal record", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateUser(ctx, store.NewUser{
			Username:    "alice",
			Email:       "alice@example.com",
			Password:    "2f6c8e.9a1b3d",
			DisplayName: strp("Alice"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, created.ID)

		got, err := s.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		byName, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, created, byName)

		byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, created, byEmail)
	})

	t.Run("get missing user returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetUser(ctx, 42)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username and email are rejected", func(t *testing.T) {
		s := newStore(t)

		createTestUser(t, s, "alice", "alice@example.com")

		_, err := s.CreateUser(ctx, store.NewUser{Username: "alice", Email: "other@example.com", Password: "x.y"})
		assert.ErrorIs(t, err, store.ErrDuplicateUsername)

		_, err = s.CreateUser(ctx, store.NewUser{Username: "bob", Email: "alice@example.com", Password: "x.y"})
		assert.ErrorIs(t, err, store.ErrDuplicateEmail)
	})

	t.Run("update user merges only provided fields", func(t *testing.T) {
		s := newStore(t)

		u := createTestUser(t, s, "alice", "alice@example.com")

		updated, err := s.UpdateUser(ctx, u.ID, store.UserUpdate{Bio: strp("hello")})
		require.NoError(t, err)
		assert.Equal(t, "alice", updated.Username)
		assert.Equal(t, "alice@example.com", updated.Email)
		require.NotNil(t, updated.Bio)
		assert.Equal(t, "hello", *updated.Bio)
	})

	t.Run("update user to taken username is rejected", func(t *testing.T) {
		s := newStore(t)

		createTestUser(t, s, "alice", "alice@example.com")
		bob := createTestUser(t, s, "bob", "bob@example.com")

		_, err := s.UpdateUser(ctx, bob.ID, store.UserUpdate{Username: strp("alice")})
		assert.ErrorIs(t, err, store.ErrDuplicateUsername)
	})

	t.Run("posts list newest effective publish time first", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		createTestPost(t, s, u.ID, "first", true)
		createTestPost(t, s, u.ID, "second", true)
		createTestPost(t, s, u.ID, "third", false)

		posts, err := s.ListPosts(ctx, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, postTitles(posts))
	})

	t.Run("drafts sort by creation time", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		createTestPost(t, s, u.ID, "draft", false)
		createTestPost(t, s, u.ID, "published", true)

		posts, err := s.ListPosts(ctx, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"published", "draft"}, postTitles(posts))
	})

	t.Run("publishing a draft stamps publishedAt and reorders it", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		draft := createTestPost(t, s, u.ID, "old draft", false)
		createTestPost(t, s, u.ID, "newer", true)

		published, err := s.UpdatePost(ctx, draft.ID, store.PostUpdate{IsPublished: boolp(true)})
		require.NoError(t, err)
		require.NotNil(t, published.PublishedAt)
		assert.True(t, published.PublishedAt.After(draft.CreatedAt))

		posts, err := s.ListPosts(ctx, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"old draft", "newer"}, postTitles(posts))
	})

	t.Run("unpublishing clears publishedAt", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		p := createTestPost(t, s, u.ID, "live", true)
		require.NotNil(t, p.PublishedAt)

		unpublished, err := s.UpdatePost(ctx, p.ID, store.PostUpdate{IsPublished: boolp(false)})
		require.NoError(t, err)
		assert.Nil(t, unpublished.PublishedAt)
		assert.False(t, unpublished.IsPublished)
	})

	t.Run("republishing does not reset the original publish time", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		p := createTestPost(t, s, u.ID, "live", true)

		again, err := s.UpdatePost(ctx, p.ID, store.PostUpdate{IsPublished: boolp(true)})
		require.NoError(t, err)
		require.NotNil(t, again.PublishedAt)
		assert.WithinDuration(t, *p.PublishedAt, *again.PublishedAt, time.Millisecond)
	})

	t.Run("list posts paginates over the ordering", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		for _, title := range []string{"a", "b", "c", "d"} {
			createTestPost(t, s, u.ID, title, true)
		}

		page, err := s.ListPosts(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b"}, postTitles(page))

		empty, err := s.ListPosts(ctx, 2, 10)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("search matches title content and summary case-insensitively", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		_, err := s.CreatePost(ctx, store.NewPost{Title: "Go Concurrency", Content: "channels", AuthorID: u.ID, IsPublished: true})
		require.NoError(t, err)
		_, err = s.CreatePost(ctx, store.NewPost{Title: "Cooking", Content: "pasta", Summary: strp("a GOpher's dinner"), AuthorID: u.ID, IsPublished: true})
		require.NoError(t, err)

		results, err := s.SearchPosts(ctx, "go")
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = s.SearchPosts(ctx, "pasta")
		require.NoError(t, err)
		assert.Len(t, results, 1)

		results, err = s.SearchPosts(ctx, "nothing here")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("search treats pattern metacharacters literally", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		createTestPost(t, s, u.ID, "100 days of Go", true)
		createTestPost(t, s, u.ID, "abc", true)
		createTestPost(t, s, u.ID, "50% done", true)

		results, err := s.SearchPosts(ctx, "100%")
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = s.SearchPosts(ctx, "a_c")
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = s.SearchPosts(ctx, "50%")
		require.NoError(t, err)
		assert.Equal(t, []string{"50% done"}, postTitles(results))
	})

	t.Run("negative pagination values behave as zero", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		createTestPost(t, s, u.ID, "only", true)

		posts, err := s.ListPosts(ctx, -1, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)

		posts, err = s.ListPosts(ctx, 20, -3)
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, postTitles(posts))

		featured, err := s.ListFeaturedPosts(ctx, -1)
		require.NoError(t, err)
		assert.Empty(t, featured)
	})

	t.Run("featured listing honours flag and limit", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		for i, title := range []string{"plain", "star one", "star two"} {
			_, err := s.CreatePost(ctx, store.NewPost{Title: title, Content: "c", AuthorID: u.ID, IsFeatured: i > 0, IsPublished: true})
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}

		featured, err := s.ListFeaturedPosts(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"star two", "star one"}, postTitles(featured))

		one, err := s.ListFeaturedPosts(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"star two"}, postTitles(one))
	})

	t.Run("delete post reports whether it existed and keeps comments", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")
		p := createTestPost(t, s, u.ID, "doomed", true)

		_, err := s.CreateComment(ctx, store.NewComment{Content: "nice", PostID: p.ID, AuthorID: u.ID})
		require.NoError(t, err)

		ok, err := s.DeletePost(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeletePost(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		comments, err := s.ListCommentsForPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("comments list newest first and delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")
		p := createTestPost(t, s, u.ID, "post", true)

		first, err := s.CreateComment(ctx, store.NewComment{Content: "first", PostID: p.ID, AuthorID: u.ID})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		_, err = s.CreateComment(ctx, store.NewComment{Content: "second", PostID: p.ID, AuthorID: u.ID})
		require.NoError(t, err)

		comments, err := s.ListCommentsForPost(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[0].Content)
		assert.Equal(t, "first", comments[1].Content)

		ok, err := s.DeleteComment(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeleteComment(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("tag names are unique case-insensitively", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateTag(ctx, store.NewTag{Name: "golang"})
		require.NoError(t, err)

		_, err = s.CreateTag(ctx, store.NewTag{Name: "GoLang"})
		assert.ErrorIs(t, err, store.ErrDuplicateTag)

		got, err := s.GetTagByName(ctx, "GOLANG")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("attach tag twice conflicts and listing shows it once", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")
		p := createTestPost(t, s, u.ID, "post", true)

		tag, err := s.CreateTag(ctx, store.NewTag{Name: "golang"})
		require.NoError(t, err)

		_, err = s.AttachTag(ctx, p.ID, tag.ID)
		require.NoError(t, err)

		_, err = s.AttachTag(ctx, p.ID, tag.ID)
		assert.ErrorIs(t, err, store.ErrDuplicateTagAttachment)

		tags, err := s.ListTagsForPost(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "golang", tags[0].Name)
	})

	t.Run("detach tag reports whether the attachment existed", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")
		p := createTestPost(t, s, u.ID, "post", true)

		tag, err := s.CreateTag(ctx, store.NewTag{Name: "golang"})
		require.NoError(t, err)

		_, err = s.AttachTag(ctx, p.ID, tag.ID)
		require.NoError(t, err)

		ok, err := s.DetachTag(ctx, p.ID, tag.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DetachTag(ctx, p.ID, tag.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bookmark toggle round-trip", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")
		p := createTestPost(t, s, u.ID, "saved", true)

		_, err := s.FindBookmark(ctx, u.ID, p.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		b, err := s.CreateBookmark(ctx, store.NewBookmark{UserID: u.ID, PostID: p.ID})
		require.NoError(t, err)

		_, err = s.CreateBookmark(ctx, store.NewBookmark{UserID: u.ID, PostID: p.ID})
		assert.ErrorIs(t, err, store.ErrDuplicateBookmark)

		found, err := s.FindBookmark(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, found.ID)

		saved, err := s.ListBookmarks(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, "saved", saved[0].Title)

		ok, err := s.DeleteBookmark(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeleteBookmark(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bookmarks list most recently saved first", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")
		p1 := createTestPost(t, s, u.ID, "older save", true)
		p2 := createTestPost(t, s, u.ID, "newer save", true)

		_, err := s.CreateBookmark(ctx, store.NewBookmark{UserID: u.ID, PostID: p1.ID})
		require.NoError(t, err)
		_, err = s.CreateBookmark(ctx, store.NewBookmark{UserID: u.ID, PostID: p2.ID})
		require.NoError(t, err)

		saved, err := s.ListBookmarks(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"newer save", "older save"}, postTitles(saved))
	})

	t.Run("session lifecycle", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		sess := &store.Session{Token: "LIVETOKEN", UserID: u.ID, Expiry: time.Now().Add(time.Hour)}
		require.NoError(t, s.InsertSession(ctx, sess))

		got, err := s.GetSession(ctx, "LIVETOKEN")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.UserID)

		require.NoError(t, s.DeleteSession(ctx, "LIVETOKEN"))

		_, err = s.GetSession(ctx, "LIVETOKEN")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// Deleting again is a no-op.
		require.NoError(t, s.DeleteSession(ctx, "LIVETOKEN"))
	})

	t.Run("expired sessions are invisible and reapable", func(t *testing.T) {
		s := newStore(t)
		u := createTestUser(t, s, "alice", "alice@example.com")

		expired := &store.Session{Token: "STALETOKEN", UserID: u.ID, Expiry: time.Now().Add(-time.Minute)}
		require.NoError(t, s.InsertSession(ctx, expired))
		live := &store.Session{Token: "FRESHTOKEN", UserID: u.ID, Expiry: time.Now().Add(time.Hour)}
		require.NoError(t, s.InsertSession(ctx, live))

		_, err := s.GetSession(ctx, "STALETOKEN")
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, s.DeleteExpiredSessions(ctx))

		_, err = s.GetSession(ctx, "FRESHTOKEN")
		require.NoError(t, err)
	})
}
