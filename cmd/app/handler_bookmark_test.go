package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarkHandlers(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	alice := ts.register(t, "alice", "alice@example.com")
	bob := ts.register(t, "bob", "bob@example.com")

	postID := createPost(t, ts, alice, "saveworthy", nil)

	t.Run("requires authentication", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/bookmarks", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("save and list", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/bookmarks", map[string]any{"post_id": postID}, bob)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, float64(postID), body["bookmark"].(map[string]any)["post_id"])

		status, _, body = ts.get(t, "/v1/bookmarks", bob)
		require.Equal(t, http.StatusOK, status)
		posts := body["posts"].([]any)
		require.Len(t, posts, 1)
		assert.Equal(t, "saveworthy", posts[0].(map[string]any)["title"])

		// Bookmarks are private to their owner.
		status, _, body = ts.get(t, "/v1/bookmarks", alice)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["posts"])
	})

	t.Run("saving twice conflicts", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/bookmarks", map[string]any{"post_id": postID}, bob)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("unknown post", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/bookmarks", map[string]any{"post_id": 999}, bob)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("only the owner can remove it", func(t *testing.T) {
		status, _, _ := ts.delete(t, "/v1/bookmarks/1", alice)
		assert.Equal(t, http.StatusForbidden, status)

		status, _, _ = ts.delete(t, "/v1/bookmarks/1", bob)
		assert.Equal(t, http.StatusNoContent, status)

		status, _, _ = ts.delete(t, "/v1/bookmarks/1", bob)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
