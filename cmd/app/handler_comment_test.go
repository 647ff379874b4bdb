package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentHandlers(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	alice := ts.register(t, "alice", "alice@example.com")
	bob := ts.register(t, "bob", "bob@example.com")

	postID := createPost(t, ts, alice, "discussed", nil)

	t.Run("create requires authentication", func(t *testing.T) {
		status, _, _ := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{"content": "anon"}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("create and list", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{"content": "nice post"}, bob)
		require.Equal(t, http.StatusCreated, status)

		comment := body["comment"].(map[string]any)
		assert.Equal(t, "nice post", comment["content"])
		assert.Equal(t, float64(2), comment["author_id"])

		status, _, body = ts.get(t, fmt.Sprintf("/v1/posts/%d/comments", postID), nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["comments"].([]any), 1)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		status, _, _ := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{"content": ""}, bob)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("missing post", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/posts/999/comments", map[string]any{"content": "ghost"}, bob)
		assert.Equal(t, http.StatusNotFound, status)

		status, _, _ = ts.get(t, "/v1/posts/999/comments", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("only the comment author can delete", func(t *testing.T) {
		// Comment 1 belongs to bob.
		status, _, _ := ts.delete(t, "/v1/comments/1", alice)
		assert.Equal(t, http.StatusForbidden, status)

		status, _, _ = ts.delete(t, "/v1/comments/1", bob)
		assert.Equal(t, http.StatusNoContent, status)

		status, _, _ = ts.delete(t, "/v1/comments/1", bob)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
