package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodPost, "/v1/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/logout", app.logoutUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/auth/me", app.requireAuthUser(app.currentUserHandler))

	router.HandlerFunc(http.MethodGet, "/v1/users/:id", app.getUserHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/users/:id", app.requireAuthUser(app.updateUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:id/posts", app.listUserPostsHandler)

	// Featured and search live at the top level because a literal segment
	// cannot share /v1/posts with the :id wildcard.
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requireAuthUser(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id", app.getPostHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/posts/:id", app.requireAuthUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id", app.requireAuthUser(app.deletePostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/featured", app.listFeaturedPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/search", app.searchPostsHandler)

	router.HandlerFunc(http.MethodGet, "/v1/posts/:id/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/comments", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	router.HandlerFunc(http.MethodPost, "/v1/tags", app.requireAuthUser(app.createTagHandler))
	router.HandlerFunc(http.MethodGet, "/v1/tags/:id", app.getTagHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id/tags", app.listPostTagsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/tags", app.requireAuthUser(app.attachTagHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id/tags/:tagID", app.requireAuthUser(app.detachTagHandler))

	router.HandlerFunc(http.MethodGet, "/v1/bookmarks", app.requireAuthUser(app.listBookmarksHandler))
	router.HandlerFunc(http.MethodPost, "/v1/bookmarks", app.requireAuthUser(app.createBookmarkHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/bookmarks/:id", app.requireAuthUser(app.deleteBookmarkHandler))

	router.HandlerFunc(http.MethodPost, "/v1/ai/suggestions", app.requireAuthUser(app.suggestHandler))

	return app.recoverPanic(app.logRequest(app.enableCORS(app.authenticate(router))))
}
