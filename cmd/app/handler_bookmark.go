package main

import (
	"errors"
	"net/http"

	"github.com/hazyrose/inkwell/internal/store"
)

func (app *application) listBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.store.ListBookmarks(r.Context(), app.getUserContext(r).ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PostID int `json:"post_id"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if _, err := app.store.GetPost(r.Context(), input.PostID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	bookmark, err := app.store.CreateBookmark(r.Context(), store.NewBookmark{
		UserID: app.getUserContext(r).ID,
		PostID: input.PostID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateBookmark):
			app.conflictErrorResponse(w, r, "this post is already bookmarked")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"bookmark": bookmark}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	bookmark, err := app.store.GetBookmark(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if bookmark.UserID != app.getUserContext(r).ID {
		app.unAuthorizedErrorResponse(w, r)
		return
	}

	deleted, err := app.store.DeleteBookmark(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !deleted {
		app.notFoundErrorResponse(w, r)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
