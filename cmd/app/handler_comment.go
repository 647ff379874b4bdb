package main

import (
	"errors"
	"net/http"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if _, err := app.store.GetPost(r.Context(), postID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	comments, err := app.store.ListCommentsForPost(r.Context(), postID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input struct {
		Content string `json:"content"`
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Content != "", "content", "must be provided")
	v.Check(v.CheckStringLength(input.Content, 1, 2000), "content", "must not be more than 2000 characters")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	if _, err := app.store.GetPost(r.Context(), postID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	comment, err := app.store.CreateComment(r.Context(), store.NewComment{
		Content:  input.Content,
		PostID:   postID,
		AuthorID: app.getUserContext(r).ID,
	})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteCommentHandler allows the comment author to remove it. There is no
// moderation role, so post owners cannot prune other users' comments.
func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comment, err := app.store.GetComment(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if comment.AuthorID != app.getUserContext(r).ID {
		app.unAuthorizedErrorResponse(w, r)
		return
	}

	deleted, err := app.store.DeleteComment(r.Context(), id)
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
