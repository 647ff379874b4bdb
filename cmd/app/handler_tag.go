package main

import (
	"errors"
	"net/http"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

func (app *application) createTagHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(input.Name, 1, 50), "name", "must not be more than 50 characters")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	tag, err := app.store.CreateTag(r.Context(), store.NewTag{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateTag):
			app.conflictErrorResponse(w, r, "a tag with this name already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"tag": tag}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getTagHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tag, err := app.store.GetTag(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"tag": tag}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPostTagsHandler(w http.ResponseWriter, r *http.Request) {
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

	tags, err := app.store.ListTagsForPost(r.Context(), postID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"tags": tags}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// attachTagHandler links an existing tag to the caller's own post.
func (app *application) attachTagHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input struct {
		TagID int `json:"tag_id"`
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.store.GetPost(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if post.AuthorID != app.getUserContext(r).ID {
		app.unAuthorizedErrorResponse(w, r)
		return
	}

	if _, err := app.store.GetTag(r.Context(), input.TagID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	pt, err := app.store.AttachTag(r.Context(), postID, input.TagID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateTagAttachment):
			app.conflictErrorResponse(w, r, "this tag is already attached to the post")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post_tag": pt}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) detachTagHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tagID, err := app.readIDParam(r, "tagID")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.store.GetPost(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if post.AuthorID != app.getUserContext(r).ID {
		app.unAuthorizedErrorResponse(w, r)
		return
	}

	detached, err := app.store.DetachTag(r.Context(), postID, tagID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !detached {
		app.notFoundErrorResponse(w, r)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
