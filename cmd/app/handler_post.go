package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

func validatePostInput(v *common.Validator, title, content string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 200), "title", "must not be more than 200 characters")
	v.Check(content != "", "content", "must be provided")
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.store.ListPosts(r.Context(), limit, offset)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var post *store.Post
	if cached, ok := app.cache.Get(common.CacheKeyPost(id)); ok {
		post = cached.(*store.Post)
	} else {
		post, err = app.store.GetPost(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				app.notFoundErrorResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}
		app.cache.Set(common.CacheKeyPost(id), post, time.Minute)
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title         string  `json:"title"`
		Content       string  `json:"content"`
		Summary       *string `json:"summary"`
		FeaturedImage *string `json:"featured_image"`
		Category      *string `json:"category"`
		IsFeatured    bool    `json:"is_featured"`
		IsPublished   *bool   `json:"is_published"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	validatePostInput(v, input.Title, input.Content)
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	// Posts publish immediately unless explicitly created as drafts.
	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	post, err := app.store.CreatePost(r.Context(), store.NewPost{
		Title:         input.Title,
		Content:       input.Content,
		Summary:       input.Summary,
		FeaturedImage: input.FeaturedImage,
		Category:      input.Category,
		AuthorID:      app.getUserContext(r).ID,
		IsFeatured:    input.IsFeatured,
		IsPublished:   published,
	})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.store.GetPost(r.Context(), id)
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

	var input struct {
		Title         *string `json:"title"`
		Content       *string `json:"content"`
		Summary       *string `json:"summary"`
		FeaturedImage *string `json:"featured_image"`
		Category      *string `json:"category"`
		IsFeatured    *bool   `json:"is_featured"`
		IsPublished   *bool   `json:"is_published"`
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	if input.Title != nil {
		v.Check(*input.Title != "", "title", "must not be empty")
		v.Check(v.CheckStringLength(*input.Title, 1, 200), "title", "must not be more than 200 characters")
	}
	if input.Content != nil {
		v.Check(*input.Content != "", "content", "must not be empty")
	}
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	updated, err := app.store.UpdatePost(r.Context(), id, store.PostUpdate{
		Title:         input.Title,
		Content:       input.Content,
		Summary:       input.Summary,
		FeaturedImage: input.FeaturedImage,
		Category:      input.Category,
		IsFeatured:    input.IsFeatured,
		IsPublished:   input.IsPublished,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.cache.Delete(common.CacheKeyPost(id))

	err = app.writeJSON(w, http.StatusOK, envelope{"post": updated}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.store.GetPost(r.Context(), id)
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

	deleted, err := app.store.DeletePost(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !deleted {
		app.notFoundErrorResponse(w, r)
		return
	}

	app.cache.Delete(common.CacheKeyPost(id))

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listFeaturedPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var posts []store.Post
	if cached, ok := app.cache.Get(common.CacheKeyFeaturedPosts(limit)); ok {
		posts = cached.([]store.Post)
	} else {
		posts, err = app.store.ListFeaturedPosts(r.Context(), limit)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		app.cache.Set(common.CacheKeyFeaturedPosts(limit), posts, time.Minute)
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) searchPostsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		app.badRequestErrorResponse(w, r, errors.New("missing search query"))
		return
	}

	posts, err := app.store.SearchPosts(r.Context(), query)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
