package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/suggest"
)

type suggester interface {
	SuggestTitles(ctx context.Context, content string) ([]string, error)
	SuggestSummary(ctx context.Context, content string) (string, error)
}

// suggestHandler proxies the completion API for the editor. When the API is
// unconfigured or failing the static fallbacks go out instead, so the
// endpoint never errors on upstream trouble.
func (app *application) suggestHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Content != "", "content", "must be provided")
	v.Check(common.PermittedValue(input.Type, "titles", "summary"), "type", "must be either titles or summary")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	switch input.Type {
	case "titles":
		titles := suggest.FallbackTitles
		if app.suggester != nil {
			suggested, err := app.suggester.SuggestTitles(r.Context(), input.Content)
			if err != nil {
				app.logger.Error("could not fetch title suggestions", slog.String("error", err.Error()))
			} else {
				titles = suggested
			}
		}

		err = app.writeJSON(w, http.StatusOK, envelope{"titles": titles}, nil)
	case "summary":
		summary := suggest.FallbackSummary
		if app.suggester != nil {
			suggested, err := app.suggester.SuggestSummary(r.Context(), input.Content)
			if err != nil {
				app.logger.Error("could not fetch summary suggestion", slog.String("error", err.Error()))
			} else {
				summary = suggested
			}
		}

		err = app.writeJSON(w, http.StatusOK, envelope{"summary": summary}, nil)
	default:
		err = errors.New("unreachable suggestion type")
	}

	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
