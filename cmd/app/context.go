package main

import (
	"context"
	"net/http"

	"github.com/hazyrose/inkwell/internal/auth"
)

type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("sessionToken")
)

func (app *application) createUserContext(r *http.Request, p *auth.Principal, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, p)
	ctx = context.WithValue(ctx, tokenContextKey, token)
	return r.WithContext(ctx)
}

// getUserContext returns nil for anonymous requests.
func (app *application) getUserContext(r *http.Request) *auth.Principal {
	p, ok := r.Context().Value(userContextKey).(*auth.Principal)
	if !ok {
		return nil
	}
	return p
}

func (app *application) getTokenContext(r *http.Request) string {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
