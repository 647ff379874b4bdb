package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/hazyrose/inkwell/internal/auth"
	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

func (app *application) setSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiry).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   app.config.Environment != "development",
	})
}

func (app *application) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   app.config.Environment != "development",
	})
}

// registerUserHandler creates the account and signs the new user in
// immediately.
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username    string  `json:"username"`
		Email       string  `json:"email"`
		Password    string  `json:"password"`
		DisplayName *string `json:"display_name"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	auth.ValidateRegistration(v, input.Username, input.Email, input.Password)
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	p, err := app.authService.Register(r.Context(), store.NewUser{
		Username:    input.Username,
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			v.AddError("username", "a user with this username already exists")
			app.failedValidationErrorResponse(w, r, v.Errors)
		case errors.Is(err, store.ErrDuplicateEmail):
			v.AddError("email", "a user with this email address already exists")
			app.failedValidationErrorResponse(w, r, v.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	session, err := app.authService.CreateSession(r.Context(), p.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	app.setSessionCookie(w, session.Token, session.Expiry)

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": p}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Username != "", "username", "must be provided")
	v.Check(input.Password != "", "password", "must be provided")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	p, session, err := app.authService.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			app.invalidCredentialsErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.setSessionCookie(w, session.Token, session.Expiry)

	err = app.writeJSON(w, http.StatusOK, envelope{"user": p}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// logoutUserHandler destroys the session if one exists. It succeeds for
// anonymous callers too so clients can always clear their state.
func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	if token := app.getTokenContext(r); token != "" {
		if err := app.authService.Logout(r.Context(), token); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	app.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	err := app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
