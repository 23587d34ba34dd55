package console

import (
	"context"
	"log"
	"net/http"

	"github.com/ansycloud/console/sdk"
	"github.com/ansycloud/console/sdk/authn"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Session is the console's view of the process-wide session.
type Session interface {
	authn.Session
	CookieChecker
	Login(context.Context, authn.Credentials) error
}

type credentialsForm struct {
	Username string
}

type authEndpoints struct {
	*BaseEndpoints
	session      Session
	registration authn.RegistrationClient
	loginPath    string
}

func (a *authEndpoints) Register(router *mux.Router) {
	router.HandleFunc(a.loginPath, a.loginForm).Methods(http.MethodGet)
	router.HandleFunc(a.loginPath, a.login).Methods(http.MethodPost)
	router.HandleFunc("/logout", a.logout).Methods(http.MethodPost)
	router.HandleFunc("/register", a.registerForm).Methods(http.MethodGet)
	router.HandleFunc("/register", a.register).Methods(http.MethodPost)
}

func (a *authEndpoints) loginForm(w http.ResponseWriter, r *http.Request) {
	a.Renderer.Render(
		w,
		r,
		http.StatusOK,
		"login.html",
		Page{Title: "Log in", Data: credentialsForm{}},
	)
}

func (a *authEndpoints) login(w http.ResponseWriter, r *http.Request) {
	creds := authn.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := a.session.Login(r.Context(), creds); err != nil {
		statusCode := http.StatusInternalServerError
		msg := "Login failed. Please try again later."
		if authErr, ok :=
			errors.Cause(err).(*sdk.ErrAuthenticationFailed); ok {
			statusCode = http.StatusUnauthorized
			msg = authErr.Error()
		} else {
			log.Println(errors.Wrap(err, "error logging in"))
		}
		a.Renderer.Render(
			w,
			r,
			statusCode,
			"login.html",
			Page{
				Title: "Log in",
				Error: msg,
				Data:  credentialsForm{Username: creds.Username},
			},
		)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *authEndpoints) logout(w http.ResponseWriter, r *http.Request) {
	a.session.Logout(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, a.loginPath, http.StatusSeeOther)
}

func (a *authEndpoints) registerForm(w http.ResponseWriter, r *http.Request) {
	a.Renderer.Render(
		w,
		r,
		http.StatusOK,
		"register.html",
		Page{Title: "Register", Data: credentialsForm{}},
	)
}

func (a *authEndpoints) register(w http.ResponseWriter, r *http.Request) {
	creds := authn.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	err := creds.ValidateForRegistration(r.PostFormValue("confirmPassword"))
	if err == nil {
		err = a.registration.Register(r.Context(), creds)
	}
	if err != nil {
		statusCode, apiErr := apiErrorFor(err)
		a.Renderer.Render(
			w,
			r,
			statusCode,
			"register.html",
			Page{
				Title: "Register",
				Error: apiErr.Error(),
				Data:  credentialsForm{Username: creds.Username},
			},
		)
		return
	}
	http.Redirect(w, r, a.loginPath, http.StatusSeeOther)
}
