package handlers

import (
	"errors"
	"net/http"

	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/service/users"
)

type loginPageData struct {
	Next string
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/tasks/", http.StatusFound)
		return
	}
	h.render(w, r, "register", http.StatusOK, page{Form: forms.RegisterForm{}})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	f := forms.RegisterForm{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	}

	user, err := h.UserService.Register(r.Context(), f)
	if err != nil {
		var verrs forms.Errors
		if errors.As(err, &verrs) {
			f.Password, f.Confirm = "", ""
			h.render(w, r, "register", http.StatusOK, page{Form: f, Errors: verrs})
			return
		}
		h.log.Error().Err(err).Msg("registering user")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Log the new account straight in.
	token, session, err := h.UserService.Login(r.Context(), user.Username, f.Password, false)
	if err != nil {
		http.Redirect(w, r, "/login/", http.StatusFound)
		return
	}
	h.setSessionCookie(w, token, session.ExpiresAt)
	setFlash(w, "Welcome "+user.Username+"! Your account has been created.")
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/tasks/", http.StatusFound)
		return
	}
	h.render(w, r, "login", http.StatusOK, page{
		Data: loginPageData{Next: safeNext(r.URL.Query().Get("next"))},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	identifier := r.PostFormValue("username")
	password := r.PostFormValue("password")
	remember := r.PostFormValue("remember") != ""
	next := safeNext(r.PostFormValue("next"))

	token, session, err := h.UserService.Login(r.Context(), identifier, password, remember)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			verrs := forms.Errors{}
			verrs.Add("form", "Invalid username or password.")
			h.render(w, r, "login", http.StatusOK, page{
				Errors: verrs,
				Data:   loginPageData{Next: next},
			})
			return
		}
		h.log.Error().Err(err).Msg("logging in user")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token, session.ExpiresAt)
	setFlash(w, "Welcome back!")
	if next == "" {
		next = "/tasks/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.sessionToken(r); token != "" {
		if err := h.UserService.Logout(r.Context(), token); err != nil {
			h.log.Warn().Err(err).Msg("deleting session")
		}
	}
	h.clearSessionCookie(w)
	setFlash(w, "You have been logged out.")
	http.Redirect(w, r, "/login/", http.StatusFound)
}

func (h *Handler) loggedIn(r *http.Request) bool {
	token := h.sessionToken(r)
	if token == "" {
		return false
	}
	_, _, err := h.UserService.SessionUser(r.Context(), token)
	return err == nil
}
