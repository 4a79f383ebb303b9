package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alintm4/django-crud/internal/models"
	"github.com/alintm4/django-crud/internal/utils"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeySession
)

// RequireAuth resolves the session cookie into a user and puts both on the
// request context. Without a live session the request is bounced to the
// login page with the original path in ?next=.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.sessionToken(r)
		if token == "" {
			redirectToLogin(w, r)
			return
		}

		user, session, err := h.UserService.SessionUser(r.Context(), token)
		if err != nil {
			h.clearSessionCookie(w)
			redirectToLogin(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		ctx = context.WithValue(ctx, ctxKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckCSRF rejects state-changing requests whose form token does not match
// the one stored with the session. Runs after RequireAuth.
func (h *Handler) CheckCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			session := sessionFrom(r.Context())
			if session == nil || !utils.ValidCSRF(r.PostFormValue("csrf_token"), session.CSRFToken) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login/?next="+url.QueryEscape(next), http.StatusFound)
}

func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKeyUser).(*models.User)
	return user
}

func sessionFrom(ctx context.Context) *models.Session {
	session, _ := ctx.Value(ctxKeySession).(*models.Session)
	return session
}

// safeNext only accepts local paths, so the login redirect cannot be abused
// to send users off-site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
