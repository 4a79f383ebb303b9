package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/alintm4/django-crud/internal/config"
	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/models"
)

type userService interface {
	Register(ctx context.Context, f forms.RegisterForm) (*models.User, error)
	Login(ctx context.Context, identifier, password string, remember bool) (string, *models.Session, error)
	Logout(ctx context.Context, token string) error
	SessionUser(ctx context.Context, token string) (*models.User, *models.Session, error)
}

type taskService interface {
	Create(ctx context.Context, userID int64, f forms.TaskForm) (*models.Task, []string, error)
	Get(ctx context.Context, userID, id int64) (*models.Task, error)
	Update(ctx context.Context, userID, id int64, f forms.TaskForm) (*models.Task, []string, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, f models.TaskFilter) (*models.TaskPage, error)
	Dashboard(ctx context.Context, userID int64) (*models.TaskStats, []models.Task, error)
}

type Handler struct {
	UserService userService
	TaskService taskService

	sessionCfg config.SessionConfig
	log        zerolog.Logger
}

func NewHandler(us userService, ts taskService, sessionCfg config.SessionConfig, log zerolog.Logger) *Handler {
	return &Handler{
		UserService: us,
		TaskService: ts,
		sessionCfg:  sessionCfg,
		log:         log,
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionCfg.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
