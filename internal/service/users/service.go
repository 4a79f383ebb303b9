package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alintm4/django-crud/internal/config"
	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/models"
	"github.com/alintm4/django-crud/internal/repository"
	"github.com/alintm4/django-crud/internal/utils"
)

var (
	// ErrInvalidCredentials deliberately does not say which part was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no active session")
)

type userRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type sessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type Service struct {
	users    userRepository
	sessions sessionRepository
	auth     *utils.AuthManager
	cfg      config.SessionConfig
	log      zerolog.Logger
}

func NewService(users userRepository, sessions sessionRepository, auth *utils.AuthManager, cfg config.SessionConfig, log zerolog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		auth:     auth,
		cfg:      cfg,
		log:      log,
	}
}

// Register validates the submitted form and creates the account. Validation
// failures, including username/email collisions, come back as forms.Errors;
// anything else is a server-side failure.
func (s *Service) Register(ctx context.Context, f forms.RegisterForm) (*models.User, error) {
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}

	hash, err := utils.HashPassword(f.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     f.Username,
		Email:        f.Email,
		PasswordHash: hash,
	}
	err = s.users.Create(ctx, user)
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		errs := forms.Errors{}
		errs.Add("username", "A user with this username already exists.")
		return nil, errs
	case errors.Is(err, repository.ErrEmailTaken):
		errs := forms.Errors{}
		errs.Add("email", "A user with this email already exists.")
		return nil, errs
	case err != nil:
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login verifies credentials and opens a session. The identifier may be a
// username or an email address. The returned token is the signed cookie
// value.
func (s *Service) Login(ctx context.Context, identifier, password string, remember bool) (string, *models.Session, error) {
	user, err := s.users.GetByUsername(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) && strings.ContainsRune(identifier, '@') {
		user, err = s.users.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	if n, err := s.sessions.DeleteExpired(ctx); err != nil {
		s.log.Warn().Err(err).Msg("reaping expired sessions")
	} else if n > 0 {
		s.log.Debug().Int64("count", n).Msg("reaped expired sessions")
	}

	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}

	id, err := utils.NewSessionID()
	if err != nil {
		return "", nil, err
	}
	csrf, err := utils.NewCSRFToken()
	if err != nil {
		return "", nil, err
	}

	session := &models.Session{
		ID:        id,
		UserID:    user.ID,
		CSRFToken: csrf,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}

	token, err := s.auth.IssueToken(session)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Bool("remember", remember).Msg("user logged in")
	return token, session, nil
}

// Logout drops the stored session. A garbage or already-expired token is
// treated as logged out.
func (s *Service) Logout(ctx context.Context, token string) error {
	id, err := s.auth.ParseToken(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, id)
}

// SessionUser resolves a cookie token into the logged-in user. Any failure
// along the way means there is no session.
func (s *Service) SessionUser(ctx context.Context, token string) (*models.User, *models.Session, error) {
	id, err := s.auth.ParseToken(token)
	if err != nil {
		return nil, nil, ErrNoSession
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, ErrNoSession
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, ErrNoSession
	}
	return user, session, nil
}
