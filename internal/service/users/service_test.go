package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alintm4/django-crud/internal/config"
	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/models"
	"github.com/alintm4/django-crud/internal/repository"
	"github.com/alintm4/django-crud/internal/utils"
)

type fakeUserRepo struct {
	users     map[int64]*models.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return repository.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrEmailTaken
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	s.CreatedAt = time.Now()
	clone := *s
	r.sessions[s.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) Get(_ context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, repository.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(time.Now()) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:      "test-secret",
		CookieName:  "session",
		TTL:         12 * time.Hour,
		RememberTTL: 14 * 24 * time.Hour,
	}
}

func newTestService() (*Service, *fakeUserRepo, *fakeSessionRepo) {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	auth := utils.NewAuthManager("test-secret")
	svc := NewService(userRepo, sessionRepo, auth, testSessionConfig(), zerolog.Nop())
	return svc, userRepo, sessionRepo
}

func registerForm() forms.RegisterForm {
	return forms.RegisterForm{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
		Confirm:  "correct-horse-battery",
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	svc, userRepo, _ := newTestService()

	user, err := svc.Register(context.Background(), registerForm())
	if err != nil {
		t.Fatal(err)
	}
	stored := userRepo.users[user.ID]
	if stored.PasswordHash == "correct-horse-battery" {
		t.Fatal("raw password stored")
	}
	if !utils.CheckPasswordHash("correct-horse-battery", stored.PasswordHash) {
		t.Fatal("stored hash does not verify")
	}
}

func TestRegisterRejectsAllDigitPassword(t *testing.T) {
	svc, _, _ := newTestService()

	f := registerForm()
	f.Password, f.Confirm = "12345678", "12345678"
	_, err := svc.Register(context.Background(), f)

	var verrs forms.Errors
	if !errors.As(err, &verrs) || !verrs.Has("password") {
		t.Fatalf("expected password error, got %v", err)
	}
}

func TestRegisterDuplicateIsFieldError(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, registerForm())
	if err != nil {
		t.Fatal(err)
	}

	// Same username again.
	f := registerForm()
	f.Email = "other@example.com"
	_, err = svc.Register(ctx, f)
	var verrs forms.Errors
	if !errors.As(err, &verrs) || !verrs.Has("username") {
		t.Fatalf("expected username error, got %v", err)
	}

	// Same email, different casing.
	f = registerForm()
	f.Username = "bob"
	f.Email = "ALICE@example.com"
	_, err = svc.Register(ctx, f)
	if !errors.As(err, &verrs) || !verrs.Has("email") {
		t.Fatalf("expected email error, got %v", err)
	}

	// The first account is unaffected.
	if _, err := userRepo.GetByID(ctx, first.ID); err != nil {
		t.Fatalf("first account gone: %v", err)
	}
}

func TestLoginGenericErrorForBadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerForm()); err != nil {
		t.Fatal(err)
	}

	_, _, wrongPass := svc.Login(ctx, "alice", "not-the-password", false)
	_, _, noUser := svc.Login(ctx, "mallory", "whatever-it-is", false)
	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", wrongPass)
	}
	if !errors.Is(noUser, ErrInvalidCredentials) {
		t.Errorf("unknown user: %v", noUser)
	}
	// Neither case says which part was wrong.
	if wrongPass.Error() != noUser.Error() {
		t.Error("credential errors are distinguishable")
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerForm()); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(ctx, "alice", "correct-horse-battery", false); err != nil {
		t.Errorf("login by username: %v", err)
	}
	if _, _, err := svc.Login(ctx, "Alice@Example.com", "correct-horse-battery", false); err != nil {
		t.Errorf("login by email: %v", err)
	}
}

func TestRememberMeExtendsSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerForm()); err != nil {
		t.Fatal(err)
	}

	_, short, err := svc.Login(ctx, "alice", "correct-horse-battery", false)
	if err != nil {
		t.Fatal(err)
	}
	_, long, err := svc.Login(ctx, "alice", "correct-horse-battery", true)
	if err != nil {
		t.Fatal(err)
	}

	if !long.ExpiresAt.After(short.ExpiresAt.Add(24 * time.Hour)) {
		t.Errorf("remember-me session not extended: %v vs %v", long.ExpiresAt, short.ExpiresAt)
	}
}

func TestSessionRoundTripAndLogout(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerForm())
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := svc.Login(ctx, "alice", "correct-horse-battery", false)
	if err != nil {
		t.Fatal(err)
	}

	user, session, err := svc.SessionUser(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != registered.ID {
		t.Errorf("session resolved to user %d, want %d", user.ID, registered.ID)
	}
	if session.CSRFToken == "" {
		t.Error("session has no CSRF token")
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.SessionUser(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Errorf("after logout: %v, want ErrNoSession", err)
	}
}

func TestSessionUserRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newTestService()
	if _, _, err := svc.SessionUser(context.Background(), "not-a-token"); !errors.Is(err, ErrNoSession) {
		t.Errorf("garbage token: %v, want ErrNoSession", err)
	}
}
