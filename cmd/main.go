package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/alintm4/django-crud/internal/config"
	"github.com/alintm4/django-crud/internal/handlers"
	"github.com/alintm4/django-crud/internal/repository"
	"github.com/alintm4/django-crud/internal/service/tasks"
	"github.com/alintm4/django-crud/internal/service/users"
	"github.com/alintm4/django-crud/internal/utils"
	"github.com/alintm4/django-crud/migrations"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.MustLoad()

	conn, err := repository.NewConnection(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer conn.Close()
	logger.Info().Msg("connected to postgres")

	if err := migrations.Apply(ctx, conn); err != nil {
		logger.Fatal().Err(err).Msg("applying migrations")
	}

	userRepo := repository.NewUserRepository(conn)
	taskRepo := repository.NewTaskRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	authManager := utils.NewAuthManager(cfg.Session.Secret)

	userService := users.NewService(userRepo, sessionRepo, authManager, cfg.Session, logger)
	taskService := tasks.NewService(taskRepo, cfg.Tasks.PageSize, logger)

	h := handlers.NewHandler(userService, taskService, cfg.Session, logger)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/register/", h.RegisterPage)
	router.Post("/register/", h.Register)
	router.Get("/login/", h.LoginPage)
	router.Post("/login/", h.Login)

	router.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(h.CheckCSRF)

		r.Get("/", h.Dashboard)
		r.Get("/logout/", h.Logout)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Get("/create/", h.CreateTaskPage)
			r.Post("/create/", h.CreateTask)
			r.Get("/{id}/", h.TaskDetail)
			r.Get("/{id}/update/", h.UpdateTaskPage)
			r.Post("/{id}/update/", h.UpdateTask)
			r.Post("/{id}/delete/", h.DeleteTask)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("start listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-done
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
