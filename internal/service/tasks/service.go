package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/models"
	"github.com/alintm4/django-crud/internal/repository"
)

type taskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, userID int64, f models.TaskFilter) (*models.TaskPage, error)
	Recent(ctx context.Context, userID int64, limit int) ([]models.Task, error)
	TitleExists(ctx context.Context, userID int64, title string) (bool, error)
	Stats(ctx context.Context, userID int64) (*models.TaskStats, error)
}

const recentTasks = 5

type Service struct {
	repo     taskRepository
	pageSize int
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo taskRepository, pageSize int, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		pageSize: pageSize,
		log:      log,
		now:      time.Now,
	}
}

// Create validates the form and stores a new task for userID. The returned
// warnings (duplicate title, completed with future due date) are advisory
// and never block the write.
func (s *Service) Create(ctx context.Context, userID int64, f forms.TaskForm) (*models.Task, []string, error) {
	input, warnings, errs := f.Validate(s.now(), true)
	if errs != nil {
		return nil, nil, errs
	}

	exists, err := s.repo.TitleExists(ctx, userID, input.Title)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		warnings = append(warnings, "You already have a task with this title.")
	}

	task := &models.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, nil, err
	}

	s.log.Info().Int64("user_id", userID).Int64("task_id", task.ID).Msg("task created")
	return task, warnings, nil
}

// Get returns the task only if userID owns it. A foreign owner looks exactly
// like a missing task.
func (s *Service) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return task, nil
}

// Update re-validates every field and overwrites the task in place. The
// past-due-date rule is relaxed here: an existing task may keep an old date.
func (s *Service) Update(ctx context.Context, userID, id int64, f forms.TaskForm) (*models.Task, []string, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	input, warnings, errs := f.Validate(s.now(), false)
	if errs != nil {
		return nil, nil, errs
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Priority = input.Priority
	task.Status = input.Status
	task.DueDate = input.DueDate

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, nil, err
	}

	s.log.Info().Int64("user_id", userID).Int64("task_id", task.ID).Msg("task updated")
	return task, warnings, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Int64("task_id", id).Msg("task deleted")
	return nil
}

// List returns one page of the owner's tasks. The page size comes from
// configuration unless the filter carries its own.
func (s *Service) List(ctx context.Context, userID int64, f models.TaskFilter) (*models.TaskPage, error) {
	if f.PageSize < 1 {
		f.PageSize = s.pageSize
	}
	return s.repo.List(ctx, userID, f)
}

// Dashboard returns the owner's aggregate counts and most recent tasks.
func (s *Service) Dashboard(ctx context.Context, userID int64) (*models.TaskStats, []models.Task, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	recent, err := s.repo.Recent(ctx, userID, recentTasks)
	if err != nil {
		return nil, nil, err
	}
	return stats, recent, nil
}
