package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alintm4/django-crud/internal/models"
)

const taskColumns = "id, user_id, title, description, priority, status, due_date, created_at, updated_at"

type TaskRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	query, args, err := r.builder.
		Insert("tasks").
		Columns("user_id", "title", "description", "priority", "status", "due_date").
		Values(t.UserID, t.Title, t.Description, t.Priority, t.Status, t.DueDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t models.Task
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	query, args, err := r.builder.
		Update("tasks").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("priority", t.Priority).
		Set("status", t.Status).
		Set("due_date", t.DueDate).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.builder.
		Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of the owner's tasks matching the filter. Filters
// combine with AND; ordering is newest-first with id as tiebreaker so pages
// stay stable between identical queries. A page number past the end clamps
// to the last page rather than coming back empty.
func (r *TaskRepository) List(ctx context.Context, userID int64, f models.TaskFilter) (*models.TaskPage, error) {
	query, args, err := r.countQuery(userID, f)
	if err != nil {
		return nil, err
	}
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, err
	}

	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	page, pages, offset := paginate(total, pageSize, f.Page)

	query, args, err = r.listQuery(userID, f, uint64(pageSize), uint64(offset))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.TaskPage{
		Tasks:    tasks,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    pages,
	}, nil
}

// Recent returns the owner's newest tasks for the dashboard.
func (r *TaskRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.Task, error) {
	query, args, err := r.listQuery(userID, models.TaskFilter{}, uint64(limit), 0)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TitleExists reports whether the owner already has a task with this title,
// compared case-insensitively.
func (r *TaskRepository) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	query, args, err := r.builder.
		Select("COUNT(*)").
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr("LOWER(title) = LOWER(?)", title)).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats aggregates the owner's tasks for the dashboard. Overdue means the
// due date is strictly before today and the task is not completed.
func (r *TaskRepository) Stats(ctx context.Context, userID int64) (*models.TaskStats, error) {
	var stats models.TaskStats

	query, args, err := r.builder.
		Select("status", "COUNT(*)").
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status models.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusInProgress:
			stats.InProgress = count
		case models.StatusCompleted:
			stats.Completed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query, args, err = r.builder.
		Select("COUNT(*)").
		From("tasks").
		Where(squirrel.Eq{"user_id": userID, "priority": models.PriorityHigh}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&stats.HighPriority); err != nil {
		return nil, err
	}

	query, args, err = r.builder.
		Select("COUNT(*)").
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr("due_date < CURRENT_DATE")).
		Where(squirrel.NotEq{"status": models.StatusCompleted}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&stats.Overdue); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *TaskRepository) listQuery(userID int64, f models.TaskFilter, limit, offset uint64) (string, []interface{}, error) {
	b := r.builder.
		Select(taskColumns).
		From("tasks")
	b = applyFilter(b, userID, f)
	return b.
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
}

func (r *TaskRepository) countQuery(userID int64, f models.TaskFilter) (string, []interface{}, error) {
	b := r.builder.
		Select("COUNT(*)").
		From("tasks")
	return applyFilter(b, userID, f).ToSql()
}

func applyFilter(b squirrel.SelectBuilder, userID int64, f models.TaskFilter) squirrel.SelectBuilder {
	b = b.Where(squirrel.Eq{"user_id": userID})
	if f.Status != "" {
		b = b.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Priority != "" {
		b = b.Where(squirrel.Eq{"priority": f.Priority})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		b = b.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return b
}

// paginate clamps the requested page into [1, pages] for a result set of
// total rows and returns the page, the page count and the row offset.
// pageSize must be positive.
func paginate(total, pageSize, requested int) (page, pages, offset int) {
	pages = (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	page = requested
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return page, pages, (page - 1) * pageSize
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps the keyword for a substring match. LIKE metacharacters
// in the keyword are escaped so they match literally; postgres treats
// backslash as the escape character when no ESCAPE clause is given.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
