package forms

import (
	"strings"
	"time"

	"github.com/alintm4/django-crud/internal/models"
)

const (
	minTitleLen = 3
	maxTitleLen = 200

	dueDateLayout = "2006-01-02"
)

// TaskForm holds raw field values as submitted. Validate turns them into a
// typed TaskInput or a field-keyed error set.
type TaskForm struct {
	Title       string
	Description string
	Priority    string
	Status      string
	DueDate     string
}

// TaskInput is the validated, typed counterpart of TaskForm.
type TaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Status      models.Status
	DueDate     *time.Time
}

// Validate checks the form for a create (isNew) or update submission. The
// past-due-date rule only applies to new tasks: an existing task may keep a
// due date that has since gone by. Warnings are advisory and never block
// the write.
func (f *TaskForm) Validate(now time.Time, isNew bool) (*TaskInput, []string, Errors) {
	errs := Errors{}
	var warnings []string

	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		errs.Add("title", "Title is required.")
	case len([]rune(title)) < minTitleLen:
		errs.Add("title", "Title must be at least 3 characters long.")
	case len([]rune(title)) > maxTitleLen:
		errs.Add("title", "Title cannot exceed 200 characters.")
	}

	priority := models.PriorityMedium
	if f.Priority != "" {
		p, err := models.ParsePriority(f.Priority)
		if err != nil {
			errs.Add("priority", "Select a valid priority.")
		} else {
			priority = p
		}
	}

	status := models.StatusPending
	if f.Status != "" {
		s, err := models.ParseStatus(f.Status)
		if err != nil {
			errs.Add("status", "Select a valid status.")
		} else {
			status = s
		}
	}

	today := truncateToDay(now)
	var dueDate *time.Time
	if f.DueDate != "" {
		d, err := time.Parse(dueDateLayout, f.DueDate)
		if err != nil {
			errs.Add("due_date", "Enter a valid date (YYYY-MM-DD).")
		} else {
			if isNew && d.Before(today) {
				errs.Add("due_date", "Due date cannot be in the past.")
			}
			dueDate = &d
		}
	}

	if status == models.StatusCompleted && dueDate != nil && dueDate.After(today) {
		warnings = append(warnings, "Task is marked completed but its due date is in the future.")
	}

	if len(errs) > 0 {
		return nil, nil, errs
	}
	return &TaskInput{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Priority:    priority,
		Status:      status,
		DueDate:     dueDate,
	}, warnings, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
