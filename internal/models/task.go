package models

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overdue reports whether the task's due date has passed without the task
// being completed. Tasks without a due date are never overdue.
func (t Task) Overdue(today time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return t.DueDate.Before(day)
}

// TaskFilter narrows a task listing. Zero values mean the filter is not
// applied. Search matches title and description case-insensitively.
type TaskFilter struct {
	Status   Status
	Priority Priority
	Search   string
	Page     int
	PageSize int
}

// TaskPage is one page of a filtered listing plus what is needed to draw
// page controls.
type TaskPage struct {
	Tasks    []Task
	Page     int
	PageSize int
	Total    int
	Pages    int
}

func (p *TaskPage) HasPrev() bool { return p.Page > 1 }
func (p *TaskPage) HasNext() bool { return p.Page < p.Pages }
func (p *TaskPage) Prev() int     { return p.Page - 1 }
func (p *TaskPage) Next() int     { return p.Page + 1 }

// TaskStats is the per-user dashboard aggregate. Overdue is derived at query
// time, never stored.
type TaskStats struct {
	Total        int
	Pending      int
	InProgress   int
	Completed    int
	HighPriority int
	Overdue      int
}
