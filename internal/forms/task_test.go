package forms

import (
	"testing"
	"time"

	"github.com/alintm4/django-crud/internal/models"
)

var formNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func TestTaskFormValid(t *testing.T) {
	f := TaskForm{
		Title:       "Write report",
		Description: "Quarterly numbers",
		Priority:    "high",
		Status:      "in_progress",
		DueDate:     "2024-01-20",
	}
	input, warnings, errs := f.Validate(formNow, true)
	if errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if input.Priority != models.PriorityHigh || input.Status != models.StatusInProgress {
		t.Errorf("unexpected enums: %v %v", input.Priority, input.Status)
	}
	if input.DueDate == nil || !input.DueDate.Equal(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected due date: %v", input.DueDate)
	}
}

func TestTaskFormDefaults(t *testing.T) {
	f := TaskForm{Title: "Buy milk"}
	input, _, errs := f.Validate(formNow, true)
	if errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
	if input.Priority != models.PriorityMedium {
		t.Errorf("default priority = %v, want medium", input.Priority)
	}
	if input.Status != models.StatusPending {
		t.Errorf("default status = %v, want pending", input.Status)
	}
	if input.DueDate != nil {
		t.Errorf("expected nil due date, got %v", input.DueDate)
	}
}

func TestTaskFormFieldRules(t *testing.T) {
	tests := []struct {
		name  string
		form  TaskForm
		isNew bool
		field string
	}{
		{"empty title", TaskForm{Title: ""}, true, "title"},
		{"short title", TaskForm{Title: "ab"}, true, "title"},
		{"whitespace title", TaskForm{Title: "   "}, true, "title"},
		{"unknown priority", TaskForm{Title: "Valid title", Priority: "urgent"}, true, "priority"},
		{"unknown status", TaskForm{Title: "Valid title", Status: "done"}, true, "status"},
		{"malformed due date", TaskForm{Title: "Valid title", DueDate: "20-01-2024"}, true, "due_date"},
		{"past due date on create", TaskForm{Title: "Valid title", DueDate: "2024-01-01"}, true, "due_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errs := tt.form.Validate(formNow, tt.isNew)
			if errs == nil {
				t.Fatal("expected validation errors, got none")
			}
			if !errs.Has(tt.field) {
				t.Fatalf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestTaskFormLongTitle(t *testing.T) {
	long := make([]rune, 201)
	for i := range long {
		long[i] = 'a'
	}
	f := TaskForm{Title: string(long)}
	_, _, errs := f.Validate(formNow, true)
	if errs == nil || !errs.Has("title") {
		t.Fatalf("expected title error, got %v", errs)
	}
}

func TestTaskFormPastDueDateAllowedOnUpdate(t *testing.T) {
	f := TaskForm{Title: "Old task", DueDate: "2024-01-01"}
	input, _, errs := f.Validate(formNow, false)
	if errs != nil {
		t.Fatalf("expected past due date to pass on update, got %v", errs)
	}
	if input.DueDate == nil {
		t.Fatal("due date dropped")
	}
}

func TestTaskFormCompletedWithFutureDueDateWarns(t *testing.T) {
	f := TaskForm{Title: "Done early", Status: "completed", DueDate: "2024-02-01"}
	_, warnings, errs := f.Validate(formNow, true)
	if errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestTaskFormDueTodayAccepted(t *testing.T) {
	f := TaskForm{Title: "Due today", DueDate: "2024-01-10"}
	if _, _, errs := f.Validate(formNow, true); errs != nil {
		t.Fatalf("due date of today should be accepted, got %v", errs)
	}
}
