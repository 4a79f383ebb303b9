package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/models"
	"github.com/alintm4/django-crud/internal/repository"
)

type taskListData struct {
	Page   *models.TaskPage
	Filter models.TaskFilter
	// Pagination links carrying the active filters along.
	PrevURL template.URL
	NextURL template.URL
}

type taskFormData struct {
	Title  string
	Button string
	Action string
}

type dashboardData struct {
	Stats  *models.TaskStats
	Recent []models.Task
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	stats, recent, err := h.TaskService.Dashboard(r.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("loading dashboard")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "dashboard", http.StatusOK, page{Data: dashboardData{Stats: stats, Recent: recent}})
}

// ListTasks renders the filtered, paginated task list. Unrecognized filter
// values in the query string are ignored rather than rejected.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	q := r.URL.Query()

	var filter models.TaskFilter
	if s, err := models.ParseStatus(q.Get("status")); err == nil {
		filter.Status = s
	}
	if p, err := models.ParsePriority(q.Get("priority")); err == nil {
		filter.Priority = p
	}
	filter.Search = strings.TrimSpace(q.Get("search"))
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}

	taskPage, err := h.TaskService.List(r.Context(), user.ID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("listing tasks")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "task_list", http.StatusOK, page{Data: taskListData{
		Page:    taskPage,
		Filter:  filter,
		PrevURL: pageURL(filter, taskPage.Prev()),
		NextURL: pageURL(filter, taskPage.Next()),
	}})
}

func (h *Handler) CreateTaskPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "task_form", http.StatusOK, page{
		Form: forms.TaskForm{Priority: string(models.PriorityMedium), Status: string(models.StatusPending)},
		Data: taskFormData{Title: "Create New Task", Button: "Create Task", Action: "/tasks/create/"},
	})
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	f := taskFormFromRequest(r)

	_, warnings, err := h.TaskService.Create(r.Context(), user.ID, f)
	if err != nil {
		var verrs forms.Errors
		if errors.As(err, &verrs) {
			h.render(w, r, "task_form", http.StatusOK, page{
				Form:   f,
				Errors: verrs,
				Data:   taskFormData{Title: "Create New Task", Button: "Create Task", Action: "/tasks/create/"},
			})
			return
		}
		h.log.Error().Err(err).Msg("creating task")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, flashWith("Task created successfully!", warnings))
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (h *Handler) TaskDetail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	task, err := h.TaskService.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.log.Error().Err(err).Msg("loading task")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "task_detail", http.StatusOK, page{Data: task})
}

func (h *Handler) UpdateTaskPage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	task, err := h.TaskService.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.log.Error().Err(err).Msg("loading task")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	f := forms.TaskForm{
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
	}
	if task.DueDate != nil {
		f.DueDate = task.DueDate.Format("2006-01-02")
	}

	h.render(w, r, "task_form", http.StatusOK, page{
		Form: f,
		Data: taskFormData{Title: "Update Task", Button: "Update Task", Action: taskPath(id) + "update/"},
	})
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}
	f := taskFormFromRequest(r)

	_, warnings, err := h.TaskService.Update(r.Context(), user.ID, id, f)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		var verrs forms.Errors
		if errors.As(err, &verrs) {
			h.render(w, r, "task_form", http.StatusOK, page{
				Form:   f,
				Errors: verrs,
				Data:   taskFormData{Title: "Update Task", Button: "Update Task", Action: taskPath(id) + "update/"},
			})
			return
		}
		h.log.Error().Err(err).Msg("updating task")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, flashWith("Task updated successfully!", warnings))
	http.Redirect(w, r, taskPath(id), http.StatusFound)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	if err := h.TaskService.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.log.Error().Err(err).Msg("deleting task")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "Task deleted.")
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func taskFormFromRequest(r *http.Request) forms.TaskForm {
	return forms.TaskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    r.PostFormValue("priority"),
		Status:      r.PostFormValue("status"),
		DueDate:     r.PostFormValue("due_date"),
	}
}

func taskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10) + "/"
}

// pageURL rebuilds the list URL for another page of the same filtered view.
// Safe to mark as a template URL: every part goes through url.Values
// encoding.
func pageURL(f models.TaskFilter, page int) template.URL {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	q.Set("page", strconv.Itoa(page))
	return template.URL("/tasks/?" + q.Encode())
}

func flashWith(msg string, warnings []string) string {
	if len(warnings) == 0 {
		return msg
	}
	return msg + " " + strings.Join(warnings, " ")
}
