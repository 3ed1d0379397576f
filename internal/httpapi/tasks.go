package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/countdown"
	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// taskView is a task as served to clients.
type taskView struct {
	*task.Task
	Countdown string `json:"countdown,omitempty"`
	Overdue   bool   `json:"overdue"`
	Notified  bool   `json:"notified"`
}

type listTasksResponse struct {
	Tasks []taskView `json:"tasks"`
}

type createTaskRequest struct {
	Text               string   `json:"text"`
	Due                string   `json:"due"`
	Priority           string   `json:"priority"`
	Tags               []string `json:"tags"`
	NotificationOffset string   `json:"notification_offset"`
	Notes              string   `json:"notes"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) view(t *task.Task) taskView {
	v := taskView{Task: t, Notified: s.engine.Notified(t.ID)}
	if t.DueDate != nil && !t.Completed {
		now := s.now()
		v.Countdown = countdown.Label(t.DueDate.Time(), now)
		v.Overdue = countdown.Overdue(t.DueDate.Time(), now)
	}
	return v
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	includeCompleted := r.URL.Query().Get("completed") != "false"

	out := listTasksResponse{Tasks: make([]taskView, 0, len(tasks))}
	for _, t := range tasks {
		if t.Completed && !includeCompleted {
			continue
		}
		out.Tasks = append(out.Tasks, s.view(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.view(t))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, clierr.InvalidInput, err.Error())
		return
	}

	t := &task.Task{
		Text:     strings.TrimSpace(req.Text),
		Priority: strings.TrimSpace(req.Priority),
		Tags:     req.Tags,
		Notes:    req.Notes,
	}
	if err := task.ValidateText(t.Text); err != nil {
		s.respondStoreError(w, err)
		return
	}
	if due := strings.TrimSpace(req.Due); due != "" {
		at, timed, err := date.ParseDue(due, s.now())
		if err != nil {
			s.respondStoreError(w, task.FormatDueDate(due, err))
			return
		}
		t.DueDate, t.IncludeTime = at.Ptr(), timed
	}
	if req.NotificationOffset != "" {
		offset, err := task.ParseOffset(req.NotificationOffset)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		t.NotificationOffset = offset
	}

	if err := s.store.Add(r.Context(), t); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.engine.Rearm()
	respondJSON(w, http.StatusCreated, s.view(t))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	task.Toggle(t, s.now())
	if err := s.store.Update(r.Context(), t); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.engine.Rearm()
	respondJSON(w, http.StatusOK, s.view(t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.engine.Rearm()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, errEmptyBody) {
			respondError(w, http.StatusBadRequest, clierr.InvalidInput, "ids is required")
			return
		}
		respondError(w, http.StatusBadRequest, clierr.InvalidInput, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, clierr.InvalidInput, "ids is required")
		return
	}

	if err := store.ReorderIDs(r.Context(), s.store, req.IDs); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.engine.Rearm()
	s.handleListTasks(w, r)
}
