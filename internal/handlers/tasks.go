package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/lifecycle"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/validation"
)

// TaskHandler handles task requests
type TaskHandler struct {
	manager *lifecycle.Manager
	logger  *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(manager *lifecycle.Manager, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers task routes on a router already prefixed with /tasks
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
}

// TaskMutationResponse is returned by update and complete; Completion is set
// only when the request completed the task
type TaskMutationResponse struct {
	Task       *models.Task                `json:"task"`
	Completion *lifecycle.CompletionResult `json:"completion,omitempty"`
}

// ListTasks lists tasks, optionally filtered by status and category_id
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter lifecycle.TaskFilter
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateTaskStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		status := models.TaskStatus(s)
		filter.Status = &status
	}
	if c := r.URL.Query().Get("category_id"); c != "" {
		filter.CategoryID = &c
	}

	respondJSON(w, http.StatusOK, h.manager.List(filter))
}

// CreateTask creates a task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req lifecycle.CreateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.manager.Create(r.Context(), req)
	if err != nil {
		respondAppError(w, h.logger, "create task", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// GetTask returns one task
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := h.manager.Get(id)
	if err != nil {
		respondAppError(w, h.logger, "get task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update; setting status to completed runs the
// completion pipeline like CompleteTask
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req lifecycle.UpdateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}
	task, res, err := h.manager.Update(r.Context(), id, req)
	if err != nil {
		respondAppError(w, h.logger, "update task", err)
		return
	}
	respondJSON(w, http.StatusOK, TaskMutationResponse{Task: task, Completion: res})
}

// CompleteTask completes a task; completing it again is a no-op
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, res, err := h.manager.Complete(r.Context(), id)
	if err != nil {
		respondAppError(w, h.logger, "complete task", err)
		return
	}
	respondJSON(w, http.StatusOK, TaskMutationResponse{Task: task, Completion: res})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		respondAppError(w, h.logger, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}
