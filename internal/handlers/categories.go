package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/lifecycle"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	manager *lifecycle.Manager
	logger  *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(manager *lifecycle.Manager, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers category routes on a router already prefixed with /categories
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.CreateCategory).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteCategory).Methods("DELETE")
}

// ListCategories lists categories by name
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.ListCategories())
}

// CreateCategory creates a category
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req lifecycle.CreateCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.manager.CreateCategory(r.Context(), req)
	if err != nil {
		respondAppError(w, h.logger, "create category", err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// DeleteCategory deletes a category; tasks referencing it keep the reference
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondAppError(w, h.logger, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
