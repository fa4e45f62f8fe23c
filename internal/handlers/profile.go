package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/lifecycle"
	"github.com/benvon/questlog/internal/models"
)

// ProfileHandler serves the gamification read models and the preferences
type ProfileHandler struct {
	manager *lifecycle.Manager
	logger  *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(manager *lifecycle.Manager, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers routes on the /api/v1 router
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile/streak", h.GetStreak).Methods("GET")
	r.HandleFunc("/achievements", h.ListAchievements).Methods("GET")
	r.HandleFunc("/achievements/{id}", h.GetAchievement).Methods("GET")
	r.HandleFunc("/missions/today", h.GetTodayMissions).Methods("GET")
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	r.HandleFunc("/preferences", h.UpdatePreferences).Methods("PUT")
}

// GetProfile returns the profile with level progress and the title in ?theme=
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.ProfileView(r.URL.Query().Get("theme"))
	if err != nil {
		respondAppError(w, h.logger, "load profile", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetStreak reports whether the streak can still be extended today
func (h *ProfileHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	st := h.manager.StreakStatus()
	respondJSON(w, http.StatusOK, map[string]any{
		"current_streak_days": st.CurrentStreakDays,
		"alive":               st.Alive,
		"completed_today":     st.CompletedToday,
	})
}

// ListAchievements lists every catalog achievement with its unlock state
func (h *ProfileHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.Achievements())
}

// GetAchievement returns one achievement with its unlock state
func (h *ProfileHandler) GetAchievement(w http.ResponseWriter, r *http.Request) {
	a, err := h.manager.Achievement(mux.Vars(r)["id"])
	if err != nil {
		respondAppError(w, h.logger, "get achievement", err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// GetTodayMissions returns today's missions, generating them on the first request of the day
func (h *ProfileHandler) GetTodayMissions(w http.ResponseWriter, r *http.Request) {
	set, err := h.manager.TodayMissions(r.Context())
	if err != nil {
		respondAppError(w, h.logger, "load daily missions", err)
		return
	}
	respondJSON(w, http.StatusOK, set)
}

// GetPreferences returns the reminder, sync and theme preferences
func (h *ProfileHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.Preferences())
}

// UpdatePreferences replaces the preferences and reschedules timers
func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req models.Preferences
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.manager.UpdatePreferences(r.Context(), req)
	if err != nil {
		respondAppError(w, h.logger, "update preferences", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
