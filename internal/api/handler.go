// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"portfolio-activity/internal/aggregator"
	"portfolio-activity/internal/model"
)

const maxCommitsLimit = 1000

// Source produces the data served by the API. Bulk methods never return nil.
type Source interface {
	ListRepositories(ctx context.Context) []model.Repository
	CollectCommits(ctx context.Context) []model.Commit
	LanguageStats(ctx context.Context) []model.LanguageStat
	CompareCommits(ctx context.Context, repoPath, base, head string) *model.Comparison
	DailyThoughts(ctx context.Context) []model.Thought
}

// Handler is the container for API dependencies.
type Handler struct {
	source Source
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(source Source, logger *slog.Logger) http.Handler {
	h := &Handler{
		source: source,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/repos", h.getRepositories)
		r.Get("/repos/{owner}/{name}/compare/{basehead}", h.compareCommits)
		r.Get("/commits", h.getCommits)
		r.Get("/languages", h.getLanguageStats)
		r.Get("/thoughts", h.getThoughts)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getRepositories returns the account's repositories.
// GET /v1/repos?pinned=true
func (h *Handler) getRepositories(w http.ResponseWriter, r *http.Request) {
	var pinned *bool
	if pinnedStr := r.URL.Query().Get("pinned"); pinnedStr != "" {
		v, err := strconv.ParseBool(pinnedStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'pinned' parameter. Must be a boolean.")
			return
		}
		pinned = &v
	}

	repos := h.source.ListRepositories(r.Context())
	if pinned != nil {
		filtered := make([]model.Repository, 0, len(repos))
		for _, repo := range repos {
			if repo.Pinned == *pinned {
				filtered = append(filtered, repo)
			}
		}
		repos = filtered
	}

	respondWithJSON(w, http.StatusOK, repos)
}

// getCommits returns the owner's commits, newest first.
// GET /v1/commits?limit=N
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 || n > maxCommitsLimit {
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 1000.")
			return
		}
		limit = n
	}

	commits := h.source.CollectCommits(r.Context())
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}

	respondWithJSON(w, http.StatusOK, commits)
}

// getLanguageStats returns language shares, largest first.
// GET /v1/languages
func (h *Handler) getLanguageStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.source.LanguageStats(r.Context()))
}

// getThoughts returns the daily thoughts feed.
// GET /v1/thoughts
func (h *Handler) getThoughts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.source.DailyThoughts(r.Context()))
}

type compareResponse struct {
	Comparison *model.Comparison `json:"comparison"`
	Summary    model.DiffSummary `json:"summary"`
}

// compareCommits returns the diff between two commits and its summed summary.
// GET /v1/repos/{owner}/{name}/compare/{base}...{head}
func (h *Handler) compareCommits(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	name := chi.URLParam(r, "name")

	base, head, err := aggregator.ParseCompareRange(chi.URLParam(r, "basehead"))
	if err != nil {
		h.logger.Debug("Rejected compare request", "owner", owner, "name", name, "error", err)
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp := h.source.CompareCommits(r.Context(), owner+"/"+name, base, head)
	if cmp == nil {
		respondWithError(w, http.StatusNotFound, "Comparison not available")
		return
	}

	respondWithJSON(w, http.StatusOK, compareResponse{
		Comparison: cmp,
		Summary:    cmp.Summary(),
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
