package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the coordination layer's operations.
func RegisterRoutes(api huma.API, h *ProgressHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/activity",
		Summary:     "Record study activity",
		Description: "Records a qualifying study activity and returns the resulting streak.",
		Tags:        []string{"Streaks"},
	}, h.RecordActivity)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/streaks/{identifier}",
		Summary: "Get current streak",
		Tags:    []string{"Streaks"},
	}, h.GetStreak)

	huma.Register(api, huma.Operation{
		Method:        http.MethodPut,
		Path:          "/sessions/{identifier}",
		Summary:       "Cache session payload",
		Description:   "Stores an opaque session payload, fully replacing any prior one.",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, h.PutSession)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/sessions/{identifier}",
		Summary: "Get cached session payload",
		Tags:    []string{"Sessions"},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		Method:        http.MethodDelete,
		Path:          "/sessions/{identifier}",
		Summary:       "Delete cached session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteSession)

	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/scores",
		Summary:       "Update leaderboard score",
		Description:   "Replaces the identity's score in the category. Last write wins.",
		Tags:          []string{"Leaderboards"},
		DefaultStatus: http.StatusNoContent,
	}, h.UpdateScore)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/leaderboards/{category}",
		Summary: "Get top leaderboard entries",
		Tags:    []string{"Leaderboards"},
	}, h.TopN)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/leaderboards/{category}/rank/{identifier}",
		Summary:     "Get identity rank",
		Description: "Linear scan over the category set; cost grows with set size.",
		Tags:        []string{"Leaderboards"},
	}, h.Rank)
}
