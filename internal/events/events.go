// Package events defines the activity events exchanged between the request
// path and the background worker, and the handlers that apply them.
package events

import "time"

// Topics for the activity event pipeline.
const (
	TopicActivityRecorded = "activity.recorded"
	TopicScoreUpdated     = "score.updated"
)

// ActivityRecorded is emitted when an identity completes a qualifying
// study activity. The worker folds it into the identity's streak.
type ActivityRecorded struct {
	Identifier string    `json:"identifier"`
	OccurredAt time.Time `json:"occurredAt"`
	ClientIP   string    `json:"clientIp,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
}

// ScoreUpdated is emitted when an identity earns a new score in a
// category. The worker applies it to the category leaderboard.
type ScoreUpdated struct {
	Category   string    `json:"category"`
	Identifier string    `json:"identifier"`
	Score      float64   `json:"score"`
	OccurredAt time.Time `json:"occurredAt"`
}
