package handlers

import "encoding/json"

// RecordActivityRequest is the request for recording a study activity.
type RecordActivityRequest struct {
	Body struct {
		Identifier string `doc:"Identity the activity belongs to" example:"student-42" json:"identifier" minLength:"1"`
	}
}

// StreakResponse reports an identity's current streak length.
type StreakResponse struct {
	Body struct {
		Identifier string `doc:"Identity the streak belongs to"   example:"student-42" json:"identifier"`
		Streak     int    `doc:"Consecutive study days"           example:"7"          json:"streak"`
	}
}

// GetStreakRequest is the request for reading a streak.
type GetStreakRequest struct {
	Identifier string `doc:"Identity to look up" example:"student-42" path:"identifier"`
}

// PutSessionRequest is the request for caching a session payload.
type PutSessionRequest struct {
	Identifier string `doc:"Identity the session belongs to" example:"student-42" path:"identifier"`
	Body       struct {
		Payload    json.RawMessage `doc:"Opaque session payload" json:"payload"`
		TTLSeconds int             `doc:"Session lifetime in seconds, default 1800" example:"1800" json:"ttlSeconds,omitempty" minimum:"0"`
	}
}

// GetSessionRequest is the request for reading a cached session.
type GetSessionRequest struct {
	Identifier string `doc:"Identity to look up" example:"student-42" path:"identifier"`
}

// SessionResponse carries a cached session payload.
type SessionResponse struct {
	Body struct {
		Payload json.RawMessage `doc:"Opaque session payload" json:"payload"`
	}
}

// DeleteSessionRequest is the request for dropping a cached session.
type DeleteSessionRequest struct {
	Identifier string `doc:"Identity to drop" example:"student-42" path:"identifier"`
}

// UpdateScoreRequest is the request for recording a leaderboard score.
type UpdateScoreRequest struct {
	Body struct {
		Category   string  `doc:"Leaderboard category"       example:"math"       json:"category"   minLength:"1"`
		Identifier string  `doc:"Identity the score belongs" example:"student-42" json:"identifier" minLength:"1"`
		Score      float64 `doc:"New score, replaces any prior score" example:"420" json:"score"`
	}
}

// TopNRequest is the request for the top of a category leaderboard.
type TopNRequest struct {
	Category string `doc:"Leaderboard category"          example:"math" path:"category"`
	Limit    int64  `doc:"Maximum entries to return"     example:"10"   query:"limit" default:"10" minimum:"1" maximum:"100"`
}

// LeaderboardResponse carries ranked leaderboard entries.
type LeaderboardResponse struct {
	Body struct {
		Category string             `doc:"Leaderboard category" example:"math" json:"category"`
		Entries  []LeaderboardEntry `doc:"Entries in descending score order" json:"entries"`
	}
}

// LeaderboardEntry is one ranked identity.
type LeaderboardEntry struct {
	ID    string  `doc:"Identity"      example:"student-42" json:"id"`
	Score float64 `doc:"Current score" example:"420"        json:"score"`
}

// RankRequest is the request for an identity's rank in a category.
type RankRequest struct {
	Category   string `doc:"Leaderboard category" example:"math"       path:"category"`
	Identifier string `doc:"Identity to look up"  example:"student-42" path:"identifier"`
}

// RankResponse reports an identity's 1-based rank.
type RankResponse struct {
	Body struct {
		Identifier string `doc:"Identity"     example:"student-42" json:"identifier"`
		Rank       int64  `doc:"1-based rank" example:"3"          json:"rank"`
	}
}
