package models

import "time"

// Session is the stored form of a generation session. Amounts are kept as decimal strings.
type Session struct {
	ChatID            int64       `bson:"_id"`
	SessionID         string      `bson:"session_id"`
	Language          string      `bson:"language"`
	LinkFormatCounter int         `bson:"link_format_counter"`
	RecentCategories  []int       `bson:"recent_categories,omitempty"`
	BonusHistory      []string    `bson:"bonus_history,omitempty"`
	HistoryCapacity   int         `bson:"history_capacity"`
	Queue             []QueuedWin `bson:"queue,omitempty"`
	Bonus             *Bonus      `bson:"bonus,omitempty"`
	AwaitingBonus     bool        `bson:"awaiting_bonus"`
	PostsGenerated    int         `bson:"posts_generated"`
	CreatedAt         time.Time   `bson:"created_at"`
	UpdatedAt         time.Time   `bson:"updated_at"`
}

// QueuedWin is a stored win record waiting for generation.
type QueuedWin struct {
	Slot               string `bson:"slot,omitempty"`
	Streamer           string `bson:"streamer,omitempty"`
	Bet                string `bson:"bet"`
	Win                string `bson:"win"`
	Multiplier         string `bson:"multiplier"`
	ExplicitMultiplier bool   `bson:"explicit_multiplier,omitempty"`
	Currency           string `bson:"currency"`
	Source             string `bson:"source"`
	FileID             string `bson:"file_id,omitempty"`
	MediaKind          string `bson:"media_kind,omitempty"`
}

// Bonus is the stored bonus link and description.
type Bonus struct {
	URL         string `bson:"url"`
	Description string `bson:"description"`
}
