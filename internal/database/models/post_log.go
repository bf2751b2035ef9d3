package models

import "time"

// PostLog stores information about a post published to the channel.
type PostLog struct {
	DraftID        string    `bson:"draft_id"`
	SenderID       int64     `bson:"sender_id"`
	SenderUsername string    `bson:"sender_username,omitempty"`
	Language       string    `bson:"language"`
	Slot           string    `bson:"slot,omitempty"`
	Streamer       string    `bson:"streamer,omitempty"`
	Bet            string    `bson:"bet"`
	Win            string    `bson:"win"`
	Multiplier     string    `bson:"multiplier"`
	Currency       string    `bson:"currency"`
	Category       string    `bson:"category"`
	Placement      string    `bson:"placement"`
	MessageType    string    `bson:"message_type"` // "text", "video" or "document"
	Text           string    `bson:"text"`
	GeneratedAt    time.Time `bson:"generated_at"`
	PublishedAt    time.Time `bson:"published_at"`
	ChannelID      int64     `bson:"channel_id"`
	ChannelPostID  int       `bson:"channel_post_id"`
}
