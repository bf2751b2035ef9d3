package database

import (
	"context"

	"winposts-bot/internal/database/models"
)

// PostLogger records posts published to the channel.
type PostLogger interface {
	LogPublishedPost(ctx context.Context, entry models.PostLog) error
}

// UserActionLogger records operator actions.
type UserActionLogger interface {
	LogUserAction(userID int64, action string, details any) error
}

// UserRepository keeps operator profiles up to date.
type UserRepository interface {
	UpdateUser(ctx context.Context, userID int64, username, firstName, lastName string, isAdmin bool, action string) error
}
