package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"winposts-bot/internal/database/models"
)

const writeTimeout = 5 * time.Second

// MongoLogger stores operator actions, profiles and published posts in MongoDB.
type MongoLogger struct {
	db *mongo.Database
}

// NewMongoLogger creates a logger over a connected database.
func NewMongoLogger(db *mongo.Database) *MongoLogger {
	return &MongoLogger{db: db}
}

// LogUserAction writes a user action entry.
func (m *MongoLogger) LogUserAction(userID int64, action string, details any) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	_, err := m.db.Collection(userActionsCollection).InsertOne(ctx, bson.M{
		"user_id": userID,
		"action":  action,
		"details": details,
		"time":    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert user action log for user %d: %w", userID, err)
	}
	return nil
}

// LogPublishedPost writes an entry for a post published to the channel.
func (m *MongoLogger) LogPublishedPost(ctx context.Context, entry models.PostLog) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := m.db.Collection(postLogsCollection).InsertOne(ctx, entry); err != nil {
		err = fmt.Errorf("failed to insert post log into collection %q: %w", postLogsCollection, err)
		log.Error().Err(err).Str("draft_id", entry.DraftID).Msg("post log not stored")
		return err
	}
	return nil
}

// UpdateUser upserts the operator profile and counts the action.
func (m *MongoLogger) UpdateUser(ctx context.Context, userID int64, username, firstName, lastName string, isAdmin bool, action string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"username":    username,
			"first_name":  firstName,
			"last_name":   lastName,
			"is_admin":    isAdmin,
			"last_seen":   now,
			"last_action": action,
		},
		"$inc": bson.M{"actions_count": 1},
		"$setOnInsert": bson.M{
			"first_seen": now,
			"user_id":    userID,
		},
	}

	_, err := m.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"user_id": userID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return nil
}
