package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"winposts-bot/internal/bonus"
	"winposts-bot/internal/database/models"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
)

// MongoSessionRepository stores generation sessions, one document per chat.
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a session repository over db.
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{collection: db.Collection(sessionsCollection)}
}

// Load returns the chat's session or session.ErrNotFound.
func (r *MongoSessionRepository) Load(ctx context.Context, chatID int64) (*session.GenerationSession, error) {
	var doc models.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": chatID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session for chat %d: %w", chatID, err)
	}
	return sessionFromDoc(doc)
}

// Save replaces the stored session, creating it when missing.
func (r *MongoSessionRepository) Save(ctx context.Context, s *session.GenerationSession) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": s.ChatID},
		sessionToDoc(s),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save session for chat %d: %w", s.ChatID, err)
	}
	return nil
}

// Delete removes the chat's session. A missing session is reported as session.ErrNotFound.
func (r *MongoSessionRepository) Delete(ctx context.Context, chatID int64) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": chatID})
	if err != nil {
		return fmt.Errorf("failed to delete session for chat %d: %w", chatID, err)
	}
	if res.DeletedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}

func sessionToDoc(s *session.GenerationSession) models.Session {
	h := s.History()
	doc := models.Session{
		ChatID:            s.ChatID,
		SessionID:         s.ID,
		Language:          s.Language,
		LinkFormatCounter: s.LinkFormatCounter,
		RecentCategories:  s.RecentCategories,
		BonusHistory:      h.Entries,
		HistoryCapacity:   h.Capacity,
		AwaitingBonus:     s.AwaitingBonus,
		PostsGenerated:    s.PostsGenerated,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.Bonus != nil {
		doc.Bonus = &models.Bonus{URL: s.Bonus.URL, Description: s.Bonus.Description}
	}
	for _, w := range s.Records {
		rec := w.Record
		doc.Queue = append(doc.Queue, models.QueuedWin{
			Slot:               rec.Slot,
			Streamer:           rec.Streamer,
			Bet:                rec.Bet.String(),
			Win:                rec.Win.String(),
			Multiplier:         rec.Multiplier.String(),
			ExplicitMultiplier: rec.ExplicitMultiplier,
			Currency:           string(rec.Currency),
			Source:             string(rec.Source),
			FileID:             w.FileID,
			MediaKind:          string(w.Kind),
		})
	}
	return doc
}

func sessionFromDoc(doc models.Session) (*session.GenerationSession, error) {
	history := session.NewHistory(doc.HistoryCapacity)
	for _, e := range doc.BonusHistory {
		history.Add(e)
	}
	s := &session.GenerationSession{
		ID:                doc.SessionID,
		ChatID:            doc.ChatID,
		Language:          doc.Language,
		LinkFormatCounter: doc.LinkFormatCounter,
		RecentCategories:  doc.RecentCategories,
		BonusHistory:      history,
		AwaitingBonus:     doc.AwaitingBonus,
		PostsGenerated:    doc.PostsGenerated,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
	if doc.Bonus != nil {
		s.Bonus = &bonus.Spec{URL: doc.Bonus.URL, Description: doc.Bonus.Description}
	}
	for i, q := range doc.Queue {
		rec, err := recordFromDoc(q)
		if err != nil {
			return nil, fmt.Errorf("chat %d queue item %d: %w", doc.ChatID, i, err)
		}
		s.Records = append(s.Records, session.QueuedWin{
			Record: rec,
			FileID: q.FileID,
			Kind:   session.MediaKind(q.MediaKind),
		})
	}
	return s, nil
}

func recordFromDoc(q models.QueuedWin) (winparse.Record, error) {
	bet, err := parseAmount(q.Bet)
	if err != nil {
		return winparse.Record{}, fmt.Errorf("bad bet: %w", err)
	}
	win, err := parseAmount(q.Win)
	if err != nil {
		return winparse.Record{}, fmt.Errorf("bad win: %w", err)
	}
	mult, err := parseAmount(q.Multiplier)
	if err != nil {
		return winparse.Record{}, fmt.Errorf("bad multiplier: %w", err)
	}
	return winparse.Record{
		Slot:               q.Slot,
		Streamer:           q.Streamer,
		Bet:                bet,
		Win:                win,
		Multiplier:         mult,
		ExplicitMultiplier: q.ExplicitMultiplier,
		Currency:           winparse.Currency(q.Currency),
		Source:             winparse.Source(q.Source),
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
