package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"

	"winposts-bot/internal/database"
	"winposts-bot/internal/database/models"
	"winposts-bot/internal/generator"
	"winposts-bot/internal/metrics"
	"winposts-bot/internal/session"
	"winposts-bot/pkg/telegoapi"
)

// CaptionLimit is the longest text Telegram accepts as a media caption.
const CaptionLimit = 1024

// Draft is a generated post waiting for the operator's decision.
type Draft struct {
	ID        string
	ChatID    int64
	Language  string
	Post      generator.Post
	FileID    string
	Kind      session.MediaKind
	CreatedAt time.Time

	// MediaMessageID is set once the media went out without its text; the next
	// publish then sends the text only.
	MediaMessageID int
}

// PartialError reports a publish where the media reached the channel but the text did not.
type PartialError struct {
	MediaMessageID int
	Err            error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("media sent as message %d, text failed: %v", e.MediaMessageID, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// Publisher sends approved drafts to the channel.
type Publisher struct {
	bot       telegoapi.BotAPI
	channelID int64
	limiter   ratelimit.Limiter
	postLog   database.PostLogger
}

// New creates a publisher. A nil limiter disables pacing; a nil postLog disables logging.
func New(bot telegoapi.BotAPI, channelID int64, limiter ratelimit.Limiter, postLog database.PostLogger) (*Publisher, error) {
	if bot == nil {
		return nil, errors.New("bot cannot be nil")
	}
	if channelID == 0 {
		return nil, errors.New("channel ID cannot be zero")
	}
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}
	return &Publisher{bot: bot, channelID: channelID, limiter: limiter, postLog: postLog}, nil
}

// Publish posts the draft to the channel and returns the message holding the text.
// Media with a short enough text goes out as one captioned message; otherwise the media is
// sent first and the text follows as its own message. When only the media got through the
// error wraps a *PartialError.
func (p *Publisher) Publish(ctx context.Context, d Draft, sender *telego.User) (*telego.Message, error) {
	p.limiter.Take()

	msg, msgType, err := p.send(ctx, d)
	if err != nil {
		metrics.PostsPublished.WithLabelValues(metrics.ResultError).Inc()
		err = fmt.Errorf("failed to publish draft %s: %w", d.ID, err)
		sentry.CaptureException(err)
		return nil, err
	}
	metrics.PostsPublished.WithLabelValues(metrics.ResultOK).Inc()
	log.Info().Str("draft_id", d.ID).Int64("channel_id", p.channelID).Int("message_id", msg.MessageID).Msg("draft published")

	if p.postLog != nil {
		entry := postLogEntry(d, sender, msg, msgType)
		entry.ChannelID = p.channelID
		if err := p.postLog.LogPublishedPost(ctx, entry); err != nil {
			log.Error().Err(err).Str("draft_id", d.ID).Msg("failed to log published post")
		}
	}
	return msg, nil
}

func (p *Publisher) send(ctx context.Context, d Draft) (*telego.Message, string, error) {
	if d.MediaMessageID != 0 {
		return p.sendText(ctx, d.Post.Text)
	}

	chat := tu.ID(p.channelID)
	captioned := utf8.RuneCountInString(d.Post.Text) <= CaptionLimit
	caption := ""
	if captioned {
		caption = d.Post.Text
	}

	var (
		msg *telego.Message
		err error
	)
	switch d.Kind {
	case session.MediaVideo:
		params := tu.Video(chat, tu.FileFromID(d.FileID)).WithCaption(caption)
		if captioned {
			params = params.WithParseMode(telego.ModeHTML)
		}
		msg, err = p.bot.SendVideo(ctx, params)
	case session.MediaDocument:
		params := tu.Document(chat, tu.FileFromID(d.FileID)).WithCaption(caption)
		if captioned {
			params = params.WithParseMode(telego.ModeHTML)
		}
		msg, err = p.bot.SendDocument(ctx, params)
	default:
		return p.sendText(ctx, d.Post.Text)
	}
	if err != nil {
		return nil, "", err
	}
	if captioned || d.FileID == "" {
		return msg, string(d.Kind), nil
	}

	p.limiter.Take()
	textMsg, msgType, err := p.sendText(ctx, d.Post.Text)
	if err != nil {
		return nil, "", &PartialError{MediaMessageID: msg.MessageID, Err: err}
	}
	return textMsg, msgType, nil
}

func (p *Publisher) sendText(ctx context.Context, text string) (*telego.Message, string, error) {
	msg, err := p.bot.SendMessage(ctx, tu.Message(tu.ID(p.channelID), text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true}))
	if err != nil {
		return nil, "", err
	}
	return msg, "text", nil
}

func postLogEntry(d Draft, sender *telego.User, msg *telego.Message, msgType string) models.PostLog {
	rec := d.Post.Record
	entry := models.PostLog{
		DraftID:       d.ID,
		Language:      d.Language,
		Slot:          rec.Slot,
		Streamer:      rec.Streamer,
		Bet:           rec.Bet.String(),
		Win:           rec.Win.String(),
		Multiplier:    rec.Multiplier.String(),
		Currency:      string(rec.Currency),
		Category:      d.Post.Category,
		Placement:     d.Post.Placement.String(),
		MessageType:   msgType,
		Text:          d.Post.Text,
		GeneratedAt:   d.CreatedAt,
		PublishedAt:   time.Now().UTC(),
		ChannelPostID: msg.MessageID,
	}
	if sender != nil {
		entry.SenderID = sender.ID
		entry.SenderUsername = sender.Username
	}
	return entry
}
