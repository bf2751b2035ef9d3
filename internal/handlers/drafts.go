package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog/log"

	"winposts-bot/internal/linkfmt"
	"winposts-bot/internal/locales"
	"winposts-bot/internal/publisher"
	"winposts-bot/internal/session"
	"winposts-bot/pkg/telegoapi"
)

const draftCallbackPrefix = "draft"

// Draft review actions carried in callback data as "draft:<id>:<action>".
const (
	draftActionPublish = "publish"
	draftActionDiscard = "discard"
	draftActionMove    = "move"
)

// generationContext detaches a generation run from the deadline of the update that started it.
// The run gets generateTimePerPost for every requested post and is still cancelled on shutdown.
func generationContext(parent context.Context, n int) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), time.Duration(n)*generateTimePerPost)
	stop := context.AfterFunc(parent, func() {
		if errors.Is(parent.Err(), context.Canceled) {
			cancel()
		}
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

// HandleGenerate writes drafts for the head of the queue and sends each one back for review.
// Wins whose generation failed go back to the front of the queue.
func (h *MessageHandler) HandleGenerate(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	_, arg := splitCommand(message.Text)
	n, ok := parseCount(arg, h.maxGenerate)
	if !ok {
		return h.sendSuccess(ctx, bot, chatID, locales.GetMessage(localizer, "MsgGenerateUsage", map[string]any{"Max": h.maxGenerate}, nil))
	}

	ctx, cancel := generationContext(ctx, n)
	defer cancel()

	var drafts []publisher.Draft
	var failed []session.QueuedWin
	var noBonus, empty bool
	err := h.sessions.With(ctx, chatID, func(s *session.GenerationSession) error {
		if s.Bonus == nil {
			noBonus = true
			return nil
		}
		wins := s.Take(n)
		if len(wins) == 0 {
			empty = true
			return nil
		}
		_ = h.sendSuccess(ctx, bot, chatID, locales.GetMessage(localizer, "MsgGenerateStarted", map[string]any{"Count": len(wins)}, nil))

		for _, w := range wins {
			post, err := h.generator.Generate(ctx, s, w.Record)
			if err != nil {
				log.Error().Err(err).Int64("chat_id", chatID).Str("slot", w.Record.Slot).Msg("draft generation failed")
				failed = append(failed, w)
				continue
			}
			drafts = append(drafts, publisher.Draft{
				ID:        uuid.NewString(),
				ChatID:    chatID,
				Language:  s.Language,
				Post:      post,
				FileID:    w.FileID,
				Kind:      w.Kind,
				CreatedAt: time.Now().UTC(),
			})
		}
		if len(failed) > 0 {
			s.Records = append(failed, s.Records...)
		}
		return nil
	})
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}
	switch {
	case noBonus:
		return h.sendSuccess(ctx, bot, chatID, locales.GetMessage(localizer, "MsgBonusMissing", nil, nil))
	case empty:
		return h.sendSuccess(ctx, bot, chatID, locales.GetMessage(localizer, "MsgQueueEmpty", nil, nil))
	}

	for _, w := range failed {
		text := locales.GetMessage(localizer, "MsgGenerateFailed", map[string]any{"Record": describeRecord(localizer, w.Record)}, nil)
		_ = h.sendSuccess(ctx, bot, chatID, text)
	}
	for _, d := range drafts {
		h.drafts.Add(d.ID, d)
		if err := h.sendDraft(ctx, bot, localizer, d); err != nil {
			log.Error().Err(err).Str("draft_id", d.ID).Msg("failed to send draft")
		}
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandGenerate, true, map[string]any{
		"chat_id": chatID,
		"drafts":  len(drafts),
		"failed":  len(failed),
	})
	total := len(drafts) + len(failed)
	return h.sendSuccess(ctx, bot, chatID, locales.GetMessage(localizer, "MsgGenerateDone", map[string]any{
		"Done":  len(drafts),
		"Count": total,
	}, nil))
}

// draftKeyboard builds the review buttons for a draft.
func draftKeyboard(localizer *i18n.Localizer, id string) *telego.InlineKeyboardMarkup {
	data := func(action string) string {
		return strings.Join([]string{draftCallbackPrefix, id, action}, ":")
	}
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(localizer, "MsgDraftPublishButton", nil, nil)).WithCallbackData(data(draftActionPublish)),
			tu.InlineKeyboardButton(locales.GetMessage(localizer, "MsgDraftDiscardButton", nil, nil)).WithCallbackData(data(draftActionDiscard)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(localizer, "MsgDraftMoveButton", nil, nil)).WithCallbackData(data(draftActionMove)),
		),
	)
}

// sendDraft shows the draft text to the operator with the review buttons.
func (h *MessageHandler) sendDraft(ctx context.Context, bot telegoapi.BotAPI, localizer *i18n.Localizer, d publisher.Draft) error {
	params := tu.Message(tu.ID(d.ChatID), d.Post.Text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true}).
		WithReplyMarkup(draftKeyboard(localizer, d.ID))
	if _, err := bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send draft %s: %w", d.ID, err)
	}
	return nil
}

// parseDraftCallback splits "draft:<id>:<action>".
func parseDraftCallback(data string) (string, string, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != draftCallbackPrefix || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// HandleCallbackQuery processes the draft review buttons and answers the query with the outcome.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	localizer := h.getLocalizer(&query.From)
	logger := log.With().Int64("user_id", query.From.ID).Str("data", query.Data).Logger()

	answer := func(msgID string, data map[string]any) {
		params := tu.CallbackQuery(query.ID).WithText(locales.GetMessage(localizer, msgID, data, nil))
		if err := bot.AnswerCallbackQuery(ctx, params); err != nil {
			logger.Error().Err(err).Msg("failed to answer callback query")
		}
	}

	id, action, ok := parseDraftCallback(query.Data)
	if !ok {
		logger.Warn().Msg("callback query not handled")
		answer("MsgCallbackNotHandled", nil)
		return nil
	}
	isAdmin, err := h.adminChecker.IsAdmin(ctx, query.From.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("admin check failed")
	}
	if !isAdmin {
		answer("MsgErrorRequiresAdmin", nil)
		return nil
	}

	d, found := h.drafts.Get(id)
	if !found {
		answer("MsgDraftExpired", nil)
		return nil
	}

	var chatID int64
	var messageID int
	if msg, ok := query.Message.(*telego.Message); ok && msg != nil {
		chatID, messageID = msg.Chat.ID, msg.MessageID
	}

	switch action {
	case draftActionPublish:
		if _, err := h.publisher.Publish(ctx, d, &query.From); err != nil {
			var partial *publisher.PartialError
			if errors.As(err, &partial) {
				d.MediaMessageID = partial.MediaMessageID
				h.drafts.Add(id, d)
				answer("MsgDraftPartiallyPublished", nil)
				return err
			}
			answer("MsgErrorSendToChannel", nil)
			return err
		}
		h.drafts.Remove(id)
		h.clearKeyboard(ctx, bot, chatID, messageID)
		h.RecordUserActivity(ctx, &query.From, ActionPublishDraft, true, map[string]any{"draft_id": id})
		answer("MsgDraftPublished", nil)

	case draftActionDiscard:
		h.drafts.Remove(id)
		h.clearKeyboard(ctx, bot, chatID, messageID)
		h.RecordUserActivity(ctx, &query.From, ActionDiscardDraft, true, map[string]any{"draft_id": id})
		answer("MsgDraftDiscarded", nil)

	case draftActionMove:
		next := linkfmt.PlacementFor(int(d.Post.Placement) + 1)
		d.Post.Text = linkfmt.Relocate(d.Post.Text, d.Post.URL, next)
		d.Post.Placement = next
		h.drafts.Add(id, d)
		if messageID != 0 {
			_, err := bot.EditMessageText(ctx, &telego.EditMessageTextParams{
				ChatID:             tu.ID(chatID),
				MessageID:          messageID,
				Text:               d.Post.Text,
				ParseMode:          telego.ModeHTML,
				LinkPreviewOptions: &telego.LinkPreviewOptions{IsDisabled: true},
				ReplyMarkup:        draftKeyboard(localizer, id),
			})
			if err != nil {
				logger.Error().Err(err).Msg("failed to update draft message")
			}
		}
		h.RecordUserActivity(ctx, &query.From, ActionMoveDraftLink, true, map[string]any{
			"draft_id":  id,
			"placement": next.String(),
		})
		answer("MsgDraftMoved", map[string]any{"Placement": next.String()})

	default:
		logger.Warn().Str("action", action).Msg("unknown draft action")
		answer("MsgCallbackNotHandled", nil)
	}
	return nil
}

// clearKeyboard removes the review buttons once a draft is decided.
func (h *MessageHandler) clearKeyboard(ctx context.Context, bot telegoapi.BotAPI, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	_, err := bot.EditMessageReplyMarkup(ctx, &telego.EditMessageReplyMarkupParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("failed to clear draft buttons")
	}
}
