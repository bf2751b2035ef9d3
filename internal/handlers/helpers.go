package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog/log"

	"winposts-bot/internal/locales"
	"winposts-bot/internal/winparse"
	"winposts-bot/pkg/telegoapi"
)

// sendSuccess sends a plain reply to the user. Send failures are logged, not returned.
func (h *MessageHandler) sendSuccess(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	if _, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
	return nil
}

// sendHTML sends a reply that already holds escaped HTML.
func (h *MessageHandler) sendHTML(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	params := tu.Message(tu.ID(chatID), text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true})
	if _, err := bot.SendMessage(ctx, params); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send HTML reply")
	}
	return nil
}

// sendError sends a generic localized error message and returns the original error
// so the update loop can report it.
func (h *MessageHandler) sendError(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, originalErr error) error {
	log.Error().Err(originalErr).Int64("chat_id", message.Chat.ID).Msg("handler failed")

	errMsg := locales.GetMessage(h.getLocalizer(message.From), "MsgErrorGeneral", nil, nil)
	if _, sendErr := bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), errMsg)); sendErr != nil {
		log.Error().Err(sendErr).Int64("chat_id", message.Chat.ID).Msg("failed to send error message")
	}
	return originalErr
}

// getLocalizer picks the reply language from the user's Telegram settings.
// Unsupported codes fall back through the bundle to the default language.
func (h *MessageHandler) getLocalizer(user *telego.User) *i18n.Localizer {
	if user != nil && user.LanguageCode != "" {
		return locales.NewLocalizer(user.LanguageCode, locales.DefaultLanguage)
	}
	return locales.NewLocalizer(locales.DefaultLanguage)
}

// checkAdmin reports whether the sender may use operator commands and tells them if not.
func (h *MessageHandler) checkAdmin(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) bool {
	if message.From == nil {
		return false
	}
	isAdmin, err := h.adminChecker.IsAdmin(ctx, message.From.ID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", message.From.ID).Msg("admin check failed")
	}
	if !isAdmin {
		text := locales.GetMessage(h.getLocalizer(message.From), "MsgErrorRequiresAdmin", nil, nil)
		_ = h.sendSuccess(ctx, bot, message.Chat.ID, text)
	}
	return isAdmin
}

// RecordUserActivity combines updating user info and logging the action.
func (h *MessageHandler) RecordUserActivity(ctx context.Context, user *telego.User, action string, isAdmin bool, details map[string]any) {
	if user == nil {
		log.Warn().Str("action", action).Msg("attempted to record activity for nil user")
		return
	}
	logger := log.With().Int64("user_id", user.ID).Str("action", action).Logger()

	if h.userRepo != nil {
		if err := h.userRepo.UpdateUser(ctx, user.ID, user.Username, user.FirstName, user.LastName, isAdmin, action); err != nil {
			logger.Error().Err(err).Msg("failed to update user")
		}
	}
	if h.actionLogger != nil {
		if err := h.actionLogger.LogUserAction(user.ID, action, details); err != nil {
			logger.Error().Err(err).Msg("failed to log user action")
		}
	}
}

// splitCommand returns the command name without the leading slash and bot mention, and its arguments.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	head, args, _ := strings.Cut(text, " ")
	if nl := strings.IndexByte(head, '\n'); nl >= 0 {
		head, args = head[:nl], head[nl+1:]+" "+args
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(head, "/"), "@")
	return strings.ToLower(name), strings.TrimSpace(args)
}

// describeRecord renders a record on one line for operator replies.
func describeRecord(localizer *i18n.Localizer, r winparse.Record) string {
	slot := r.Slot
	if slot == "" {
		slot = locales.GetMessage(localizer, "MsgUnknownValue", nil, nil)
	}
	line := fmt.Sprintf("%s: %s → %s %s (x%s)", slot, r.Bet.String(), r.Win.String(), r.Currency, r.Multiplier.String())
	if r.Streamer != "" {
		line += ", " + r.Streamer
	}
	return line
}

// orUnknown replaces an empty value with the localized placeholder.
func orUnknown(localizer *i18n.Localizer, s string) string {
	if s == "" {
		return locales.GetMessage(localizer, "MsgUnknownValue", nil, nil)
	}
	return s
}
