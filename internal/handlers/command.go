package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog/log"

	"winposts-bot/internal/bonus"
	"winposts-bot/internal/linkfmt"
	"winposts-bot/internal/locales"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
	"winposts-bot/pkg/telegoapi"
)

// HandleCommand routes a command message. It reports false when the text is not a command.
// Commands not marked public are limited to channel administrators.
func (h *MessageHandler) HandleCommand(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) (bool, error) {
	name, _ := splitCommand(message.Text)
	if name == "" {
		return false, nil
	}
	logger := log.With().Str("cmd", name).Int64("chat_id", message.Chat.ID).Logger()

	cmd, ok := h.GetCommand(name)
	if !ok {
		logger.Debug().Msg("unknown command")
		text := locales.GetMessage(h.getLocalizer(message.From), "MsgErrorUnknownCommand", nil, nil)
		return true, h.sendSuccess(ctx, bot, message.Chat.ID, text)
	}
	if !cmd.Public && !h.checkAdmin(ctx, bot, message) {
		logger.Info().Msg("command rejected for non-admin")
		return true, nil
	}
	logger.Debug().Msg("handling command")
	return true, cmd.Handler(ctx, bot, message)
}

// setupCommands registers the command menu shown by Telegram clients.
func (h *MessageHandler) setupCommands(ctx context.Context, bot telegoapi.BotAPI, localizer *i18n.Localizer) error {
	commands := make([]telego.BotCommand, 0, len(h.commands))
	for _, cmd := range h.commands {
		commands = append(commands, telego.BotCommand{
			Command:     cmd.Command,
			Description: locales.GetMessage(localizer, cmd.Description, nil, nil),
		})
	}
	if err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}

// HandleStart handles the /start command.
// It sets up the bot commands, updates user info, logs the action, and sends a welcome message.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	if err := h.setupCommands(ctx, bot, localizer); err != nil {
		return h.sendError(ctx, bot, message, err)
	}

	// A fresh /start re-reads channel rights instead of trusting the cache.
	if f, ok := h.adminChecker.(adminForgetter); ok && message.From != nil {
		f.Forget(message.From.ID)
	}
	isAdmin := h.isAdminQuiet(ctx, message.From)
	h.RecordUserActivity(ctx, message.From, ActionCommandStart, isAdmin, map[string]any{
		"chat_id": message.Chat.ID,
	})

	return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgStart", nil, nil))
}

// HandleHelp lists the commands. Non-admins only see public commands.
func (h *MessageHandler) HandleHelp(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	isAdmin := h.isAdminQuiet(ctx, message.From)

	var helpText strings.Builder
	helpText.WriteString(locales.GetMessage(localizer, "MsgHelpHeader", nil, nil) + "\n")
	for _, cmd := range h.commands {
		if !cmd.Public && !isAdmin {
			continue
		}
		fmt.Fprintf(&helpText, "/%s - %s\n", cmd.Command, locales.GetMessage(localizer, cmd.Description, nil, nil))
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandHelp, isAdmin, map[string]any{
		"chat_id":  message.Chat.ID,
		"is_admin": isAdmin,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, strings.TrimSpace(helpText.String()))
}

// HandleLang shows or changes the language posts are generated in.
func (h *MessageHandler) HandleLang(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	_, arg := splitCommand(message.Text)
	lang := strings.ToLower(arg)

	if !locales.IsScenarioLanguage(lang) {
		current, err := h.sessions.Get(ctx, message.Chat.ID)
		if err != nil {
			return h.sendError(ctx, bot, message, err)
		}
		text := locales.GetMessage(localizer, "MsgLangUsage", map[string]any{"Lang": current.Language}, nil)
		return h.sendSuccess(ctx, bot, message.Chat.ID, text)
	}

	err := h.sessions.With(ctx, message.Chat.ID, func(s *session.GenerationSession) error {
		s.Language = lang
		return nil
	})
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandLang, true, map[string]any{
		"chat_id": message.Chat.ID,
		"lang":    lang,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgLangSet", map[string]any{"Lang": lang}, nil))
}

// HandleBonus stores the bonus given after the command, or asks for it in the next message.
func (h *MessageHandler) HandleBonus(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	_, arg := splitCommand(message.Text)
	if arg == "" {
		err := h.sessions.With(ctx, message.Chat.ID, func(s *session.GenerationSession) error {
			s.AwaitingBonus = true
			return nil
		})
		if err != nil {
			return h.sendError(ctx, bot, message, err)
		}
		text := locales.GetMessage(h.getLocalizer(message.From), "MsgBonusPrompt", nil, nil)
		return h.sendSuccess(ctx, bot, message.Chat.ID, text)
	}
	return h.saveBonus(ctx, bot, message, arg, ActionCommandBonus)
}

// saveBonus validates and stores a bonus typed by the operator.
func (h *MessageHandler) saveBonus(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, text, action string) error {
	localizer := h.getLocalizer(message.From)

	spec, err := bonus.ParseSpec(text)
	if err != nil {
		log.Info().Err(err).Int64("chat_id", message.Chat.ID).Msg("bonus rejected")
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgBonusInvalid", nil, nil))
	}

	err = h.sessions.With(ctx, message.Chat.ID, func(s *session.GenerationSession) error {
		s.SetBonus(spec)
		return nil
	})
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}

	h.RecordUserActivity(ctx, message.From, action, true, map[string]any{
		"chat_id": message.Chat.ID,
		"url":     spec.URL,
	})
	reply := locales.GetMessage(localizer, "MsgBonusSaved", map[string]any{
		"URL":         spec.URL,
		"Description": spec.Description,
	}, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, reply)
}

// HandleParse shows what the caption parser extracts from the text after the command.
func (h *MessageHandler) HandleParse(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	_, arg := splitCommand(message.Text)
	if arg == "" {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgParseUsage", nil, nil))
	}

	s, err := h.sessions.Get(ctx, message.Chat.ID)
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}
	rec := parserFor(s.Language).Caption(arg)

	h.RecordUserActivity(ctx, message.From, ActionCommandParse, true, map[string]any{
		"chat_id": message.Chat.ID,
		"valid":   rec.Valid(),
	})
	reply := locales.GetMessage(localizer, "MsgParseResult", map[string]any{
		"Slot":       orUnknown(localizer, rec.Slot),
		"Streamer":   orUnknown(localizer, rec.Streamer),
		"Bet":        rec.Bet.String(),
		"Win":        rec.Win.String(),
		"Multiplier": rec.Multiplier.String(),
		"Currency":   string(rec.Currency),
		"Valid":      rec.Valid(),
	}, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, reply)
}

// HandleLink previews the link block the next generated post would get.
// The preview works on a copy of the session and does not advance the rotation.
func (h *MessageHandler) HandleLink(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)

	s, err := h.sessions.Get(ctx, message.Chat.ID)
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}
	if s.Bonus == nil {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgBonusMissing", nil, nil))
	}

	preview := s
	preview.RecentCategories = append([]int(nil), s.RecentCategories...)
	idx := preview.NextCategory(h.formatter.Size())
	desc := h.variator.Vary(s.Language, s.Bonus.Description, session.NewHistory(session.DefaultHistoryCapacity))
	block := h.formatter.Format(s.Bonus.URL, desc, idx)

	tag := "-"
	if c, ok := h.formatter.Category(idx); ok {
		tag = c.Tag
	}
	h.RecordUserActivity(ctx, message.From, ActionCommandLink, true, map[string]any{
		"chat_id":  message.Chat.ID,
		"category": tag,
	})
	reply := locales.GetMessage(localizer, "MsgLinkPreview", map[string]any{
		"Category":  tag,
		"Placement": linkfmt.PlacementFor(s.PostsGenerated).String(),
		"Block":     block,
	}, nil)
	return h.sendHTML(ctx, bot, message.Chat.ID, reply)
}

// HandleQueue lists the queued wins.
func (h *MessageHandler) HandleQueue(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)

	s, err := h.sessions.Get(ctx, message.Chat.ID)
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}
	h.RecordUserActivity(ctx, message.From, ActionCommandQueue, true, map[string]any{
		"chat_id": message.Chat.ID,
		"queued":  len(s.Records),
	})
	if len(s.Records) == 0 {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgQueueEmpty", nil, nil))
	}

	var b strings.Builder
	b.WriteString(locales.GetMessage(localizer, "MsgQueueHeader", map[string]any{"Count": len(s.Records)}, nil))
	for i, w := range s.Records {
		fmt.Fprintf(&b, "\n%d. %s", i+1, describeRecord(localizer, w.Record))
	}
	return h.sendSuccess(ctx, bot, message.Chat.ID, b.String())
}

// HandleReset clears the queue, the bonus and the rotation state of the chat.
func (h *MessageHandler) HandleReset(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	err := h.sessions.With(ctx, message.Chat.ID, func(s *session.GenerationSession) error {
		s.Reset()
		return nil
	})
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}
	h.RecordUserActivity(ctx, message.From, ActionCommandReset, true, map[string]any{
		"chat_id": message.Chat.ID,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(h.getLocalizer(message.From), "MsgReset", nil, nil))
}

// HandleStatus reports the session state and the running version.
func (h *MessageHandler) HandleStatus(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)

	s, err := h.sessions.Get(ctx, message.Chat.ID)
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}
	bonusText := ""
	if s.Bonus != nil {
		bonusText = s.Bonus.URL
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandStatus, true, map[string]any{
		"chat_id": message.Chat.ID,
	})
	reply := locales.GetMessage(localizer, "MsgStatus", map[string]any{
		"Lang":      s.Language,
		"Queued":    len(s.Records),
		"Bonus":     orUnknown(localizer, bonusText),
		"Generated": s.PostsGenerated,
		"Counter":   s.LinkFormatCounter,
		"Version":   h.version,
	}, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, reply)
}

// isAdminQuiet checks admin rights for activity records without replying.
func (h *MessageHandler) isAdminQuiet(ctx context.Context, user *telego.User) bool {
	if user == nil {
		return false
	}
	isAdmin, err := h.adminChecker.IsAdmin(ctx, user.ID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("admin check failed")
	}
	return isAdmin
}

// parseCount reads the /generate argument. An empty argument means one post.
func parseCount(arg string, limit int) (int, bool) {
	if arg == "" {
		return 1, true
	}
	n, err := strconv.Atoi(strings.Fields(arg)[0])
	if err != nil || n < 1 || n > limit {
		return 0, false
	}
	return n, true
}

// parserFor returns a parser whose fallback currency matches the scenario language.
func parserFor(lang string) *winparse.Parser {
	return winparse.NewParser(winparse.DefaultCurrency(lang))
}
