package handlers

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"

	"winposts-bot/internal/locales"
	"winposts-bot/internal/metrics"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
	"winposts-bot/pkg/telegoapi"
)

// mediaOf returns the file ID, kind and file name of a video or document message.
func mediaOf(message telego.Message) (string, session.MediaKind, string, bool) {
	switch {
	case message.Video != nil:
		return message.Video.FileID, session.MediaVideo, message.Video.FileName, true
	case message.Document != nil:
		return message.Document.FileID, session.MediaDocument, message.Document.FileName, true
	default:
		return "", session.MediaNone, "", false
	}
}

// parseWin extracts a record from the message caption, falling back to the file name.
func parseWin(p *winparse.Parser, caption, fileName string) (winparse.Record, bool) {
	if caption != "" {
		if rec := p.Caption(caption); rec.Valid() {
			return rec, true
		}
	}
	if fileName != "" {
		if rec, ok := p.Filename(fileName); ok && rec.Valid() {
			return rec, true
		}
	}
	return winparse.Record{}, false
}

// HandleMedia queues the win shown in a single video or document.
func (h *MessageHandler) HandleMedia(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.checkAdmin(ctx, bot, message) {
		return nil
	}
	return h.queueMessages(ctx, bot, message.Chat.ID, message.From, []telego.Message{message})
}

// HandleMediaGroup queues every video or document of an album. Parts without a caption of
// their own borrow the album caption, which Telegram attaches to a single part.
func (h *MessageHandler) HandleMediaGroup(ctx context.Context, bot telegoapi.BotAPI, groupID string, messages []telego.Message) error {
	if len(messages) == 0 {
		return nil
	}
	first := messages[0]
	if !h.checkAdmin(ctx, bot, first) {
		return nil
	}
	log.Debug().Str("group_id", groupID).Int("parts", len(messages)).Msg("processing album")
	return h.queueMessages(ctx, bot, first.Chat.ID, first.From, messages)
}

func (h *MessageHandler) queueMessages(ctx context.Context, bot telegoapi.BotAPI, chatID int64, from *telego.User, messages []telego.Message) error {
	localizer := h.getLocalizer(from)

	albumCaption := ""
	for _, m := range messages {
		if m.Caption != "" {
			albumCaption = m.Caption
			break
		}
	}

	var queued []winparse.Record
	var count, failed int
	err := h.sessions.With(ctx, chatID, func(s *session.GenerationSession) error {
		p := parserFor(s.Language)
		for _, m := range messages {
			fileID, kind, fileName, ok := mediaOf(m)
			if !ok {
				continue
			}
			caption := m.Caption
			if caption == "" {
				caption = albumCaption
			}
			rec, ok := parseWin(p, caption, fileName)
			if !ok {
				failed++
				continue
			}
			s.Enqueue(session.QueuedWin{Record: rec, FileID: fileID, Kind: kind})
			metrics.RecordsQueued.WithLabelValues(string(rec.Source)).Inc()
			queued = append(queued, rec)
		}
		count = len(s.Records)
		return nil
	})
	if err != nil {
		return h.sendError(ctx, bot, telego.Message{Chat: telego.Chat{ID: chatID}, From: from}, err)
	}

	if len(queued) > 0 {
		lines := make([]string, len(queued))
		for i, rec := range queued {
			lines[i] = describeRecord(localizer, rec)
		}
		h.RecordUserActivity(ctx, from, ActionQueueRecord, true, map[string]any{
			"chat_id": chatID,
			"queued":  len(queued),
			"failed":  failed,
		})
		reply := locales.GetMessage(localizer, "MsgRecordQueued", map[string]any{
			"Record": strings.Join(lines, "\n"),
			"Count":  count,
		}, nil)
		_ = h.sendSuccess(ctx, bot, chatID, reply)
	}
	if failed > 0 || len(queued) == 0 {
		log.Info().Int64("chat_id", chatID).Int("failed", failed).Msg("win not recognized")
		_ = h.sendSuccess(ctx, bot, chatID, locales.GetMessage(localizer, "MsgRecordNotParsed", nil, nil))
	}
	return nil
}

// HandleText processes a plain text message. While a bonus is awaited the text is taken as
// the bonus; otherwise it is parsed as a win caption and queued without media.
func (h *MessageHandler) HandleText(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if strings.TrimSpace(message.Text) == "" {
		return nil
	}
	if !h.checkAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.getLocalizer(message.From)

	var awaiting bool
	var rec winparse.Record
	var count int
	err := h.sessions.With(ctx, message.Chat.ID, func(s *session.GenerationSession) error {
		if s.AwaitingBonus {
			awaiting = true
			return nil
		}
		rec = parserFor(s.Language).Caption(message.Text)
		if !rec.Valid() {
			return nil
		}
		rec.Source = winparse.SourceManual
		s.Enqueue(session.QueuedWin{Record: rec})
		count = len(s.Records)
		return nil
	})
	if err != nil {
		return h.sendError(ctx, bot, message, err)
	}

	if awaiting {
		return h.saveBonus(ctx, bot, message, message.Text, ActionSetBonusReply)
	}
	if !rec.Valid() {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgRecordNotParsed", nil, nil))
	}

	metrics.RecordsQueued.WithLabelValues(string(rec.Source)).Inc()
	h.RecordUserActivity(ctx, message.From, ActionQueueRecord, true, map[string]any{
		"chat_id": message.Chat.ID,
		"source":  string(rec.Source),
	})
	reply := locales.GetMessage(localizer, "MsgRecordQueued", map[string]any{
		"Record": describeRecord(localizer, rec),
		"Count":  count,
	}, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, reply)
}

// HandleMessage routes a non-command message to media or text handling.
func (h *MessageHandler) HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if _, _, _, ok := mediaOf(message); ok {
		return h.HandleMedia(ctx, bot, message)
	}
	if message.Text != "" {
		return h.HandleText(ctx, bot, message)
	}
	log.Debug().Int64("chat_id", message.Chat.ID).Int("message_id", message.MessageID).Msg("ignoring message without text or media")
	return nil
}
