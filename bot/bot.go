package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"

	"winposts-bot/internal/handlers"
	"winposts-bot/internal/mediagroups"
	"winposts-bot/internal/metrics"
	"winposts-bot/pkg/telegoapi"
)

const (
	updateTimeout = 30 * time.Second
	// updatesPerSecond bounds how fast updates are dispatched to handlers.
	updatesPerSecond = 20
)

// Update kinds used as metric labels.
const (
	kindCommand    = "command"
	kindMedia      = "media"
	kindMediaGroup = "media_group"
	kindText       = "text"
	kindCallback   = "callback"
	kindOther      = "other"
)

// Bot runs the update loop: it reads updates from long polling, paces them, recovers from
// handler panics and routes each update to the message handler.
type Bot struct {
	bot           telegoapi.BotAPI
	updatesChan   <-chan telego.Update
	handler       *handlers.MessageHandler
	mediaGroupMgr *mediagroups.Manager
	ratelimiter   ratelimit.Limiter
	wg            sync.WaitGroup
}

// BotDeps holds the dependencies required by the Bot.
type BotDeps struct {
	Bot           telegoapi.BotAPI
	UpdatesChan   <-chan telego.Update
	Handler       *handlers.MessageHandler
	MediaGroupMgr *mediagroups.Manager
	// Limiter paces update processing. Nil means the default rate.
	Limiter ratelimit.Limiter
}

// New creates a new Bot instance from its dependencies.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, errors.New("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.Handler == nil {
		return nil, errors.New("message handler cannot be nil")
	}
	if deps.MediaGroupMgr == nil {
		return nil, errors.New("media group manager cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, errors.New("updates channel cannot be nil")
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(updatesPerSecond)
	}
	return &Bot{
		bot:           deps.Bot,
		updatesChan:   deps.UpdatesChan,
		handler:       deps.Handler,
		mediaGroupMgr: deps.MediaGroupMgr,
		ratelimiter:   deps.Limiter,
	}, nil
}

// report logs a handler error and sends it to Sentry.
func report(kind string, err error) {
	if err == nil {
		return
	}
	log.Error().Err(err).Str("kind", kind).Msg("handler error")
	sentry.CaptureException(fmt.Errorf("%s handler: %w", kind, err))
}

// processUpdate routes an update to the appropriate handler.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerPanics.Inc()
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Int("update_id", update.UpdateID).Msg("panic recovered in update processing")
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		b.processMessage(ctx, *update.Message)

	case update.CallbackQuery != nil:
		metrics.UpdatesProcessed.WithLabelValues(kindCallback).Inc()
		report(kindCallback, b.handler.HandleCallbackQuery(ctx, b.bot, *update.CallbackQuery))

	default:
		metrics.UpdatesProcessed.WithLabelValues(kindOther).Inc()
		log.Debug().Int("update_id", update.UpdateID).Msg("ignoring unhandled update type")
	}
}

func (b *Bot) processMessage(ctx context.Context, message telego.Message) {
	if message.From == nil {
		log.Debug().Int("message_id", message.MessageID).Int64("chat_id", message.Chat.ID).Msg("ignoring message without sender")
		return
	}

	// Album parts are collected first and handled together once the album is complete.
	if b.mediaGroupMgr.HandleMessage(message, b.handleMediaGroup) {
		metrics.UpdatesProcessed.WithLabelValues(kindMediaGroup).Inc()
		return
	}

	handled, err := b.handler.HandleCommand(ctx, b.bot, message)
	if handled {
		metrics.UpdatesProcessed.WithLabelValues(kindCommand).Inc()
		report(kindCommand, err)
		return
	}

	kind := kindText
	if message.Video != nil || message.Document != nil {
		kind = kindMedia
	}
	metrics.UpdatesProcessed.WithLabelValues(kind).Inc()
	report(kind, b.handler.HandleMessage(ctx, b.bot, message))
}

// handleMediaGroup is the callback given to the media group manager.
func (b *Bot) handleMediaGroup(ctx context.Context, groupID string, messages []telego.Message) error {
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()
	return b.handler.HandleMediaGroup(ctx, b.bot, groupID, messages)
}

// Start runs the update loop until ctx is done or the updates channel closes.
// Each update is processed in its own goroutine; Start waits for them before returning.
func (b *Bot) Start(ctx context.Context) {
	log.Info().Msg("listening for updates")
	defer func() {
		b.wg.Wait()
		log.Info().Msg("all update processing finished")
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("context done, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Info().Msg("updates channel closed")
				return
			}
			b.wg.Add(1)
			go func(up telego.Update) {
				defer b.wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// Stop shuts down album collection; albums still being collected are dropped.
// The loop itself stops with the context passed to Start.
func (b *Bot) Stop() {
	b.mediaGroupMgr.Shutdown()
	log.Info().Msg("bot stopped")
}
