package mediagroups

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultProcessDelay is how long an album is collected after its first message.
	DefaultProcessDelay = 2 * time.Second
	// DefaultMaxGroupSize limits the number of messages stored per group.
	DefaultMaxGroupSize = 10
)

// ProcessFunc handles a completed album. Messages are ordered by message ID.
type ProcessFunc func(ctx context.Context, groupID string, messages []telego.Message) error

type groupState struct {
	mu       sync.Mutex
	messages []telego.Message
	timer    *time.Timer
	closed   bool
}

// Manager collects album messages, which Telegram delivers one update at a time,
// and hands each album to a ProcessFunc once no more parts are expected.
type Manager struct {
	groups  sync.Map // map[string]*groupState
	delay   time.Duration
	maxSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. Non-positive delay or maxSize use the defaults.
func NewManager(delay time.Duration, maxSize int) *Manager {
	if delay <= 0 {
		delay = DefaultProcessDelay
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxGroupSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{delay: delay, maxSize: maxSize, ctx: ctx, cancel: cancel}
}

// HandleMessage stores an album message and schedules processing on the album's first message.
// It reports false for messages that are not part of an album.
func (m *Manager) HandleMessage(message telego.Message, handler ProcessFunc) bool {
	if message.MediaGroupID == "" {
		return false
	}
	if m.ctx.Err() != nil {
		return true
	}
	groupID := message.MediaGroupID
	logger := log.With().Str("media_group_id", groupID).Int("message_id", message.MessageID).Logger()

	var state *groupState
	for {
		val, _ := m.groups.LoadOrStore(groupID, &groupState{})
		state = val.(*groupState)
		state.mu.Lock()
		if !state.closed {
			break
		}
		// Taken for processing meanwhile; late parts start a new group.
		state.mu.Unlock()
	}
	defer state.mu.Unlock()

	if slices.ContainsFunc(state.messages, func(msg telego.Message) bool { return msg.MessageID == message.MessageID }) {
		return true
	}
	if len(state.messages) >= m.maxSize {
		logger.Warn().Int("limit", m.maxSize).Msg("album limit reached, message dropped")
		return true
	}
	state.messages = append(state.messages, message)
	logger.Debug().Int("total", len(state.messages)).Msg("album message stored")

	if state.timer == nil {
		m.wg.Add(1)
		state.timer = time.AfterFunc(m.delay, func() {
			defer m.wg.Done()
			m.process(groupID, handler)
		})
	}
	return true
}

func (m *Manager) process(groupID string, handler ProcessFunc) {
	messages := m.takeGroup(groupID)
	if len(messages) == 0 || m.ctx.Err() != nil {
		return
	}
	log.Debug().Str("media_group_id", groupID).Int("messages", len(messages)).Msg("processing album")
	if err := handler(m.ctx, groupID, messages); err != nil {
		log.Error().Err(err).Str("media_group_id", groupID).Msg("failed to process album")
		sentry.CaptureException(err)
	}
}

// takeGroup removes the group and returns its messages ordered by ID.
func (m *Manager) takeGroup(groupID string) []telego.Message {
	val, loaded := m.groups.LoadAndDelete(groupID)
	if !loaded {
		return nil
	}
	state := val.(*groupState)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.timer = nil
	state.closed = true
	msgs := slices.Clone(state.messages)
	slices.SortFunc(msgs, func(a, b telego.Message) int { return a.MessageID - b.MessageID })
	return msgs
}

// Shutdown stops pending timers, cancels running handlers and waits for them to return.
// Albums still being collected are dropped.
func (m *Manager) Shutdown() {
	m.cancel()
	stopped := 0
	m.groups.Range(func(key, value any) bool {
		state := value.(*groupState)
		state.mu.Lock()
		if state.timer != nil && state.timer.Stop() {
			stopped++
			m.wg.Done()
		}
		state.timer = nil
		state.mu.Unlock()
		m.groups.Delete(key)
		return true
	})
	m.wg.Wait()
	log.Info().Int("stopped_timers", stopped).Msg("media group manager stopped")
}
