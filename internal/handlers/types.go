package handlers

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"

	"winposts-bot/internal/bonus"
	"winposts-bot/internal/database"
	"winposts-bot/internal/generator"
	"winposts-bot/internal/linkfmt"
	"winposts-bot/internal/publisher"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
	"winposts-bot/pkg/telegoapi"
)

// Action types for logging and user updates
const (
	ActionCommandStart    = "command_start"
	ActionCommandHelp     = "command_help"
	ActionCommandLang     = "command_lang"
	ActionCommandBonus    = "command_bonus"
	ActionCommandParse    = "command_parse"
	ActionCommandLink     = "command_link"
	ActionCommandGenerate = "command_generate"
	ActionCommandQueue    = "command_queue"
	ActionCommandReset    = "command_reset"
	ActionCommandStatus   = "command_status"
	ActionSetBonusReply   = "set_bonus_reply"
	ActionQueueRecord     = "queue_record"
	ActionPublishDraft    = "publish_draft"
	ActionDiscardDraft    = "discard_draft"
	ActionMoveDraftLink   = "move_draft_link"
)

const (
	draftCacheSize = 256
	draftTTL       = 12 * time.Hour
	// DefaultMaxGenerate caps /generate when no limit is configured.
	DefaultMaxGenerate = 10
	// generateTimePerPost bounds one post of a /generate run, pacing and retries included.
	generateTimePerPost = 2 * time.Minute
)

// CommandFunc handles one bot command.
type CommandFunc func(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error

// Command represents a bot command, mapping the command string to its description and handler function.
type Command struct {
	Command     string      // The command string (e.g., "start").
	Description string      // Locale key of the description shown in /help and the command menu.
	Public      bool        // Public commands skip the admin check.
	Handler     CommandFunc // The function to execute when the command is received.
}

// AdminChecker reports whether a user administers the target channel.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// adminForgetter is implemented by checkers that cache admin status.
type adminForgetter interface {
	Forget(userID int64)
}

// PostGenerator writes a post for a queued win.
type PostGenerator interface {
	Generate(ctx context.Context, s *session.GenerationSession, rec winparse.Record) (generator.Post, error)
}

// DraftPublisher sends an approved draft to the channel.
type DraftPublisher interface {
	Publish(ctx context.Context, d publisher.Draft, sender *telego.User) (*telego.Message, error)
}

// Deps holds everything a MessageHandler needs.
type Deps struct {
	Sessions     *session.Store
	Generator    PostGenerator
	Publisher    DraftPublisher
	Formatter    *linkfmt.Formatter
	Variator     *bonus.Variator
	AdminChecker AdminChecker
	ActionLogger database.UserActionLogger
	UserRepo     database.UserRepository
	Version      string
	MaxGenerate  int
}

// MessageHandler handles incoming Telegram messages and callbacks.
// It owns the operator workflow: win intake, the bonus dialog, generation and draft review.
type MessageHandler struct {
	sessions  *session.Store
	generator PostGenerator
	publisher DraftPublisher
	formatter *linkfmt.Formatter
	variator  *bonus.Variator

	// drafts holds generated posts waiting for a decision, keyed by draft ID.
	drafts *expirable.LRU[string, publisher.Draft]

	// commands holds the list of available bot commands.
	commands []Command

	actionLogger database.UserActionLogger
	userRepo     database.UserRepository
	adminChecker AdminChecker

	version     string
	maxGenerate int
}

// NewMessageHandler creates and initializes a new MessageHandler instance.
// It sets up dependencies and defines the available bot commands.
func NewMessageHandler(deps Deps) *MessageHandler {
	if deps.AdminChecker == nil {
		log.Fatal().Msg("MessageHandler: admin checker dependency is nil")
	}
	if deps.Sessions == nil || deps.Generator == nil || deps.Publisher == nil {
		log.Fatal().Msg("MessageHandler: session store, generator and publisher are required")
	}
	if deps.Formatter == nil {
		deps.Formatter = linkfmt.New(linkfmt.DefaultCategories())
	}
	if deps.Variator == nil {
		deps.Variator = bonus.NewVariator(nil)
	}
	if deps.MaxGenerate <= 0 {
		deps.MaxGenerate = DefaultMaxGenerate
	}
	h := &MessageHandler{
		sessions:     deps.Sessions,
		generator:    deps.Generator,
		publisher:    deps.Publisher,
		formatter:    deps.Formatter,
		variator:     deps.Variator,
		drafts:       expirable.NewLRU[string, publisher.Draft](draftCacheSize, nil, draftTTL),
		actionLogger: deps.ActionLogger,
		userRepo:     deps.UserRepo,
		adminChecker: deps.AdminChecker,
		version:      deps.Version,
		maxGenerate:  deps.MaxGenerate,
	}
	h.commands = h.defaultCommands()
	return h
}

func (h *MessageHandler) defaultCommands() []Command {
	return []Command{
		{Command: "start", Description: "CmdStartDesc", Public: true, Handler: h.HandleStart},
		{Command: "help", Description: "CmdHelpDesc", Public: true, Handler: h.HandleHelp},
		{Command: "lang", Description: "CmdLangDesc", Handler: h.HandleLang},
		{Command: "bonus", Description: "CmdBonusDesc", Handler: h.HandleBonus},
		{Command: "parse", Description: "CmdParseDesc", Handler: h.HandleParse},
		{Command: "link", Description: "CmdLinkDesc", Handler: h.HandleLink},
		{Command: "generate", Description: "CmdGenerateDesc", Handler: h.HandleGenerate},
		{Command: "queue", Description: "CmdQueueDesc", Handler: h.HandleQueue},
		{Command: "reset", Description: "CmdResetDesc", Handler: h.HandleReset},
		{Command: "status", Description: "CmdStatusDesc", Handler: h.HandleStatus},
	}
}

// GetCommand retrieves the command registered under name (e.g., "start").
func (h *MessageHandler) GetCommand(name string) (Command, bool) {
	for _, cmd := range h.commands {
		if cmd.Command == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// Draft returns a pending draft by ID.
func (h *MessageHandler) Draft(id string) (publisher.Draft, bool) {
	return h.drafts.Get(id)
}
