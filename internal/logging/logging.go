package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var writer io.Writer = os.Stderr

// Setup configures the global logger: a console writer at debug level when debug is set,
// JSON at info level otherwise.
func Setup(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if debug {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		writer = os.Stderr
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// Writer returns the writer chosen by Setup, for loggers that need to tee into it.
func Writer() io.Writer {
	return writer
}

// TelegoLogger adapts zerolog to the telego logger interface and masks the bot token.
type TelegoLogger struct {
	logger   zerolog.Logger
	replacer *strings.Replacer
}

// NewTelegoLogger creates the adapter. token is replaced in every message.
func NewTelegoLogger(logger zerolog.Logger, token string) *TelegoLogger {
	r := strings.NewReplacer()
	if token != "" {
		r = strings.NewReplacer(token, "BOT_TOKEN")
	}
	return &TelegoLogger{
		logger:   logger.With().Str("component", "telego").Logger(),
		replacer: r,
	}
}

func (l *TelegoLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msg(l.replacer.Replace(fmt.Sprintf(format, args...)))
}

func (l *TelegoLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msg(l.replacer.Replace(fmt.Sprintf(format, args...)))
}
