package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"winposts-bot/internal/logging"
)

const flushTimeout = 2 * time.Second

// Options configure error reporting.
type Options struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool
	// Secrets are scrubbed from event messages before sending.
	Secrets []string
}

var (
	enabled      bool
	sentryWriter *sentryzerolog.Writer
	closeOnce    sync.Once
)

// Init initializes Sentry and forwards error-level logs to it. An empty DSN leaves reporting off.
func Init(opts Options) error {
	if opts.DSN == "" {
		log.Debug().Msg("error reporting disabled")
		return nil
	}

	scrub := scrubber(opts.Secrets)
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          "winposts-bot@" + opts.Release,
		AttachStacktrace: true,
		Debug:            opts.Debug,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrubEvent(event, scrub)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentryWriter, err = sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout:    flushTimeout,
		WithBreadcrumbs: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(logging.Writer(), sentryWriter))
	enabled = true
	log.Info().Msg("error reporting enabled")
	return nil
}

// Close flushes pending events. Safe to call multiple times.
func Close() {
	if !enabled {
		return
	}
	closeOnce.Do(func() {
		_ = sentryWriter.Close()
		sentry.Flush(flushTimeout)
	})
}

func scrubber(secrets []string) *strings.Replacer {
	var pairs []string
	for _, s := range secrets {
		if s != "" {
			pairs = append(pairs, s, "[redacted]")
		}
	}
	return strings.NewReplacer(pairs...)
}

func scrubEvent(event *sentry.Event, r *strings.Replacer) *sentry.Event {
	event.Message = r.Replace(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = r.Replace(event.Exception[i].Value)
	}
	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = r.Replace(s)
		}
	}
	return event
}
