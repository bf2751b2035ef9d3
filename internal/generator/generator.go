package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"

	"winposts-bot/internal/bonus"
	"winposts-bot/internal/linkfmt"
	"winposts-bot/internal/llm"
	"winposts-bot/internal/metrics"
	"winposts-bot/internal/posttext"
	"winposts-bot/internal/retry"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
)

// ErrNoBonus is returned when a post is requested before the session has a bonus.
var ErrNoBonus = errors.New("bonus is not set")

// maxStrayBlocks bounds how many model-written copies of the bonus link are cut out.
const maxStrayBlocks = 3

// Options tune a Generator. Zero values fall back to defaults.
type Options struct {
	Forbidden []string
	Policy    retry.Policy
	// Limiter paces completion requests across all chats.
	Limiter ratelimit.Limiter
}

// Post is a generated draft ready for review.
type Post struct {
	Text      string
	URL       string
	Record    winparse.Record
	Category  string
	Placement linkfmt.Placement
}

// Generator turns queued wins into channel posts.
type Generator struct {
	llm       llm.Completer
	variator  *bonus.Variator
	formatter *linkfmt.Formatter
	forbidden []string
	policy    retry.Policy
	limiter   ratelimit.Limiter
}

// New creates a generator.
func New(completer llm.Completer, variator *bonus.Variator, formatter *linkfmt.Formatter, opts Options) *Generator {
	if completer == nil {
		log.Fatal().Msg("completer cannot be nil")
	}
	if variator == nil || formatter == nil {
		log.Fatal().Msg("variator and formatter cannot be nil")
	}
	g := &Generator{
		llm:       completer,
		variator:  variator,
		formatter: formatter,
		forbidden: opts.Forbidden,
		policy:    opts.Policy,
		limiter:   opts.Limiter,
	}
	if g.policy.MaxAttempts <= 0 {
		g.policy = retry.DefaultPolicy()
	}
	if g.limiter == nil {
		g.limiter = ratelimit.NewUnlimited()
	}
	return g
}

// Generate writes one post for rec. The session supplies the language, the bonus and the
// rotation state; it is advanced only when a post was produced.
func (g *Generator) Generate(ctx context.Context, s *session.GenerationSession, rec winparse.Record) (Post, error) {
	if s.Bonus == nil {
		return Post{}, ErrNoBonus
	}
	lang := s.Language
	logger := log.With().Int64("chat_id", s.ChatID).Str("lang", lang).Str("slot", rec.Slot).Logger()

	system, user := Prompt(lang, rec)
	body, err := retry.Do(ctx, g.policy, func(ctx context.Context, attempt int) (string, error) {
		g.limiter.Take()
		metrics.CompletionAttempts.Inc()

		start := time.Now()
		raw, err := g.llm.Complete(ctx, system, user)
		metrics.CompletionDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("completion failed")
			return "", err
		}
		text := posttext.Clean(raw, g.forbidden)
		if text == "" {
			logger.Warn().Int("attempt", attempt).Msg("completion empty after cleanup")
			return "", retry.ErrEmpty
		}
		return text, nil
	})
	if err != nil {
		metrics.PostsGenerated.WithLabelValues(lang, metrics.ResultError).Inc()
		return Post{}, fmt.Errorf("failed to generate post: %w", err)
	}

	url := s.Bonus.URL
	for range maxStrayBlocks {
		var removed bool
		if body, _, removed = linkfmt.Remove(body, url); !removed {
			break
		}
	}

	desc := g.variator.Vary(lang, s.Bonus.Description, s.History())
	idx := s.NextCategory(g.formatter.Size())
	placement := linkfmt.PlacementFor(s.PostsGenerated)
	block := g.formatter.Format(url, desc, idx)
	s.PostsGenerated++

	post := Post{
		Text:      linkfmt.Insert(body, block, placement),
		URL:       url,
		Record:    rec,
		Placement: placement,
	}
	if c, ok := g.formatter.Category(idx); ok {
		post.Category = c.Tag
	}

	metrics.PostsGenerated.WithLabelValues(lang, metrics.ResultOK).Inc()
	logger.Debug().Str("category", post.Category).Stringer("placement", placement).Msg("post generated")
	return post, nil
}
