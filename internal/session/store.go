package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by a Repository when no session is stored for a chat.
var ErrNotFound = errors.New("session not found")

// Repository persists sessions between restarts.
type Repository interface {
	Load(ctx context.Context, chatID int64) (*GenerationSession, error)
	Save(ctx context.Context, s *GenerationSession) error
	Delete(ctx context.Context, chatID int64) error
}

const defaultCacheSize = 256

// Store hands out sessions per chat. Recently used sessions stay in an expiring LRU cache,
// every change is written through to the repository. Calls for the same chat are serialized.
type Store struct {
	repo        Repository
	cache       *expirable.LRU[int64, *GenerationSession]
	defaultLang string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewStore creates a store. A nil repository keeps sessions in memory only.
func NewStore(repo Repository, ttl time.Duration, defaultLang string) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		repo:        repo,
		cache:       expirable.NewLRU[int64, *GenerationSession](defaultCacheSize, nil, ttl),
		defaultLang: defaultLang,
		locks:       make(map[int64]*sync.Mutex),
	}
}

func (st *Store) lockFor(chatID int64) *sync.Mutex {
	st.mu.Lock()
	defer st.mu.Unlock()
	l, ok := st.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		st.locks[chatID] = l
	}
	return l
}

// load returns the cached session, falling back to the repository and finally to a new session.
func (st *Store) load(ctx context.Context, chatID int64) (*GenerationSession, error) {
	if s, ok := st.cache.Get(chatID); ok {
		return s, nil
	}
	if st.repo != nil {
		s, err := st.repo.Load(ctx, chatID)
		switch {
		case err == nil:
			st.cache.Add(chatID, s)
			return s, nil
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("failed to load session for chat %d: %w", chatID, err)
		}
	}
	s := New(chatID, st.defaultLang)
	st.cache.Add(chatID, s)
	return s, nil
}

// With runs fn on a copy of the chat's session while holding the chat lock. The copy
// replaces the cached session only after it was saved; when fn or the save fails the
// stored state is left as it was.
func (st *Store) With(ctx context.Context, chatID int64, fn func(s *GenerationSession) error) error {
	l := st.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	current, err := st.load(ctx, chatID)
	if err != nil {
		return err
	}
	s := current.Clone()
	if err := fn(s); err != nil {
		return err
	}
	s.touch()
	if st.repo != nil {
		if err := st.repo.Save(ctx, s); err != nil {
			// The write may have landed partially; reload from storage next time.
			st.cache.Remove(chatID)
			return fmt.Errorf("failed to save session for chat %d: %w", chatID, err)
		}
	}
	st.cache.Add(chatID, s)
	return nil
}

// Get returns a copy of the chat's session for read-only use.
func (st *Store) Get(ctx context.Context, chatID int64) (GenerationSession, error) {
	var snapshot GenerationSession
	err := st.With(ctx, chatID, func(s *GenerationSession) error {
		snapshot = *s
		return errSkipSave
	})
	if errors.Is(err, errSkipSave) {
		err = nil
	}
	return snapshot, err
}

var errSkipSave = errors.New("skip save")

// Drop removes the chat's session from cache and storage.
func (st *Store) Drop(ctx context.Context, chatID int64) error {
	l := st.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	st.cache.Remove(chatID)
	if st.repo == nil {
		return nil
	}
	if err := st.repo.Delete(ctx, chatID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete session for chat %d: %w", chatID, err)
	}
	log.Debug().Int64("chat_id", chatID).Msg("session dropped")
	return nil
}
