package session

import (
	"slices"
	"time"

	"winposts-bot/internal/bonus"
	"winposts-bot/internal/winparse"

	"github.com/google/uuid"
)

// RecentWindow is how many recently used link categories a session remembers.
const RecentWindow = 5

// GenerationSession carries the rotation state of one operator's generation run.
// It is owned by a single chat and is passed explicitly to every call that rotates
// link formats or varies bonus descriptions.
type GenerationSession struct {
	ID       string
	ChatID   int64
	Language string

	// LinkFormatCounter grows by one for every rendered link block.
	LinkFormatCounter int
	RecentCategories  []int
	BonusHistory      *History

	Records       []QueuedWin
	Bonus         *bonus.Spec
	AwaitingBonus bool

	PostsGenerated int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New creates an empty session for a chat.
func New(chatID int64, language string) *GenerationSession {
	now := time.Now().UTC()
	return &GenerationSession{
		ID:           uuid.NewString(),
		ChatID:       chatID,
		Language:     language,
		BonusHistory: NewHistory(DefaultHistoryCapacity),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of s that shares no mutable state with it.
func (s *GenerationSession) Clone() *GenerationSession {
	c := *s
	c.RecentCategories = slices.Clone(s.RecentCategories)
	c.Records = slices.Clone(s.Records)
	c.BonusHistory = s.BonusHistory.Clone()
	if s.Bonus != nil {
		b := *s.Bonus
		c.Bonus = &b
	}
	return &c
}

// NextCategory returns the link category index for the next rendered block and advances
// the counter. Selection is round-robin over size categories, so size consecutive calls
// visit every category exactly once. An index still inside the recent window (possible
// after the table size changed) is skipped.
func (s *GenerationSession) NextCategory(size int) int {
	if size <= 0 {
		s.LinkFormatCounter++
		return 0
	}

	window := min(RecentWindow, size-1)
	recent := s.RecentCategories
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	idx := s.LinkFormatCounter % size
	for range size {
		if !slices.Contains(recent, idx) {
			break
		}
		s.LinkFormatCounter++
		idx = s.LinkFormatCounter % size
	}
	s.LinkFormatCounter++

	s.RecentCategories = append(s.RecentCategories, idx)
	if len(s.RecentCategories) > RecentWindow {
		s.RecentCategories = s.RecentCategories[len(s.RecentCategories)-RecentWindow:]
	}
	return idx
}

// History returns the bonus phrasing history, creating it on first use.
func (s *GenerationSession) History() *History {
	if s.BonusHistory == nil {
		s.BonusHistory = NewHistory(DefaultHistoryCapacity)
	}
	return s.BonusHistory
}

// MediaKind is the Telegram media type a queued win arrived as.
type MediaKind string

const (
	MediaNone     MediaKind = ""
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// QueuedWin is a parsed record waiting for generation with the media it was parsed from.
type QueuedWin struct {
	Record winparse.Record
	FileID string
	Kind   MediaKind
}

// Enqueue appends a win to the generation queue.
func (s *GenerationSession) Enqueue(w QueuedWin) {
	s.Records = append(s.Records, w)
	s.touch()
}

// Take removes and returns up to n wins from the head of the queue.
func (s *GenerationSession) Take(n int) []QueuedWin {
	if n <= 0 || len(s.Records) == 0 {
		return nil
	}
	n = min(n, len(s.Records))
	taken := slices.Clone(s.Records[:n])
	s.Records = slices.Delete(s.Records, 0, n)
	s.touch()
	return taken
}

// SetBonus stores the bonus used for subsequent posts and clears the phrasing history.
func (s *GenerationSession) SetBonus(spec bonus.Spec) {
	s.Bonus = &spec
	s.AwaitingBonus = false
	s.History().Reset()
	s.touch()
}

// Reset drops the queue, bonus and rotation state but keeps the chat language.
func (s *GenerationSession) Reset() {
	lang := s.Language
	*s = *New(s.ChatID, lang)
}

func (s *GenerationSession) touch() {
	s.UpdatedAt = time.Now().UTC()
}
