package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"winposts-bot/internal/generator"
	"winposts-bot/internal/linkfmt"
	"winposts-bot/internal/publisher"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
)

const draftText = "Big win on Starburst.\n\n" + testURL + " — 50 free spins\n\nWhat a spin."

func queueWin(t *testing.T, s *testHandlerSuite, slot string) winparse.Record {
	t.Helper()
	rec := winparse.Record{
		Slot:     slot,
		Bet:      decimal.NewFromInt(10),
		Win:      decimal.NewFromInt(500),
		Currency: winparse.USD,
	}
	require.NoError(t, s.sessions.With(context.Background(), testChatID, func(gs *session.GenerationSession) error {
		gs.Enqueue(session.QueuedWin{Record: rec, FileID: "file-" + slot, Kind: session.MediaVideo})
		return nil
	}))
	return rec
}

func TestHandleGenerate(t *testing.T) {
	t.Run("SendsDraftsForReview", func(t *testing.T) {
		// Arrange
		s := setupTestHandlerSuite(t)
		s.allowActivity()
		s.captureSends()
		s.setBonus()
		rec := queueWin(t, s, "Starburst")
		post := generator.Post{Text: draftText, URL: testURL, Record: rec, Placement: linkfmt.PlacementAfter1}
		s.mockGenerator.On("Generate", mock.Anything, mock.Anything, rec).Return(post, nil).Once()

		// Act
		err := s.handler.HandleGenerate(context.Background(), s.mockBot, textMessage("/generate"))

		// Assert
		require.NoError(t, err)
		require.Len(t, s.sent, 3)
		assert.Equal(t, msg("MsgGenerateStarted", map[string]any{"Count": 1}), s.sent[0].Text)
		draftMsg := s.sent[1]
		assert.Equal(t, draftText, draftMsg.Text)
		assert.Equal(t, telego.ModeHTML, draftMsg.ParseMode)
		keyboard, ok := draftMsg.ReplyMarkup.(*telego.InlineKeyboardMarkup)
		require.True(t, ok)
		require.Len(t, keyboard.InlineKeyboard, 2)
		id, action, ok := parseDraftCallback(keyboard.InlineKeyboard[0][0].CallbackData)
		require.True(t, ok)
		assert.Equal(t, draftActionPublish, action)
		d, found := s.handler.Draft(id)
		require.True(t, found)
		assert.Equal(t, "file-Starburst", d.FileID)
		assert.Equal(t, session.MediaVideo, d.Kind)
		assert.Equal(t, msg("MsgGenerateDone", map[string]any{"Done": 1, "Count": 1}), s.sent[2].Text)
		assert.Empty(t, s.session().Records)
		s.mockGenerator.AssertExpectations(t)
	})

	t.Run("FailedWinGoesBackToQueue", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.allowActivity()
		s.captureSends()
		s.setBonus()
		first := queueWin(t, s, "Starburst")
		second := queueWin(t, s, "Book of Dead")
		queueWin(t, s, "Sweet Bonanza")
		s.mockGenerator.On("Generate", mock.Anything, mock.Anything, first).Return(generator.Post{}, errors.New("llm down")).Once()
		s.mockGenerator.On("Generate", mock.Anything, mock.Anything, second).Return(generator.Post{Text: draftText, URL: testURL}, nil).Once()

		err := s.handler.HandleGenerate(context.Background(), s.mockBot, textMessage("/generate 2"))

		require.NoError(t, err)
		records := s.session().Records
		require.Len(t, records, 2)
		assert.Equal(t, "Starburst", records[0].Record.Slot)
		assert.Equal(t, "Sweet Bonanza", records[1].Record.Slot)
		assert.Contains(t, s.texts(), msg("MsgGenerateDone", map[string]any{"Done": 1, "Count": 2}))
	})

	t.Run("GenerationOutlivesUpdateDeadline", func(t *testing.T) {
		// Arrange
		s := setupTestHandlerSuite(t)
		s.allowActivity()
		s.captureSends()
		s.setBonus()
		rec := queueWin(t, s, "Starburst")
		updateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		var remaining time.Duration
		s.mockGenerator.On("Generate", mock.Anything, mock.Anything, rec).Run(func(args mock.Arguments) {
			deadline, ok := args.Get(0).(context.Context).Deadline()
			require.True(t, ok)
			remaining = time.Until(deadline)
		}).Return(generator.Post{Text: draftText, URL: testURL}, nil).Once()

		// Act
		err := s.handler.HandleGenerate(updateCtx, s.mockBot, textMessage("/generate"))

		// Assert
		require.NoError(t, err)
		assert.Greater(t, remaining, time.Minute)
	})

	t.Run("ExpiredUpdateDeadlineKeepsDrafts", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.allowActivity()
		s.captureSends()
		s.setBonus()
		first := queueWin(t, s, "Starburst")
		second := queueWin(t, s, "Book of Dead")
		updateCtx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		for _, rec := range []winparse.Record{first, second} {
			s.mockGenerator.On("Generate", mock.Anything, mock.Anything, rec).Run(func(args mock.Arguments) {
				assert.NoError(t, args.Get(0).(context.Context).Err())
			}).Return(generator.Post{Text: draftText, URL: testURL}, nil).Once()
		}

		err := s.handler.HandleGenerate(updateCtx, s.mockBot, textMessage("/generate 2"))

		require.NoError(t, err)
		assert.Empty(t, s.session().Records)
		assert.Contains(t, s.texts(), msg("MsgGenerateDone", map[string]any{"Done": 2, "Count": 2}))
		s.mockGenerator.AssertExpectations(t)
	})

	t.Run("ShutdownCancelsGeneration", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.allowActivity()
		s.captureSends()
		s.setBonus()
		rec := queueWin(t, s, "Starburst")
		updateCtx, cancel := context.WithCancel(context.Background())
		s.mockGenerator.On("Generate", mock.Anything, mock.Anything, rec).Run(func(args mock.Arguments) {
			genCtx := args.Get(0).(context.Context)
			cancel()
			assert.Eventually(t, func() bool { return genCtx.Err() != nil }, time.Second, 5*time.Millisecond)
		}).Return(generator.Post{}, context.Canceled).Once()

		err := s.handler.HandleGenerate(updateCtx, s.mockBot, textMessage("/generate"))

		require.NoError(t, err)
		assert.Len(t, s.session().Records, 1)
	})

	t.Run("NoBonus", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.captureSends()
		queueWin(t, s, "Starburst")

		require.NoError(t, s.handler.HandleGenerate(context.Background(), s.mockBot, textMessage("/generate")))

		assert.Equal(t, []string{msg("MsgBonusMissing", nil)}, s.texts())
		assert.Len(t, s.session().Records, 1)
		s.mockGenerator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyQueue", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.captureSends()
		s.setBonus()

		require.NoError(t, s.handler.HandleGenerate(context.Background(), s.mockBot, textMessage("/generate")))

		assert.Equal(t, []string{msg("MsgQueueEmpty", nil)}, s.texts())
	})

	t.Run("CountOutOfRange", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.captureSends()

		require.NoError(t, s.handler.HandleGenerate(context.Background(), s.mockBot, textMessage("/generate 99")))

		assert.Equal(t, []string{msg("MsgGenerateUsage", map[string]any{"Max": 5})}, s.texts())
	})
}

func draftQuery(id, action string) telego.CallbackQuery {
	return telego.CallbackQuery{
		ID:      "query-1",
		From:    *testUser(),
		Message: &telego.Message{MessageID: 777, Chat: telego.Chat{ID: testChatID}},
		Data:    draftCallbackPrefix + ":" + id + ":" + action,
	}
}

func addDraft(s *testHandlerSuite) publisher.Draft {
	d := publisher.Draft{
		ID:     "draft-1",
		ChatID: testChatID,
		Post:   generator.Post{Text: draftText, URL: testURL, Placement: linkfmt.PlacementAfter1},
	}
	s.handler.drafts.Add(d.ID, d)
	return d
}

func answered(text string) any {
	return mock.MatchedBy(func(p *telego.AnswerCallbackQueryParams) bool {
		return p.CallbackQueryID == "query-1" && p.Text == text
	})
}

func TestHandleCallbackQuery(t *testing.T) {
	t.Run("Publish", func(t *testing.T) {
		// Arrange
		s := setupTestHandlerSuite(t)
		s.admin(true)
		s.allowActivity()
		d := addDraft(s)
		ctx := context.Background()
		s.mockPublisher.On("Publish", ctx, d, testUser()).Return(&telego.Message{MessageID: 1}, nil).Once()
		s.mockBot.On("EditMessageReplyMarkup", ctx, mock.MatchedBy(func(p *telego.EditMessageReplyMarkupParams) bool {
			return p.MessageID == 777 && p.ReplyMarkup == nil
		})).Return(&telego.Message{}, nil).Once()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgDraftPublished", nil))).Return(nil).Once()

		// Act
		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery(d.ID, draftActionPublish))

		// Assert
		require.NoError(t, err)
		_, found := s.handler.Draft(d.ID)
		assert.False(t, found)
		s.mockPublisher.AssertExpectations(t)
		s.mockBot.AssertExpectations(t)
	})

	t.Run("PublishFailureKeepsDraft", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.admin(true)
		d := addDraft(s)
		ctx := context.Background()
		sendErr := errors.New("chat not found")
		s.mockPublisher.On("Publish", ctx, d, mock.Anything).Return(nil, sendErr).Once()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgErrorSendToChannel", nil))).Return(nil).Once()

		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery(d.ID, draftActionPublish))

		assert.ErrorIs(t, err, sendErr)
		_, found := s.handler.Draft(d.ID)
		assert.True(t, found)
		s.mockBot.AssertNotCalled(t, "EditMessageReplyMarkup", mock.Anything, mock.Anything)
	})

	t.Run("PartialPublishRemembersMedia", func(t *testing.T) {
		// Arrange
		s := setupTestHandlerSuite(t)
		s.admin(true)
		d := addDraft(s)
		ctx := context.Background()
		partial := fmt.Errorf("failed to publish draft %s: %w", d.ID, &publisher.PartialError{MediaMessageID: 77, Err: errors.New("timeout")})
		s.mockPublisher.On("Publish", ctx, d, mock.Anything).Return(nil, partial).Once()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgDraftPartiallyPublished", nil))).Return(nil).Once()

		// Act
		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery(d.ID, draftActionPublish))

		// Assert
		assert.Error(t, err)
		stored, found := s.handler.Draft(d.ID)
		require.True(t, found)
		assert.Equal(t, 77, stored.MediaMessageID)
		s.mockBot.AssertExpectations(t)
	})

	t.Run("Discard", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.admin(true)
		s.allowActivity()
		d := addDraft(s)
		ctx := context.Background()
		s.mockBot.On("EditMessageReplyMarkup", ctx, mock.Anything).Return(&telego.Message{}, nil).Once()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgDraftDiscarded", nil))).Return(nil).Once()

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery(d.ID, draftActionDiscard)))

		_, found := s.handler.Draft(d.ID)
		assert.False(t, found)
		s.mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		s.mockBot.AssertExpectations(t)
	})

	t.Run("MoveLink", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.admin(true)
		s.allowActivity()
		d := addDraft(s)
		ctx := context.Background()
		want := linkfmt.Relocate(draftText, testURL, linkfmt.PlacementAfter2)
		s.mockBot.On("EditMessageText", ctx, mock.MatchedBy(func(p *telego.EditMessageTextParams) bool {
			return p.MessageID == 777 && p.Text == want && p.ReplyMarkup != nil
		})).Return(&telego.Message{}, nil).Once()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgDraftMoved", map[string]any{"Placement": "AFTER_2"}))).Return(nil).Once()

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery(d.ID, draftActionMove)))

		moved, found := s.handler.Draft(d.ID)
		require.True(t, found)
		assert.Equal(t, linkfmt.PlacementAfter2, moved.Post.Placement)
		assert.Equal(t, want, moved.Post.Text)
		s.mockBot.AssertExpectations(t)
	})

	t.Run("ExpiredDraft", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.admin(true)
		ctx := context.Background()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgDraftExpired", nil))).Return(nil).Once()

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery("gone", draftActionPublish)))

		s.mockBot.AssertExpectations(t)
	})

	t.Run("NonAdmin", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		s.admin(false)
		d := addDraft(s)
		ctx := context.Background()
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgErrorRequiresAdmin", nil))).Return(nil).Once()

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, draftQuery(d.ID, draftActionPublish)))

		s.mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ForeignData", func(t *testing.T) {
		s := setupTestHandlerSuite(t)
		ctx := context.Background()
		query := draftQuery("x", "y")
		query.Data = "something-else"
		s.mockBot.On("AnswerCallbackQuery", ctx, answered(msg("MsgCallbackNotHandled", nil))).Return(nil).Once()

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, query))

		s.mockAdminChecker.AssertNotCalled(t, "IsAdmin", mock.Anything, mock.Anything)
	})
}
