package bot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"

	"winposts-bot/internal/generator"
	"winposts-bot/internal/handlers"
	"winposts-bot/internal/locales"
	"winposts-bot/internal/mediagroups"
	"winposts-bot/internal/metrics"
	"winposts-bot/internal/publisher"
	"winposts-bot/internal/session"
	"winposts-bot/internal/winparse"
	"winposts-bot/pkg/telegoapi/telegoapitest"
)

const testUserID = int64(42)

func TestMain(m *testing.M) {
	locales.Init(locales.DefaultLanguage)
	os.Exit(m.Run())
}

type stubAdmin struct{ isAdmin bool }

func (s stubAdmin) IsAdmin(context.Context, int64) (bool, error) { return s.isAdmin, nil }

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, *session.GenerationSession, winparse.Record) (generator.Post, error) {
	return generator.Post{}, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, publisher.Draft, *telego.User) (*telego.Message, error) {
	return &telego.Message{}, nil
}

func newTestBot(t *testing.T, mockBot *telegoapitest.MockBot, updates <-chan telego.Update) *Bot {
	t.Helper()
	handler := handlers.NewMessageHandler(handlers.Deps{
		Sessions:     session.NewStore(nil, time.Hour, locales.DefaultLanguage),
		Generator:    stubGenerator{},
		Publisher:    stubPublisher{},
		AdminChecker: stubAdmin{isAdmin: true},
		Version:      "test",
	})
	mgr := mediagroups.NewManager(20*time.Millisecond, 10)
	t.Cleanup(mgr.Shutdown)

	b, err := New(BotDeps{
		Bot:           mockBot,
		UpdatesChan:   updates,
		Handler:       handler,
		MediaGroupMgr: mgr,
		Limiter:       ratelimit.NewUnlimited(),
	})
	require.NoError(t, err)
	return b
}

func message(text string) *telego.Message {
	return &telego.Message{
		MessageID: 1,
		From:      &telego.User{ID: testUserID, LanguageCode: "en"},
		Chat:      telego.Chat{ID: testUserID},
		Text:      text,
	}
}

func TestNew(t *testing.T) {
	_, err := New(BotDeps{})
	assert.Error(t, err)
}

func TestProcessUpdate(t *testing.T) {
	t.Run("CommandIsRouted", func(t *testing.T) {
		// Arrange
		mockBot := new(telegoapitest.MockBot)
		b := newTestBot(t, mockBot, make(chan telego.Update))
		want := locales.GetMessage(locales.NewLocalizer("en"), "MsgQueueEmpty", nil, nil)
		mockBot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
			return p.Text == want
		})).Return(&telego.Message{}, nil).Once()
		before := testutil.ToFloat64(metrics.UpdatesProcessed.WithLabelValues(kindCommand))

		// Act
		b.processUpdate(context.Background(), telego.Update{Message: message("/queue")})

		// Assert
		mockBot.AssertExpectations(t)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.UpdatesProcessed.WithLabelValues(kindCommand)))
	})

	t.Run("CallbackIsRouted", func(t *testing.T) {
		mockBot := new(telegoapitest.MockBot)
		b := newTestBot(t, mockBot, make(chan telego.Update))
		mockBot.On("AnswerCallbackQuery", mock.Anything, mock.MatchedBy(func(p *telego.AnswerCallbackQueryParams) bool {
			return p.CallbackQueryID == "cb-1"
		})).Return(nil).Once()

		b.processUpdate(context.Background(), telego.Update{CallbackQuery: &telego.CallbackQuery{
			ID:   "cb-1",
			From: telego.User{ID: testUserID},
			Data: "unknown",
		}})

		mockBot.AssertExpectations(t)
	})

	t.Run("MessageWithoutSenderIsIgnored", func(t *testing.T) {
		mockBot := new(telegoapitest.MockBot)
		b := newTestBot(t, mockBot, make(chan telego.Update))
		msg := message("/queue")
		msg.From = nil

		b.processUpdate(context.Background(), telego.Update{Message: msg})

		mockBot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	})

	t.Run("PanicIsRecovered", func(t *testing.T) {
		mockBot := new(telegoapitest.MockBot)
		b := newTestBot(t, mockBot, make(chan telego.Update))
		mockBot.On("SendMessage", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		}).Return(nil, nil)
		before := testutil.ToFloat64(metrics.HandlerPanics)

		assert.NotPanics(t, func() {
			b.processUpdate(context.Background(), telego.Update{Message: message("/queue")})
		})
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.HandlerPanics))
	})

	t.Run("AlbumIsCollected", func(t *testing.T) {
		mockBot := new(telegoapitest.MockBot)
		b := newTestBot(t, mockBot, make(chan telego.Update))
		sent := make(chan string, 1)
		mockBot.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			sent <- args.Get(1).(*telego.SendMessageParams).Text
		}).Return(&telego.Message{}, nil).Once()

		for i, name := range []string{"725_14500.mp4", "100_5000.mp4"} {
			m := message("")
			m.MessageID = i + 1
			m.MediaGroupID = "album"
			m.Video = &telego.Video{FileID: name, FileName: name}
			b.processUpdate(context.Background(), telego.Update{Message: m})
		}

		select {
		case text := <-sent:
			assert.Contains(t, text, "725")
			assert.Contains(t, text, "100")
		case <-time.After(2 * time.Second):
			t.Fatal("album was not processed")
		}
	})
}

func TestStart(t *testing.T) {
	mockBot := new(telegoapitest.MockBot)
	updates := make(chan telego.Update, 1)
	b := newTestBot(t, mockBot, updates)
	mockBot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil).Once()

	updates <- telego.Update{Message: message("/queue")}
	close(updates)

	done := make(chan struct{})
	go func() {
		b.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the updates channel closed")
	}
	mockBot.AssertExpectations(t)
}
