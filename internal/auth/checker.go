package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"

	"winposts-bot/pkg/telegoapi"
)

const (
	cacheSize = 128
	cacheTTL  = 5 * time.Minute
)

// AdminChecker tells whether a user administers the target channel.
// Answers are cached for a few minutes to keep button presses cheap.
type AdminChecker struct {
	bot             telegoapi.BotAPI
	targetChannelID int64
	cache           *expirable.LRU[int64, bool]
}

// NewAdminChecker creates a checker for channelID.
func NewAdminChecker(bot telegoapi.BotAPI, channelID int64) (*AdminChecker, error) {
	if bot == nil {
		return nil, errors.New("bot cannot be nil")
	}
	if channelID == 0 {
		return nil, errors.New("target channel ID cannot be zero")
	}
	return &AdminChecker{
		bot:             bot,
		targetChannelID: channelID,
		cache:           expirable.NewLRU[int64, bool](cacheSize, nil, cacheTTL),
	}, nil
}

// IsAdmin reports whether userID is the creator or an administrator of the channel.
// A user unknown to the channel is not an admin; other API errors are returned.
func (ac *AdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if ok, found := ac.cache.Get(userID); found {
		return ok, nil
	}

	member, err := ac.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(ac.targetChannelID),
		UserID: userID,
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "user not found") {
			ac.cache.Add(userID, false)
			return false, nil
		}
		log.Warn().Err(err).Int64("user_id", userID).Int64("channel_id", ac.targetChannelID).Msg("chat member lookup failed")
		return false, fmt.Errorf("failed to get chat member info: %w", err)
	}

	status := member.MemberStatus()
	isAdmin := status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator
	ac.cache.Add(userID, isAdmin)
	return isAdmin, nil
}

// Forget drops the cached answer for userID.
func (ac *AdminChecker) Forget(userID int64) {
	ac.cache.Remove(userID)
}
