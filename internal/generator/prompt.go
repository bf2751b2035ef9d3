package generator

import (
	"winposts-bot/internal/locales"
	"winposts-bot/internal/winparse"
)

// Prompt builds the system and user prompts for one win in the session language.
// A record without a slot name is described with generic slot wording.
func Prompt(lang string, rec winparse.Record) (system, user string) {
	slot := rec.Slot
	if !rec.HasSlot() {
		slot = locales.Message(lang, "SlotGeneric", nil)
	}
	system = locales.Message(lang, "PromptSystem", nil)
	user = locales.Message(lang, "PromptUser", map[string]any{
		"Slot":       slot,
		"Streamer":   rec.Streamer,
		"Bet":        rec.Bet.String(),
		"Win":        rec.Win.String(),
		"Multiplier": rec.Multiplier.String(),
		"Currency":   string(rec.Currency),
	})
	return system, user
}
