package winparse

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Source tells where a record was extracted from.
type Source string

const (
	SourceCaption  Source = "caption"
	SourceFilename Source = "filename"
	SourceManual   Source = "manual"
)

// Record is a single win extracted from a caption or filename.
// An empty Slot means "unknown slot" and an empty Streamer means the player is anonymous.
type Record struct {
	Slot               string
	Streamer           string
	Bet                decimal.Decimal
	Win                decimal.Decimal
	Multiplier         decimal.Decimal
	ExplicitMultiplier bool
	Currency           Currency
	Source             Source
}

// Valid reports whether both stake and payout are positive.
func (r Record) Valid() bool {
	return r.Bet.IsPositive() && r.Win.IsPositive()
}

// HasSlot reports whether a slot name was extracted.
func (r Record) HasSlot() bool {
	return r.Slot != ""
}

// withDerivedMultiplier fills Multiplier with round(Win/Bet, 1) unless it was matched explicitly.
func (r Record) withDerivedMultiplier() Record {
	if r.ExplicitMultiplier && r.Multiplier.IsPositive() {
		return r
	}
	r.ExplicitMultiplier = false
	if r.Valid() {
		r.Multiplier = DeriveMultiplier(r.Bet, r.Win)
	}
	return r
}

// DeriveMultiplier returns win/bet rounded to one decimal place, or zero when bet is not positive.
func DeriveMultiplier(bet, win decimal.Decimal) decimal.Decimal {
	if !bet.IsPositive() {
		return decimal.Zero
	}
	return win.Div(bet).Round(1)
}

func (r Record) String() string {
	return fmt.Sprintf("slot=%q streamer=%q bet=%s win=%s x%s %s",
		r.Slot, r.Streamer, r.Bet.String(), r.Win.String(), r.Multiplier.String(), r.Currency)
}
