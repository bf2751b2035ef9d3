package winparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	p := NewParser(RUB)

	t.Run("BetWin", func(t *testing.T) {
		rec, ok := p.Filename("725_14500.mp4")

		require.True(t, ok)
		assert.Empty(t, rec.Slot)
		assert.Empty(t, rec.Streamer)
		assertAmount(t, "725", rec.Bet, "bet")
		assertAmount(t, "14500", rec.Win, "win")
		assertAmount(t, "20", rec.Multiplier, "multiplier")
		assert.Equal(t, RUB, rec.Currency)
		assert.Equal(t, SourceFilename, rec.Source)
		assert.True(t, rec.Valid())
	})

	t.Run("SlotBetWin", func(t *testing.T) {
		rec, ok := p.Filename("Gates_of_Olympus_500_125000.mp4")

		require.True(t, ok)
		assert.Equal(t, "Gates of Olympus", rec.Slot)
		assert.Empty(t, rec.Streamer)
		assertAmount(t, "500", rec.Bet, "bet")
		assertAmount(t, "125000", rec.Win, "win")
		assertAmount(t, "250", rec.Multiplier, "multiplier")
	})

	t.Run("SlotWithNumberInTitle", func(t *testing.T) {
		rec, ok := p.Filename("Sweet_Bonanza_1000_20_5000.mp4")

		require.True(t, ok)
		assert.Equal(t, "Sweet Bonanza 1000", rec.Slot)
		assertAmount(t, "20", rec.Bet, "bet")
	})

	t.Run("StreamerWithAtMarker", func(t *testing.T) {
		rec, ok := p.Filename("@Vasya_Sweet_Bonanza_100_5000.mp4")

		require.True(t, ok)
		assert.Equal(t, "Vasya", rec.Streamer)
		assert.Equal(t, "Sweet Bonanza", rec.Slot)
		assertAmount(t, "50", rec.Multiplier, "multiplier")
	})

	t.Run("StreamerWithDoubleUnderscore", func(t *testing.T) {
		rec, ok := p.Filename("Vasya__Sweet_Bonanza_100_5000.mov")

		require.True(t, ok)
		assert.Equal(t, "Vasya", rec.Streamer)
		assert.Equal(t, "Sweet Bonanza", rec.Slot)
	})

	t.Run("GluedCurrencyCode", func(t *testing.T) {
		rec, ok := p.Filename("Gates_of_Olympus_500_125000CLP.mp4")

		require.True(t, ok)
		assert.Equal(t, CLP, rec.Currency)
		assertAmount(t, "125000", rec.Win, "win")
	})

	t.Run("GluedSymbol", func(t *testing.T) {
		rec, ok := p.Filename("Starburst_$20_$1000.mp4")

		require.True(t, ok)
		assert.Equal(t, USD, rec.Currency)
		assertAmount(t, "50", rec.Multiplier, "multiplier")
	})

	t.Run("TrailingCurrencyToken", func(t *testing.T) {
		rec, ok := p.Filename("Gates_of_Olympus_500_125000_MXN.mp4")

		require.True(t, ok)
		assert.Equal(t, MXN, rec.Currency)
		assert.Equal(t, "Gates of Olympus", rec.Slot)
	})

	t.Run("PathIsIgnored", func(t *testing.T) {
		rec, ok := p.Filename("/tmp/uploads/725_14500.mp4")

		require.True(t, ok)
		assertAmount(t, "725", rec.Bet, "bet")
	})
}

func TestFilenameRejects(t *testing.T) {
	p := NewParser(USD)
	names := []string{
		"",
		"video.mp4",
		"Slot_0_500.mp4",
		"Slot_abc_500.mp4",
		"Slot_500_1.5.mp4",
		"1_500_1000.mp4",
		"@Vasya_500_1000.mp4",
		"500.mp4",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			_, ok := p.Filename(name)
			assert.False(t, ok)
		})
	}
}
