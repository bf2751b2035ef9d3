package winparse

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s = %s, want %s", field, got, want)
}

func TestCaption(t *testing.T) {
	p := NewParser(USD)

	t.Run("RussianWithOCRArtifact", func(t *testing.T) {
		rec := NewParser(RUB).Caption("Слот: Sweet Bonanza\nставка З00 р\nвыигрыш 15 000 р")

		assert.Equal(t, "Sweet Bonanza", rec.Slot)
		assertAmount(t, "300", rec.Bet, "bet")
		assertAmount(t, "15000", rec.Win, "win")
		assertAmount(t, "50", rec.Multiplier, "multiplier")
		assert.Equal(t, RUB, rec.Currency)
		assert.Empty(t, rec.Streamer)
		assert.True(t, rec.Valid())
	})

	t.Run("RussianStakeCases", func(t *testing.T) {
		ru := NewParser(RUB)
		tests := []struct {
			caption string
			bet     string
			win     string
		}{
			{"Выиграл 15000 со ставкой 300", "300", "15000"},
			{"При ставке 250 ₽ занос 40 000 ₽", "250", "40000"},
		}
		for _, tt := range tests {
			rec := ru.Caption(tt.caption)

			assertAmount(t, tt.bet, rec.Bet, tt.caption)
			assertAmount(t, tt.win, rec.Win, tt.caption)
			assert.True(t, rec.Valid(), tt.caption)
			assert.Empty(t, rec.Streamer, tt.caption)
		}
	})

	t.Run("LowercaseCurrencyCodeIsNotAStreamer", func(t *testing.T) {
		rec := p.Caption("clp - 125000\nBet: 500")

		assert.Empty(t, rec.Streamer)
	})

	t.Run("SpanishWithEmojiMarkers", func(t *testing.T) {
		rec := p.Caption("🎰 Gates of Olympus\n👤 Juanito777\nApuesta: 500 CLP\nGanancia: 125.000 CLP")

		assert.Equal(t, "Gates of Olympus", rec.Slot)
		assert.Equal(t, "Juanito777", rec.Streamer)
		assertAmount(t, "500", rec.Bet, "bet")
		assertAmount(t, "125000", rec.Win, "win")
		assertAmount(t, "250", rec.Multiplier, "multiplier")
		assert.Equal(t, CLP, rec.Currency)
	})

	t.Run("ItalianSymbolAfterNumber", func(t *testing.T) {
		rec := p.Caption("Slot: Book of Dead\nPuntata: 2€\nVincita: 1.500€")

		assert.Equal(t, "Book of Dead", rec.Slot)
		assertAmount(t, "2", rec.Bet, "bet")
		assertAmount(t, "1500", rec.Win, "win")
		assertAmount(t, "750", rec.Multiplier, "multiplier")
		assert.Equal(t, EUR, rec.Currency)
	})

	t.Run("FrenchDecimalStake", func(t *testing.T) {
		rec := p.Caption("Jeu : Sweet Bonanza\nMise : 1,50 €\nGain : 300 €")

		assert.Equal(t, "Sweet Bonanza", rec.Slot)
		assertAmount(t, "1.5", rec.Bet, "bet")
		assertAmount(t, "300", rec.Win, "win")
		assertAmount(t, "200", rec.Multiplier, "multiplier")
		assert.Equal(t, EUR, rec.Currency)
	})

	t.Run("MarkdownAndHTMLAreIgnored", func(t *testing.T) {
		rec := p.Caption("<b>Bet:</b> **200**\n__Win:__ *5000*")

		assertAmount(t, "200", rec.Bet, "bet")
		assertAmount(t, "5000", rec.Win, "win")
	})

	t.Run("DerivedMultiplier", func(t *testing.T) {
		rec := p.Caption("Bet: 200\nWin: 5000")

		assertAmount(t, "25", rec.Multiplier, "multiplier")
		assert.False(t, rec.ExplicitMultiplier)
		assert.Equal(t, USD, rec.Currency, "fallback currency expected")
	})

	t.Run("DerivedMultiplierIsRounded", func(t *testing.T) {
		rec := p.Caption("Bet: 3\nWin: 10")

		assertAmount(t, "3.3", rec.Multiplier, "multiplier")
	})

	t.Run("ExplicitMultiplierWins", func(t *testing.T) {
		rec := p.Caption("Ставка 100 ₽, выигрыш 1000 ₽, x12")

		assertAmount(t, "12", rec.Multiplier, "multiplier")
		assert.True(t, rec.ExplicitMultiplier)
		assert.Equal(t, RUB, rec.Currency)
	})

	t.Run("EmptySlotIsValid", func(t *testing.T) {
		rec := p.Caption("Ставка 500 ₽ выигрыш 50000 ₽")

		assert.Empty(t, rec.Slot)
		assert.False(t, rec.HasSlot())
		assert.True(t, rec.Valid())
		assertAmount(t, "100", rec.Multiplier, "multiplier")
	})

	t.Run("GarbageYieldsInvalidRecord", func(t *testing.T) {
		rec := p.Caption("привет, как дела?")

		assert.False(t, rec.Valid())
		assert.True(t, rec.Bet.IsZero())
		assert.True(t, rec.Win.IsZero())
		assert.True(t, rec.Multiplier.IsZero())
		assert.Equal(t, USD, rec.Currency)
	})

	t.Run("StreamerHandle", func(t *testing.T) {
		rec := p.Caption("Занос от @big_winner: ставка 100, выигрыш 25000")

		assert.Equal(t, "big_winner", rec.Streamer)
		assertAmount(t, "250", rec.Multiplier, "multiplier")
	})

	t.Run("StreamerEqualToSlotIsRejected", func(t *testing.T) {
		rec := p.Caption("Игрок: Starburst\nСлот: Starburst\nставка 10 выигрыш 500")

		assert.Equal(t, "Starburst", rec.Slot)
		assert.Empty(t, rec.Streamer)
	})

	t.Run("SlotTitleIsNotAStreamer", func(t *testing.T) {
		rec := p.Caption("Eye of Spartacus won 5000\nbet 50")

		assert.Empty(t, rec.Streamer)
		assertAmount(t, "5000", rec.Win, "win")
		assertAmount(t, "100", rec.Multiplier, "multiplier")
	})

	t.Run("StreamerBeforeDash", func(t *testing.T) {
		rec := p.Caption("Apuesta: 500 CLP\nPedro_88 - 125000 CLP")

		assert.Equal(t, "Pedro_88", rec.Streamer)
	})
}

func TestCaptionNeverTakesCurrencyCodeAsStreamer(t *testing.T) {
	p := NewParser(USD)
	for _, code := range Currencies {
		t.Run(string(code), func(t *testing.T) {
			caption := fmt.Sprintf("%[1]s x250\nApuesta: 500 %[1]s\nGanancia: 125000 %[1]s\n%[1]s - 125000", code)

			rec := p.Caption(caption)

			assert.NotEqual(t, string(code), rec.Streamer)
			assert.Empty(t, rec.Streamer)
			assert.Equal(t, code, rec.Currency)
			assertAmount(t, "250", rec.Multiplier, "multiplier")
		})
	}
}

func TestRejectStreamer(t *testing.T) {
	tests := []struct {
		candidate string
		slot      string
		reject    bool
	}{
		{"ставка", "", true},
		{"Apuesta", "", true},
		{"vincita", "", true},
		{"MXN", "", true},
		{"clp", "", true},
		{"Usd", "", true},
		{"x250", "", true},
		{"Х100", "", true},
		{"125000", "", true},
		{"З00", "", true},
		{"Eye of Spartacus", "", true},
		{"starburst", "Starburst", true},
		{"", "", true},
		{"Juanito777", "", false},
		{"Mxn_player", "", false},
		{"Вася", "Starburst", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.reject, rejectStreamer(tt.candidate, tt.slot))
		})
	}
}

func TestCorrectGlyphs(t *testing.T) {
	assert.Equal(t, "ставка 300 р", correctGlyphs("ставка З00 р"))
	assert.Equal(t, "1000", correctGlyphs("1ООО"))
	assert.Equal(t, "Зоя", correctGlyphs("Зоя"), "letters away from digits stay untouched")
}
