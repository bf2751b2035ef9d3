package winparse

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	extensionRe    = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)
	gluedAmountRe  = regexp.MustCompile(`(?i)^([$€£₽])?(\d+)([$€£₽]|rub|usd|eur|gbp|clp|mxn|ars|cop|pen|uyu|руб|р)?$`)
	tokenSplitter  = regexp.MustCompile(`[_\s]+`)
	allDigitsRe    = regexp.MustCompile(`^\d+$`)
	streamerMarker = "__"
)

// Filename extracts a record from a structured file name. Shapes are tried from the most
// specific numeric form to the most general:
//
//	Bet_Win.mp4
//	Slot_Bet_Win.mp4
//	Streamer__Slot_Bet_Win.mp4 or @Streamer_Slot_Bet_Win.mp4
//
// The streamer shape needs an explicit marker (a leading '@' or a double underscore after the
// nickname), otherwise multi-word slot titles such as Gates_of_Olympus would lose their first word.
// It returns false when no shape matches or a trailing amount is not a positive integer.
func (p *Parser) Filename(name string) (Record, bool) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	base = extensionRe.ReplaceAllString(base, "")
	if base == "" || base == "." || base == "/" {
		return Record{}, false
	}

	var streamer string
	rest := base
	switch {
	case strings.Contains(base, streamerMarker):
		idx := strings.Index(base, streamerMarker)
		streamer, rest = base[:idx], base[idx+len(streamerMarker):]
	case strings.HasPrefix(base, "@"):
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			return Record{}, false
		}
		streamer, rest = parts[0], parts[1]
	}
	streamer = strings.TrimPrefix(strings.TrimSpace(streamer), "@")
	marked := rest != base

	tokens := splitTokens(rest)
	currency := Currency("")
	if n := len(tokens); n > 0 {
		if c, ok := lookupCode(tokens[n-1]); ok {
			currency = c
			tokens = tokens[:n-1]
		} else if c, ok := symbolCurrencies[tokens[n-1]]; ok {
			currency = c
			tokens = tokens[:n-1]
		}
	}
	if len(tokens) < 2 {
		return Record{}, false
	}

	n := len(tokens)
	bet, betCur, betOK := parseAmountToken(tokens[n-2])
	win, winCur, winOK := parseAmountToken(tokens[n-1])
	if !betOK || !winOK {
		return Record{}, false
	}
	if currency == "" {
		currency = winCur
	}
	if currency == "" {
		currency = betCur
	}
	if currency == "" {
		currency = p.fallback
	}

	prefix := tokens[:n-2]
	rec := Record{
		Bet:      bet,
		Win:      win,
		Currency: currency,
		Source:   SourceFilename,
	}

	switch {
	case len(prefix) == 0 && !marked:
		// Bet_Win
	case len(prefix) > 0 && !marked && !allNumeric(prefix):
		rec.Slot = strings.Join(prefix, " ")
	case len(prefix) > 0 && marked && streamer != "" && !allNumeric(prefix):
		rec.Slot = strings.Join(prefix, " ")
		rec.Streamer = streamer
	default:
		return Record{}, false
	}

	return rec.withDerivedMultiplier(), true
}

func splitTokens(s string) []string {
	raw := tokenSplitter.Split(strings.TrimSpace(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// parseAmountToken accepts a positive integer with an optional glued currency marker ("500", "$500", "125000RUB").
func parseAmountToken(token string) (decimal.Decimal, Currency, bool) {
	m := gluedAmountRe.FindStringSubmatch(token)
	if m == nil {
		return decimal.Zero, "", false
	}
	v, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || v <= 0 {
		return decimal.Zero, "", false
	}

	var c Currency
	switch {
	case m[1] != "":
		c = symbolCurrencies[m[1]]
	case m[3] == "":
	case symbolCurrencies[m[3]] != "":
		c = symbolCurrencies[m[3]]
	default:
		if code, ok := lookupCode(m[3]); ok {
			c = code
		} else {
			c = RUB
		}
	}
	return decimal.NewFromInt(v), c, true
}

func allNumeric(tokens []string) bool {
	for _, t := range tokens {
		if !allDigitsRe.MatchString(t) {
			return false
		}
	}
	return true
}
