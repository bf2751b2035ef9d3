package winparse

import (
	"regexp"
	"strings"
)

// Currency is an ISO 4217 code of a supported win currency.
type Currency string

const (
	RUB Currency = "RUB"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CLP Currency = "CLP"
	MXN Currency = "MXN"
	ARS Currency = "ARS"
	COP Currency = "COP"
	PEN Currency = "PEN"
	UYU Currency = "UYU"
)

// Currencies lists every supported currency code.
var Currencies = []Currency{RUB, USD, EUR, GBP, CLP, MXN, ARS, COP, PEN, UYU}

// Symbol returns the display symbol used in post text.
func (c Currency) Symbol() string {
	switch c {
	case RUB:
		return "₽"
	case EUR:
		return "€"
	case GBP:
		return "£"
	case USD, CLP, MXN, ARS, COP, UYU:
		return "$"
	case PEN:
		return "S/"
	}
	return ""
}

func lookupCode(s string) (Currency, bool) {
	up := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range Currencies {
		if c == up {
			return c, true
		}
	}
	return "", false
}

// DefaultCurrency returns the fallback currency of a scenario language.
func DefaultCurrency(lang string) Currency {
	if strings.EqualFold(lang, "ru") {
		return RUB
	}
	return USD
}

var symbolCurrencies = map[string]Currency{
	"$": USD,
	"€": EUR,
	"£": GBP,
	"₽": RUB,
}

// currencyWord maps a word form to its currency. Order matters: the longer,
// country-qualified peso forms are listed before the bare word.
type currencyWord struct {
	re       *regexp.Regexp
	currency Currency
}

var currencyWords = []currencyWord{
	{regexp.MustCompile(`(?i)pesos?\s+chilenos?`), CLP},
	{regexp.MustCompile(`(?i)pesos?\s+mexicanos?`), MXN},
	{regexp.MustCompile(`(?i)pesos?\s+argentinos?`), ARS},
	{regexp.MustCompile(`(?i)pesos?\s+colombianos?`), COP},
	{regexp.MustCompile(`(?i)pesos?\s+uruguayos?`), UYU},
	{regexp.MustCompile(`(?i)soles`), PEN},
	{regexp.MustCompile(`(?i)руб(?:лей|ля|ль|\.)?`), RUB},
	{regexp.MustCompile(`(?i)d[oó]lar(?:es|s)?|dollars?`), USD},
	{regexp.MustCompile(`(?i)euros?`), EUR},
	{regexp.MustCompile(`(?i)libras?|sterlin[ae]|pounds?`), GBP},
}

var (
	symbolScanRe = regexp.MustCompile(`[$€£₽]`)
	codeScanRe   = regexp.MustCompile(`(?:^|[^A-Za-z])(RUB|USD|EUR|GBP|CLP|MXN|ARS|COP|PEN|UYU)(?:$|[^A-Za-z])`)

	// adjacency probes, applied to the text right after a number
	adjacentAfterSymbolRe = regexp.MustCompile(`^\s?([$€£₽])`)
	adjacentAfterCodeRe   = regexp.MustCompile(`^\s?([A-Za-z]{3})(?:$|[^A-Za-z])`)
	adjacentAfterWordRe   = regexp.MustCompile(`^\s?(\p{L}+(?:\s+\p{L}+)?)`)
	adjacentShortRubRe    = regexp.MustCompile(`^\s?[рp]\.?(?:$|[^\p{L}])`)
)

// adjacentCurrency looks for a currency marker glued to the number at text[start:end].
// Symbols win over codes, codes over word forms.
func adjacentCurrency(text string, start, end int) (Currency, bool) {
	before := text[:start]
	after := text[end:]

	if trimmed := strings.TrimRight(before, " "); trimmed != "" {
		for sym, c := range symbolCurrencies {
			if strings.HasSuffix(trimmed, sym) {
				return c, true
			}
		}
	}
	if m := adjacentAfterSymbolRe.FindStringSubmatch(after); m != nil {
		return symbolCurrencies[m[1]], true
	}
	if m := adjacentAfterCodeRe.FindStringSubmatch(after); m != nil {
		if c, ok := lookupCode(m[1]); ok {
			return c, true
		}
	}
	if m := adjacentAfterWordRe.FindStringSubmatch(after); m != nil {
		for _, w := range currencyWords {
			if loc := w.re.FindStringIndex(m[1]); loc != nil && loc[0] == 0 {
				return w.currency, true
			}
		}
	}
	if adjacentShortRubRe.MatchString(after) {
		return RUB, true
	}
	return "", false
}

// scanCurrency searches the whole text: symbols, then ISO codes, then word forms.
func scanCurrency(text string) (Currency, bool) {
	if m := symbolScanRe.FindString(text); m != "" {
		return symbolCurrencies[m], true
	}
	if m := codeScanRe.FindStringSubmatch(text); m != nil {
		return Currency(m[1]), true
	}
	for _, w := range currencyWords {
		if w.re.MatchString(text) {
			return w.currency, true
		}
	}
	return "", false
}
