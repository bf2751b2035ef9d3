package winparse

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Parser extracts win records from captions and filenames.
// The fallback currency is used when the input carries no currency marker.
type Parser struct {
	fallback Currency
}

// NewParser creates a parser with the given fallback currency (USD when empty).
func NewParser(fallback Currency) *Parser {
	if fallback == "" {
		fallback = USD
	}
	return &Parser{fallback: fallback}
}

// fieldPattern is one entry of an ordered pattern bank. Group 1 holds the value.
type fieldPattern struct {
	lang string
	re   *regexp.Regexp
}

const (
	numberPattern = `(\d{1,3}(?:[ \x{00A0}.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d+)?)`
	labelTail     = `\s*(?:de\s+|di\s+|du\s+|на\s+|of\s+)?[:：=\-—–]?\s*(?:[$€£₽]\s?)?`
	tokenPattern  = `[\p{L}\p{N}_.\-]{2,32}`
)

func amountAfter(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:` + label + `)` + labelTail + numberPattern)
}

var betPatterns = []fieldPattern{
	{"ru", amountAfter(`ставк\p{L}*|бет`)},
	{"es", amountAfter(`apuesta`)},
	{"it", amountAfter(`puntata|scommessa`)},
	{"fr", amountAfter(`mise`)},
	{"en", amountAfter(`bet|stake`)},
	{"emoji", amountAfter(`💵|🎲`)},
}

var winPatterns = []fieldPattern{
	{"ru", amountAfter(`выигрыш|выиграл[аи]?|занос|выплата|вин`)},
	{"es", amountAfter(`ganancia|premio|gan[oó]|ganado`)},
	{"it", amountAfter(`vincita|vinto|vince`)},
	{"fr", amountAfter(`gain|gagn[ée]`)},
	{"en", amountAfter(`payout|won|win`)},
	{"emoji", amountAfter(`🏆|💰|🤑`)},
}

var multiplierPatterns = []fieldPattern{
	{"label", regexp.MustCompile(`(?i)(?:множитель|иксы|multiplicador|moltiplicatore|multiplicateur|multiplier)\s*[:：=\-—–]?\s*[xXхХ]?\s?(\d+(?:[.,]\d+)?)`)},
	{"prefix", regexp.MustCompile(`(?:^|[^\p{L}\p{N}])[xXхХ]\s?(\d+(?:[.,]\d+)?)`)},
	{"suffix", regexp.MustCompile(`(?:^|[^\p{L}\p{N}.,])(\d+(?:[.,]\d+)?)\s?[xXхХ](?:$|[^\p{L}\p{N}])`)},
}

func textAfter(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:` + label + `)\s*[:：\-—–]\s*([^\n|;,]+)`)
}

var slotPatterns = []fieldPattern{
	{"ru", textAfter(`слот|игра`)},
	{"ru", regexp.MustCompile(`(?i)в\s+слоте\s+([^\n|;,]+)`)},
	{"es", textAfter(`tragamonedas|tragaperras|juego`)},
	{"es", regexp.MustCompile(`(?i)en\s+(?:la\s+)?(?:slot|tragamonedas)\s+([^\n|;,]+)`)},
	{"it", textAfter(`gioco`)},
	{"fr", textAfter(`machine\s+à\s+sous|jeu`)},
	{"en", textAfter(`slot|game`)},
	{"emoji", regexp.MustCompile(`🎰\s*([^\n|;,]+)`)},
}

var streamerPatterns = []fieldPattern{
	{"label", regexp.MustCompile(`(?i)(?:стример|игрок|никнейм|ник|заносер|nickname|streamer|jugador|giocatore|joueur|player|nick)\s*[:：\-—–]?\s*@?(` + tokenPattern + `)`)},
	{"emoji", regexp.MustCompile(`(?:👤|🎮|😎)\s*@?(` + tokenPattern + `)`)},
	{"handle", regexp.MustCompile(`(?:^|\s)@([\p{L}\p{N}_]{2,32})`)},
	{"verb", regexp.MustCompile(`(?i)(?:^|\n)\s*(` + tokenPattern + `(?:\s+of\s+` + tokenPattern + `)?)\s+(?:выиграл[аи]?|занес(?:ла)?|won|gan[oó]|ha\s+vinto|a\s+gagn[ée])`)},
	{"multiplier", regexp.MustCompile(`(` + tokenPattern + `)\s+[xXхХ]\d`)},
	{"dash", regexp.MustCompile(`(?m)^\s*@?(` + tokenPattern + `)\s*[:—–\-]\s*[$€£₽]?\d`)},
}

// streamerDenylist holds field labels that the short-token patterns would otherwise accept as nicknames.
var streamerDenylist = map[string]struct{}{
	// ru
	"ставка": {}, "ставки": {}, "ставку": {}, "ставке": {}, "ставкой": {}, "бет": {}, "выигрыш": {}, "выиграл": {},
	"выиграла": {}, "занос": {}, "вин": {}, "слот": {}, "слоте": {}, "игра": {}, "множитель": {},
	"иксы": {}, "игрок": {}, "стример": {}, "ник": {}, "выплата": {}, "сумма": {}, "депозит": {},
	"бонус": {}, "итого": {},
	// es
	"apuesta": {}, "ganancia": {}, "premio": {}, "gano": {}, "ganó": {}, "ganado": {},
	"tragamonedas": {}, "tragaperras": {}, "juego": {}, "jugador": {}, "multiplicador": {}, "bono": {},
	// it
	"puntata": {}, "scommessa": {}, "vincita": {}, "vinto": {}, "vince": {}, "gioco": {},
	"giocatore": {}, "moltiplicatore": {},
	// fr
	"mise": {}, "gain": {}, "gagné": {}, "gagne": {}, "jeu": {}, "joueur": {}, "multiplicateur": {},
	// en
	"bet": {}, "stake": {}, "win": {}, "won": {}, "payout": {}, "slot": {}, "game": {},
	"player": {}, "streamer": {}, "multiplier": {}, "total": {},
}

var (
	threeUpperRe      = regexp.MustCompile(`^[A-Z]{3}$`)
	multiplierTokenRe = regexp.MustCompile(`^[xXхХ]\d+$`)
	pureNumberRe      = regexp.MustCompile(`^[\d\s.,]+$`)
	htmlTagRe         = regexp.MustCompile(`<[^>]+>`)
	markdownMarkRe    = regexp.MustCompile("\\*+|~+|`+|__")
)

// Caption extracts a record from free-form caption text. Unmatched fields keep their zero value.
func (p *Parser) Caption(caption string) Record {
	plain := normalizeMarkup(caption)
	text := correctGlyphs(plain)

	rec := Record{Source: SourceCaption}
	rec.Slot = firstText(slotPatterns, plain)

	win, winStart, winEnd, winOK := firstAmount(winPatterns, text)
	bet, betStart, betEnd, betOK := firstAmount(betPatterns, text)
	rec.Win = win
	rec.Bet = bet

	if m, ok := firstMultiplier(text); ok {
		rec.Multiplier = m
		rec.ExplicitMultiplier = true
	}

	rec.Streamer = firstStreamer(plain, rec.Slot)

	switch {
	case winOK && hasAdjacent(text, winStart, winEnd):
		rec.Currency, _ = adjacentCurrency(text, winStart, winEnd)
	case betOK && hasAdjacent(text, betStart, betEnd):
		rec.Currency, _ = adjacentCurrency(text, betStart, betEnd)
	default:
		if c, ok := scanCurrency(text); ok {
			rec.Currency = c
		} else {
			rec.Currency = p.fallback
		}
	}

	return rec.withDerivedMultiplier()
}

func hasAdjacent(text string, start, end int) bool {
	_, ok := adjacentCurrency(text, start, end)
	return ok
}

// normalizeMarkup removes HTML tags and markdown emphasis markers.
func normalizeMarkup(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return markdownMarkRe.ReplaceAllString(s, "")
}

var glyphDigits = map[rune]rune{
	'З': '3', 'з': '3',
	'О': '0', 'о': '0',
	'O': '0',
}

// correctGlyphs replaces digit look-alike letters that touch a digit ("З00" -> "300").
// Replacement repeats until stable so runs like "1ОО" are fully corrected.
func correctGlyphs(s string) string {
	rs := []rune(s)
	for changed := true; changed; {
		changed = false
		for i, r := range rs {
			d, ok := glyphDigits[r]
			if !ok {
				continue
			}
			prevDigit := i > 0 && unicode.IsDigit(rs[i-1])
			nextDigit := i+1 < len(rs) && unicode.IsDigit(rs[i+1])
			if prevDigit || nextDigit {
				rs[i] = d
				changed = true
			}
		}
	}
	return string(rs)
}

func firstAmount(bank []fieldPattern, text string) (decimal.Decimal, int, int, bool) {
	for _, fp := range bank {
		for _, loc := range fp.re.FindAllStringSubmatchIndex(text, -1) {
			value := ParseNumber(text[loc[2]:loc[3]])
			if value.IsPositive() {
				return value, loc[2], loc[3], true
			}
		}
	}
	return decimal.Zero, 0, 0, false
}

func firstMultiplier(text string) (decimal.Decimal, bool) {
	for _, fp := range multiplierPatterns {
		for _, m := range fp.re.FindAllStringSubmatch(text, -1) {
			value := ParseNumber(m[1])
			if value.IsPositive() {
				return value, true
			}
		}
	}
	return decimal.Zero, false
}

func firstText(bank []fieldPattern, text string) string {
	for _, fp := range bank {
		if m := fp.re.FindStringSubmatch(text); m != nil {
			if v := cleanName(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstStreamer(text, slot string) string {
	for _, fp := range streamerPatterns {
		for _, m := range fp.re.FindAllStringSubmatch(text, -1) {
			candidate := cleanName(m[1])
			if !rejectStreamer(candidate, slot) {
				return candidate
			}
		}
	}
	return ""
}

// rejectStreamer reports whether a nickname candidate is really a label, currency code,
// multiplier, number or slot title.
func rejectStreamer(candidate, slot string) bool {
	if candidate == "" {
		return true
	}
	lower := strings.ToLower(candidate)
	if _, denied := streamerDenylist[lower]; denied {
		return true
	}
	if threeUpperRe.MatchString(candidate) {
		return true
	}
	if _, code := lookupCode(candidate); code {
		return true
	}
	if multiplierTokenRe.MatchString(candidate) {
		return true
	}
	if pureNumberRe.MatchString(correctGlyphs(candidate)) {
		return true
	}
	if strings.Contains(lower, " of ") {
		return true
	}
	if slot != "" && strings.EqualFold(candidate, slot) {
		return true
	}
	return false
}

// cleanName cuts a captured name at the first pictograph and trims punctuation around it.
func cleanName(s string) string {
	if idx := strings.IndexFunc(s, func(r rune) bool {
		return unicode.Is(unicode.So, r) || r == '\n'
	}); idx >= 0 {
		s = s[:idx]
	}
	return strings.Trim(s, " \t .:-–—!?\"'«»")
}
