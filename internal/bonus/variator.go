package bonus

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxAttempts bounds the search for a phrasing the session has not produced yet.
const MaxAttempts = 50

// Memory remembers phrasings already produced in a session.
type Memory interface {
	Contains(s string) bool
	Add(s string)
	Reset()
}

// Fact is a numeric fact found in a description, kept as the exact text that carried it.
type Fact struct {
	Kind FactKind
	Text string

	start, end int
}

var (
	percentRe = regexp.MustCompile(`\d+(?:[.,]\d+)?\s?%`)
	spinsRe   = regexp.MustCompile(`(?i)\d+\s?(?:free\s?spins?|фри\s?спин\p{L}*|фриспин\p{L}*|спин\p{L}*|вращени\p{L}*|giros?(?:\s+gratis)?|tiradas?(?:\s+gratis)?|giri(?:\s+gratis)?|tours?(?:\s+gratuits?)?|spins?|FS)`)
	amountRe  = regexp.MustCompile(`(?i)[$€£₽]\s?\d(?:[\d \x{00A0}.,]*\d)?|\d(?:[\d \x{00A0}.,]*\d)?\s?(?:[$€£₽]|rub|usd|eur|gbp|clp|mxn|ars|cop|pen|uyu|руб\p{L}*|р\.)`)
	digitsRe  = regexp.MustCompile(`\d+`)
)

// ExtractFacts finds at most one amount, one percentage and one spin count in s.
// Facts never overlap; they are returned in the order they appear.
func ExtractFacts(s string) []Fact {
	var facts []Fact
	overlaps := func(start, end int) bool {
		for _, f := range facts {
			if start < f.end && f.start < end {
				return true
			}
		}
		return false
	}
	for _, k := range []struct {
		kind FactKind
		re   *regexp.Regexp
	}{
		{FactPercent, percentRe},
		{FactSpins, spinsRe},
		{FactAmount, amountRe},
	} {
		for _, loc := range k.re.FindAllStringIndex(s, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			facts = append(facts, Fact{Kind: k.kind, Text: strings.TrimSpace(s[loc[0]:loc[1]]), start: loc[0], end: loc[1]})
			break
		}
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].start < facts[j].start })
	return facts
}

// Variator rewrites bonus descriptions into new wordings that keep every number intact.
type Variator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewVariator creates a variator. A nil rng is seeded from the clock.
func NewVariator(rng *rand.Rand) *Variator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Variator{rng: rng}
}

// Vary returns a rewording of original in lang that mem has not seen yet and remembers it.
// The original is returned unchanged when it carries no facts, when it has numbers outside
// the detected facts, or when MaxAttempts candidates were all seen already. In the last case
// the memory is reset.
func (v *Variator) Vary(lang, original string, mem Memory) string {
	facts := ExtractFacts(original)
	if len(facts) == 0 || !coversAllNumbers(original, facts) {
		return original
	}

	bank := bankFor(lang)
	v.mu.Lock()
	defer v.mu.Unlock()

	for range MaxAttempts {
		candidate := v.compose(bank, facts)
		if !preservesNumbers(original, candidate) {
			continue
		}
		if mem != nil && mem.Contains(candidate) {
			continue
		}
		if mem != nil {
			mem.Add(candidate)
		}
		return candidate
	}

	if mem != nil {
		mem.Reset()
	}
	return original
}

func (v *Variator) compose(bank phraseBank, facts []Fact) string {
	order := v.rng.Perm(len(facts))
	var b strings.Builder
	for i, idx := range order {
		f := facts[idx]
		if i > 0 {
			b.WriteString(bank.connectors[v.rng.IntN(len(bank.connectors))])
		}
		templates := bank.templates[f.Kind]
		fmt.Fprintf(&b, templates[v.rng.IntN(len(templates))], f.Text)
	}
	return capitalize(b.String())
}

// coversAllNumbers reports whether every digit run of s lies inside one of the facts.
func coversAllNumbers(s string, facts []Fact) bool {
	for _, loc := range digitsRe.FindAllStringIndex(s, -1) {
		covered := false
		for _, f := range facts {
			if loc[0] >= f.start && loc[1] <= f.end {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

func preservesNumbers(original, candidate string) bool {
	for _, n := range digitsRe.FindAllString(original, -1) {
		if !strings.Contains(candidate, n) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
