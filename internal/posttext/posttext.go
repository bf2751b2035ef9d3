// Package posttext cleans model output into text Telegram accepts with HTML parse mode.
package posttext

import (
	"html"
	"regexp"
	"strings"
)

var (
	spacedSchemeRe  = regexp.MustCompile(`(?i)\b(https?)\s*:\s*/\s*/\s*`)
	markdownLinkRe  = regexp.MustCompile(`\[([^\]\n]+)\]\(\s*(https?://[^\s)]+)\s*\)`)
	boldRe          = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	boldUnderRe     = regexp.MustCompile(`__([^_\n]+)__`)
	italicRe        = regexp.MustCompile(`(^|[^\w*])\*([^*\n]+)\*([^\w*]|$)`)
	strikeRe        = regexp.MustCompile(`~~([^~\n]+)~~`)
	codeRe          = regexp.MustCompile("`([^`\n]+)`")
	headingRe       = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t]*#*[ \t]*$`)
	bulletRe        = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+`)
	tagRe           = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9-]*)([^<>]*)>`)
	hrefRe          = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)
	entityRe        = regexp.MustCompile(`^&(?:[a-zA-Z]{2,8}|#[0-9]{1,6}|#x[0-9a-fA-F]{1,6});`)
	manyNewlinesRe  = regexp.MustCompile(`\n{3,}`)
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	doubleSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// FixLinks repairs URLs that models tend to break: spaces inside the scheme
// ("https : //") and markdown links, which are turned into anchor tags.
func FixLinks(text string) string {
	text = spacedSchemeRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := spacedSchemeRe.FindStringSubmatch(m)
		return strings.ToLower(sub[1]) + "://"
	})
	return markdownLinkRe.ReplaceAllString(text, `<a href="$2">$1</a>`)
}

// MarkdownToHTML converts the markdown emphasis Telegram does not render in HTML mode.
func MarkdownToHTML(text string) string {
	text = headingRe.ReplaceAllString(text, "<b>$1</b>")
	text = boldRe.ReplaceAllString(text, "<b>$1</b>")
	text = boldUnderRe.ReplaceAllString(text, "<b>$1</b>")
	text = strikeRe.ReplaceAllString(text, "<s>$1</s>")
	text = codeRe.ReplaceAllString(text, "<code>$1</code>")
	text = bulletRe.ReplaceAllString(text, "• ")
	return italicRe.ReplaceAllString(text, "$1<i>$2</i>$3")
}

// StripForbidden removes every whole-word occurrence of the given words, ignoring case.
func StripForbidden(text string, words []string) string {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			alts = append(alts, regexp.QuoteMeta(w))
		}
	}
	if len(alts) == 0 {
		return text
	}
	re := regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(?:` + strings.Join(alts, "|") + `)([^\p{L}\p{N}_]|$)`)
	// Adjacent matches share a boundary rune, so repeat until nothing changes.
	for {
		next := re.ReplaceAllString(text, "$1$2")
		if next == text {
			break
		}
		text = next
	}
	return doubleSpaceRe.ReplaceAllString(text, " ")
}

var allowedTags = map[string]string{
	"b": "b", "strong": "b",
	"i": "i", "em": "i",
	"u": "u", "ins": "u",
	"s": "s", "strike": "s", "del": "s",
	"a": "a", "code": "code", "pre": "pre",
	"blockquote": "blockquote", "tg-spoiler": "tg-spoiler",
}

// SanitizeHTML keeps only the tags Telegram supports, turns <br> and paragraph tags into
// line breaks and escapes every stray '<', '>' and '&'.
func SanitizeHTML(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range tagRe.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(escapeText(text[last:loc[0]]))
		last = loc[1]

		closing := loc[3] > loc[2]
		name := strings.ToLower(text[loc[4]:loc[5]])
		attrs := text[loc[6]:loc[7]]

		switch name {
		case "br":
			b.WriteString("\n")
			continue
		case "p", "div":
			if closing {
				b.WriteString("\n\n")
			}
			continue
		}
		tag, ok := allowedTags[name]
		if !ok {
			continue
		}
		switch {
		case closing:
			b.WriteString("</" + tag + ">")
		case tag == "a":
			m := hrefRe.FindStringSubmatch(attrs)
			if m == nil {
				// No target. balanceAnchors drops the orphaned closing tag.
				continue
			}
			b.WriteString(`<a href="` + html.EscapeString(html.UnescapeString(m[1])) + `">`)
		default:
			b.WriteString("<" + tag + ">")
		}
	}
	b.WriteString(escapeText(text[last:]))
	return balanceAnchors(b.String())
}

// balanceAnchors drops closing </a> tags that have no matching opening tag and closes
// anchors left open at the end.
func balanceAnchors(s string) string {
	var b strings.Builder
	open := 0
	for {
		openIdx := strings.Index(s, "<a href=")
		closeIdx := strings.Index(s, "</a>")
		switch {
		case closeIdx < 0:
			b.WriteString(s)
			if openIdx >= 0 {
				open += strings.Count(s, "<a href=")
			}
			b.WriteString(strings.Repeat("</a>", open))
			return b.String()
		case openIdx >= 0 && openIdx < closeIdx:
			end := openIdx + len("<a href=")
			b.WriteString(s[:end])
			s = s[end:]
			open++
		case open > 0:
			b.WriteString(s[:closeIdx+len("</a>")])
			s = s[closeIdx+len("</a>"):]
			open--
		default:
			b.WriteString(s[:closeIdx])
			s = s[closeIdx+len("</a>"):]
		}
	}
}

func escapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			if entityRe.MatchString(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeParagraphs trims trailing spaces and collapses runs of blank lines.
func NormalizeParagraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Clean runs the whole pipeline over model output.
func Clean(text string, forbidden []string) string {
	text = FixLinks(text)
	text = MarkdownToHTML(text)
	text = StripForbidden(text, forbidden)
	text = SanitizeHTML(text)
	return NormalizeParagraphs(text)
}
