package linkfmt

import (
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Block is a rendered link block found inside a larger text, as a range of whole lines.
type Block struct {
	Text      string
	StartLine int
	EndLine   int
}

var (
	tagRe            = regexp.MustCompile(`<[^>]+>`)
	paragraphSplitRe = regexp.MustCompile(`\n[ \t]*\n`)
)

// Extract locates the link block for url in text. The checks run in a fixed order and
// the first one that matches anywhere in the text wins:
//
//  1. a hyperlink tag pointing at url
//  2. url followed by a description on the same line
//  3. a description followed by url on the same line
//  4. url alone on its line with the description on the next line
//  5. url alone on its line with the description on the previous line
func Extract(text, url string) (Block, bool) {
	if url == "" || text == "" {
		return Block{}, false
	}
	lines := strings.Split(text, "\n")
	plain := make([]string, len(lines))
	for i, l := range lines {
		plain[i] = html.UnescapeString(tagRe.ReplaceAllString(l, ""))
	}

	escaped := html.EscapeString(url)
	hrefs := []string{`href="` + url + `"`, `href="` + escaped + `"`, `href='` + url + `'`}
	found := func(start, end int) (Block, bool) {
		return Block{Text: strings.Join(lines[start:end+1], "\n"), StartLine: start, EndLine: end}, true
	}

	for i, l := range lines {
		for _, h := range hrefs {
			if strings.Contains(l, h) {
				return found(i, i)
			}
		}
	}
	for i, p := range plain {
		if idx := strings.Index(p, url); idx >= 0 && hasWord(p[idx+len(url):]) {
			return found(i, i)
		}
	}
	for i, p := range plain {
		if idx := strings.Index(p, url); idx >= 0 && hasWord(p[:idx]) {
			return found(i, i)
		}
	}
	for i, p := range plain {
		if urlOnly(p, url) && i+1 < len(plain) && hasWord(plain[i+1]) {
			return found(i, i+1)
		}
	}
	for i, p := range plain {
		if urlOnly(p, url) && i > 0 && hasWord(plain[i-1]) {
			return found(i-1, i)
		}
	}
	return Block{}, false
}

// Relocate moves the link block for url to the paragraph position chosen by p.
// Text without a recognizable block is returned unchanged.
func Relocate(text, url string, p Placement) string {
	rest, b, ok := Remove(text, url)
	if !ok {
		return text
	}
	return Insert(rest, b.Text, p)
}

// Remove cuts the link block for url out of text and returns the remaining text.
func Remove(text, url string) (string, Block, bool) {
	b, ok := Extract(text, url)
	if !ok {
		return text, Block{}, false
	}
	lines := strings.Split(text, "\n")
	rest := slices.Concat(lines[:b.StartLine], lines[b.EndLine+1:])
	return strings.Join(rest, "\n"), b, true
}

// Insert places block as its own paragraph at the position chosen by p.
func Insert(text, block string, p Placement) string {
	paras := Paragraphs(text)
	idx := p.Index(len(paras))
	paras = slices.Insert(paras, idx, strings.TrimSpace(block))
	return strings.Join(paras, "\n\n")
}

// Paragraphs splits text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplitRe.Split(strings.TrimSpace(text), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func urlOnly(line, url string) bool {
	return strings.Contains(line, url) && !hasWord(strings.Replace(line, url, "", 1))
}
