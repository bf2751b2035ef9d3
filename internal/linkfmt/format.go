package linkfmt

import (
	"html"
	"slices"
)

const fallbackSeparator = " — "

// Formatter renders link blocks from a fixed category table.
type Formatter struct {
	categories []Category
}

// New creates a formatter over the given categories. An empty table is allowed; every
// block is then rendered as "url — desc".
func New(categories []Category) *Formatter {
	return &Formatter{categories: slices.Clone(categories)}
}

// Size returns the number of categories.
func (f *Formatter) Size() int {
	return len(f.categories)
}

// Category returns the category used for index.
func (f *Formatter) Category(index int) (Category, bool) {
	if len(f.categories) == 0 {
		return Category{}, false
	}
	return f.categories[mod(index, len(f.categories))], true
}

// Format renders url and desc with the category at index modulo the table size.
// Prefix and separator rotate with the number of full passes over the table, so
// the same category looks slightly different on its next turn. Both inputs are HTML-escaped.
func (f *Formatter) Format(url, desc string, index int) string {
	u := html.EscapeString(url)
	d := html.EscapeString(desc)

	c, ok := f.Category(index)
	if !ok {
		return u + fallbackSeparator + d
	}

	round := 0
	if index > 0 {
		round = index / len(f.categories)
	}
	prefix := pick(c.Prefixes, round, "")
	sep := pick(c.Separators, round, fallbackSeparator)
	d = styleDesc(d, c.Style)

	var block string
	switch c.Layout {
	case LayoutDescFirst:
		block = prefix + d + sep + u
	case LayoutURLAbove:
		block = prefix + u + "\n" + d
	case LayoutDescAbove:
		block = prefix + d + "\n" + u
	case LayoutHyperlink:
		block = prefix + `<a href="` + u + `">` + d + `</a>`
	default:
		block = prefix + u + sep + d
	}

	if c.Style == StyleBlockquote {
		block = "<blockquote>" + block + "</blockquote>"
	}
	return block
}

func styleDesc(d string, s Style) string {
	switch s {
	case StyleBold:
		return "<b>" + d + "</b>"
	case StyleItalic:
		return "<i>" + d + "</i>"
	case StyleUnderline:
		return "<u>" + d + "</u>"
	case StyleBoldItalic:
		return "<b><i>" + d + "</i></b>"
	default:
		return d
	}
}

func pick(pool []string, round int, def string) string {
	if len(pool) == 0 {
		return def
	}
	return pool[mod(round, len(pool))]
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
