package linkfmt

// Layout is the arrangement of a URL and its description inside a link block.
type Layout string

const (
	LayoutURLFirst  Layout = "inline_url_first"
	LayoutDescFirst Layout = "inline_desc_first"
	LayoutURLAbove  Layout = "url_above_desc"
	LayoutDescAbove Layout = "desc_above_url"
	LayoutHyperlink Layout = "hyperlink"
)

// Style is the Telegram HTML styling applied to the description or the whole block.
type Style string

const (
	StylePlain      Style = ""
	StyleBold       Style = "b"
	StyleItalic     Style = "i"
	StyleUnderline  Style = "u"
	StyleBoldItalic Style = "bi"
	StyleBlockquote Style = "blockquote"
)

// Category is one visual template for a link block. Prefix and separator are picked
// from the pools; an empty pool means no prefix and " — " as separator.
type Category struct {
	Tag        string
	Layout     Layout
	Style      Style
	Prefixes   []string
	Separators []string
}

// DefaultCategories returns the standard table of twenty link-block templates.
func DefaultCategories() []Category {
	return []Category{
		{Tag: "inline_url_first", Layout: LayoutURLFirst, Separators: []string{" — ", " - "}},
		{Tag: "emoji_inline_url_first", Layout: LayoutURLFirst, Prefixes: []string{"👉 ", "🔗 ", "➡️ "}, Separators: []string{" — ", " | "}},
		{Tag: "inline_desc_first", Layout: LayoutDescFirst, Separators: []string{" — ", ": "}},
		{Tag: "emoji_inline_desc_first", Layout: LayoutDescFirst, Prefixes: []string{"🎁 ", "🔥 ", "💰 "}, Separators: []string{" 👉 ", " → ", " ➡️ "}},
		{Tag: "url_above_desc", Layout: LayoutURLAbove},
		{Tag: "emoji_url_above_desc", Layout: LayoutURLAbove, Prefixes: []string{"🔗 ", "🌐 ", "👉 "}},
		{Tag: "desc_above_url", Layout: LayoutDescAbove},
		{Tag: "emoji_desc_above_url", Layout: LayoutDescAbove, Prefixes: []string{"🎁 ", "💎 ", "🎰 "}},
		{Tag: "hyperlink", Layout: LayoutHyperlink},
		{Tag: "emoji_hyperlink", Layout: LayoutHyperlink, Prefixes: []string{"👉 ", "🔥 ", "🎁 "}},
		{Tag: "bold_hyperlink", Layout: LayoutHyperlink, Style: StyleBold, Prefixes: []string{"", "⚡ "}},
		{Tag: "styled_desc_above_url_bold", Layout: LayoutDescAbove, Style: StyleBold},
		{Tag: "styled_desc_above_url_italic", Layout: LayoutDescAbove, Style: StyleItalic},
		{Tag: "styled_desc_above_url_underline", Layout: LayoutDescAbove, Style: StyleUnderline},
		{Tag: "emoji_styled_desc_above_url", Layout: LayoutDescAbove, Style: StyleBold, Prefixes: []string{"🎁 ", "🏆 ", "💸 "}},
		{Tag: "styled_inline_bold", Layout: LayoutDescFirst, Style: StyleBold, Separators: []string{" — ", " 👉 "}},
		{Tag: "styled_inline_italic", Layout: LayoutDescFirst, Style: StyleItalic, Separators: []string{": ", " → "}},
		{Tag: "styled_url_first_bold_italic", Layout: LayoutURLFirst, Style: StyleBoldItalic, Prefixes: []string{"🔗 ", "🎯 "}, Separators: []string{" — ", " • "}},
		{Tag: "blockquote_desc_above_url", Layout: LayoutDescAbove, Style: StyleBlockquote},
		{Tag: "blockquote_hyperlink", Layout: LayoutHyperlink, Style: StyleBlockquote, Prefixes: []string{"", "🎁 "}},
	}
}
