package posttext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixLinks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"SpacedScheme", "Жми https : // casino.example/promo", "Жми https://casino.example/promo"},
		{"UpperScheme", "HTTPS:/ /casino.example", "https://casino.example"},
		{"MarkdownLink", "Забирай [бонус](https://casino.example/p?a=1) сейчас", `Забирай <a href="https://casino.example/p?a=1">бонус</a> сейчас`},
		{"Untouched", "https://casino.example", "https://casino.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FixLinks(tt.in))
		})
	}
}

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Bold", "**Занос** дня", "<b>Занос</b> дня"},
		{"UnderscoreBold", "__Gates of Olympus__", "<b>Gates of Olympus</b>"},
		{"Italic", "это *невероятно* круто", "это <i>невероятно</i> круто"},
		{"Heading", "## Большой выигрыш\nтекст", "<b>Большой выигрыш</b>\nтекст"},
		{"Bullets", "список:\n\n- раз\n- два", "список:\n\n• раз\n• два"},
		{"Strike", "~~x100~~ x500", "<s>x100</s> x500"},
		{"Code", "`promo2024`", "<code>promo2024</code>"},
		{"SnakeCaseStays", "user_name_here", "user_name_here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkdownToHTML(tt.in))
		})
	}
}

func TestStripForbidden(t *testing.T) {
	words := []string{"казино", "гарантированно", "casino"}

	got := StripForbidden("Казино дарит бонус, гарантированно казино casino!", words)

	assert.Equal(t, " дарит бонус, !", got)
	assert.Equal(t, "Казиномания", StripForbidden("Казиномания", words), "only whole words are removed")
	assert.Equal(t, "text", StripForbidden("text", nil))
}

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"SupportedTagsKept", "<b>a</b> <i>b</i> <u>c</u>", "<b>a</b> <i>b</i> <u>c</u>"},
		{"AliasesNormalized", "<strong>a</strong><em>b</em>", "<b>a</b><i>b</i>"},
		{"UnsupportedDropped", `<span class="x">a</span><h1>b</h1>`, "ab"},
		{"LineBreaks", "a<br>b<p>c</p>d", "a\nbc\n\nd"},
		{"StrayBrackets", "x < 5 && y > 2", "x &lt; 5 &amp;&amp; y &gt; 2"},
		{"EntitiesKept", "Tom &amp; Jerry &#169;", "Tom &amp; Jerry &#169;"},
		{"AnchorAttributes", `<a target="_blank" href="https://x.example/?a=1&b=2">go</a>`, `<a href="https://x.example/?a=1&amp;b=2">go</a>`},
		{"AnchorWithoutHref", `<a name="x">go</a>`, "go"},
		{"UnclosedAnchor", `<a href="https://x.example">go`, `<a href="https://x.example">go</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeHTML(tt.in))
		})
	}
}

func TestNormalizeParagraphs(t *testing.T) {
	assert.Equal(t, "a\n\nb\nc", NormalizeParagraphs("  a  \r\n\r\n\r\n\nb \nc\n\n"))
}

func TestClean(t *testing.T) {
	raw := "## Занос в **Sweet Bonanza**\n\n\n\nСтавка 300 ₽ <-> выигрыш 15 000 ₽, казино в шоке.\n\nЗабирай [бонус](https : //casino.example/p)"

	got := Clean(raw, []string{"казино"})

	assert.Equal(t, "<b>Занос в <b>Sweet Bonanza</b></b>\n\nСтавка 300 ₽ &lt;-&gt; выигрыш 15 000 ₽, в шоке.\n\nЗабирай <a href=\"https://casino.example/p\">бонус</a>", got)
}
