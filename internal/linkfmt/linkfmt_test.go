package linkfmt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testURL  = "https://casino.example/promo?ref=win&utm=tg"
	testDesc = "Бонус 150% & 100 FS"
)

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()

	require.Len(t, cats, 20)
	tags := map[string]bool{}
	for _, c := range cats {
		assert.False(t, tags[c.Tag], "duplicate tag %s", c.Tag)
		tags[c.Tag] = true
	}
}

func TestFormatRotationCoverage(t *testing.T) {
	f := New(DefaultCategories())
	seenTags := map[string]int{}
	seenBlocks := map[string]bool{}

	for i := range f.Size() {
		c, ok := f.Category(i)
		require.True(t, ok)
		seenTags[c.Tag]++
		seenBlocks[f.Format(testURL, testDesc, i)] = true
	}

	assert.Len(t, seenTags, f.Size())
	for tag, n := range seenTags {
		assert.Equal(t, 1, n, tag)
	}
	assert.Len(t, seenBlocks, f.Size(), "every category renders differently")
}

func TestFormat(t *testing.T) {
	f := New(DefaultCategories())
	u := "https://casino.example/promo?ref=win&amp;utm=tg"
	d := "Бонус 150% &amp; 100 FS"

	tests := []struct {
		index int
		want  string
	}{
		{0, u + " — " + d},
		{1, "👉 " + u + " — " + d},
		{4, u + "\n" + d},
		{8, `<a href="` + u + `">` + d + `</a>`},
		{11, "<b>" + d + "</b>\n" + u},
		{18, "<blockquote>" + d + "\n" + u + "</blockquote>"},
		{20, u + " - " + d},
		{21, "🔗 " + u + " | " + d},
		{-20, u + " — " + d},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.index), func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(testURL, testDesc, tt.index))
		})
	}
}

func TestFormatEmptyTable(t *testing.T) {
	f := New(nil)

	assert.Equal(t, "https://x.example — a &lt;b&gt;", f.Format("https://x.example", "a <b>", 3))
	_, ok := f.Category(0)
	assert.False(t, ok)
}

func TestExtractEveryCategory(t *testing.T) {
	f := New(DefaultCategories())

	for i, c := range DefaultCategories() {
		t.Run(c.Tag, func(t *testing.T) {
			block := f.Format(testURL, testDesc, i)
			text := "Первый абзац про занос.\n\n" + block + "\n\nПоследний абзац."

			got, ok := Extract(text, testURL)

			require.True(t, ok)
			assert.Equal(t, block, got.Text)
		})
	}
}

func TestExtractOrder(t *testing.T) {
	url := "https://casino.example"

	t.Run("HyperlinkBeatsInline", func(t *testing.T) {
		text := url + " — bonus\n<a href=\"" + url + "\">bonus</a>"

		got, ok := Extract(text, url)

		require.True(t, ok)
		assert.Equal(t, 1, got.StartLine)
	})

	t.Run("UrlThenNextLine", func(t *testing.T) {
		text := "intro\n" + url + "\nbonus"

		got, ok := Extract(text, url)

		require.True(t, ok)
		assert.Equal(t, url+"\nbonus", got.Text)
	})

	t.Run("PrevLineThenUrl", func(t *testing.T) {
		text := "bonus\n" + url + "\n\noutro"

		got, ok := Extract(text, url)

		require.True(t, ok)
		assert.Equal(t, "bonus\n"+url, got.Text)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, ok := Extract("no links here", url)
		assert.False(t, ok)

		_, ok = Extract(url, url)
		assert.False(t, ok, "a bare url has no description")
	})
}

func TestPlacementIndexBounds(t *testing.T) {
	for _, p := range Placements {
		for n := range 12 {
			idx := p.Index(n)
			assert.GreaterOrEqual(t, idx, 0, "%s n=%d", p, n)
			assert.LessOrEqual(t, idx, n, "%s n=%d", p, n)
		}
	}

	assert.Equal(t, 0, PlacementTop.Index(5))
	assert.Equal(t, 1, PlacementAfter1.Index(5))
	assert.Equal(t, 2, PlacementAfter2.Index(5))
	assert.Equal(t, 2, PlacementMid.Index(5))
	assert.Equal(t, 4, PlacementBeforeLast.Index(5))
	assert.Equal(t, 5, PlacementBottom.Index(5))
	assert.Equal(t, 1, PlacementAfter2.Index(1))
}

func TestPlacementFor(t *testing.T) {
	for i, p := range Placements {
		assert.Equal(t, p, PlacementFor(i))
		assert.Equal(t, p, PlacementFor(i+len(Placements)))
	}
	assert.Equal(t, PlacementBottom, PlacementFor(-1))
}

func TestRelocate(t *testing.T) {
	url := "https://casino.example"
	block := "🎁 Бонус 100%\n" + url
	text := "Первый.\n\n" + block + "\n\nВторой.\n\nТретий."

	t.Run("Bottom", func(t *testing.T) {
		got := Relocate(text, url, PlacementBottom)

		assert.Equal(t, "Первый.\n\nВторой.\n\nТретий.\n\n"+block, got)
	})

	t.Run("Top", func(t *testing.T) {
		got := Relocate(text, url, PlacementTop)

		assert.True(t, strings.HasPrefix(got, block+"\n\n"))
		assert.Equal(t, 1, strings.Count(got, url))
	})

	t.Run("NoBlockKeepsText", func(t *testing.T) {
		assert.Equal(t, text, Relocate(text, "https://other.example", PlacementTop))
	})
}

func TestInsertIntoEmptyText(t *testing.T) {
	assert.Equal(t, "block", Insert("", "block", PlacementMid))
}
