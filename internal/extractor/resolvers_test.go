package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/headline-service/internal/dom"
)

func wrapped(t *testing.T, body string) (dom.Element, dom.Document) {
	t.Helper()
	doc := parse(t, `<div id="c">`+body+`</div>`)
	el, ok := doc.Query("#c")
	require.True(t, ok)
	return el, doc
}

func TestResolveImage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain img wins over lazy",
			body: `<span data-src="/lazy.jpg"></span><img src="/primary.jpg">`,
			want: "https://news.example/primary.jpg",
		},
		{
			name: "picture srcset first candidate",
			body: `<picture><source srcset="/p-small.webp 480w, /p-large.webp 1080w"></picture>`,
			want: "https://news.example/p-small.webp",
		},
		{
			name: "picture src when no srcset",
			body: `<picture><source src="/p.webp"></picture>`,
			want: "https://news.example/p.webp",
		},
		{
			name: "lazy only",
			body: `<div data-lazy-src="//cdn.news.example/lazy.jpg"></div>`,
			want: "https://cdn.news.example/lazy.jpg",
		},
		{
			name: "data placeholder skipped",
			body: `<img src="data:image/gif;base64,R0lGOD"><span data-original="/real.jpg"></span>`,
			want: "https://news.example/real.jpg",
		},
		{
			name: "absolute url kept",
			body: `<img src="https://img.example/x.png">`,
			want: "https://img.example/x.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, doc := wrapped(t, tt.body)
			got, ok := ResolveImage(el, doc)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveImage_NothingFound(t *testing.T) {
	el, doc := wrapped(t, `<p>text only</p>`)

	_, ok := ResolveImage(el, doc)
	assert.False(t, ok)
}

func TestResolveLink(t *testing.T) {
	t.Run("anchor ancestor", func(t *testing.T) {
		doc := parse(t, `<a href="/story"><div id="c"><h2>t</h2></div></a>`)
		el, _ := doc.Query("#c")
		got, ok := ResolveLink(el, doc, DefaultLinkAttributes, false)
		require.True(t, ok)
		assert.Equal(t, "https://news.example/story", got)
	})

	t.Run("anchor beats attribute", func(t *testing.T) {
		doc := parse(t, `<a href="/from-anchor"><div id="c" data-href="/from-attr"></div></a>`)
		el, _ := doc.Query("#c")
		got, ok := ResolveLink(el, doc, DefaultLinkAttributes, false)
		require.True(t, ok)
		assert.Equal(t, "https://news.example/from-anchor", got)
	})

	t.Run("attribute order", func(t *testing.T) {
		doc := parse(t, `<div id="c" data-url="/second" data-href="/first"></div>`)
		el, _ := doc.Query("#c")
		got, ok := ResolveLink(el, doc, DefaultLinkAttributes, false)
		require.True(t, ok)
		assert.Equal(t, "https://news.example/first", got)
	})

	t.Run("non web anchor rejected", func(t *testing.T) {
		doc := parse(t, `<a href="javascript:void(0)"><div id="c"></div></a>`)
		el, _ := doc.Query("#c")
		_, ok := ResolveLink(el, doc, DefaultLinkAttributes, false)
		assert.False(t, ok)
	})

	t.Run("page fallback", func(t *testing.T) {
		el, doc := wrapped(t, ``)
		_, ok := ResolveLink(el, doc, DefaultLinkAttributes, false)
		assert.False(t, ok)

		got, ok := ResolveLink(el, doc, DefaultLinkAttributes, true)
		require.True(t, ok)
		assert.Equal(t, pageURL, got)
	})
}

func TestResolveSummary(t *testing.T) {
	selectors := []string{".summary", "p"}

	el, _ := wrapped(t, `<p>Paragraph</p><span class="summary"> Dedicated  summary </span>`)
	assert.Equal(t, "Dedicated summary", ResolveSummary(el, selectors))

	el, _ = wrapped(t, `<p>First paragraph</p><p>Second paragraph</p>`)
	assert.Equal(t, "First paragraph", ResolveSummary(el, selectors))

	el, _ = wrapped(t, `<p> </p><p>Second paragraph</p>`)
	assert.Empty(t, ResolveSummary(el, selectors))

	el, _ = wrapped(t, `<h2>No summary</h2>`)
	assert.Empty(t, ResolveSummary(el, selectors))
}
