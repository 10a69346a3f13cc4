package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/headline-service/internal/dom"
	"github.com/user/headline-service/internal/entity"
)

const pageURL = "https://news.example/home"

func testConfig() SiteConfig {
	return SiteConfig{
		Source:             "TEST",
		Language:           "English",
		HeadlineSelector:   ".hl-title",
		HeadlineContainers: []string{"a", `[class*="hl-box"]`},
		RegularSelectors:   []string{".story", `[class*="title"]`},
		RegularContainers:  []string{"article, a"},
		RegularLinkPolicy:  LinkRequired,
		SummarySelectors:   []string{".summary", "p"},
	}
}

func parse(t *testing.T, body string) dom.Document {
	t.Helper()
	doc, err := dom.ParseString("<html><head></head><body>"+body+"</body></html>", pageURL)
	require.NoError(t, err)
	return doc
}

func titles(records []entity.NewsRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func countHeadlines(records []entity.NewsRecord) int {
	n := 0
	for _, r := range records {
		if r.IsHeadline() {
			n++
		}
	}
	return n
}

func TestExtract_StormScenario(t *testing.T) {
	doc := parse(t, `
<div class="hero"><a href="/a/1"><h1 class="hl-title">Storm hits capital</h1></a></div>
<ul>
  <li><a href="/b/1"><span class="item-title">Economy rises</span></a></li>
  <li><a href="/b/2"><span class="item-title">Sports update</span></a></li>
  <li><a href="/b/3"><span class="item-title">Economy rises</span></a></li>
</ul>`)

	records := NewEngine(testConfig()).Extract(doc)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"Storm hits capital", "Economy rises", "Sports update"}, titles(records))

	assert.Equal(t, entity.Headline, records[0].Classification)
	assert.Equal(t, "https://news.example/a/1", records[0].Link)
	assert.Equal(t, entity.Regular, records[1].Classification)
	assert.Equal(t, "https://news.example/b/1", records[1].Link)
	assert.Equal(t, entity.Regular, records[2].Classification)
	assert.Equal(t, "https://news.example/b/2", records[2].Link)

	for _, r := range records {
		assert.Equal(t, "TEST", r.Source)
		assert.Equal(t, "English", r.Language)
	}
}

func TestExtract_DedupTrimmedTitles(t *testing.T) {
	doc := parse(t, `
<a href="/1"><span class="item-title">  Same   story </span></a>
<a href="/2"><span class="item-title">Same story</span></a>
<a href="/3"><span class="item-title">same story</span></a>`)

	records := NewEngine(testConfig()).Extract(doc)

	assert.Equal(t, []string{"Same story", "same story"}, titles(records))
	assert.Equal(t, "https://news.example/1", records[0].Link)
}

func TestExtract_AtMostOneHeadline(t *testing.T) {
	doc := parse(t, `
<a href="/lead"><h1 class="hl-title">First lead</h1></a>
<a href="/other"><h1 class="hl-title">Second lead</h1></a>
<a href="/r"><span class="item-title">Regular one</span></a>`)

	records := NewEngine(testConfig()).Extract(doc)

	assert.Equal(t, 1, countHeadlines(records))
	assert.Equal(t, []string{"First lead", "Second lead", "Regular one"}, titles(records))
	assert.Equal(t, entity.Regular, records[1].Classification)
}

func TestExtract_HeadlineFirstEvenWhenLaterInDOM(t *testing.T) {
	doc := parse(t, `
<a href="/r1"><span class="item-title">Early regular</span></a>
<a href="/lead"><h1 class="hl-title">Lead story</h1></a>`)

	records := NewEngine(testConfig()).Extract(doc)

	require.Len(t, records, 2)
	assert.True(t, records[0].IsHeadline())
	assert.Equal(t, "Lead story", records[0].Title)
	for _, r := range records[1:] {
		assert.False(t, r.IsHeadline())
	}
}

func TestExtract_HeadlineWithoutContainerUsesPageURL(t *testing.T) {
	doc := parse(t, `<section><h1 class="hl-title">Quiet day</h1></section>`)

	records := NewEngine(testConfig()).Extract(doc)

	require.Len(t, records, 1)
	assert.True(t, records[0].IsHeadline())
	assert.Equal(t, pageURL, records[0].Link)
}

func TestExtract_HeadlineLinkFromContainerAttribute(t *testing.T) {
	doc := parse(t, `
<div class="hl-box__wrap" data-href="/lead/9">
  <img src="/img/lead.jpg">
  <h1 class="hl-title">Lead in a box</h1>
  <p>Lead summary</p>
</div>`)

	records := NewEngine(testConfig()).Extract(doc)

	require.Len(t, records, 1)
	assert.Equal(t, "https://news.example/lead/9", records[0].Link)
	require.NotNil(t, records[0].Image)
	assert.Equal(t, "https://news.example/img/lead.jpg", *records[0].Image)
	assert.Equal(t, "Lead summary", records[0].Summary)
}

func TestExtract_EmptyHeadlineTitleIsDiscarded(t *testing.T) {
	doc := parse(t, `<a href="/lead"><h1 class="hl-title">   </h1></a>`)

	records := NewEngine(testConfig()).Extract(doc)

	assert.Empty(t, records)
}

func TestExtract_NoMatchesYieldsEmptyList(t *testing.T) {
	doc := parse(t, `<div class="nav"><a href="/x">Home</a></div>`)

	records := NewEngine(testConfig()).Extract(doc)

	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestExtract_RegularLinkPolicy(t *testing.T) {
	body := `<div><h3 class="item-title">Orphan story</h3></div>`

	required := NewEngine(testConfig()).Extract(parse(t, body))
	assert.Empty(t, required)

	cfg := testConfig()
	cfg.RegularLinkPolicy = LinkFallbackToPage
	kept := NewEngine(cfg).Extract(parse(t, body))
	require.Len(t, kept, 1)
	assert.Equal(t, pageURL, kept[0].Link)
	assert.Equal(t, entity.Regular, kept[0].Classification)
}

func TestExtract_RegularContainerFromArticle(t *testing.T) {
	doc := parse(t, `
<a href="/wrapped">
  <article>
    <img src="/img/a.jpg">
    <h3 class="story">Wrapped article</h3>
    <span class="summary">Short summary</span>
  </article>
</a>`)

	records := NewEngine(testConfig()).Extract(doc)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "https://news.example/wrapped", rec.Link)
	require.NotNil(t, rec.Image)
	assert.Equal(t, "https://news.example/img/a.jpg", *rec.Image)
	assert.Equal(t, "Short summary", rec.Summary)
}

func TestExtract_LinkAttributeOnContainer(t *testing.T) {
	cfg := testConfig()
	cfg.RegularContainers = []string{".card"}
	doc := parse(t, `<div class="card" data-url="/c/9"><h3 class="item-title">Card story</h3></div>`)

	records := NewEngine(cfg).Extract(doc)

	require.Len(t, records, 1)
	assert.Equal(t, "https://news.example/c/9", records[0].Link)
}

func TestExtract_ResolvesAgainstBaseHref(t *testing.T) {
	doc, err := dom.ParseString(`<html><head><base href="/edition/"></head><body>
<a href="story-1"><span class="item-title">Based story</span></a></body></html>`, pageURL)
	require.NoError(t, err)

	records := NewEngine(testConfig()).Extract(doc)

	require.Len(t, records, 1)
	assert.Equal(t, "https://news.example/edition/story-1", records[0].Link)
}

func TestExtract_MaxRecords(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRecords = 2
	doc := parse(t, `
<a href="/lead"><h1 class="hl-title">Lead</h1></a>
<a href="/1"><span class="item-title">One</span></a>
<a href="/2"><span class="item-title">Two</span></a>
<a href="/3"><span class="item-title">Three</span></a>`)

	records := NewEngine(cfg).Extract(doc)

	assert.Equal(t, []string{"Lead", "One", "Two"}, titles(records))
}

func TestExtract_NoHeadlineSelector(t *testing.T) {
	cfg := testConfig()
	cfg.HeadlineSelector = ""
	doc := parse(t, `<a href="/lead"><h1 class="hl-title">Lead</h1></a>`)

	records := NewEngine(cfg).Extract(doc)

	require.Len(t, records, 1)
	assert.Equal(t, entity.Regular, records[0].Classification)
}

func TestSiteConfig_Validate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *SiteConfig)
	}{
		{"missing source", func(c *SiteConfig) { c.Source = "" }},
		{"no regular selectors", func(c *SiteConfig) { c.RegularSelectors = nil }},
		{"bad headline selector", func(c *SiteConfig) { c.HeadlineSelector = "[[[" }},
		{"bad summary selector", func(c *SiteConfig) { c.SummarySelectors = []string{"p", "div["} }},
		{"unknown policy", func(c *SiteConfig) { c.RegularLinkPolicy = "sometimes" }},
		{"negative max", func(c *SiteConfig) { c.MaxRecords = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestExtract_TitlesUseVisibleText(t *testing.T) {
	doc := parse(t, `
<a href="/1"><h3 class="item-title">Storm<br>hits capital</h3></a>
<a href="/2"><div class="card-title"><p>Economy</p><p>rises</p></div></a>
<a href="/3"><h3 class="item-title">Quake<script>var x=1;</script></h3></a>
<a href="/4"><h3 class="item-title">Storm hits<br/>capital</h3></a>`)

	records := NewEngine(testConfig()).Extract(doc)

	assert.Equal(t, []string{"Storm hits capital", "Economy rises", "Quake"}, titles(records))
}

// unknownPageDoc is a document whose final location was not reported.
type unknownPageDoc struct {
	dom.Document
}

func (unknownPageDoc) PageURL() *url.URL { return nil }

func TestExtract_UnknownPageURL(t *testing.T) {
	doc := unknownPageDoc{parse(t, `
<section><h1 class="hl-title">Quiet day</h1></section>
<a href="/r"><span class="item-title">Linked story</span></a>`)}

	var records []entity.NewsRecord
	require.NotPanics(t, func() { records = NewEngine(testConfig()).Extract(doc) })

	assert.Equal(t, []string{"Linked story"}, titles(records))
	assert.Equal(t, "https://news.example/r", records[0].Link)
}
