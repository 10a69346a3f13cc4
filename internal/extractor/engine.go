package extractor

import (
	"strings"

	"github.com/user/headline-service/internal/dom"
	"github.com/user/headline-service/internal/entity"
)

// Engine turns a homepage snapshot into an ordered list of records. It holds
// no mutable state, so one Engine per site is shared by all requests.
type Engine struct {
	cfg           SiteConfig
	regularGroup  string
	linkAttrs     []string
	allowPageLink bool
}

// NewEngine returns an engine for cfg. cfg is expected to have passed
// Validate.
func NewEngine(cfg SiteConfig) *Engine {
	return &Engine{
		cfg:           cfg,
		regularGroup:  strings.Join(cfg.RegularSelectors, ", "),
		linkAttrs:     cfg.linkAttributes(),
		allowPageLink: cfg.RegularLinkPolicy == LinkFallbackToPage,
	}
}

// Extract runs the headline pass and then the regular pass. The headline, if
// any, is always first; regular records follow in DOM order. A page that
// matches nothing yields an empty, non-nil slice.
func (e *Engine) Extract(doc dom.Document) []entity.NewsRecord {
	records := make([]entity.NewsRecord, 0, 32)
	if rec, ok := e.headline(doc); ok {
		records = append(records, rec)
	}
	return e.regulars(doc, records)
}

func (e *Engine) headline(doc dom.Document) (entity.NewsRecord, bool) {
	if e.cfg.HeadlineSelector == "" {
		return entity.NewsRecord{}, false
	}
	el, ok := doc.Query(e.cfg.HeadlineSelector)
	if !ok {
		return entity.NewsRecord{}, false
	}
	title := dom.NormalizeText(el.Text())
	if title == "" {
		return entity.NewsRecord{}, false
	}

	scope := el
	link, hasLink := "", false
	if container, ok := nearestContainer(el, e.cfg.HeadlineContainers); ok {
		scope = container
		link, hasLink = ResolveLink(container, doc, e.linkAttrs, false)
	}
	if !hasLink {
		if link, hasLink = pageLink(el, doc); !hasLink {
			return entity.NewsRecord{}, false
		}
	}

	return e.record(title, link, scope, doc, entity.Headline), true
}

func (e *Engine) regulars(doc dom.Document, records []entity.NewsRecord) []entity.NewsRecord {
	added := 0
	for _, el := range doc.QueryAll(e.regularGroup) {
		if e.cfg.MaxRecords > 0 && added >= e.cfg.MaxRecords {
			break
		}

		container, ok := nearestContainer(el, e.cfg.RegularContainers)
		if !ok {
			container = el
		}

		title := dom.NormalizeText(el.Text())
		if title == "" {
			continue
		}
		link, ok := ResolveLink(container, doc, e.linkAttrs, e.allowPageLink)
		if !ok {
			continue
		}
		if hasTitle(records, title) {
			continue
		}

		records = append(records, e.record(title, link, container, doc, entity.Regular))
		added++
	}
	return records
}

func (e *Engine) record(title, link string, scope dom.Element, doc dom.Document, class entity.Classification) entity.NewsRecord {
	rec := entity.NewsRecord{
		Title:          title,
		Link:           link,
		Summary:        ResolveSummary(scope, e.cfg.SummarySelectors),
		Classification: class,
		Source:         e.cfg.Source,
		Language:       e.cfg.Language,
	}
	if img, ok := ResolveImage(scope, doc); ok {
		rec.Image = &img
	}
	return rec
}

// nearestContainer tries each selector group in order and returns the
// nearest element at or above el matching the first one that hits.
func nearestContainer(el dom.Element, selectors []string) (dom.Element, bool) {
	for _, sel := range selectors {
		if c, ok := dom.NearestAncestorMatching(el, dom.MatchesSelector(sel)); ok {
			return c, true
		}
	}
	return nil, false
}

// hasTitle reports whether a record with title was already emitted.
func hasTitle(records []entity.NewsRecord, title string) bool {
	for _, r := range records {
		if r.Title == title {
			return true
		}
	}
	return false
}
