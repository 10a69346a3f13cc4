package extractor

import (
	"strings"

	"github.com/user/headline-service/internal/dom"
	"github.com/user/headline-service/pkg/utils"
)

// resolveStep is one strategy of a resolver chain. Steps report false when
// they have nothing to offer and the next one should be tried.
type resolveStep func(el dom.Element, doc dom.Document) (string, bool)

// runChain evaluates steps in order and stops at the first success.
func runChain(steps []resolveStep, el dom.Element, doc dom.Document) (string, bool) {
	for _, step := range steps {
		if v, ok := step(el, doc); ok {
			return v, true
		}
	}
	return "", false
}

// lazyImageAttributes are the data attributes lazy loaders keep the real
// image URL in until the element scrolls into view.
var lazyImageAttributes = []string{"data-src", "data-lazy-src", "data-original"}

// ResolveLink returns the absolute story URL for container. Order:
//
//  1. href of the nearest anchor at or above container
//  2. the first of attrs present on container
//  3. the page URL, only when allowPage is set
func ResolveLink(container dom.Element, doc dom.Document, attrs []string, allowPage bool) (string, bool) {
	steps := []resolveStep{anchorHref, attributeLink(attrs)}
	if allowPage {
		steps = append(steps, pageLink)
	}
	return runChain(steps, container, doc)
}

// ResolveImage returns the absolute image URL for container. Order:
//
//	(a) src of the first descendant img; data: placeholders do not count
//	(b) srcset, then src, of a picture's source element
//	(c) the first descendant carrying a lazy-load attribute
//
// Nothing found is a valid outcome.
func ResolveImage(container dom.Element, doc dom.Document) (string, bool) {
	return runChain(imageSteps, container, doc)
}

var imageSteps = []resolveStep{imgSrc, pictureSource, lazyImage}

// ResolveSummary returns the normalized text of the first element matched
// by the first summary selector that matches inside container, or "".
func ResolveSummary(container dom.Element, selectors []string) string {
	for _, sel := range selectors {
		if el, ok := container.Query(sel); ok {
			return dom.NormalizeText(el.Text())
		}
	}
	return ""
}

func anchorHref(el dom.Element, doc dom.Document) (string, bool) {
	anchor, ok := dom.NearestAncestorMatching(el, dom.HasTag("a"))
	if !ok {
		return "", false
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return "", false
	}
	return utils.ResolveURL(doc.BaseURL(), href)
}

func attributeLink(attrs []string) resolveStep {
	return func(el dom.Element, doc dom.Document) (string, bool) {
		for _, name := range attrs {
			if v, ok := el.Attr(name); ok {
				if link, ok := utils.ResolveURL(doc.BaseURL(), v); ok {
					return link, true
				}
			}
		}
		return "", false
	}
}

func pageLink(_ dom.Element, doc dom.Document) (string, bool) {
	if doc.PageURL() == nil {
		return "", false
	}
	return doc.PageURL().String(), true
}

func imgSrc(el dom.Element, doc dom.Document) (string, bool) {
	img, ok := el.Query("img")
	if !ok {
		return "", false
	}
	src, ok := img.Attr("src")
	if !ok || strings.HasPrefix(strings.TrimSpace(src), "data:") {
		return "", false
	}
	return utils.ResolveURL(doc.BaseURL(), src)
}

func pictureSource(el dom.Element, doc dom.Document) (string, bool) {
	source, ok := el.Query("picture source")
	if !ok {
		return "", false
	}
	if srcset, ok := source.Attr("srcset"); ok {
		if u, ok := utils.ResolveURL(doc.BaseURL(), utils.FirstSrcsetURL(srcset)); ok {
			return u, true
		}
	}
	if src, ok := source.Attr("src"); ok {
		return utils.ResolveURL(doc.BaseURL(), src)
	}
	return "", false
}

func lazyImage(el dom.Element, doc dom.Document) (string, bool) {
	sel := make([]string, len(lazyImageAttributes))
	for i, attr := range lazyImageAttributes {
		sel[i] = "[" + attr + "]"
	}
	holder, ok := el.Query(strings.Join(sel, ", "))
	if !ok {
		return "", false
	}
	for _, attr := range lazyImageAttributes {
		if v, ok := holder.Attr(attr); ok {
			if u, ok := utils.ResolveURL(doc.BaseURL(), v); ok {
				return u, true
			}
		}
	}
	return "", false
}
