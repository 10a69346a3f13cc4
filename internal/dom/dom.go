// Package dom exposes the small read-only view of a rendered page that the
// extraction engine works against. The goquery-backed Snapshot is the
// production implementation; tests build snapshots from inline HTML.
package dom

import (
	"net/url"
	"strings"
)

// Element is a single DOM element.
type Element interface {
	// Tag returns the lower-case element name.
	Tag() string
	Attr(name string) (string, bool)
	// Text returns the text a visitor sees in the element: script and style
	// contents are left out, and line breaks and block boundaries separate
	// words with whitespace. The result is not normalized.
	Text() string
	// Parent returns the parent element; false at the root.
	Parent() (Element, bool)
	// Matches reports whether the element itself matches a CSS selector group.
	Matches(selector string) bool
	Query(selector string) (Element, bool)
	QueryAll(selector string) []Element
}

// Document is a queryable page snapshot.
type Document interface {
	// PageURL is the location the browser ended up on.
	PageURL() *url.URL
	// BaseURL is the URL relative references resolve against. It differs from
	// PageURL when the page declares <base href>.
	BaseURL() *url.URL
	Query(selector string) (Element, bool)
	// QueryAll returns matches in document order.
	QueryAll(selector string) []Element
}

// NearestAncestorMatching walks from el (inclusive) towards the root and
// returns the first element for which match is true.
func NearestAncestorMatching(el Element, match func(Element) bool) (Element, bool) {
	if el == nil {
		return nil, false
	}
	for cur, ok := el, true; ok; cur, ok = cur.Parent() {
		if match(cur) {
			return cur, true
		}
	}
	return nil, false
}

// MatchesSelector adapts a CSS selector group to an ancestor predicate.
func MatchesSelector(selector string) func(Element) bool {
	return func(el Element) bool {
		return el.Matches(selector)
	}
}

// HasTag matches elements by name.
func HasTag(tag string) func(Element) bool {
	tag = strings.ToLower(tag)
	return func(el Element) bool {
		return el.Tag() == tag
	}
}

// NormalizeText trims s and collapses internal whitespace runs to one space,
// which is how rendered text reads to a visitor.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
