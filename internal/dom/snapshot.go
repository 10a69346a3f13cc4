package dom

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// Snapshot is a Document backed by a parsed goquery document.
type Snapshot struct {
	doc  *goquery.Document
	page *url.URL
	base *url.URL
}

// Parse reads HTML from r. pageURL must be absolute; it becomes the base for
// relative references unless the page declares its own <base href>.
func Parse(r io.Reader, pageURL string) (*Snapshot, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "dom: parse page url %q", pageURL)
	}
	if !page.IsAbs() {
		return nil, eris.Errorf("dom: page url %q is not absolute", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "dom: parse html")
	}

	base := page
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = page.ResolveReference(u)
		}
	}

	return &Snapshot{doc: doc, page: page, base: base}, nil
}

// ParseString is Parse for an in-memory HTML string.
func ParseString(src, pageURL string) (*Snapshot, error) {
	return Parse(strings.NewReader(src), pageURL)
}

func (s *Snapshot) PageURL() *url.URL { return s.page }

func (s *Snapshot) BaseURL() *url.URL { return s.base }

func (s *Snapshot) Query(selector string) (Element, bool) {
	return first(s.doc.Find(selector))
}

func (s *Snapshot) QueryAll(selector string) []Element {
	return wrapAll(s.doc.Find(selector))
}

type node struct {
	sel *goquery.Selection
}

func (n node) Tag() string { return goquery.NodeName(n.sel) }

func (n node) Attr(name string) (string, bool) { return n.sel.Attr(name) }

func (n node) Text() string {
	var b strings.Builder
	for _, el := range n.sel.Nodes {
		writeVisibleText(&b, el)
	}
	return b.String()
}

func (n node) Parent() (Element, bool) {
	return first(n.sel.Parent())
}

func (n node) Matches(selector string) bool { return n.sel.Is(selector) }

func (n node) Query(selector string) (Element, bool) {
	return first(n.sel.Find(selector))
}

func (n node) QueryAll(selector string) []Element {
	return wrapAll(n.sel.Find(selector))
}

func first(sel *goquery.Selection) (Element, bool) {
	if sel.Length() == 0 {
		return nil, false
	}
	return node{sel: sel.First()}, true
}

func wrapAll(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, node{sel: s})
	})
	return out
}

// hiddenElements never contribute text to what a visitor reads.
var hiddenElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// blockElements start and end a line when rendered.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "details": true, "dialog": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hgroup": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true, "td": true,
	"th": true, "tr": true, "ul": true,
}

// writeVisibleText appends the rendered text of n to b. Line breaks and block
// boundaries become a space so adjacent words stay apart.
func writeVisibleText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteByte(' ')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}
