package utils

import (
	"net/url"
	"strings"
)

// ResolveURL converts ref to an absolute http(s) URL against base. It reports
// false for empty refs, fragment-only refs and non-web schemes such as
// javascript: or data:, so callers never see a relative or script URL.
func ResolveURL(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	relURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	abs := relURL
	if base != nil {
		abs = base.ResolveReference(relURL)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if abs.Host == "" {
		return "", false
	}
	return abs.String(), true
}

// FirstSrcsetURL returns the URL of the first candidate in a srcset value,
// e.g. "a.jpg 1x, b.jpg 2x" yields "a.jpg".
func FirstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
