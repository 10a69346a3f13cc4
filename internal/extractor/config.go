package extractor

import (
	"github.com/andybalholm/cascadia"
	"github.com/rotisserie/eris"
)

// LinkPolicy decides what happens to a regular record whose container has
// no resolvable link.
type LinkPolicy string

const (
	// LinkRequired drops the record.
	LinkRequired LinkPolicy = "required"
	// LinkFallbackToPage keeps the record and links it to the page itself.
	LinkFallbackToPage LinkPolicy = "page_fallback"
)

// DefaultLinkAttributes are the non-anchor attributes some homepages put
// their story URL in.
var DefaultLinkAttributes = []string{"data-href", "data-url"}

// SiteConfig parameterises the engine for one homepage layout.
type SiteConfig struct {
	// Source and Language are stamped on every record.
	Source   string `yaml:"source"`
	Language string `yaml:"language"`

	// HeadlineSelector finds the lead story heading. Empty disables the
	// headline pass.
	HeadlineSelector string `yaml:"headline_selector"`
	// HeadlineContainers are tried in order; each one is matched against the
	// heading and its ancestors.
	HeadlineContainers []string `yaml:"headline_containers"`

	// RegularSelectors are the parallel naming schemes a site uses for story
	// headings. They are queried as one group so results keep DOM order.
	RegularSelectors  []string   `yaml:"regular_selectors"`
	RegularContainers []string   `yaml:"regular_containers"`
	RegularLinkPolicy LinkPolicy `yaml:"regular_link_policy"`

	// LinkAttributes defaults to DefaultLinkAttributes.
	LinkAttributes   []string `yaml:"link_attributes"`
	SummarySelectors []string `yaml:"summary_selectors"`

	// MaxRecords caps the regular pass; zero means no cap.
	MaxRecords int `yaml:"max_records"`
}

// Validate checks the config and compiles every selector so that a typo is
// caught at startup instead of silently matching nothing.
func (c SiteConfig) Validate() error {
	if c.Source == "" {
		return eris.New("extractor: source is required")
	}
	if len(c.RegularSelectors) == 0 {
		return eris.Errorf("extractor: %s: at least one regular selector is required", c.Source)
	}
	switch c.RegularLinkPolicy {
	case "", LinkRequired, LinkFallbackToPage:
	default:
		return eris.Errorf("extractor: %s: unknown regular link policy %q", c.Source, c.RegularLinkPolicy)
	}
	if c.MaxRecords < 0 {
		return eris.Errorf("extractor: %s: max_records must not be negative", c.Source)
	}

	selectors := make([]string, 0, 8)
	if c.HeadlineSelector != "" {
		selectors = append(selectors, c.HeadlineSelector)
	}
	selectors = append(selectors, c.HeadlineContainers...)
	selectors = append(selectors, c.RegularSelectors...)
	selectors = append(selectors, c.RegularContainers...)
	selectors = append(selectors, c.SummarySelectors...)
	for _, sel := range selectors {
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return eris.Wrapf(err, "extractor: %s: invalid selector %q", c.Source, sel)
		}
	}
	return nil
}

func (c SiteConfig) linkAttributes() []string {
	if len(c.LinkAttributes) == 0 {
		return DefaultLinkAttributes
	}
	return c.LinkAttributes
}
