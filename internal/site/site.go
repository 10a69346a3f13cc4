// Package site holds the homepages the service knows how to scrape: the
// built-in adapters, a registry keyed by name, and a YAML loader for
// additional or overriding definitions.
package site

import (
	"net/url"
	"regexp"
	"time"

	"github.com/rotisserie/eris"

	"github.com/user/headline-service/internal/extractor"
	"github.com/user/headline-service/internal/repository"
)

const (
	defaultSettle   = 3 * time.Second
	defaultResettle = 2 * time.Second
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Site is one scrapeable homepage.
type Site struct {
	// Name is the URL-safe key used in routes and metrics.
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// Port, when non-zero, gets a dedicated listener answering GET / with
	// this site's headlines.
	Port       int                   `yaml:"port"`
	Wait       repository.WaitPolicy `yaml:"wait"`
	Extraction extractor.SiteConfig  `yaml:"extraction"`
}

// Validate checks the site definition including its selectors.
func (s Site) Validate() error {
	if !namePattern.MatchString(s.Name) {
		return eris.Errorf("site: invalid name %q", s.Name)
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return eris.Errorf("site: %s: url %q must be an absolute http(s) URL", s.Name, s.URL)
	}
	if s.Port < 0 || s.Port > 65535 {
		return eris.Errorf("site: %s: invalid port %d", s.Name, s.Port)
	}
	if s.Wait.Settle < 0 || s.Wait.Resettle < 0 {
		return eris.Errorf("site: %s: wait durations must not be negative", s.Name)
	}
	if err := s.Extraction.Validate(); err != nil {
		return eris.Wrapf(err, "site: %s", s.Name)
	}
	return nil
}

// withDefaults fills in the standard settle times and the link policy.
func (s Site) withDefaults() Site {
	if s.Wait.Settle == 0 {
		s.Wait.Settle = defaultSettle
	}
	if s.Wait.Marker != "" && s.Wait.Resettle == 0 {
		s.Wait.Resettle = defaultResettle
	}
	if s.Extraction.RegularLinkPolicy == "" {
		s.Extraction.RegularLinkPolicy = extractor.LinkRequired
	}
	return s
}
