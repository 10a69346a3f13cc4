package site

import (
	"github.com/user/headline-service/internal/extractor"
	"github.com/user/headline-service/internal/repository"
)

const portuguese = "Portuguese"

// G1 is the g1.globo.com homepage. Its lead story only renders after the
// hero carousel initializes, hence the marker.
func G1() Site {
	return Site{
		Name: "g1",
		URL:  "https://g1.globo.com/",
		Port: 3000,
		Wait: repository.WaitPolicy{
			Settle:   defaultSettle,
			Marker:   ".bstn-hl-title",
			Resettle: defaultResettle,
		},
		Extraction: extractor.SiteConfig{
			Source:             "G1",
			Language:           portuguese,
			HeadlineSelector:   ".bstn-hl-title",
			HeadlineContainers: []string{"a", `[class*="bstn-hl"]`},
			RegularSelectors:   []string{".feed-post-link", ".bstn-fd-item-title", `[class*="title"]`},
			RegularContainers:  []string{"a"},
			RegularLinkPolicy:  extractor.LinkRequired,
			SummarySelectors:   []string{".feed-post-body-resumo", ".bstn-hl-summary", `[class*="resumo"]`},
		},
	}
}

// CNN is the cnnbrasil.com.br homepage.
func CNN() Site {
	return Site{
		Name: "cnn",
		URL:  "https://www.cnnbrasil.com.br/",
		Port: 3001,
		Wait: repository.WaitPolicy{Settle: defaultSettle},
		Extraction: extractor.SiteConfig{
			Source:             "CNN",
			Language:           portuguese,
			HeadlineSelector:   ".block__news__title",
			HeadlineContainers: []string{"a", `[class*="bstn-hl"]`},
			RegularSelectors:   []string{".block__news__related", ".block__news__item", `[class*="title"]`},
			RegularContainers:  []string{"article, .news-item, a"},
			RegularLinkPolicy:  extractor.LinkRequired,
			SummarySelectors:   []string{".block__news__description", ".block__news__subtitle", `[class*="description"]`},
		},
	}
}

// Builtin returns the built-in sites in a stable order.
func Builtin() []Site {
	return []Site{G1(), CNN()}
}
