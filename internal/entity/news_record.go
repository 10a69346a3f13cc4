package entity

// Classification marks which extraction pass produced a record.
type Classification string

const (
	// Headline is the single lead story of a homepage.
	Headline Classification = "destaque_principal"
	// Regular is any other story on the homepage.
	Regular Classification = "comum"
)

// NewsRecord is one normalized homepage story. The JSON names match the
// payload downstream consumers already read.
type NewsRecord struct {
	Title          string         `json:"titulo"`
	Link           string         `json:"link"`
	Image          *string        `json:"imagem"`
	Summary        string         `json:"resumo"`
	Classification Classification `json:"tipo"`
	Source         string         `json:"tag"`
	Language       string         `json:"language"`
}

// IsHeadline reports whether the record came from the headline pass.
func (r NewsRecord) IsHeadline() bool {
	return r.Classification == Headline
}
