package repository

import (
	"context"
	"time"

	"github.com/user/headline-service/internal/dom"
)

// WaitPolicy tells the renderer how long to let client-side scripts settle
// before the DOM is captured.
type WaitPolicy struct {
	// Settle is the pause after the document is ready.
	Settle time.Duration `yaml:"settle"`
	// Marker is a selector that signals the main content has rendered. When
	// set and absent after Settle, the page is scrolled once and given
	// Resettle more time.
	Marker   string        `yaml:"marker"`
	Resettle time.Duration `yaml:"resettle"`
}

// Session is one open page. The snapshot stays valid after Close.
type Session interface {
	// Document returns the captured DOM.
	Document() dom.Document
	// HTML returns the captured outer HTML, for archiving.
	HTML() string
	// Close releases the browser context. It is safe to call more than once.
	Close() error
}

// Renderer loads a URL in a real browser and captures the resulting DOM.
type Renderer interface {
	// Open navigates to url and waits according to policy. The returned
	// error wraps ErrRenderTimeout or ErrNavigationFailed.
	Open(ctx context.Context, url string, policy WaitPolicy) (Session, error)
}
