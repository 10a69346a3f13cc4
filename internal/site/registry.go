package site

import (
	"github.com/rotisserie/eris"

	"github.com/user/headline-service/internal/repository"
)

// Registry is an immutable, ordered set of validated sites.
type Registry struct {
	order  []string
	byName map[string]Site
}

// NewRegistry validates sites and indexes them by name. Names and non-zero
// ports must be unique.
func NewRegistry(sites ...Site) (*Registry, error) {
	r := &Registry{byName: make(map[string]Site, len(sites))}
	ports := make(map[int]string)
	for _, s := range sites {
		s = s.withDefaults()
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, eris.Errorf("site: duplicate site %q", s.Name)
		}
		if s.Port != 0 {
			if other, dup := ports[s.Port]; dup {
				return nil, eris.Errorf("site: %s and %s both use port %d", other, s.Name, s.Port)
			}
			ports[s.Port] = s.Name
		}
		r.byName[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	return r, nil
}

// Get returns the named site or an error wrapping repository.ErrSiteNotFound.
func (r *Registry) Get(name string) (Site, error) {
	s, ok := r.byName[name]
	if !ok {
		return Site{}, eris.Wrapf(repository.ErrSiteNotFound, "%q", name)
	}
	return s, nil
}

// All returns the sites in registration order.
func (r *Registry) All() []Site {
	out := make([]Site, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
