package site

import (
	"bytes"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type siteFile struct {
	Sites []Site `yaml:"sites"`
}

// LoadFile reads site definitions from a YAML file of the form
//
//	sites:
//	  - name: folha
//	    url: https://www.folha.uol.com.br/
//	    wait: {settle: 3s}
//	    extraction: {...}
func LoadFile(path string) ([]Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "site: read %s", path)
	}
	var f siteFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, eris.Wrapf(err, "site: decode %s", path)
	}
	if len(f.Sites) == 0 {
		return nil, eris.Errorf("site: %s defines no sites", path)
	}
	return f.Sites, nil
}

// Merge returns base with every override applied: an override replaces the
// base site of the same name in place, otherwise it is appended.
func Merge(base, overrides []Site) []Site {
	out := append([]Site(nil), base...)
	index := make(map[string]int, len(out))
	for i, s := range out {
		index[s.Name] = i
	}
	for _, o := range overrides {
		if i, ok := index[o.Name]; ok {
			out[i] = o
			continue
		}
		index[o.Name] = len(out)
		out = append(out, o)
	}
	return out
}
