// Package chem holds the read-only chemical registry and reaction table the
// mixing engine consults. Both are built once from lab data and never mutate,
// so a single instance can be shared by every workspace.
package chem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
	"github.com/tatianab/virtual-lab/internal/models"
)

// White is the colour of an empty vessel and the fallback for bad colour data.
var White = colorful.Color{R: 1, G: 1, B: 1}

// ParseColor parses "#rrggbb" or "#rgb"; the leading '#' is optional.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return White, fmt.Errorf("empty colour")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return White, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// Registry maps chemical ids to their properties.
type Registry struct {
	chemicals map[string]models.Chemical
	colors    map[string]colorful.Color
	ids       []string
}

// NewRegistry copies the chemicals and pre-parses their colours. Chemicals
// with unreadable colours are kept and rendered white.
func NewRegistry(chemicals map[string]models.Chemical, log logrus.FieldLogger) *Registry {
	r := &Registry{
		chemicals: make(map[string]models.Chemical, len(chemicals)),
		colors:    make(map[string]colorful.Color, len(chemicals)),
		ids:       make([]string, 0, len(chemicals)),
	}
	for id, chem := range chemicals {
		chem.ID = id
		c, err := ParseColor(chem.Color)
		if err != nil {
			log.WithField("chemical", id).Warnf("using white: %v", err)
		}
		r.chemicals[id] = chem
		r.colors[id] = c
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r
}

// Get returns the chemical registered under id.
func (r *Registry) Get(id string) (models.Chemical, bool) {
	chem, ok := r.chemicals[id]
	return chem, ok
}

// Color returns the chemical's colour, or white if id is unknown.
func (r *Registry) Color(id string) (colorful.Color, bool) {
	c, ok := r.colors[id]
	if !ok {
		return White, false
	}
	return c, true
}

// IDs lists every chemical id in sorted order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

func (r *Registry) Len() int {
	return len(r.ids)
}
