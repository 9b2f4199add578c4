// Package dataset loads the contestant catalog sessions are seeded from.
//
// A catalog file has a contestant table keyed by id and an ordered list of
// groups referencing those ids:
//
//	contestants:
//	  "101": {name: Marisol Vega, season: 1}
//	groups:
//	  - name: Season 1
//	    contestants: ["101"]
package dataset

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/okian/tierlist/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Defaults applied to contestant fields the catalog leaves empty.
const (
	DefaultSeason   = 1
	DefaultStatus   = "Contestant"
	DefaultImageURL = "/default-contestant.jpg"
)

type file struct {
	Contestants map[string]map[string]any `yaml:"contestants"`
	Groups      []struct {
		Name        string   `yaml:"name"`
		Contestants []string `yaml:"contestants"`
	} `yaml:"groups"`
}

// Group is a named, ordered pool of contestants.
type Group struct {
	Name        string             `json:"name"`
	Contestants []model.Contestant `json:"contestants"`
}

// Summary describes a group without its contestants.
type Summary struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Catalog is an immutable set of groups.
type Catalog struct {
	groups  []Group
	byName  map[string]int
	total   int
	missing []string
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog. Group entries referencing unknown ids are skipped
// and reported by Missing.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(f.Groups) == 0 {
		return nil, ErrNoGroups
	}

	c := &Catalog{byName: make(map[string]int, len(f.Groups))}
	seen := make(map[string]struct{})
	for _, g := range f.Groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, ErrEmptyGroup
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGrp, name)
		}

		group := Group{Name: name, Contestants: make([]model.Contestant, 0, len(g.Contestants))}
		for _, id := range g.Contestants {
			fields, ok := f.Contestants[id]
			if !ok {
				c.missing = append(c.missing, name+"/"+id)
				continue
			}
			group.Contestants = append(group.Contestants, contestant(id, fields))
			seen[id] = struct{}{}
		}
		c.byName[name] = len(c.groups)
		c.groups = append(c.groups, group)
	}
	c.total = len(seen)
	return c, nil
}

func contestant(id string, fields map[string]any) model.Contestant {
	c := model.Contestant{
		ID:          id,
		Name:        str(fields, "name"),
		Season:      fields["season"],
		Status:      str(fields, "status"),
		Description: str(fields, "description"),
		ImageURL:    str(fields, "imageUrl"),
		VideoURL:    str(fields, "videoUrl"),
	}
	if c.Name == "" {
		c.Name = "Contestant " + id
	}
	if c.Season == nil {
		c.Season = DefaultSeason
	}
	if c.Status == "" {
		c.Status = DefaultStatus
	}
	if c.ImageURL == "" {
		c.ImageURL = DefaultImageURL
	}
	for k, v := range fields {
		switch k {
		case "id", "name", "season", "status", "description", "imageUrl", "videoUrl":
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}
	return c
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Group returns a copy of the named group's contestants.
func (c *Catalog) Group(name string) ([]model.Contestant, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return append([]model.Contestant(nil), c.groups[i].Contestants...), true
}

// First returns the name of the first group.
func (c *Catalog) First() string {
	return c.groups[0].Name
}

// Summaries lists groups in catalog order.
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, len(c.groups))
	for i, g := range c.groups {
		out[i] = Summary{Name: g.Name, Size: len(g.Contestants)}
	}
	return out
}

// Size is the number of distinct contestants referenced by any group.
func (c *Catalog) Size() int { return c.total }

// Missing lists "group/id" references that had no contestant entry.
func (c *Catalog) Missing() []string {
	return append([]string(nil), c.missing...)
}
