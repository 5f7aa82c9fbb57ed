package segments

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"rfm-segmentation/pkg/models"
)

const (
	Best  = "best"
	Worst = "worst"
)

var labelPattern = regexp.MustCompile(`^[1-4]{3}$`)

// Segment : une vue nommée sur un ensemble de labels RFM.
type Segment struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Labels      []string `yaml:"labels"`
}

// Catalog est le schéma du fichier YAML des segments.
type Catalog struct {
	Segments []Segment `yaml:"segments"`
}

// Default : meilleurs clients {311, 411} et pires clients {444}.
func Default() Catalog {
	return Catalog{Segments: []Segment{
		{Name: Best, Description: "meilleurs clients", Labels: []string{"311", "411"}},
		{Name: Worst, Description: "pires clients", Labels: []string{"444"}},
	}}
}

// Load lit un catalogue YAML. Les segments "best" et "worst" absents
// du fichier sont repris du catalogue par défaut.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("segments: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse décode et valide un catalogue.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("segments: parse: %w", err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, fmt.Errorf("segments: %w", err)
	}
	for _, d := range Default().Segments {
		if _, ok := c.Lookup(d.Name); !ok {
			c.Segments = append(c.Segments, d)
		}
	}
	return c, nil
}

// Lookup cherche un segment par nom (insensible à la casse).
func (c Catalog) Lookup(name string) (Segment, bool) {
	for _, s := range c.Segments {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Segment{}, false
}

// MustLookup renvoie ErrUnknownSegment si le nom est absent.
func (c Catalog) MustLookup(name string) (Segment, error) {
	s, ok := c.Lookup(name)
	if !ok {
		return Segment{}, fmt.Errorf("%q: %w", name, models.ErrUnknownSegment)
	}
	return s, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	for i := range c.Segments {
		s := &c.Segments[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return fmt.Errorf("segment #%d sans nom", i+1)
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("segment %q en double", s.Name)
		}
		seen[key] = true
		if len(s.Labels) == 0 {
			return fmt.Errorf("segment %q sans label", s.Name)
		}
		for _, l := range s.Labels {
			if !labelPattern.MatchString(l) {
				return fmt.Errorf("segment %q: label %q invalide", s.Name, l)
			}
		}
	}
	return nil
}
