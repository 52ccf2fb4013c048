package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads a YAML catalog from path. Fields of the defaults section that are
// missing or zero take the built-in values. The result is validated.
//
// Keys of the activities map are place names and must not contain dots.
func Load(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var c Catalog
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	c.fillDefaults()
	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

func (c *Catalog) fillDefaults() {
	builtin := Default().Defaults
	if c.Defaults.BudgetInRupees == 0 {
		c.Defaults.BudgetInRupees = builtin.BudgetInRupees
	}
	if c.Defaults.DurationInDays == 0 {
		c.Defaults.DurationInDays = builtin.DurationInDays
	}
	if c.Defaults.PartySize == 0 {
		c.Defaults.PartySize = builtin.PartySize
	}
	if c.Limits.MaxDurationInDays == 0 {
		c.Limits.MaxDurationInDays = DefaultMaxDurationInDays
	}
}

// Validate reports every malformed entry of the catalog.
func (c *Catalog) Validate() error {
	var errs []error

	if len(c.Destinations) == 0 {
		errs = append(errs, errors.New("destinations: at least one destination is required"))
	}
	seen := make(map[string]bool, len(c.Destinations))
	for i, d := range c.Destinations {
		key := strings.ToLower(strings.TrimSpace(d))
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("destinations[%d]: name is blank", i))
		case seen[key]:
			errs = append(errs, fmt.Errorf("destinations[%d]: duplicate %q", i, d))
		}
		seen[key] = true
	}

	for place, acts := range c.ActivityMap {
		if strings.TrimSpace(place) == "" {
			errs = append(errs, errors.New("activities: blank place name"))
		}
		if len(acts) == 0 {
			errs = append(errs, fmt.Errorf("activities[%s]: no activities", place))
		}
	}
	if len(c.GenericActivities) == 0 {
		errs = append(errs, errors.New("generic_activities: at least one activity is required"))
	}

	for i, t := range c.TransportOptions {
		if strings.TrimSpace(t.Mode) == "" {
			errs = append(errs, fmt.Errorf("transport[%d]: mode is blank", i))
		}
		if t.Cost < 0 {
			errs = append(errs, fmt.Errorf("transport[%d]: negative cost %v", i, t.Cost))
		}
	}

	names := make(map[string]bool, len(c.Topics))
	for i, t := range c.Topics {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("topics[%d]: name is blank", i))
		} else if names[t.Name] {
			errs = append(errs, fmt.Errorf("topics[%d]: duplicate name %q", i, t.Name))
		}
		names[t.Name] = true
		if len(t.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("topics[%d]: no keywords", i))
		}
		for j, kw := range t.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("topics[%d].keywords[%d]: blank keyword", i, j))
			}
		}
		if strings.TrimSpace(t.Response) == "" {
			errs = append(errs, fmt.Errorf("topics[%d]: response is blank", i))
		}
	}

	if len(c.PlanningKeywords) == 0 {
		errs = append(errs, errors.New("planning_keywords: at least one keyword is required"))
	}
	for i, kw := range c.PlanningKeywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, fmt.Errorf("planning_keywords[%d]: blank keyword", i))
		}
	}
	if len(c.DefaultPlaces) == 0 {
		errs = append(errs, errors.New("default_places: at least one place is required"))
	}

	if c.Defaults.BudgetInRupees < 1 {
		errs = append(errs, fmt.Errorf("defaults.budget_in_rupees: must be positive, got %d", c.Defaults.BudgetInRupees))
	}
	if c.Defaults.DurationInDays < 1 {
		errs = append(errs, fmt.Errorf("defaults.duration_in_days: must be positive, got %d", c.Defaults.DurationInDays))
	}
	if c.Defaults.PartySize < 1 {
		errs = append(errs, fmt.Errorf("defaults.party_size: must be positive, got %d", c.Defaults.PartySize))
	}
	if c.Limits.MaxDurationInDays < 0 {
		errs = append(errs, fmt.Errorf("limits.max_duration_in_days: must not be negative, got %d", c.Limits.MaxDurationInDays))
	} else if c.Defaults.DurationInDays > c.MaxDuration() {
		errs = append(errs, fmt.Errorf("defaults.duration_in_days: %d exceeds limits.max_duration_in_days %d",
			c.Defaults.DurationInDays, c.MaxDuration()))
	}

	return errors.Join(errs...)
}
