package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownRegion is returned when a geographic key is not part of a contest
var ErrUnknownRegion = errors.New("unknown region")

// GeoKey identifies a geographic reporting unit of a contest
type GeoKey string

// Contest describes one election published in the semicolon feed grammar.
// The decoder and aggregator are shared by every contest; only this table differs.
type Contest struct {
	ID            string            `yaml:"id" json:"id"`
	Name          string            `yaml:"name" json:"name"`
	TopKey        GeoKey            `yaml:"top_key" json:"top_key"`
	TopName       string            `yaml:"top_name" json:"top_name"`
	Subdivisions  map[string]GeoKey `yaml:"subdivisions" json:"subdivisions"`
	DispatchURL   string            `yaml:"dispatch_url" json:"-"`
	PayloadURL    string            `yaml:"payload_url" json:"-"`
	BaselineURL   string            `yaml:"baseline_url" json:"-"`
	TurnoutURL    string            `yaml:"turnout_url" json:"-"`
	TurnoutLabels []string          `yaml:"turnout_labels" json:"turnout_labels"`
}

// Validate ensures all required fields are present and valid
func (c *Contest) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contest id is required")
	}
	if c.TopKey == "" {
		return fmt.Errorf("contest %s: top_key is required", c.ID)
	}
	if c.PayloadURL == "" {
		return fmt.Errorf("contest %s: payload_url is required", c.ID)
	}
	for code, key := range c.Subdivisions {
		if strings.TrimSpace(code) == "" || key == "" {
			return fmt.Errorf("contest %s: invalid subdivision %q -> %q", c.ID, code, key)
		}
		if key == c.TopKey {
			return fmt.Errorf("contest %s: subdivision %q reuses top_key %q", c.ID, code, key)
		}
	}
	return nil
}

// KeyForCode maps a subordinate-unit code from the feed to its GeoKey
func (c *Contest) KeyForCode(code string) (GeoKey, bool) {
	key, ok := c.Subdivisions[strings.TrimSpace(code)]
	return key, ok
}

// SubordinateKeys returns every subordinate key in lexical order
func (c *Contest) SubordinateKeys() []GeoKey {
	keys := make([]GeoKey, 0, len(c.Subdivisions))
	for _, key := range c.Subdivisions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// HasKey reports whether key is the top-level key or one of the subdivisions
func (c *Contest) HasKey(key GeoKey) bool {
	if key == c.TopKey {
		return true
	}
	for _, k := range c.Subdivisions {
		if k == key {
			return true
		}
	}
	return false
}
