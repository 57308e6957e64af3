package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// PartyMeta is the display metadata of a party
type PartyMeta struct {
	Color    string  `json:"color"`
	Ideology float64 `json:"ideology"`
	Source   string  `json:"source"`
}

// Party represents a row of the party metadata store
type Party struct {
	ID           string  `json:"id,omitempty" yaml:"-"`
	Abbreviation string  `json:"abbreviation" yaml:"abbreviation"`
	Name         string  `json:"name" yaml:"name"`
	Color        string  `json:"color" yaml:"color"`
	Ideology     float64 `json:"ideology" yaml:"ideology"`
}

// Validate ensures all required fields are present and valid
func (p *Party) Validate() error {
	if strings.TrimSpace(p.Abbreviation) == "" {
		return fmt.Errorf("abbreviation is required")
	}
	if p.Color != "" && !hexColor.MatchString(p.Color) {
		return fmt.Errorf("invalid color for %s: %q", p.Abbreviation, p.Color)
	}
	return nil
}

// UnifiedParty is one member of the comparison set of a region
type UnifiedParty struct {
	Abbreviation  string  `json:"abbreviation"`
	Color         string  `json:"color"`
	IdeologyScore float64 `json:"ideology"`
	CurrentSeats  int     `json:"current_seats"`
	BaselineSeats int     `json:"baseline_seats"`
}

// Comparison is the chart-ready current vs. baseline view of one region
type Comparison struct {
	Key         GeoKey         `json:"key"`
	HasBaseline bool           `json:"has_baseline"`
	Parties     []UnifiedParty `json:"parties"`
}

// Winner is the leading party of a subordinate region
type Winner struct {
	Key          GeoKey `json:"key"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Color        string `json:"color"`
}

// ErrPartyNotFound is returned by metadata stores when no party matches
var ErrPartyNotFound = errors.New("party not found")
