package models

import (
	"sort"
	"time"
)

const (
	// NeutralColor is used for unresolved parties and for regions without a winner
	NeutralColor = "#CCCCCC"
	// NeutralIdeology is the midpoint of the ideology scale
	NeutralIdeology = 3.5
)

// PartyResult is one party's line in a region
type PartyResult struct {
	Abbreviation    string  `json:"abbreviation"`
	Votes           int     `json:"votes"`
	Seats           int     `json:"seats"`
	VotePercentText string  `json:"vote_percent"`
	Color           string  `json:"color"`
	IdeologyScore   float64 `json:"ideology"`
}

// RegionData holds the aggregated results of one geographic unit.
// Parties are stored by descending votes.
type RegionData struct {
	Name              string        `json:"name"`
	CountedFraction   string        `json:"counted"`
	TotalSeats        int           `json:"total_seats"`
	MajorityThreshold int           `json:"majority"`
	Parties           []PartyResult `json:"parties"`
}

// MajorityThreshold returns the seats needed for an absolute majority
func MajorityThreshold(totalSeats int) int {
	return totalSeats/2 + 1
}

// Party looks up a party by abbreviation
func (r RegionData) Party(abbreviation string) (PartyResult, bool) {
	for _, p := range r.Parties {
		if p.Abbreviation == abbreviation {
			return p, true
		}
	}
	return PartyResult{}, false
}

// ChartOrder returns a copy of the parties in hemicycle order (ascending ideology)
func (r RegionData) ChartOrder() []PartyResult {
	out := make([]PartyResult, len(r.Parties))
	copy(out, r.Parties)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IdeologyScore < out[j].IdeologyScore
	})
	return out
}

// Regions is the full result set of one poll cycle keyed by geography
type Regions map[GeoKey]RegionData

// TurnoutCheckpoint is one participation report of election day
type TurnoutCheckpoint struct {
	Label       string  `json:"label"`
	Tables      int     `json:"tables"`
	Census      int     `json:"census"`
	Percent     float64 `json:"percent"`
	PercentText string  `json:"percent_text"`
}

// Snapshot is what a successful poll cycle publishes.
// Baseline is nil when the comparison contest could not be loaded.
type Snapshot struct {
	Contest   string              `json:"contest"`
	Dispatch  string              `json:"dispatch"`
	FetchedAt time.Time           `json:"fetched_at"`
	Current   Regions             `json:"current"`
	Baseline  Regions             `json:"baseline,omitempty"`
	Turnout   []TurnoutCheckpoint `json:"turnout,omitempty"`
}

// HasBaseline reports whether a baseline result set is attached
func (s *Snapshot) HasBaseline() bool {
	return s != nil && s.Baseline != nil
}
