// Package results derives chart-ready views from published region data
package results

import (
	"sort"

	"escrutinio/internal/models"
)

// Merge builds the comparison set of one region. Every party holding seats on
// either side appears once, in hemicycle order. A nil baseline yields a
// single-ring comparison.
func Merge(key models.GeoKey, current models.RegionData, baseline *models.RegionData) models.Comparison {
	cmp := models.Comparison{
		Key:         key,
		HasBaseline: baseline != nil,
		Parties:     []models.UnifiedParty{},
	}

	seen := make(map[string]bool)
	add := func(parties []models.PartyResult) {
		for _, p := range parties {
			if p.Seats <= 0 || seen[p.Abbreviation] {
				continue
			}
			seen[p.Abbreviation] = true
			cmp.Parties = append(cmp.Parties, models.UnifiedParty{
				Abbreviation:  p.Abbreviation,
				Color:         p.Color,
				IdeologyScore: p.IdeologyScore,
			})
		}
	}
	add(current.Parties)
	if baseline != nil {
		add(baseline.Parties)
	}

	for i := range cmp.Parties {
		up := &cmp.Parties[i]
		if p, ok := current.Party(up.Abbreviation); ok {
			up.CurrentSeats = p.Seats
		}
		if baseline != nil {
			if p, ok := baseline.Party(up.Abbreviation); ok {
				up.BaselineSeats = p.Seats
			}
		}
	}

	sort.SliceStable(cmp.Parties, func(i, j int) bool {
		return cmp.Parties[i].IdeologyScore < cmp.Parties[j].IdeologyScore
	})
	return cmp
}

// CompareAll merges every current region of snap with its baseline counterpart
func CompareAll(snap *models.Snapshot) map[models.GeoKey]models.Comparison {
	out := make(map[models.GeoKey]models.Comparison, len(snap.Current))
	for key, current := range snap.Current {
		out[key] = Merge(key, current, baselineFor(snap, key))
	}
	return out
}

// Compare merges one region of snap
func Compare(snap *models.Snapshot, key models.GeoKey) (models.Comparison, error) {
	current, ok := snap.Current[key]
	if !ok {
		return models.Comparison{}, models.ErrUnknownRegion
	}
	return Merge(key, current, baselineFor(snap, key)), nil
}

func baselineFor(snap *models.Snapshot, key models.GeoKey) *models.RegionData {
	if !snap.HasBaseline() {
		return nil
	}
	if b, ok := snap.Baseline[key]; ok {
		return &b
	}
	return nil
}
