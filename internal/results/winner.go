package results

import (
	"sort"

	"escrutinio/internal/models"
)

// Rank orders the parties of region by the winner cascade: local seats,
// national seats, national votes, local votes, all descending. Exact ties keep
// their stored order. national may be nil.
func Rank(region models.RegionData, national *models.RegionData) []models.PartyResult {
	ranked := make([]models.PartyResult, len(region.Parties))
	copy(ranked, region.Parties)

	nat := func(abbr string) models.PartyResult {
		if national == nil {
			return models.PartyResult{}
		}
		p, _ := national.Party(abbr)
		return p
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Seats != b.Seats {
			return a.Seats > b.Seats
		}
		na, nb := nat(a.Abbreviation), nat(b.Abbreviation)
		if na.Seats != nb.Seats {
			return na.Seats > nb.Seats
		}
		if na.Votes != nb.Votes {
			return na.Votes > nb.Votes
		}
		return a.Votes > b.Votes
	})
	return ranked
}

// Winner returns the leading party of region. ok is false when the region has
// no parties or nothing has been reported.
func Winner(region models.RegionData, national *models.RegionData) (models.PartyResult, bool) {
	ranked := Rank(region, national)
	if len(ranked) == 0 {
		return models.PartyResult{}, false
	}
	top := ranked[0]
	if top.Seats == 0 && top.Votes == 0 {
		return models.PartyResult{}, false
	}
	return top, true
}

// WinnerColor returns the winner's color or models.NeutralColor
func WinnerColor(region models.RegionData, national *models.RegionData) string {
	if p, ok := Winner(region, national); ok {
		return p.Color
	}
	return models.NeutralColor
}

// Winners resolves every subordinate region of contest present in regions,
// using the top-level region as the national reference.
func Winners(contest *models.Contest, regions models.Regions) map[models.GeoKey]models.Winner {
	var national *models.RegionData
	if top, ok := regions[contest.TopKey]; ok {
		national = &top
	}

	out := make(map[models.GeoKey]models.Winner)
	for _, key := range contest.SubordinateKeys() {
		region, ok := regions[key]
		if !ok {
			continue
		}
		w := models.Winner{Key: key, Color: models.NeutralColor}
		if p, ok := Winner(region, national); ok {
			w.Abbreviation = p.Abbreviation
			w.Color = p.Color
		}
		out[key] = w
	}
	return out
}
