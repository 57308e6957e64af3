// Package formatter turns decoded feed rows into per-region result sets
package formatter

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"go.uber.org/zap"

	"escrutinio/internal/models"
	"escrutinio/internal/parser"
)

// PartyResolver resolves display metadata for a batch of abbreviations
type PartyResolver interface {
	ResolveAll(ctx context.Context, abbrs []string, limit int) map[string]models.PartyMeta
}

// ResultsFormatter builds the RegionData of one poll cycle
type ResultsFormatter struct {
	resolver    PartyResolver
	concurrency int
	logger      *zap.Logger
}

// New creates a new ResultsFormatter
func New(resolver PartyResolver, concurrency int, logger *zap.Logger) *ResultsFormatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsFormatter{
		resolver:    resolver,
		concurrency: concurrency,
		logger:      logger.Named("formatter"),
	}
}

type keyedRow struct {
	key models.GeoKey
	row parser.Row
}

// Build groups rows by geographic key and resolves every party of the cycle
// in one concurrent batch. Keys without a row are absent from the result.
func (f *ResultsFormatter) Build(ctx context.Context, contest *models.Contest, rows iter.Seq[parser.Row]) (models.Regions, error) {
	var keyed []keyedRow
	seenKeys := make(map[models.GeoKey]bool)
	var abbrs []string
	seenAbbrs := make(map[string]bool)

	for row := range rows {
		key, ok := f.keyFor(contest, row)
		if !ok {
			continue
		}
		if seenKeys[key] {
			f.logger.Debug("duplicate row for region", zap.String("key", string(key)))
			continue
		}
		seenKeys[key] = true
		keyed = append(keyed, keyedRow{key: key, row: row})

		for _, p := range row.Parties {
			if !seenAbbrs[p.Abbreviation] {
				seenAbbrs[p.Abbreviation] = true
				abbrs = append(abbrs, p.Abbreviation)
			}
		}
	}

	meta := f.resolver.ResolveAll(ctx, abbrs, f.concurrency)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve parties: %w", err)
	}

	regions := make(models.Regions, len(keyed))
	for _, kr := range keyed {
		regions[kr.key] = buildRegion(kr.row, meta)
	}

	f.logger.Debug("regions built", zap.Int("regions", len(regions)), zap.Int("parties", len(abbrs)))
	return regions, nil
}

func (f *ResultsFormatter) keyFor(contest *models.Contest, row parser.Row) (models.GeoKey, bool) {
	switch row.Type {
	case parser.RecordTop:
		return contest.TopKey, true
	case parser.RecordSubordinate:
		key, ok := contest.KeyForCode(row.Code)
		if !ok {
			f.logger.Debug("unmapped subdivision code", zap.String("code", row.Code), zap.String("name", row.Name))
		}
		return key, ok
	}
	return "", false
}

func buildRegion(row parser.Row, meta map[string]models.PartyMeta) models.RegionData {
	region := models.RegionData{
		Name:              row.Name,
		CountedFraction:   row.CountedText,
		TotalSeats:        row.TotalSeats,
		MajorityThreshold: models.MajorityThreshold(row.TotalSeats),
		Parties:           make([]models.PartyResult, 0, len(row.Parties)),
	}

	seen := make(map[string]bool, len(row.Parties))
	for _, p := range row.Parties {
		if seen[p.Abbreviation] {
			continue
		}
		seen[p.Abbreviation] = true

		m, ok := meta[p.Abbreviation]
		if !ok {
			m = models.PartyMeta{Color: models.NeutralColor, Ideology: models.NeutralIdeology}
		}
		region.Parties = append(region.Parties, models.PartyResult{
			Abbreviation:    p.Abbreviation,
			Votes:           p.Votes,
			Seats:           p.Seats,
			VotePercentText: p.PercentText,
			Color:           m.Color,
			IdeologyScore:   m.Ideology,
		})
	}

	sort.SliceStable(region.Parties, func(i, j int) bool {
		return region.Parties[i].Votes > region.Parties[j].Votes
	})
	return region
}
