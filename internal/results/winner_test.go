package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"escrutinio/internal/models"
)

func TestWinnerLocalSeats(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{
		party("A", 2, 500, 1),
		party("B", 3, 400, 1),
	}}
	p, ok := Winner(region, nil)
	assert.True(t, ok)
	assert.Equal(t, "B", p.Abbreviation)
}

func TestWinnerNationalSeatsBreakTie(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{
		party("A", 2, 500, 1),
		party("B", 2, 400, 1),
	}}
	national := models.RegionData{Parties: []models.PartyResult{
		party("A", 10, 9000, 1),
		party("B", 12, 8000, 1),
	}}

	assert.Equal(t, "#B", WinnerColor(region, &national))
}

func TestWinnerNationalVotesBreakTie(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{
		party("A", 2, 500, 1),
		party("B", 2, 400, 1),
	}}
	national := models.RegionData{Parties: []models.PartyResult{
		party("A", 10, 9000, 1),
		party("B", 10, 9500, 1),
	}}

	assert.Equal(t, "#B", WinnerColor(region, &national))
}

func TestWinnerLocalVotesBreakTie(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{
		party("A", 1, 100, 1),
		party("B", 1, 300, 1),
	}}
	// neither party present nationally
	national := models.RegionData{}

	assert.Equal(t, "#B", WinnerColor(region, &national))
	assert.Equal(t, "#B", WinnerColor(region, nil))
}

func TestWinnerExactTieKeepsStoredOrder(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{
		party("A", 1, 100, 1),
		party("B", 1, 100, 1),
	}}
	assert.Equal(t, "#A", WinnerColor(region, nil))
}

func TestWinnerNoData(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{
		party("A", 0, 0, 1),
		party("B", 0, 0, 1),
	}}
	assert.Equal(t, models.NeutralColor, WinnerColor(region, nil))
	assert.Equal(t, models.NeutralColor, WinnerColor(models.RegionData{}, nil))
}

func TestWinnerVotesWithoutSeats(t *testing.T) {
	region := models.RegionData{Parties: []models.PartyResult{party("A", 0, 12, 1)}}
	assert.Equal(t, "#A", WinnerColor(region, nil))
}

func TestWinners(t *testing.T) {
	contest := &models.Contest{
		TopKey:       "top",
		Subdivisions: map[string]models.GeoKey{"05": "avila", "09": "burgos", "24": "leon"},
	}
	regions := models.Regions{
		"top":    {Parties: []models.PartyResult{party("A", 5, 100, 1), party("B", 6, 90, 1)}},
		"avila":  {Parties: []models.PartyResult{party("A", 1, 10, 1), party("B", 1, 20, 1)}},
		"burgos": {Parties: []models.PartyResult{party("A", 0, 0, 1)}},
	}

	got := Winners(contest, regions)
	assert.Equal(t, map[models.GeoKey]models.Winner{
		"avila":  {Key: "avila", Abbreviation: "B", Color: "#B"},
		"burgos": {Key: "burgos", Color: models.NeutralColor},
	}, got)
}
