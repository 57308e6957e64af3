package parser

import (
	"bufio"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRow lays out a feed row with the given party groups
func buildRow(kind, code, name, counted, seats string, parties ...[4]string) string {
	fields := make([]string, partyOffset)
	fields[fieldType] = kind
	fields[fieldCode] = code
	fields[fieldName] = name
	fields[fieldCounted] = counted
	fields[fieldSeats] = seats
	for _, p := range parties {
		fields = append(fields, "x", p[0], p[1], p[2], p[3])
	}
	// trailing empty group terminates the party list
	fields = append(fields, "", "", "", "", "")
	return strings.Join(fields, ";")
}

func decodeAll(payload string) []Row {
	return slices.Collect(NewDecoder(strings.NewReader(payload)).Rows())
}

func TestDecodeResultsFixture(t *testing.T) {
	payload := buildRow("CM", "99", "  Castilla y León ", "8734", "81",
		[4]string{"PP", "300000", "3145", "31"},
		[4]string{"PSOE", "280000", "3002", "28"},
		[4]string{"VOX", "200000", "1763", "13"},
	)

	rows := decodeAll(payload)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, RecordTop, row.Type)
	assert.Equal(t, "99", row.Code)
	assert.Equal(t, "Castilla y León", row.Name)
	assert.Equal(t, "87,34%", row.CountedText)
	assert.Equal(t, 81, row.TotalSeats)
	assert.Equal(t, []RawParty{
		{Abbreviation: "PP", Votes: 300000, PercentText: "31,45%", Seats: 31},
		{Abbreviation: "PSOE", Votes: 280000, PercentText: "30,02%", Seats: 28},
		{Abbreviation: "VOX", Votes: 200000, PercentText: "17,63%", Seats: 13},
	}, row.Parties)
}

func TestDecodeResultsSkipsShortRows(t *testing.T) {
	for n := 0; n < MinFields; n++ {
		fields := make([]string, n)
		if n > fieldType {
			fields[fieldType] = "CM"
		}
		line := strings.Join(fields, ";")
		assert.NotPanics(t, func() {
			assert.Empty(t, decodeAll(line), "row with %d fields", n)
		})
	}
}

func TestDecodeResultsIgnoresUnknownTypes(t *testing.T) {
	payload := strings.Join([]string{
		buildRow("MU", "05", "Some town", "100", "0"),
		buildRow("PR", "05", "Ávila", "10000", "7", [4]string{"PP", "10", "5000", "4"}),
		"",
		"garbage",
	}, "\r\n")

	rows := decodeAll(payload)
	require.Len(t, rows, 1)
	assert.Equal(t, RecordSubordinate, rows[0].Type)
	assert.Equal(t, "Ávila", rows[0].Name)
}

func TestDecodeResultsMinimalRowHasNoParties(t *testing.T) {
	fields := make([]string, MinFields)
	fields[fieldType] = "PR"
	fields[fieldSeats] = "x"

	rows := decodeAll(strings.Join(fields, ";"))
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].TotalSeats)
	assert.Empty(t, rows[0].Parties)
	assert.Equal(t, "0,00%", rows[0].CountedText)
}

func TestDecodeResultsStopsAtFirstEmptyAbbreviation(t *testing.T) {
	line := buildRow("CM", "", "Top", "0", "3", [4]string{"A", "1", "100", "1"})
	// a group after the terminator must not be read
	line += ";x;LATE;9;900;9"

	rows := decodeAll(line)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Parties, 1)
	assert.Equal(t, "A", rows[0].Parties[0].Abbreviation)
}

func TestDecodeResultsCapsPartyGroups(t *testing.T) {
	groups := make([][4]string, maxPartyGroups+5)
	for i := range groups {
		groups[i] = [4]string{"P" + strings.Repeat("x", i), "1", "0", "0"}
	}
	rows := decodeAll(buildRow("CM", "", "Top", "0", "0", groups...))
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Parties, maxPartyGroups)
}

func TestDecodeResultsTruncatedGroup(t *testing.T) {
	fields := make([]string, partyOffset)
	fields[fieldType] = "CM"
	fields = append(fields, "x", "PP", "12")

	rows := decodeAll(strings.Join(fields, ";"))
	require.Len(t, rows, 1)
	assert.Equal(t, []RawParty{{Abbreviation: "PP", Votes: 12, PercentText: "0,00%"}}, rows[0].Parties)
}

func TestDecodeResultsIsLazy(t *testing.T) {
	payload := strings.Join([]string{
		buildRow("CM", "", "Top", "0", "1"),
		buildRow("PR", "05", "Ávila", "0", "1"),
		buildRow("PR", "09", "Burgos", "0", "1"),
	}, "\n")

	var names []string
	for row := range NewDecoder(strings.NewReader(payload)).Rows() {
		names = append(names, row.Name)
		if len(names) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"Top", "Ávila"}, names)
}

func TestDecodeResultsOverlongLine(t *testing.T) {
	payload := strings.Join([]string{
		buildRow("CM", "", "Top", "100", "81", [4]string{"PP", "1", "100", "1"}),
		strings.Repeat("x", maxLine+1),
		buildRow("PR", "05", "Ávila", "100", "7", [4]string{"PP", "1", "100", "1"}),
	}, "\n")

	dec := NewDecoder(strings.NewReader(payload))
	rows := slices.Collect(dec.Rows())
	assert.Len(t, rows, 1)
	require.ErrorIs(t, dec.Err(), bufio.ErrTooLong)
}

func TestDecoderErrNilOnCleanRead(t *testing.T) {
	dec := NewDecoder(strings.NewReader(buildRow("CM", "", "Top", "100", "81")))
	assert.Len(t, slices.Collect(dec.Rows()), 1)
	assert.NoError(t, dec.Err())
}
