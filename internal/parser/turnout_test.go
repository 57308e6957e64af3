package parser

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escrutinio/internal/models"
)

func turnoutRow(kind string, blocks ...[3]string) string {
	fields := make([]string, MinFields+1)
	fields[fieldType] = kind
	for i, b := range blocks {
		off := turnoutOffsets[i]
		fields[off], fields[off+1], fields[off+2] = b[0], b[1], b[2]
	}
	return strings.Join(fields, ";")
}

func TestDecodeTurnout(t *testing.T) {
	payload := strings.Join([]string{
		turnoutRow("PR", [3]string{"1", "2", "9999"}),
		turnoutRow("CM",
			[3]string{"4500", "2000000", "2310"},
			[3]string{"4600", "2000000", "5120"},
			[3]string{"0", "0", "0"},
		),
	}, "\n")

	got, err := DecodeTurnout(strings.NewReader(payload), nil)
	require.NoError(t, err)
	require.Equal(t, []models.TurnoutCheckpoint{
		{Label: "14:00", Tables: 4500, Census: 2000000, Percent: 23.1, PercentText: "23,10%"},
		{Label: "18:00", Tables: 4600, Census: 2000000, Percent: 51.2, PercentText: "51,20%"},
	}, got)
}

func TestDecodeTurnoutKeepsBlockOrder(t *testing.T) {
	payload := turnoutRow("CM",
		[3]string{"1", "1", "0"},
		[3]string{"1", "1", "4000"},
		[3]string{"1", "1", "6000"},
	)

	got, err := DecodeTurnout(strings.NewReader(payload), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Label)
	assert.Equal(t, "third", got[1].Label)
}

func TestDecodeTurnoutWithoutTopRow(t *testing.T) {
	payload := turnoutRow("PR", [3]string{"1", "1", "5000"})
	for _, in := range []string{payload, ""} {
		got, err := DecodeTurnout(strings.NewReader(in), nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestDecodeTurnoutOverlongLine(t *testing.T) {
	payload := strings.Repeat("x", maxLine+1) + "\n" + turnoutRow("CM", [3]string{"1", "1", "5000"})

	got, err := DecodeTurnout(strings.NewReader(payload), nil)
	require.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Nil(t, got)
}
