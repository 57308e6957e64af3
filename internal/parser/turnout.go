package parser

import (
	"fmt"
	"io"
	"strings"

	"escrutinio/internal/models"
)

// DefaultTurnoutLabels are the election-day participation reports in block order
var DefaultTurnoutLabels = []string{"14:00", "18:00", "20:00"}

var turnoutOffsets = [...]int{12, 15, 18}

// DecodeTurnout extracts the participation checkpoints of the first CM row.
// Blocks whose percent is not positive are omitted. A payload without a CM
// row yields nil.
func DecodeTurnout(r io.Reader, labels []string) ([]models.TurnoutCheckpoint, error) {
	if len(labels) == 0 {
		labels = DefaultTurnoutLabels
	}

	var err error
	for fields := range splitRows(r, &err) {
		if len(fields) < MinFields || RecordType(strings.TrimSpace(fields[fieldType])) != RecordTop {
			continue
		}

		var out []models.TurnoutCheckpoint
		for i, off := range turnoutOffsets {
			pct := parseHundredths(field(fields, off+2))
			if pct <= 0 {
				continue
			}
			out = append(out, models.TurnoutCheckpoint{
				Label:       turnoutLabel(labels, i),
				Tables:      parseInt(field(fields, off)),
				Census:      parseInt(field(fields, off+1)),
				Percent:     pct,
				PercentText: FormatPercent(pct),
			})
		}
		return out, nil
	}
	return nil, err
}

func turnoutLabel(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("checkpoint %d", i+1)
}
