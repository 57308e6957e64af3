package parser

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
)

// RecordType is the value of field 1 of a row
type RecordType string

const (
	RecordTop         RecordType = "CM"
	RecordSubordinate RecordType = "PR"
)

const (
	// MinFields is the shortest row the decoder accepts
	MinFields = 20

	fieldType    = 1
	fieldCode    = 3
	fieldName    = 4
	fieldCounted = 8
	fieldSeats   = 18

	partyOffset    = 22
	partyStride    = 5
	maxPartyGroups = 50

	maxLine = 1 << 20
)

// RawParty is one positional party group of a row
type RawParty struct {
	Abbreviation string
	Votes        int
	PercentText  string
	Seats        int
}

// Row is a decoded geographic record
type Row struct {
	Type        RecordType
	Code        string
	Name        string
	CountedText string
	TotalSeats  int
	Parties     []RawParty
}

// Decoder lazily decodes a results payload into rows.
// Rows shorter than MinFields and rows of unknown type are skipped.
type Decoder struct {
	r   io.Reader
	err error
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Rows yields the decoded rows. It may be ranged over once.
func (d *Decoder) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for fields := range splitRows(d.r, &d.err) {
			row, ok := decodeRow(fields)
			if !ok {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Err returns the read error that ended Rows early, if any
func (d *Decoder) Err() error {
	return d.err
}

func decodeRow(fields []string) (Row, bool) {
	if len(fields) < MinFields {
		return Row{}, false
	}
	t := RecordType(strings.TrimSpace(fields[fieldType]))
	if t != RecordTop && t != RecordSubordinate {
		return Row{}, false
	}

	return Row{
		Type:        t,
		Code:        strings.TrimSpace(fields[fieldCode]),
		Name:        strings.TrimSpace(fields[fieldName]),
		CountedText: FormatHundredths(fields[fieldCounted]),
		TotalSeats:  parseInt(fields[fieldSeats]),
		Parties:     decodeParties(fields),
	}, true
}

// decodeParties reads groups of [unused, abbreviation, votes, percent, seats]
// until the first empty abbreviation.
func decodeParties(fields []string) []RawParty {
	var parties []RawParty
	for g := 0; g < maxPartyGroups; g++ {
		base := partyOffset + g*partyStride
		if base+1 >= len(fields) {
			break
		}
		abbr := strings.TrimSpace(fields[base+1])
		if abbr == "" {
			break
		}
		parties = append(parties, RawParty{
			Abbreviation: abbr,
			Votes:        parseInt(field(fields, base+2)),
			PercentText:  FormatHundredths(field(fields, base+3)),
			Seats:        parseInt(field(fields, base+4)),
		})
	}
	return parties
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// splitRows yields the ;-separated fields of every non-blank line.
// A read failure, including a line longer than maxLine, is stored in errp.
func splitRows(r io.Reader, errp *error) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			line := strings.TrimRight(sc.Text(), "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(strings.Split(line, ";")) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			*errp = fmt.Errorf("read feed: %w", err)
		}
	}
}
