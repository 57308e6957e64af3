// Package parser decodes the semicolon-delimited results feed.
//
// The feed has no header row. Every offset below is positional and fixed by the
// publisher; rows that are too short are dropped rather than failing the decode.
package parser

import (
	"fmt"
)

// Stage names the step of a poll cycle that failed
type Stage string

const (
	StageDispatch  Stage = "dispatch"
	StagePayload   Stage = "payload"
	StageDecode    Stage = "decode"
	StageAggregate Stage = "aggregate"
	StageTurnout   Stage = "turnout"
)

// ParseError represents a cycle error with a specific stage
type ParseError struct {
	Stage Stage
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(stage Stage, err error) *ParseError {
	return &ParseError{
		Stage: stage,
		Err:   err,
	}
}
