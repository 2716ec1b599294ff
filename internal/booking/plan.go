package booking

import (
	"fmt"
	"time"
)

// FailureAction says what the campaign does after a round finds nothing.
type FailureAction int

const (
	// FailureStop ends the campaign after the first empty round.
	FailureStop FailureAction = iota
	// FailureRetry sleeps a jittered BaseDelay and runs another round.
	FailureRetry
)

type FailurePolicy struct {
	Action    FailureAction
	BaseDelay time.Duration
}

// Plan is the fully resolved parameter set for one booking campaign. It is
// built once by the configuration layer, validated, and treated as immutable
// by everything downstream.
type Plan struct {
	// Dates in the caller's preference order, first is most preferred.
	Dates []CalendarDate

	// Candidate times per tier, rank order. AllowedTimes may be empty,
	// meaning there is no fallback tier.
	PreferredTimes CandidateTimes
	AllowedTimes   CandidateTimes

	Seats         int
	RequiresHuman bool

	// StartNotBefore delays the first round; StopAfter bounds the campaign.
	// Either may be nil.
	StartNotBefore *time.Time
	StopAfter      *time.Time

	OnFailure FailurePolicy
}

func (p *Plan) Validate() error {
	if len(p.Dates) == 0 {
		return fmt.Errorf("at least one date required")
	}
	if len(p.PreferredTimes) == 0 {
		return fmt.Errorf("at least one candidate time required")
	}
	if p.Seats < 1 {
		return fmt.Errorf("seats must be positive")
	}
	if p.OnFailure.Action == FailureRetry && p.OnFailure.BaseDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if p.StartNotBefore != nil && p.StopAfter != nil && !p.StartNotBefore.Before(*p.StopAfter) {
		return fmt.Errorf("start time %s is not before stop time %s",
			p.StartNotBefore.Format(time.Kitchen), p.StopAfter.Format(time.Kitchen))
	}
	return nil
}
