package campaign

import (
	"fmt"

	"github.com/example/tablegrab/internal/booking"
)

// OutcomeKind classifies how a single attempt for one date ended.
type OutcomeKind int

const (
	// OutcomeNoVenuePage means navigation was redirected away from the venue
	// page: the date/seat combination is invalid and must not be retried.
	OutcomeNoVenuePage OutcomeKind = iota
	// OutcomeNotYetOnline means the date has no tables posted yet.
	OutcomeNotYetOnline
	// OutcomeFullyBooked means the date is posted with no tables at all.
	OutcomeFullyBooked
	// OutcomeNoMatchingTime means tables exist but none in the candidate set.
	OutcomeNoMatchingTime
	// OutcomeBooked means the reservation completed.
	OutcomeBooked
	// OutcomeNeedsHuman means a match was found but a person must finish the
	// booking, either by choice or because the site demanded a fresh login.
	OutcomeNeedsHuman
	// OutcomeTransient is a recoverable fault, eligible for a same-date retry.
	OutcomeTransient
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoVenuePage:
		return "no venue page"
	case OutcomeNotYetOnline:
		return "not yet online"
	case OutcomeFullyBooked:
		return "fully booked"
	case OutcomeNoMatchingTime:
		return "no matching time"
	case OutcomeBooked:
		return "booked"
	case OutcomeNeedsHuman:
		return "needs human"
	case OutcomeTransient:
		return "transient error"
	}
	return "unknown"
}

// Outcome is the terminal result of one attempt. Produced fresh by each
// attempt, consumed immediately, never persisted by the engine.
type Outcome struct {
	Kind OutcomeKind
	Date booking.CalendarDate

	// Time is set for OutcomeBooked and OutcomeNeedsHuman.
	Time booking.TimeOfDay

	// Offered carries the times that were on the page when no candidate
	// matched, for operator visibility.
	Offered booking.CandidateTimes

	// Cause is set for OutcomeTransient.
	Cause string
}

func transientf(date booking.CalendarDate, format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeTransient, Date: date, Cause: fmt.Sprintf(format, args...)}
}
