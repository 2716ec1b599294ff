// Package venue defines the boundary between the booking engine and whatever
// actually drives the reservation site. The engine issues commands through
// Client and never touches a page, an HTTP request, or a DOM node itself.
package venue

import (
	"context"
	"time"

	"github.com/example/tablegrab/internal/booking"
)

// Availability is the resolved state of a venue page for one date.
type Availability int

const (
	// NotOnline means the date has no tables posted yet.
	NotOnline Availability = iota
	// NoTables means the date is posted but fully booked.
	NoTables
	// HasTables means at least one reservation time is offered.
	HasTables
)

func (a Availability) String() string {
	switch a {
	case NotOnline:
		return "not online"
	case NoTables:
		return "no tables"
	case HasTables:
		return "has tables"
	}
	return "unknown"
}

// Handle identifies one offered reservation time to the client that produced
// it. The engine treats it as opaque.
type Handle any

// OfferedTime is one reservation slot found on the venue page.
type OfferedTime struct {
	Time   booking.TimeOfDay
	Handle Handle
}

// ConfirmResult is the terminal state of a confirmation flow.
type ConfirmResult int

const (
	// Booked means the reservation completed.
	Booked ConfirmResult = iota
	// NeedsLogin means the flow demanded fresh authentication.
	NeedsLogin
)

type Credentials struct {
	Email    string
	Password string
}

// Client is the abstract venue-page collaborator. One client instance owns
// one page or session; the campaign holds it exclusively for its duration.
type Client interface {
	// Navigate opens the venue page for date and seats. It reports both the
	// location it asked for and the one it landed on; the caller treats a
	// mismatch as an invalid date/seat combination, not a transient fault.
	Navigate(ctx context.Context, date booking.CalendarDate, seats int) (requested, actual string, err error)

	// WaitAvailability resolves the page to one of the three availability
	// states within timeout. Failure to resolve in time is an error and is
	// retryable.
	WaitAvailability(ctx context.Context, timeout time.Duration) (Availability, error)

	// OfferedTimes lists every reservation time currently on the page.
	OfferedTimes(ctx context.Context) ([]OfferedTime, error)

	// SelectAndConfirm selects the slot and drives the confirmation flow to
	// completion. Implementations must tolerate the optional fee/cancellation
	// acknowledgment never appearing.
	SelectAndConfirm(ctx context.Context, h Handle) (ConfirmResult, error)

	// RevealForHuman surfaces the slot so a person can finish the booking.
	RevealForHuman(ctx context.Context, h Handle) error

	// Snapshot records a diagnostic artifact. Best effort; callers ignore
	// the error.
	Snapshot(ctx context.Context, label string) error

	// Login authenticates the session.
	Login(ctx context.Context, creds Credentials) error
}
