package campaign

import (
	"context"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/venue"
)

// runAttempt drives one date through availability check, candidate search and
// confirmation, and classifies how it ended. Collaborator faults never escape
// as errors; they come back as OutcomeTransient so the campaign survives them.
func (c *Campaign) runAttempt(ctx context.Context, date booking.CalendarDate, times booking.CandidateTimes, seats int, autoBook bool) Outcome {
	c.Log.Info("checking availability", "date", date.String(), "seats", seats)

	requested, actual, err := c.Client.Navigate(ctx, date, seats)
	if err != nil {
		return transientf(date, "navigate: %v", err)
	}
	if actual != requested {
		c.Log.Error("redirected away from venue page, check that date and seats are valid",
			"requested", requested, "actual", actual)
		_ = c.Client.Snapshot(ctx, "redirected-"+date.ISO())
		return Outcome{Kind: OutcomeNoVenuePage, Date: date}
	}

	avail, err := c.Client.WaitAvailability(ctx, c.AvailabilityTimeout)
	if err != nil {
		return transientf(date, "availability did not resolve: %v", err)
	}
	switch avail {
	case venue.NotOnline:
		return Outcome{Kind: OutcomeNotYetOnline, Date: date}
	case venue.NoTables:
		return Outcome{Kind: OutcomeFullyBooked, Date: date}
	}

	c.Log.Info("checking times", "date", date.String())
	offered, err := c.Client.OfferedTimes(ctx)
	if err != nil {
		return transientf(date, "list offered times: %v", err)
	}

	byTime := make(map[booking.TimeOfDay]venue.Handle, len(offered))
	found := make(booking.CandidateTimes, 0, len(offered))
	for _, o := range offered {
		found = append(found, o.Time)
		if _, ok := byTime[o.Time]; !ok {
			byTime[o.Time] = o.Handle
		}
	}
	c.Log.Info("times on page", "times", found.String())

	// First match wins by candidate rank, not by on-page order.
	for _, t := range times {
		h, ok := byTime[t]
		if !ok {
			continue
		}
		c.Log.Info("found reservation in window", "date", date.String(), "time", t.String())
		if !autoBook {
			return c.handToHuman(ctx, date, t, h)
		}
		return c.confirm(ctx, date, t, h)
	}
	return Outcome{Kind: OutcomeNoMatchingTime, Date: date, Offered: found}
}

// confirm completes the booking for a matched slot. The confirmation sequence
// runs on a non-cancelable context: once a reservation hold may be in flight
// it is driven to a terminal state.
func (c *Campaign) confirm(ctx context.Context, date booking.CalendarDate, t booking.TimeOfDay, h venue.Handle) Outcome {
	c.Log.Info("trying to book", "date", date.String(), "time", t.String())
	res, err := c.Client.SelectAndConfirm(context.WithoutCancel(ctx), h)
	if err != nil {
		_ = c.Client.Snapshot(ctx, "confirm-failed-"+date.ISO())
		return transientf(date, "confirm: %v", err)
	}
	if res == venue.NeedsLogin {
		c.Log.Warn("site demands a fresh login, a human has to finish this one",
			"date", date.String(), "time", t.String())
		return Outcome{Kind: OutcomeNeedsHuman, Date: date, Time: t}
	}
	return Outcome{Kind: OutcomeBooked, Date: date, Time: t}
}

// handToHuman surfaces the matched slot and idles so a person can take over,
// then reports the hand-off. Cancellation ends the hold early.
func (c *Campaign) handToHuman(ctx context.Context, date booking.CalendarDate, t booking.TimeOfDay, h venue.Handle) Outcome {
	c.Log.Info("requires a human to finish the booking", "date", date.String(), "time", t.String())
	if err := c.Client.RevealForHuman(ctx, h); err != nil {
		return transientf(date, "reveal for human: %v", err)
	}
	_ = c.sleep(ctx, c.HumanHold)
	return Outcome{Kind: OutcomeNeedsHuman, Date: date, Time: t}
}
