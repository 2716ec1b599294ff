package campaign

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/venue"
)

// fakeClient scripts the venue boundary. Unset hooks mean the happy path:
// navigation lands where asked, tables exist, confirmation books.
type fakeClient struct {
	navigate func(date booking.CalendarDate, seats int) (string, string, error)
	avail    func() (venue.Availability, error)
	offered  func() ([]venue.OfferedTime, error)
	confirm  func(h venue.Handle) (venue.ConfirmResult, error)

	navigated []booking.CalendarDate
	confirmed []venue.Handle
	revealed  []venue.Handle
	snapshots []string
}

func (f *fakeClient) Navigate(ctx context.Context, date booking.CalendarDate, seats int) (string, string, error) {
	f.navigated = append(f.navigated, date)
	if f.navigate != nil {
		return f.navigate(date, seats)
	}
	loc := "https://venue.test/?date=" + date.ISO()
	return loc, loc, nil
}

func (f *fakeClient) WaitAvailability(ctx context.Context, timeout time.Duration) (venue.Availability, error) {
	if f.avail != nil {
		return f.avail()
	}
	return venue.HasTables, nil
}

func (f *fakeClient) OfferedTimes(ctx context.Context) ([]venue.OfferedTime, error) {
	if f.offered != nil {
		return f.offered()
	}
	return nil, nil
}

func (f *fakeClient) SelectAndConfirm(ctx context.Context, h venue.Handle) (venue.ConfirmResult, error) {
	f.confirmed = append(f.confirmed, h)
	if f.confirm != nil {
		return f.confirm(h)
	}
	return venue.Booked, nil
}

func (f *fakeClient) RevealForHuman(ctx context.Context, h venue.Handle) error {
	f.revealed = append(f.revealed, h)
	return nil
}

func (f *fakeClient) Snapshot(ctx context.Context, label string) error {
	f.snapshots = append(f.snapshots, label)
	return nil
}

func (f *fakeClient) Login(ctx context.Context, creds venue.Credentials) error { return nil }

func testCampaign(client venue.Client) *Campaign {
	c := New(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.HumanHold = 0
	return c
}

func offer(times ...booking.TimeOfDay) []venue.OfferedTime {
	out := make([]venue.OfferedTime, len(times))
	for i, t := range times {
		out[i] = venue.OfferedTime{Time: t, Handle: t.String()}
	}
	return out
}
