package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	attempts []Outcome
	results  []Result
}

func (r *fakeRecorder) Attempt(ctx context.Context, out Outcome) { r.attempts = append(r.attempts, out) }
func (r *fakeRecorder) Finished(ctx context.Context, res Result) { r.results = append(r.results, res) }

func stopPlan(dates ...booking.CalendarDate) *booking.Plan {
	return &booking.Plan{
		Dates:          dates,
		PreferredTimes: booking.CandidateTimes{tod(18, 0)},
		Seats:          2,
		OnFailure:      booking.FailurePolicy{Action: booking.FailureStop},
	}
}

func pin(c *Campaign, at time.Time) *[]time.Duration {
	sleeps := &[]time.Duration{}
	c.Now = func() time.Time { return at }
	c.Sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	c.Jitter = func() float64 { return 0 }
	return sleeps
}

func TestRunBooksOnFirstMatch(t *testing.T) {
	client := &fakeClient{
		offered: func() ([]venue.OfferedTime, error) { return offer(tod(18, 0)), nil },
	}
	c := testCampaign(client)

	res, err := c.Run(context.Background(), stopPlan(oct24))

	require.NoError(t, err)
	assert.Equal(t, Result{Kind: ResultBooked, Date: oct24, Time: tod(18, 0)}, res)
	assert.Equal(t, []booking.CalendarDate{oct24}, client.navigated)
}

func TestRunPreferredTierSweepsAllDatesFirst(t *testing.T) {
	client := &fakeClient{
		offered: func() ([]venue.OfferedTime, error) { return offer(tod(17, 0)), nil },
	}
	c := testCampaign(client)

	plan := stopPlan(oct24, oct25)
	plan.AllowedTimes = booking.CandidateTimes{tod(17, 0)}

	res, err := c.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, Result{Kind: ResultBooked, Date: oct24, Time: tod(17, 0)}, res)
	// Both dates miss on the preferred tier before the allowed tier starts.
	assert.Equal(t, []booking.CalendarDate{oct24, oct25, oct24}, client.navigated)
}

func TestRunTransientFaultsConsumeRetryBudget(t *testing.T) {
	client := &fakeClient{
		navigate: func(date booking.CalendarDate, seats int) (string, string, error) {
			return "", "", errors.New("connection reset")
		},
	}
	c := testCampaign(client)

	res, err := c.Run(context.Background(), stopPlan(oct24))

	require.NoError(t, err)
	assert.Equal(t, ResultGaveUp, res.Kind)
	assert.Len(t, client.navigated, sameDateAttempts)
}

func TestRunNonTransientOutcomeDoesNotRetrySameDate(t *testing.T) {
	client := &fakeClient{
		avail: func() (venue.Availability, error) { return venue.NoTables, nil },
	}
	c := testCampaign(client)

	res, err := c.Run(context.Background(), stopPlan(oct24))

	require.NoError(t, err)
	assert.Equal(t, ResultGaveUp, res.Kind)
	assert.Len(t, client.navigated, 1)
}

func TestRunRetriesWithJitteredDelay(t *testing.T) {
	rounds := 0
	client := &fakeClient{}
	client.offered = func() ([]venue.OfferedTime, error) {
		rounds++
		if rounds < 2 {
			return nil, nil
		}
		return offer(tod(18, 0)), nil
	}
	c := testCampaign(client)
	sleeps := pin(c, time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC))

	plan := stopPlan(oct24)
	plan.OnFailure = booking.FailurePolicy{Action: booking.FailureRetry, BaseDelay: 30 * time.Second}

	res, err := c.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, ResultBooked, res.Kind)
	// Jitter pinned at zero means the floor of the jitter band.
	require.Len(t, *sleeps, 1)
	assert.Equal(t, 24*time.Second, (*sleeps)[0])
}

func TestRunGivesUpWhenRetryWouldPassStopTime(t *testing.T) {
	client := &fakeClient{}
	c := testCampaign(client)
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	sleeps := pin(c, now)

	stop := now.Add(10 * time.Second)
	plan := stopPlan(oct24)
	plan.StopAfter = &stop
	plan.OnFailure = booking.FailurePolicy{Action: booking.FailureRetry, BaseDelay: 30 * time.Second}

	res, err := c.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, ResultGaveUp, res.Kind)
	assert.Empty(t, *sleeps)
	assert.Len(t, client.navigated, 1)
}

func TestRunGivesUpAtStopTimeWithoutAttempting(t *testing.T) {
	client := &fakeClient{}
	c := testCampaign(client)
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	pin(c, now)

	stop := now.Add(-time.Minute)
	plan := stopPlan(oct24)
	plan.StopAfter = &stop

	res, err := c.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, ResultGaveUp, res.Kind)
	assert.Empty(t, client.navigated)
}

func TestRunWaitsForStartTime(t *testing.T) {
	client := &fakeClient{
		offered: func() ([]venue.OfferedTime, error) { return offer(tod(18, 0)), nil },
	}
	c := testCampaign(client)
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	sleeps := pin(c, now)

	start := now.Add(5 * time.Minute)
	plan := stopPlan(oct24)
	plan.StartNotBefore = &start

	res, err := c.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, ResultBooked, res.Kind)
	require.NotEmpty(t, *sleeps)
	assert.Equal(t, 5*time.Minute, (*sleeps)[0])
}

func TestRunHandsOffWhenPlanRequiresHuman(t *testing.T) {
	client := &fakeClient{
		offered: func() ([]venue.OfferedTime, error) { return offer(tod(18, 0)), nil },
	}
	c := testCampaign(client)

	plan := stopPlan(oct24)
	plan.RequiresHuman = true

	res, err := c.Run(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, Result{Kind: ResultNeedsHuman, Date: oct24, Time: tod(18, 0)}, res)
	assert.Len(t, client.revealed, 1)
	assert.Empty(t, client.confirmed)
}

func TestRunNotifiesRecorder(t *testing.T) {
	client := &fakeClient{
		offered: func() ([]venue.OfferedTime, error) { return offer(tod(18, 0)), nil },
	}
	c := testCampaign(client)
	rec := &fakeRecorder{}
	c.Recorder = rec

	res, err := c.Run(context.Background(), stopPlan(oct24))

	require.NoError(t, err)
	require.Len(t, rec.attempts, 1)
	assert.Equal(t, OutcomeBooked, rec.attempts[0].Kind)
	require.Len(t, rec.results, 1)
	assert.Equal(t, res, rec.results[0])
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &fakeClient{}
	c := testCampaign(client)

	res, err := c.Run(ctx, stopPlan(oct24))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ResultGaveUp, res.Kind)
}
