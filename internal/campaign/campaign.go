// Package campaign contains the booking engine: the per-date attempt state
// machine and the orchestrator that drives attempts across dates and
// candidate-time tiers until one terminal result.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/venue"
	"github.com/example/tablegrab/internal/wait"
)

const (
	defaultAvailabilityTimeout = 2 * time.Second
	defaultHumanHold           = 10 * time.Minute

	// Same-date retries per round, consumed only by transient faults.
	sameDateAttempts = 2
)

// ResultKind is how a whole campaign ended.
type ResultKind int

const (
	ResultBooked ResultKind = iota
	ResultNeedsHuman
	ResultGaveUp
)

func (k ResultKind) String() string {
	switch k {
	case ResultBooked:
		return "booked"
	case ResultNeedsHuman:
		return "needs human"
	case ResultGaveUp:
		return "gave up"
	}
	return "unknown"
}

type Result struct {
	Kind ResultKind
	Date booking.CalendarDate
	Time booking.TimeOfDay
}

// Recorder observes attempt outcomes and the final result. Implementations
// are write-behind: the engine never reads anything back.
type Recorder interface {
	Attempt(ctx context.Context, out Outcome)
	Finished(ctx context.Context, res Result)
}

// Campaign runs one booking campaign against one exclusively owned venue
// session. The clock, sleeper and jitter source are fields so tests can pin
// them; the zero hooks mean real time.
type Campaign struct {
	Client   venue.Client
	Log      *slog.Logger
	Recorder Recorder

	AvailabilityTimeout time.Duration
	HumanHold           time.Duration

	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() float64
}

func New(client venue.Client, log *slog.Logger) *Campaign {
	return &Campaign{
		Client:              client,
		Log:                 log,
		AvailabilityTimeout: defaultAvailabilityTimeout,
		HumanHold:           defaultHumanHold,
	}
}

func (c *Campaign) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Campaign) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return wait.Sleep(ctx, d)
}

func (c *Campaign) jitter() float64 {
	if c.Jitter != nil {
		return c.Jitter()
	}
	return rand.Float64()
}

// Run drives the plan to a terminal result. It returns an error only when the
// context is cancelled; every site-side condition is absorbed into the result.
func (c *Campaign) Run(ctx context.Context, plan *booking.Plan) (Result, error) {
	if plan.StartNotBefore != nil {
		if d := plan.StartNotBefore.Sub(c.now()); d > 0 {
			c.Log.Info("waiting to start",
				"start", plan.StartNotBefore.Format("3:04:05pm"), "wait", prettyDuration(d))
			if err := c.sleep(ctx, d); err != nil {
				return c.finish(Result{Kind: ResultGaveUp}), err
			}
		}
	}

	for round := 1; ; round++ {
		if plan.StopAfter != nil && !c.now().Before(*plan.StopAfter) {
			c.Log.Info("stop time reached, giving up",
				"stop", plan.StopAfter.Format("3:04:05pm"), "rounds", round-1)
			return c.finish(Result{Kind: ResultGaveUp}), nil
		}

		res, done, err := c.runRound(ctx, plan, round)
		if err != nil {
			return c.finish(Result{Kind: ResultGaveUp}), err
		}
		if done {
			return c.finish(res), nil
		}

		if plan.OnFailure.Action == booking.FailureStop {
			c.Log.Info("nothing found and retries are off, giving up", "rounds", round)
			return c.finish(Result{Kind: ResultGaveUp}), nil
		}

		// Jittered so parallel campaigns against the same site spread out.
		delay := time.Duration(float64(plan.OnFailure.BaseDelay) * (0.8 + 0.4*c.jitter()))
		if plan.StopAfter != nil && c.now().Add(delay).After(*plan.StopAfter) {
			c.Log.Info("next retry would pass the stop time, giving up",
				"stop", plan.StopAfter.Format("3:04:05pm"), "rounds", round)
			return c.finish(Result{Kind: ResultGaveUp}), nil
		}
		c.Log.Info("nothing found this round, retrying", "round", round, "delay", prettyDuration(delay))
		if err := c.sleep(ctx, delay); err != nil {
			return c.finish(Result{Kind: ResultGaveUp}), err
		}
	}
}

// runRound makes one full pass: every date against the preferred tier, then
// every date against the allowed tier if there is one. The first booked or
// hand-off outcome short-circuits everything.
func (c *Campaign) runRound(ctx context.Context, plan *booking.Plan, round int) (Result, bool, error) {
	type tier struct {
		name  string
		times booking.CandidateTimes
	}
	tiers := []tier{{"preferred", plan.PreferredTimes}}
	if len(plan.AllowedTimes) > 0 {
		tiers = append(tiers, tier{"allowed", plan.AllowedTimes})
	}

	for _, tr := range tiers {
		for _, date := range plan.Dates {
			for try := 1; try <= sameDateAttempts; try++ {
				if err := ctx.Err(); err != nil {
					return Result{}, false, err
				}
				out := c.runAttempt(ctx, date, tr.times, plan.Seats, !plan.RequiresHuman)
				c.record(ctx, out)

				switch out.Kind {
				case OutcomeBooked:
					c.Log.Info("booked", "date", out.Date.String(), "time", out.Time.String())
					return Result{Kind: ResultBooked, Date: out.Date, Time: out.Time}, true, nil
				case OutcomeNeedsHuman:
					return Result{Kind: ResultNeedsHuman, Date: out.Date, Time: out.Time}, true, nil
				case OutcomeTransient:
					c.Log.Warn("attempt failed", "date", date.String(), "round", round,
						"try", try, "tier", tr.name, "cause", out.Cause)
					continue
				case OutcomeNoMatchingTime:
					c.Log.Info("no tables in the candidate window", "date", date.String(),
						"tier", tr.name, "offered", out.Offered.String())
				default:
					c.Log.Info(out.Kind.String(), "date", date.String(), "tier", tr.name)
				}
				break
			}
		}
	}
	return Result{}, false, nil
}

func (c *Campaign) record(ctx context.Context, out Outcome) {
	if c.Recorder != nil {
		c.Recorder.Attempt(context.WithoutCancel(ctx), out)
	}
}

func (c *Campaign) finish(res Result) Result {
	if c.Recorder != nil {
		c.Recorder.Finished(context.Background(), res)
	}
	return res
}

// prettyDuration renders delays the way a person reads them.
func prettyDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%d millis", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.0f second(s)", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0f minute(s)", d.Minutes())
	}
	return fmt.Sprintf("%d hour(s) and %d minute(s)", int(d.Hours()), int(d.Minutes())%60)
}
