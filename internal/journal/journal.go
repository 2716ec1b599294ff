// Package journal records campaign attempts and results in Postgres for
// after-the-fact inspection. It is write-behind observability: the engine
// never reads it, and a missing database just means no journal.
package journal

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/campaign"
	"github.com/example/tablegrab/internal/db"
	"github.com/google/uuid"
)

type Repo struct {
	db  *db.DB
	log *slog.Logger

	campaignID uuid.UUID
}

func NewRepo(d *db.DB, log *slog.Logger) *Repo {
	return &Repo{db: d, log: log}
}

// Start opens a campaign row and pins its id for the attempt records.
func (r *Repo) Start(ctx context.Context, plan *booking.Plan, venueURL string) (uuid.UUID, error) {
	id := uuid.New()
	dates := make([]string, len(plan.Dates))
	for i, d := range plan.Dates {
		dates[i] = d.ISO()
	}
	err := r.db.Exec(ctx, `
INSERT INTO campaigns(id, venue_url, seats, dates)
VALUES ($1,$2,$3,$4)`,
		id, venueURL, plan.Seats, strings.Join(dates, ","))
	if err != nil {
		return uuid.Nil, err
	}
	r.campaignID = id
	return id, nil
}

// Attempt records one outcome. Journal failures are logged and swallowed;
// they must never disturb the campaign.
func (r *Repo) Attempt(ctx context.Context, out campaign.Outcome) {
	detail := out.Cause
	if out.Kind == campaign.OutcomeNoMatchingTime {
		detail = "on page: " + out.Offered.String()
	}
	err := r.db.Exec(ctx, `
INSERT INTO campaign_attempts(campaign_id, attempt_date, outcome, detail)
VALUES ($1,$2,$3,$4)`,
		r.campaignID, out.Date.ISO(), out.Kind.String(), detail)
	if err != nil {
		r.log.Warn("journal attempt insert failed", "err", err)
	}
}

// Finished closes the campaign row with its terminal result.
func (r *Repo) Finished(ctx context.Context, res campaign.Result) {
	var date, timeOfDay string
	if res.Kind != campaign.ResultGaveUp {
		date = res.Date.ISO()
		timeOfDay = res.Time.String()
	}
	err := r.db.Exec(ctx, `
UPDATE campaigns SET finished_at=now(), result=$2, result_date=$3, result_time=$4
WHERE id=$1`,
		r.campaignID, res.Kind.String(), date, timeOfDay)
	if err != nil {
		r.log.Warn("journal finish update failed", "err", err)
	}
}

type Entry struct {
	ID         uuid.UUID
	VenueURL   string
	Seats      int
	Dates      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Result     *string
	ResultDate *string
	ResultTime *string
	Attempts   int
}

// List returns the most recent campaigns with their attempt counts.
func (r *Repo) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
SELECT c.id, c.venue_url, c.seats, c.dates, c.started_at, c.finished_at,
       c.result, c.result_date, c.result_time,
       (SELECT count(*) FROM campaign_attempts a WHERE a.campaign_id = c.id)
FROM campaigns c
ORDER BY c.started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.VenueURL, &e.Seats, &e.Dates, &e.StartedAt,
			&e.FinishedAt, &e.Result, &e.ResultDate, &e.ResultTime, &e.Attempts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
