package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() *Plan {
	return &Plan{
		Dates:          []CalendarDate{{2024, 10, 24}},
		PreferredTimes: CandidateTimes{{18, 0}},
		Seats:          2,
		OnFailure:      FailurePolicy{Action: FailureStop},
	}
}

func TestPlanValidateOK(t *testing.T) {
	require.NoError(t, validPlan().Validate())
}

func TestPlanValidateRejects(t *testing.T) {
	p := validPlan()
	p.Dates = nil
	assert.Error(t, p.Validate())

	p = validPlan()
	p.PreferredTimes = nil
	assert.Error(t, p.Validate())

	p = validPlan()
	p.Seats = 0
	assert.Error(t, p.Validate())

	p = validPlan()
	p.OnFailure = FailurePolicy{Action: FailureRetry}
	assert.Error(t, p.Validate(), "retry needs a positive delay")

	p = validPlan()
	start := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	stop := start.Add(-time.Hour)
	p.StartNotBefore = &start
	p.StopAfter = &stop
	assert.Error(t, p.Validate())
}
