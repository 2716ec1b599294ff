// Package config reads the environment into one immutable run plan. All
// parse and ordering problems surface here, before a campaign ever starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/joho/godotenv"
)

type Config struct {
	BookingURL string
	VenueID    string
	APIKey     string

	Seats         int
	RequiresHuman bool

	Dates           string
	BestTime        string
	PreferredWindow string
	AllowedWindow   string

	OnFailure  string
	RetryDelay time.Duration

	StartAt string
	StopAt  string

	Email    string
	Password string
	DevMode  bool

	// Optional: enables the attempt journal and the credential store.
	DatabaseURL string
	CredKey     string

	SnapshotDir string
}

// FromEnv loads .env if present and reads every knob with its default.
// Values that must combine (dates, windows, deadlines) are validated later by
// BuildPlan; only outright unparseable scalars fail here.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BookingURL:      strings.TrimSpace(os.Getenv("BOOKING_URL")),
		VenueID:         strings.TrimSpace(os.Getenv("VENUE_ID")),
		APIKey:          strings.TrimSpace(os.Getenv("RESY_API_KEY")),
		RequiresHuman:   isTruthy(os.Getenv("REQUIRES_HUMAN")),
		Dates:           getenv("DATES", ""),
		BestTime:        getenv("BEST_TIME", ""),
		PreferredWindow: getenv("PREFERRED_TIME_WINDOW", ""),
		AllowedWindow:   getenv("ALLOWED_TIME_WINDOW", ""),
		OnFailure:       strings.ToLower(getenv("ON_FAILURE", "stop")),
		StartAt:         getenv("START_AT", "now"),
		StopAt:          getenv("STOP_AT", "never"),
		Email:           strings.TrimSpace(os.Getenv("EMAIL")),
		Password:        os.Getenv("PASSWORD"),
		DevMode:         isTruthy(os.Getenv("DEV_MODE")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CredKey:         strings.TrimSpace(os.Getenv("CRED_KEY")),
		SnapshotDir:     getenv("SNAPSHOT_DIR", os.TempDir()),
	}

	seats, err := strconv.Atoi(getenv("SEATS", "2"))
	if err != nil || seats < 1 {
		return Config{}, fmt.Errorf("invalid SEATS")
	}
	cfg.Seats = seats

	delayMs, err := strconv.Atoi(getenv("RETRY_DELAY", "30000"))
	if err != nil || delayMs < 1 {
		return Config{}, fmt.Errorf("invalid RETRY_DELAY (milliseconds)")
	}
	cfg.RetryDelay = time.Duration(delayMs) * time.Millisecond

	// Search params on the url are rebuilt per attempt; drop whatever the
	// user pasted in.
	if i := strings.Index(cfg.BookingURL, "?"); i >= 0 {
		cfg.BookingURL = cfg.BookingURL[:i]
	}
	return cfg, nil
}

// BuildPlan resolves the raw configuration into the immutable plan the
// orchestrator consumes. now anchors year resolution and deadline times.
func (c Config) BuildPlan(now time.Time) (*booking.Plan, error) {
	if c.Dates == "" {
		return nil, fmt.Errorf("DATES is required")
	}
	if c.BestTime == "" || c.PreferredWindow == "" {
		return nil, fmt.Errorf("BEST_TIME and PREFERRED_TIME_WINDOW are required")
	}

	dates, err := booking.ParseDates(c.Dates, now)
	if err != nil {
		return nil, err
	}
	ideal, err := booking.ParseTimeOfDay(c.BestTime)
	if err != nil {
		return nil, err
	}
	preferredWin, err := booking.ParseTimeWindow(c.PreferredWindow)
	if err != nil {
		return nil, err
	}

	// An unset allowed window means no fallback tier: expansion against a
	// window equal to the preferred one yields an empty allowed set.
	allowedWin := preferredWin
	if strings.TrimSpace(c.AllowedWindow) != "" {
		allowedWin, err = booking.ParseTimeWindow(c.AllowedWindow)
		if err != nil {
			return nil, err
		}
	}

	if !preferredWin.Contains(ideal) {
		return nil, fmt.Errorf("BEST_TIME %s is outside PREFERRED_TIME_WINDOW %s", ideal, preferredWin)
	}
	if !allowedWin.Contains(preferredWin.Min) || !allowedWin.Contains(preferredWin.Max) {
		return nil, fmt.Errorf("ALLOWED_TIME_WINDOW %s must contain PREFERRED_TIME_WINDOW %s",
			allowedWin, preferredWin)
	}

	preferredTimes, allowedTimes := booking.ExpandTimes(ideal, preferredWin, allowedWin)

	plan := &booking.Plan{
		Dates:          dates,
		PreferredTimes: preferredTimes,
		AllowedTimes:   allowedTimes,
		Seats:          c.Seats,
		RequiresHuman:  c.RequiresHuman,
	}

	if !strings.EqualFold(c.StartAt, "now") && c.StartAt != "" {
		t, err := parseFutureClock(c.StartAt, now)
		if err != nil {
			return nil, fmt.Errorf("START_AT: %w", err)
		}
		plan.StartNotBefore = &t
	}
	if !strings.EqualFold(c.StopAt, "never") && c.StopAt != "" {
		t, err := parseFutureClock(c.StopAt, now)
		if err != nil {
			return nil, fmt.Errorf("STOP_AT: %w", err)
		}
		plan.StopAfter = &t
	}

	switch c.OnFailure {
	case "retry":
		plan.OnFailure = booking.FailurePolicy{Action: booking.FailureRetry, BaseDelay: c.RetryDelay}
	default:
		plan.OnFailure = booking.FailurePolicy{Action: booking.FailureStop}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// parseFutureClock parses "11:59:58am" or "11:59am" into the next instant
// that clock reading occurs, today or tomorrow.
func parseFutureClock(s string, now time.Time) (time.Time, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	var period string
	switch {
	case strings.HasSuffix(raw, "am"):
		period = "am"
	case strings.HasSuffix(raw, "pm"):
		period = "pm"
	default:
		return time.Time{}, fmt.Errorf("clock time %q must end in am or pm", s)
	}
	raw = strings.TrimSpace(strings.TrimSuffix(raw, period))

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("clock time %q: want h:mm or h:mm:ss", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, fmt.Errorf("clock time %q: %w", s, err)
		}
		nums[i] = n
	}
	hour, minute, second := nums[0], nums[1], nums[2]
	if hour < 1 || hour > 12 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("clock time %q out of range", s)
	}
	if period == "pm" && hour < 12 {
		hour += 12
	} else if period == "am" && hour == 12 {
		hour = 0
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, second, 0, now.Location())
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func isTruthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "t"
}
