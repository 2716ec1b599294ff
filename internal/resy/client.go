// Package resy implements the venue client boundary against the Resy API.
// The request flow (find, details, book) follows the one resy-cli uses; the
// campaign engine only ever sees the venue.Client interface.
package resy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/tablegrab/internal/booking"
	"github.com/example/tablegrab/internal/venue"
	"github.com/example/tablegrab/internal/wait"
)

const defaultAPIBase = "https://api.resy.com"

type Options struct {
	APIKey      string
	VenueID     string
	VenueURL    string // public booking page, reported as the navigation target
	APIBase     string // overridable for tests
	SnapshotDir string
	Log         *slog.Logger
}

// Client holds one venue "page": the slots fetched for the currently
// navigated date. It is not safe for concurrent use, matching the single
// session the campaign owns.
type Client struct {
	hc  *http.Client
	log *slog.Logger
	opt Options

	authToken string

	day      string
	seats    int
	slots    []slot
	online   bool
	fetched  bool
	lastBody []byte
}

var _ venue.Client = (*Client)(nil)

func New(opt Options) *Client {
	if opt.APIBase == "" {
		opt.APIBase = defaultAPIBase
	}
	if opt.Log == nil {
		opt.Log = slog.Default()
	}
	return &Client{
		hc:  &http.Client{Timeout: 5 * time.Second},
		log: opt.Log,
		opt: opt,
	}
}

type slot struct {
	Date struct {
		Start string `json:"start"`
	} `json:"date"`
	Config struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	} `json:"config"`
}

type findResponse struct {
	Results struct {
		Venues []struct {
			Slots []slot `json:"slots"`
		} `json:"venues"`
	} `json:"results"`
}

// Navigate fetches availability for date and seats. An invalid date/seat
// combination comes back as a landing on the bare venue page, which the
// caller detects as a mismatch.
func (c *Client) Navigate(ctx context.Context, date booking.CalendarDate, seats int) (string, string, error) {
	requested := fmt.Sprintf("%s?date=%s&seats=%d", c.opt.VenueURL, date.ISO(), seats)

	c.day = date.ISO()
	c.seats = seats
	c.slots = nil
	c.online = false
	c.fetched = false

	status, body, err := c.do(ctx, http.MethodGet, "/4/find", "", map[string]string{
		"venue_id":   c.opt.VenueID,
		"party_size": strconv.Itoa(seats),
		"day":        c.day,
		"lat":        "0",
		"long":       "0",
	}, nil)
	if err != nil {
		return requested, "", err
	}
	c.lastBody = body
	if status >= 400 && status < 500 {
		// The site bounces bad params back to the venue page with the query
		// stripped.
		return requested, c.opt.VenueURL, nil
	}
	if status != http.StatusOK {
		return requested, "", fmt.Errorf("find returned status %d", status)
	}
	if err := c.ingest(body); err != nil {
		return requested, "", err
	}
	return requested, requested, nil
}

func (c *Client) ingest(body []byte) error {
	var res findResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("parse find response: %w", err)
	}
	c.online = len(res.Results.Venues) > 0
	if c.online {
		c.slots = res.Results.Venues[0].Slots
	}
	c.fetched = true
	return nil
}

// refresh refetches the current day, used when the first fetch never landed.
func (c *Client) refresh(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, "/4/find", "", map[string]string{
		"venue_id":   c.opt.VenueID,
		"party_size": strconv.Itoa(c.seats),
		"day":        c.day,
		"lat":        "0",
		"long":       "0",
	}, nil)
	if err != nil {
		return err
	}
	c.lastBody = body
	if status != http.StatusOK {
		return fmt.Errorf("find returned status %d", status)
	}
	return c.ingest(body)
}

func (c *Client) WaitAvailability(ctx context.Context, timeout time.Duration) (venue.Availability, error) {
	err := wait.Until(ctx, timeout, 250*time.Millisecond, func() (bool, error) {
		if c.fetched {
			return true, nil
		}
		if err := c.refresh(ctx); err != nil {
			c.log.Debug("availability fetch failed, retrying", "err", err)
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return 0, fmt.Errorf("availability: %w", err)
	}
	switch {
	case !c.online:
		return venue.NotOnline, nil
	case len(c.slots) == 0:
		return venue.NoTables, nil
	}
	return venue.HasTables, nil
}

var slotStartRe = regexp.MustCompile(`\b(\d{2}):(\d{2}):\d{2}$`)

func (c *Client) OfferedTimes(ctx context.Context) ([]venue.OfferedTime, error) {
	out := make([]venue.OfferedTime, 0, len(c.slots))
	for _, s := range c.slots {
		m := slotStartRe.FindStringSubmatch(s.Date.Start)
		if m == nil {
			c.log.Debug("slot start can't be parsed, skipping", "start", s.Date.Start)
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		out = append(out, venue.OfferedTime{
			Time:   booking.TimeOfDay{Hour: hour, Minute: minute},
			Handle: s.Config.Token,
		})
	}
	return out, nil
}

type detailsResponse struct {
	BookToken struct {
		Value string `json:"value"`
	} `json:"book_token"`
	User struct {
		PaymentMethods []struct {
			ID int64 `json:"id"`
		} `json:"payment_methods"`
	} `json:"user"`
}

// SelectAndConfirm books the slot behind the handle: details for a book
// token, then the booking call. The book token is polled a few short times
// because it can lag the slot listing; booking proceeds as soon as it shows.
func (c *Client) SelectAndConfirm(ctx context.Context, h venue.Handle) (venue.ConfirmResult, error) {
	token, ok := h.(string)
	if !ok || token == "" {
		return 0, fmt.Errorf("handle is not a slot token")
	}

	payload, err := json.Marshal(struct {
		ConfigID  string `json:"config_id"`
		Day       string `json:"day"`
		PartySize int64  `json:"party_size"`
	}{ConfigID: token, Day: c.day, PartySize: int64(c.seats)})
	if err != nil {
		return 0, err
	}

	var details detailsResponse
	err = wait.Until(ctx, 2*time.Second, 100*time.Millisecond, func() (bool, error) {
		status, body, err := c.do(ctx, http.MethodPost, "/3/details", "application/json", nil, payload)
		if err != nil {
			return false, err
		}
		if status == http.StatusUnauthorized || status == 419 {
			return false, errNeedsLogin
		}
		if status >= 400 {
			return false, fmt.Errorf("details returned status %d", status)
		}
		details = detailsResponse{}
		if err := json.Unmarshal(body, &details); err != nil {
			return false, err
		}
		return details.BookToken.Value != "", nil
	})
	if errors.Is(err, errNeedsLogin) {
		return venue.NeedsLogin, nil
	}
	if err != nil && !errors.Is(err, wait.ErrTimeout) {
		return 0, err
	}
	if details.BookToken.Value == "" {
		return 0, fmt.Errorf("no book token for slot")
	}

	form := "book_token=" + url.QueryEscape(details.BookToken.Value)
	if len(details.User.PaymentMethods) > 0 {
		pm, _ := json.Marshal(struct {
			ID int64 `json:"id"`
		}{ID: details.User.PaymentMethods[0].ID})
		form += "&struct_payment_method=" + url.QueryEscape(string(pm))
	}

	status, body, err := c.do(ctx, http.MethodPost, "/3/book", "application/x-www-form-urlencoded", nil, []byte(form))
	if err != nil {
		return 0, err
	}
	if status == http.StatusUnauthorized || status == 419 {
		return venue.NeedsLogin, nil
	}
	if status >= 400 {
		c.lastBody = body
		return 0, fmt.Errorf("book returned status %d", status)
	}
	return venue.Booked, nil
}

// RevealForHuman can't activate a page control from the API side; it puts
// the direct link in front of the operator instead.
func (c *Client) RevealForHuman(ctx context.Context, h venue.Handle) error {
	token, _ := h.(string)
	c.log.Info("finish this reservation by hand",
		"url", fmt.Sprintf("%s?date=%s&seats=%d", c.opt.VenueURL, c.day, c.seats),
		"slot", token)
	return nil
}

// Snapshot dumps the last API response body for offline inspection.
func (c *Client) Snapshot(ctx context.Context, label string) error {
	if len(c.lastBody) == 0 {
		return nil
	}
	path := filepath.Join(c.opt.SnapshotDir, sanitizeFilename(label)+".json")
	return os.WriteFile(path, c.lastBody, 0o644)
}

type authResponse struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, creds venue.Credentials) error {
	form := url.Values{}
	form.Set("email", creds.Email)
	form.Set("password", creds.Password)
	status, body, err := c.do(ctx, http.MethodPost, "/3/auth/password", "application/x-www-form-urlencoded", nil, []byte(form.Encode()))
	if err != nil {
		return err
	}
	if status >= 400 {
		var r struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &r)
		if r.Message != "" {
			return fmt.Errorf("login failed: %s (status=%d)", r.Message, status)
		}
		return fmt.Errorf("login failed (status=%d)", status)
	}
	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("parse login response: %w", err)
	}
	if auth.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	c.authToken = auth.Token
	return nil
}

var errNeedsLogin = errors.New("needs login")

func (c *Client) do(ctx context.Context, method, path, contentType string, query map[string]string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.opt.APIBase+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")
	req.Header.Set("origin", "https://resy.com")
	req.Header.Set("referrer", "https://resy.com")
	req.Header.Set("x-origin", "https://resy.com")
	req.Header.Set("cache-control", "no-cache")
	if contentType != "" {
		req.Header.Set("content-type", contentType)
	}
	req.Header.Set("authorization", fmt.Sprintf(`ResyAPI api_key="%s"`, c.opt.APIKey))
	if c.authToken != "" {
		req.Header.Set("x-resy-auth-token", c.authToken)
		req.Header.Set("x-resy-universal-auth", c.authToken)
	}

	if query != nil {
		q := req.URL.Query()
		for k, v := range query {
			q.Add(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, b, nil
}

var invalidFilenameChars = regexp.MustCompile(`["%'*/:<>?\\|]`)

func sanitizeFilename(s string) string {
	s = invalidFilenameChars.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.Join(strings.Fields(s), "-")
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
