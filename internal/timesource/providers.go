package timesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout bounds every provider call so a hanging upstream cannot
// stall booking admission.
const defaultTimeout = 3 * time.Second

// Provider fetches the current wall-clock time for an IANA zone from an
// external service. A non-2xx response or unparseable payload is an error;
// providers do not retry.
type Provider interface {
	Name() string
	FetchTime(ctx context.Context, zone string) (time.Time, error)
}

// TimeAPIClient talks to timeapi.io, which returns the zone-local time as a
// naive timestamp in a `dateTime` field.
type TimeAPIClient struct {
	hc      *http.Client
	baseURL string
}

func NewTimeAPIClient(baseURL string) *TimeAPIClient {
	if baseURL == "" {
		baseURL = "https://timeapi.io"
	}
	return &TimeAPIClient{
		hc:      &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
	}
}

func (c *TimeAPIClient) Name() string { return "timeapi" }

func (c *TimeAPIClient) FetchTime(ctx context.Context, zone string) (time.Time, error) {
	endpoint := fmt.Sprintf("%s/api/Time/current/zone?timeZone=%s", c.baseURL, url.QueryEscape(zone))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return time.Time{}, fmt.Errorf("timeapi status %d", resp.StatusCode)
	}

	var payload struct {
		DateTime string `json:"dateTime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, fmt.Errorf("timeapi payload: %w", err)
	}

	return parseZoneLocal(payload.DateTime)
}

// WorldTimeAPIClient talks to worldtimeapi.org, which returns an RFC 3339
// timestamp with the zone offset in a `datetime` field.
type WorldTimeAPIClient struct {
	hc      *http.Client
	baseURL string
}

func NewWorldTimeAPIClient(baseURL string) *WorldTimeAPIClient {
	if baseURL == "" {
		baseURL = "https://worldtimeapi.org"
	}
	return &WorldTimeAPIClient{
		hc:      &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
	}
}

func (c *WorldTimeAPIClient) Name() string { return "worldtimeapi" }

func (c *WorldTimeAPIClient) FetchTime(ctx context.Context, zone string) (time.Time, error) {
	endpoint := fmt.Sprintf("%s/api/timezone/%s", c.baseURL, zone)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("worldtimeapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return time.Time{}, fmt.Errorf("worldtimeapi status %d", resp.StatusCode)
	}

	var payload struct {
		Datetime string `json:"datetime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, fmt.Errorf("worldtimeapi payload: %w", err)
	}

	return parseZoneLocal(payload.Datetime)
}

// parseZoneLocal accepts both RFC 3339 timestamps and the naive zone-local
// form timeapi.io uses. The wall-clock components of the result are already
// target-zone time in either case.
func parseZoneLocal(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
