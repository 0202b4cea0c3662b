// Package parking is the JSON client for the parking backend the dashboard
// polls: occupancy status, the vehicles currently parked and monthly-plan
// statistics.
package parking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/banshee-data/parking.report/internal/httputil"
)

// Backend endpoints.
const (
	StatusPath        = "/api/estado"
	VehiclesPath      = "/api/vehiculos"
	SubscriptionsPath = "/api/abonos"
)

// Client fetches dashboard data. It never retries; each call is one attempt.
type Client struct {
	base    string
	http    httputil.HTTPClient
	timeout time.Duration
}

// NewClient returns a Client for the backend at baseURL. A zero timeout
// leaves requests bounded only by ctx and the transport.
func NewClient(baseURL string, c httputil.HTTPClient, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", baseURL)
	}
	if c == nil {
		c = httputil.NewStandardClient(nil)
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    c,
		timeout: timeout,
	}, nil
}

// BaseURL returns the backend root the client targets.
func (c *Client) BaseURL() string { return c.base }

// Status fetches the current occupancy.
func (c *Client) Status(ctx context.Context) (OccupancyStatus, error) {
	var s OccupancyStatus
	if err := c.get(ctx, StatusPath, &s); err != nil {
		return OccupancyStatus{}, err
	}
	if err := s.Validate(); err != nil {
		return OccupancyStatus{}, fmt.Errorf("invalid status payload: %w", err)
	}
	return s, nil
}

// Vehicles fetches the vehicles currently parked, in server order.
func (c *Client) Vehicles(ctx context.Context) ([]VehicleRecord, error) {
	var v []VehicleRecord
	if err := c.get(ctx, VehiclesPath, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = []VehicleRecord{}
	}
	return v, nil
}

// Subscriptions fetches monthly-plan statistics.
func (c *Client) Subscriptions(ctx context.Context) (SubscriptionStats, error) {
	var s SubscriptionStats
	if err := c.get(ctx, SubscriptionsPath, &s); err != nil {
		return SubscriptionStats{}, err
	}
	return s, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return httputil.GetJSON(ctx, c.http, c.base+path, out)
}
