// Package nws is the client for the weather agency's public API: point
// lookups, office metadata, gridpoint forecasts, and the hazardous weather
// outlook text product.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wxgate/wxgate/internal/httputil"
	"github.com/wxgate/wxgate/internal/metrics"
	"github.com/wxgate/wxgate/internal/wxerr"
)

const (
	// DefaultBaseURL is the agency API root. See https://api.weather.gov/openapi.json
	DefaultBaseURL = "https://api.weather.gov"

	// DefaultHWOBaseURL serves the legacy hazardous weather outlook page,
	// one <pre> block per bulletin.
	DefaultHWOBaseURL = "https://forecast.weather.gov/wwamap/wwatxtget.php"
)

type Client struct {
	baseURL    string
	hwoBaseURL string
	httpClient *http.Client
}

// NewClient creates an agency API client with standard timeouts.
func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		hwoBaseURL: DefaultHWOBaseURL,
		httpClient: httputil.NewClient(),
	}
}

// NewClientURL creates a client against alternate endpoints, used by tests.
func NewClientURL(baseURL, hwoBaseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		hwoBaseURL: hwoBaseURL,
		httpClient: httputil.NewClient(),
	}
}

// PointInfo is what a point lookup yields: the grid cell addressing for the
// coordinate, its hazard zone, and the reverse-geocoded reference location.
type PointInfo struct {
	Office string
	X      int
	Y      int
	Zone   string
	City   string
	State  string
	// Reference-location coordinates as reported upstream.
	RefLat float64
	RefLon float64
}

type pointResponse struct {
	Properties struct {
		CWA          string `json:"cwa"`
		GridX        int    `json:"gridX"`
		GridY        int    `json:"gridY"`
		ForecastZone string `json:"forecastZone"`
		RelativeLoc  struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

// Point resolves a coordinate to its grid cell, zone, and reference location.
// An out-of-coverage coordinate surfaces as wxerr.ErrNotFound.
func (c *Client) Point(ctx context.Context, lat, lon string) (*PointInfo, error) {
	url := fmt.Sprintf("%s/points/%s,%s", c.baseURL, lat, lon)

	var data pointResponse
	if err := c.getJSON(ctx, "points", url, &data); err != nil {
		return nil, err
	}

	p := data.Properties
	if p.CWA == "" {
		return nil, fmt.Errorf("point %s,%s: %w", lat, lon, wxerr.ErrNotFound)
	}

	info := &PointInfo{
		Office: p.CWA,
		X:      p.GridX,
		Y:      p.GridY,
		Zone:   lastPathSegment(p.ForecastZone),
		City:   p.RelativeLoc.Properties.City,
		State:  p.RelativeLoc.Properties.State,
	}

	// GeoJSON order is lon,lat.
	if coords := p.RelativeLoc.Geometry.Coordinates; len(coords) >= 2 {
		info.RefLat = coords[1]
		info.RefLon = coords[0]
	}

	return info, nil
}

type officeResponse struct {
	Name string `json:"name"`
}

// OfficeName returns the office's display name, formatted as "City, State".
func (c *Client) OfficeName(ctx context.Context, office string) (string, error) {
	url := fmt.Sprintf("%s/offices/%s", c.baseURL, office)

	var data officeResponse
	if err := c.getJSON(ctx, "offices", url, &data); err != nil {
		return "", err
	}
	if data.Name == "" {
		return "", fmt.Errorf("office %s: %w", office, wxerr.ErrNotFound)
	}
	return data.Name, nil
}

// getJSON performs an instrumented GET and decodes the JSON body into out.
// A 404 maps to ErrNotFound; any other failure is an UpstreamError.
func (c *Client) getJSON(ctx context.Context, endpoint, url string, out any) error {
	resp, err := c.get(ctx, endpoint, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return wxerr.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &wxerr.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &wxerr.UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &wxerr.UpstreamError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", httputil.UserAgent)
	req.Header.Set("Accept", "application/geo+json, application/ld+json, application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, &wxerr.UpstreamError{Endpoint: endpoint, Err: err}
	}
	metrics.UpstreamCallsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

func lastPathSegment(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(s, "/"), "/")
	return parts[len(parts)-1]
}
