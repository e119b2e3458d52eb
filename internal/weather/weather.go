// ABOUTME: Minimal Open-Meteo client for the /weather command
// ABOUTME: Fetches the current temperature for a fixed location

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint. No credentials needed.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Moscow coordinates, the original bot's fixed location.
const (
	latitude  = 55.7558
	longitude = 37.6173
	timezone  = "Europe/Moscow"
)

// Client fetches current weather conditions.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// CurrentTemperature returns the current temperature in Moscow, in degrees
// Celsius rounded to the nearest integer.
func (c *Client) CurrentTemperature(ctx context.Context) (int, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", longitude))
	params.Set("current", "temperature_2m")
	params.Set("timezone", timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather status %d", resp.StatusCode)
	}

	var parsed struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decoding weather response: %w", err)
	}

	return int(math.Round(parsed.Current.Temperature)), nil
}
