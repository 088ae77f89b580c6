// Package geocode resolves coordinates to a city name during onboarding.
// Lookups are best effort: any failure leaves the city unset.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Reverser resolves coordinates to a city name.
type Reverser interface {
	ReverseCity(ctx context.Context, lat, lon float64) (string, error)
}

const defaultEndpoint = "https://nominatim.openstreetmap.org/reverse"

// Client calls the Nominatim reverse endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient() *Client {
	return &Client{
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

// NewClientForEndpoint is used by tests pointing at a local server.
func NewClientForEndpoint(endpoint string) *Client {
	c := NewClient()
	c.endpoint = endpoint
	return c
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

func (c *Client) ReverseCity(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("zoom", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "amora-server")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	switch {
	case body.Address.City != "":
		return body.Address.City, nil
	case body.Address.Town != "":
		return body.Address.Town, nil
	case body.Address.Village != "":
		return body.Address.Village, nil
	}
	return "", fmt.Errorf("no city in reverse geocode response")
}
