package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobboard/internal/domain/job"
	"jobboard/internal/logging"
)

var (
	ErrNoResult      = errors.New("geocoder: no result")
	ErrNotConfigured = errors.New("geocoder: missing api key")
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (job.Location, error)
}

type mapQuestClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logging.Logger
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     string `json:"street"`
	AdminArea5 string `json:"adminArea5"`
	AdminArea3 string `json:"adminArea3"`
	AdminArea1 string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func NewMapQuest(baseURL, apiKey string, logger logging.Logger) Geocoder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &mapQuestClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger.With("component", "geocoder"),
	}
}

func (c *mapQuestClient) Geocode(ctx context.Context, address string) (job.Location, error) {
	if c.apiKey == "" {
		return job.Location{}, ErrNotConfigured
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return job.Location{}, ErrNoResult
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("location", address)
	q.Set("maxResults", "1")
	endpoint := c.baseURL + "/geocoding/v1/address?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return job.Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return job.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := strings.TrimSpace(string(rb))
		c.logger.Warn(ctx, "geocode request failed", "status", resp.StatusCode, "body", bodyStr)
		return job.Location{}, fmt.Errorf("geocode failed: status=%d", resp.StatusCode)
	}

	var out mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return job.Location{}, err
	}
	if out.Info.StatusCode != 0 {
		return job.Location{}, fmt.Errorf("geocode failed: statuscode=%d %s", out.Info.StatusCode, strings.Join(out.Info.Messages, "; "))
	}
	if len(out.Results) == 0 || len(out.Results[0].Locations) == 0 {
		return job.Location{}, ErrNoResult
	}

	return toLocation(out.Results[0].Locations[0]), nil
}

func toLocation(l mapQuestLocation) job.Location {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Street, l.AdminArea5, strings.TrimSpace(l.AdminArea3 + " " + l.PostalCode), l.AdminArea1} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return job.Location{
		Type:             "Point",
		Coordinates:      []float64{l.LatLng.Lng, l.LatLng.Lat},
		FormattedAddress: strings.Join(parts, ", "),
		City:             l.AdminArea5,
		State:            l.AdminArea3,
		Zipcode:          l.PostalCode,
		Country:          l.AdminArea1,
	}
}

var _ Geocoder = (*mapQuestClient)(nil)
