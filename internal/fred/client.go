package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/models"
)

// Client fetches series observations from the FRED API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a FRED API client
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchSeries retrieves observations for one FRED series in [start, end].
// FRED publishes missing values as "."; these become nil-valued observations
// so gaps are recorded rather than dropped.
func (c *Client) FetchSeries(ctx context.Context, seriesID, seriesName, dataType string, start, end time.Time) ([]*models.RawYieldObservation, error) {
	endpoint := fmt.Sprintf("%s/series/observations", c.baseURL)

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format("2006-01-02"))
	params.Set("observation_end", end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series %s: %w", seriesID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fred api returned status %d for series %s", resp.StatusCode, seriesID)
	}

	var payload observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode observations for %s: %w", seriesID, err)
	}

	observations := make([]*models.RawYieldObservation, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid observation date %s for %s: %w", obs.Date, seriesID, err)
		}

		var value *float64
		if obs.Value != "." && obs.Value != "" {
			v, err := strconv.ParseFloat(obs.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid observation value %s for %s: %w", obs.Value, seriesID, err)
			}
			value = &v
		}

		observations = append(observations, &models.RawYieldObservation{
			SeriesID:   seriesID,
			SeriesName: seriesName,
			DataType:   dataType,
			Date:       date,
			Value:      value,
		})
	}

	return observations, nil
}

// FetchAll retrieves observations for every series in the map (tenor label ->
// series ID) over [start, end]. Series that fail are skipped so one broken
// series does not abort a whole refresh; the first error is returned alongside
// the data collected.
func (c *Client) FetchAll(ctx context.Context, series map[string]string, dataType string, start, end time.Time) ([]*models.RawYieldObservation, error) {
	var all []*models.RawYieldObservation
	var firstErr error

	for name, id := range series {
		observations, err := c.FetchSeries(ctx, id, name, dataType, start, end)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		all = append(all, observations...)
	}

	return all, firstErr
}
