package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

func TestFetchSeries(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	t.Run("parses observations and query parameters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/series/observations", r.URL.Path)
			assert.Equal(t, "DGS10", r.URL.Query().Get("series_id"))
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
			assert.Equal(t, "json", r.URL.Query().Get("file_type"))
			assert.Equal(t, "2024-01-15", r.URL.Query().Get("observation_start"))
			assert.Equal(t, "2024-01-17", r.URL.Query().Get("observation_end"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"observations":[
				{"date":"2024-01-15","value":"4.25"},
				{"date":"2024-01-16","value":"4.30"}
			]}`))
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL)
		observations, err := client.FetchSeries(context.Background(), "DGS10", "10Y", models.DataTypeTreasury, start, end)
		require.NoError(t, err)
		require.Len(t, observations, 2)

		assert.Equal(t, "DGS10", observations[0].SeriesID)
		assert.Equal(t, "10Y", observations[0].SeriesName)
		assert.Equal(t, models.DataTypeTreasury, observations[0].DataType)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), observations[0].Date)
		require.NotNil(t, observations[0].Value)
		assert.Equal(t, 4.25, *observations[0].Value)
	})

	t.Run("missing values become nil observations", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"observations":[
				{"date":"2024-01-15","value":"."},
				{"date":"2024-01-16","value":""},
				{"date":"2024-01-17","value":"4.30"}
			]}`))
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL)
		observations, err := client.FetchSeries(context.Background(), "DGS10", "10Y", models.DataTypeTreasury, start, end)
		require.NoError(t, err)
		require.Len(t, observations, 3)

		assert.Nil(t, observations[0].Value)
		assert.Nil(t, observations[1].Value)
		require.NotNil(t, observations[2].Value)
		assert.Equal(t, 4.30, *observations[2].Value)
	})

	t.Run("non-200 responses are errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL)
		_, err := client.FetchSeries(context.Background(), "DGS10", "10Y", models.DataTypeTreasury, start, end)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("malformed values are errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"observations":[{"date":"2024-01-15","value":"n/a"}]}`))
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL)
		_, err := client.FetchSeries(context.Background(), "DGS10", "10Y", models.DataTypeTreasury, start, end)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid observation value")
	})
}

func TestFetchAll(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := start

	t.Run("collects observations for every series", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"observations":[{"date":"2024-01-15","value":"4.25"}]}`))
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL)
		series := map[string]string{"2Y": "DGS2", "10Y": "DGS10"}

		observations, err := client.FetchAll(context.Background(), series, models.DataTypeTreasury, start, end)
		require.NoError(t, err)
		assert.Len(t, observations, 2)
	})

	t.Run("a failing series does not drop the others", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("series_id") == "BROKEN" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"observations":[{"date":"2024-01-15","value":"4.25"}]}`))
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL)
		series := map[string]string{"2Y": "DGS2", "BAD": "BROKEN"}

		observations, err := client.FetchAll(context.Background(), series, models.DataTypeTreasury, start, end)
		require.Error(t, err)
		assert.Len(t, observations, 1)
		assert.Equal(t, "DGS2", observations[0].SeriesID)
	})
}
