package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		expectedTables := []string{
			"raw_yield_data",
			"bootstrapped_curves",
			"corporate_spread_curves",
			"refresh_log",
		}

		for _, tableName := range expectedTables {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("raw_yield_data table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"id":          "integer",
			"series_id":   "character varying",
			"series_name": "character varying",
			"data_type":   "character varying",
			"date":        "date",
			"value":       "double precision",
			"created_at":  "timestamp without time zone",
			"updated_at":  "timestamp without time zone",
		}

		for colName, expectedType := range expectedColumns {
			var actualType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'raw_yield_data' AND column_name = $1
			`, colName).Scan(&actualType)

			require.NoError(t, err, "column %s should exist in raw_yield_data table", colName)
			assert.Equal(t, expectedType, actualType, "column %s should have type %s", colName, expectedType)
		}
	})

	t.Run("raw_yield_data value column is nullable", func(t *testing.T) {
		var isNullable string
		err := testDB.GetRawConn().QueryRow(`
			SELECT is_nullable
			FROM information_schema.columns
			WHERE table_name = 'raw_yield_data' AND column_name = 'value'
		`).Scan(&isNullable)

		require.NoError(t, err)
		assert.Equal(t, "YES", isNullable, "value column should allow nulls for missing observations")
	})

	t.Run("bootstrapped_curves table has correct columns", func(t *testing.T) {
		expectedColumns := []string{
			"id", "curve_type", "curve_date", "maturities", "yields",
			"discount_factors", "forward_rates", "curve_metadata", "created_at",
		}

		for _, colName := range expectedColumns {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.columns
					WHERE table_name = 'bootstrapped_curves' AND column_name = $1
				)
			`, colName).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "column %s should exist in bootstrapped_curves table", colName)
		}
	})

	t.Run("corporate_spread_curves table has correct columns", func(t *testing.T) {
		expectedColumns := []string{
			"id", "rating", "curve_date", "maturities", "spreads",
			"yields", "treasury_yields", "created_at",
		}

		for _, colName := range expectedColumns {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.columns
					WHERE table_name = 'corporate_spread_curves' AND column_name = $1
				)
			`, colName).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "column %s should exist in corporate_spread_curves table", colName)
		}
	})

	t.Run("refresh_log table has correct columns", func(t *testing.T) {
		expectedColumns := []string{
			"id", "update_type", "status", "start_time", "end_time",
			"records_processed", "records_updated", "records_failed", "error_message",
		}

		for _, colName := range expectedColumns {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.columns
					WHERE table_name = 'refresh_log' AND column_name = $1
				)
			`, colName).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "column %s should exist in refresh_log table", colName)
		}
	})

	t.Run("indexes exist", func(t *testing.T) {
		expectedIndexes := []struct {
			table string
			index string
		}{
			{"raw_yield_data", "idx_raw_yield_series"},
			{"raw_yield_data", "idx_raw_yield_date"},
			{"raw_yield_data", "idx_raw_yield_type_date"},
			{"bootstrapped_curves", "idx_curves_type"},
			{"bootstrapped_curves", "idx_curves_date"},
			{"corporate_spread_curves", "idx_spread_curves_rating"},
			{"corporate_spread_curves", "idx_spread_curves_date"},
		}

		for _, idx := range expectedIndexes {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_indexes
					WHERE tablename = $1 AND indexname = $2
				)
			`, idx.table, idx.index).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "index %s should exist on table %s", idx.index, idx.table)
		}
	})

	t.Run("unique constraints exist", func(t *testing.T) {
		expectedConstraints := []struct {
			table      string
			constraint string
		}{
			{"raw_yield_data", "uix_series_date"},
			{"bootstrapped_curves", "uix_curve_type_date"},
			{"corporate_spread_curves", "uix_rating_curve_date"},
		}

		for _, c := range expectedConstraints {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_constraint con
					JOIN pg_class t ON con.conrelid = t.oid
					WHERE t.relname = $1
					AND con.contype = 'u'
					AND con.conname = $2
				)
			`, c.table, c.constraint).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "constraint %s should exist on table %s", c.constraint, c.table)
		}
	})
}
