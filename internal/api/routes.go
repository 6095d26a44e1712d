package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Treasury curve routes
	api.HandleFunc("/treasury/latest", handler.GetLatestTreasuryCurve).Methods("GET")
	api.HandleFunc("/treasury/range/{start}/{end}", handler.GetTreasuryCurveRange).Methods("GET")
	api.HandleFunc("/treasury/{date}/yield/{maturity}", handler.GetTreasuryYield).Methods("GET")
	api.HandleFunc("/treasury/{date}", handler.GetTreasuryCurve).Methods("GET")

	// Corporate curve routes. Spread routes are registered before the generic
	// date route so "spread" is never parsed as a curve date.
	api.HandleFunc("/corporate/latest", handler.GetLatestCorporateCurve).Methods("GET")
	api.HandleFunc("/corporate/spread/{rating}/latest", handler.GetLatestSpreadCurve).Methods("GET")
	api.HandleFunc("/corporate/spread/{rating}/{date}", handler.GetSpreadCurve).Methods("GET")
	api.HandleFunc("/corporate/range/{start}/{end}", handler.GetCorporateCurveRange).Methods("GET")
	api.HandleFunc("/corporate/{date}/yield/{maturity}", handler.GetCorporateYield).Methods("GET")
	api.HandleFunc("/corporate/{date}", handler.GetCorporateCurve).Methods("GET")

	// Manual refresh
	api.HandleFunc("/refresh", handler.TriggerRefresh).Methods("POST")

	return r
}
