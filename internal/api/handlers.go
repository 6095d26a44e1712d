package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/trogers1052/bond-curve-service/internal/bootstrap"
	"github.com/trogers1052/bond-curve-service/internal/builder"
	"github.com/trogers1052/bond-curve-service/internal/cache"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

// Refresher triggers a rebuild over a date range, returning per-family counts
type Refresher interface {
	Refresh(start, end time.Time) (successful, failed int, err error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	treasury         *builder.CurveBuilder
	corporate        *builder.CorporateCurveBuilder
	cache            *cache.Cache
	refresher        Refresher
	defaultMaxPoints int
}

// NewHandler creates a new Handler. cache may be nil (caching disabled) and
// refresher may be nil (manual refresh endpoint disabled).
func NewHandler(treasury *builder.CurveBuilder, corporate *builder.CorporateCurveBuilder, c *cache.Cache, refresher Refresher, defaultMaxPoints int) *Handler {
	return &Handler{
		treasury:         treasury,
		corporate:        corporate,
		cache:            c,
		refresher:        refresher,
		defaultMaxPoints: defaultMaxPoints,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetLatestTreasuryCurve handles GET /treasury/latest
func (h *Handler) GetLatestTreasuryCurve(w http.ResponseWriter, r *http.Request) {
	h.latestCurve(w, r, h.treasury)
}

// GetTreasuryCurve handles GET /treasury/{date}
func (h *Handler) GetTreasuryCurve(w http.ResponseWriter, r *http.Request) {
	h.curveByDate(w, r, h.treasury)
}

// GetTreasuryCurveRange handles GET /treasury/range/{start}/{end}
func (h *Handler) GetTreasuryCurveRange(w http.ResponseWriter, r *http.Request) {
	h.curveRange(w, r, h.treasury)
}

// GetTreasuryYield handles GET /treasury/{date}/yield/{maturity}
func (h *Handler) GetTreasuryYield(w http.ResponseWriter, r *http.Request) {
	h.yieldAtMaturity(w, r, h.treasury)
}

// GetLatestCorporateCurve handles GET /corporate/latest
func (h *Handler) GetLatestCorporateCurve(w http.ResponseWriter, r *http.Request) {
	h.latestCurve(w, r, h.corporate.CurveBuilder)
}

// GetCorporateCurve handles GET /corporate/{date}
func (h *Handler) GetCorporateCurve(w http.ResponseWriter, r *http.Request) {
	h.curveByDate(w, r, h.corporate.CurveBuilder)
}

// GetCorporateCurveRange handles GET /corporate/range/{start}/{end}
func (h *Handler) GetCorporateCurveRange(w http.ResponseWriter, r *http.Request) {
	h.curveRange(w, r, h.corporate.CurveBuilder)
}

// GetCorporateYield handles GET /corporate/{date}/yield/{maturity}
func (h *Handler) GetCorporateYield(w http.ResponseWriter, r *http.Request) {
	h.yieldAtMaturity(w, r, h.corporate.CurveBuilder)
}

// GetLatestSpreadCurve handles GET /corporate/spread/{rating}/latest
func (h *Handler) GetLatestSpreadCurve(w http.ResponseWriter, r *http.Request) {
	rating := mux.Vars(r)["rating"]

	var cached models.SpreadCurveResponse
	if hit, _ := h.cache.Get(r.Context(), cache.LatestSpreadKey(rating), &cached); hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	spread, err := h.corporate.GetLatestSpreadCurve(rating)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if spread == nil {
		http.Error(w, "no spread curve data available for rating "+rating, http.StatusNotFound)
		return
	}

	h.cache.Set(r.Context(), cache.LatestSpreadKey(rating), spread)
	respondJSON(w, http.StatusOK, spread)
}

// GetSpreadCurve handles GET /corporate/spread/{rating}/{date}
func (h *Handler) GetSpreadCurve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rating := vars["rating"]

	date, ok := parseDate(w, vars["date"])
	if !ok {
		return
	}

	spread, err := h.corporate.GetSpreadCurve(rating, date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if spread == nil {
		http.Error(w, "no spread curve data available for "+rating+" on "+vars["date"], http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, spread)
}

// TriggerRefresh handles POST /refresh
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		http.Error(w, "refresh not available", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end_date must not precede start_date", http.StatusBadRequest)
		return
	}

	successful, failed, err := h.refresher.Refresh(start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"successful": successful,
		"failed":     failed,
	})
}

func (h *Handler) latestCurve(w http.ResponseWriter, r *http.Request, b *builder.CurveBuilder) {
	maxPoints := h.maxPoints(r)

	// Only the default shaping is cached; a max_points override bypasses it.
	cacheable := r.URL.Query().Get("max_points") == ""
	if cacheable {
		var cached models.CurveResponse
		if hit, _ := h.cache.Get(r.Context(), cache.LatestCurveKey(b.CurveType()), &cached); hit {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	latest, err := b.GetLatestCurve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if latest == nil {
		http.Error(w, "no "+b.CurveType()+" curve data available", http.StatusNotFound)
		return
	}

	date, _ := time.Parse("2006-01-02", latest.CurveDate)
	curve, err := b.GetCurve(date, maxPoints)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if cacheable {
		h.cache.Set(r.Context(), cache.LatestCurveKey(b.CurveType()), curve)
	}
	respondJSON(w, http.StatusOK, curve)
}

func (h *Handler) curveByDate(w http.ResponseWriter, r *http.Request, b *builder.CurveBuilder) {
	vars := mux.Vars(r)
	date, ok := parseDate(w, vars["date"])
	if !ok {
		return
	}

	curve, err := b.GetCurve(date, h.maxPoints(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if curve == nil {
		http.Error(w, "no "+b.CurveType()+" curve data available for "+vars["date"], http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, curve)
}

func (h *Handler) curveRange(w http.ResponseWriter, r *http.Request, b *builder.CurveBuilder) {
	vars := mux.Vars(r)
	start, ok := parseDate(w, vars["start"])
	if !ok {
		return
	}
	end, ok := parseDate(w, vars["end"])
	if !ok {
		return
	}

	curves, err := b.GetCurveRange(start, end, h.maxPoints(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(curves) == 0 {
		http.Error(w, "no "+b.CurveType()+" curves found between "+vars["start"]+" and "+vars["end"], http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, curves)
}

func (h *Handler) yieldAtMaturity(w http.ResponseWriter, r *http.Request, b *builder.CurveBuilder) {
	vars := mux.Vars(r)
	date, ok := parseDate(w, vars["date"])
	if !ok {
		return
	}

	maturity, err := strconv.ParseFloat(vars["maturity"], 64)
	if err != nil {
		http.Error(w, "invalid maturity, expected a number of years", http.StatusBadRequest)
		return
	}

	yield, err := b.YieldAtMaturity(date, maturity)
	if err != nil {
		var vErr *bootstrap.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Reason, http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"curve_type": b.CurveType(),
		"curve_date": vars["date"],
		"maturity":   maturity,
		"yield":      yield,
	})
}

func (h *Handler) maxPoints(r *http.Request) int {
	if raw := r.URL.Query().Get("max_points"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return h.defaultMaxPoints
}

func parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}
	return date, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
