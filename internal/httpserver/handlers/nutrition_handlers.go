package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"coachconnect/internal/backend"
	"coachconnect/internal/models"
)

// NutritionSearch proxies a free-text product search to the nutrition
// backend, applying the same paging defaults as the original UI.
func NutritionSearch(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") == "" {
			respondDetail(w, http.StatusBadRequest, "Query parameter is required")
			return
		}
		query := url.Values{
			"query":     {q.Get("query")},
			"quantity":  {orDefault(q.Get("quantity"), "100")},
			"page_size": {orDefault(q.Get("page_size"), "25")},
			"page":      {orDefault(q.Get("page"), "1")},
		}

		resp, err := bc.Get(r.Context(), "/search", query)
		if err != nil {
			lg.Errorw("nutrition search: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func NutritionProduct(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barcode := chi.URLParam(r, "barcode")
		query := url.Values{"quantity": {orDefault(r.URL.Query().Get("quantity"), "100")}}

		resp, err := bc.Get(r.Context(), "/product/"+url.PathEscape(barcode), query)
		if err != nil {
			lg.Errorw("nutrition product: backend call failed", "error", err, "barcode", barcode)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// IntakeAdd coerces the loosely-typed intake payload from the UI into a
// typed record before forwarding, so the backend never sees stringly-typed
// numbers.
func IntakeAdd(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := decodeJSON(r, &raw); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		record, ok := intakeFromRaw(raw)
		if !ok {
			respondDetail(w, http.StatusUnprocessableEntity, "Missing or invalid intake fields")
			return
		}

		resp, err := bc.Post(r.Context(), "/intake/add", record)
		if err != nil {
			lg.Errorw("intake add: backend call failed", "error", err, "user", record.UserID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func intakeFromRaw(raw map[string]any) (models.IntakeRecord, bool) {
	record := models.IntakeRecord{
		UserID:      asString(raw["user_id"]),
		ProductName: asString(raw["product_name"]),
		Unit:        orDefault(asString(raw["unit"]), "g"),
		MealType:    asString(raw["meal_type"]),
		IntakeDate:  asString(raw["intake_date"]),
		IntakeTime:  asString(raw["intake_time"]),
		Barcode:     asString(raw["barcode"]),
	}
	var ok bool
	if record.Quantity, ok = asFloat(raw["quantity"]); !ok {
		return record, false
	}
	if record.Calories, ok = asFloat(raw["calories"]); !ok {
		return record, false
	}
	if record.Protein, ok = asFloat(raw["protein"]); !ok {
		return record, false
	}
	if record.Carbs, ok = asFloat(raw["carbs"]); !ok {
		return record, false
	}
	if record.Fat, ok = asFloat(raw["fat"]); !ok {
		return record, false
	}
	if record.UserID == "" || record.ProductName == "" {
		return record, false
	}
	record.Fiber = optFloat(raw["fiber"])
	record.Sugar = optFloat(raw["sugar"])
	record.Sodium = optFloat(raw["sodium"])
	return record, true
}

// IntakeAddFromBarcode logs an intake by product barcode; the nutrition
// backend resolves the product and computes the macros itself, so the body is
// forwarded untouched.
func IntakeAddFromBarcode(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := decodeJSON(r, &body); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		resp, err := bc.Post(r.Context(), "/intake/add-from-barcode", body)
		if err != nil {
			lg.Errorw("intake add-from-barcode: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func IntakeDaily(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		query := url.Values{}
		if d := r.URL.Query().Get("intake_date"); d != "" {
			query.Set("intake_date", d)
		}

		resp, err := bc.Get(r.Context(), "/intake/daily/"+url.PathEscape(userID), query)
		if err != nil {
			lg.Errorw("intake daily: backend call failed", "error", err, "user", userID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func IntakeRange(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		from := r.URL.Query().Get("start_date")
		to := r.URL.Query().Get("end_date")
		if from == "" || to == "" {
			respondDetail(w, http.StatusBadRequest, "start_date and end_date are required")
			return
		}

		query := url.Values{"start_date": {from}, "end_date": {to}}
		resp, err := bc.Get(r.Context(), "/intake/range/"+url.PathEscape(userID), query)
		if err != nil {
			lg.Errorw("intake range: backend call failed", "error", err, "user", userID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// IntakeWeek returns the weekly intake summary, optionally anchored on a
// specific week_date.
func IntakeWeek(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		query := url.Values{}
		if d := r.URL.Query().Get("week_date"); d != "" {
			query.Set("week_date", d)
		}

		resp, err := bc.Get(r.Context(), "/intake/week/"+url.PathEscape(userID), query)
		if err != nil {
			lg.Errorw("intake week: backend call failed", "error", err, "user", userID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func IntakeUpdate(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		var body map[string]any
		if err := decodeJSON(r, &body); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		resp, err := bc.Do(r.Context(), http.MethodPut, "/intake/update/"+url.PathEscape(recordID), nil, body)
		if err != nil {
			lg.Errorw("intake update: backend call failed", "error", err, "record", recordID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func IntakeDelete(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		resp, err := bc.Do(r.Context(), http.MethodDelete, "/intake/delete/"+url.PathEscape(recordID), nil, nil)
		if err != nil {
			lg.Errorw("intake delete: backend call failed", "error", err, "record", recordID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// GoalsGet fetches a user's nutrition goals.
func GoalsGet(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		resp, err := bc.Get(r.Context(), "/goals/"+url.PathEscape(userID), nil)
		if err != nil {
			lg.Errorw("goals get: backend call failed", "error", err, "user", userID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// GoalsUpdate forwards a goals update untouched; the backend validates the
// targets.
func GoalsUpdate(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := decodeJSON(r, &body); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		resp, err := bc.Post(r.Context(), "/goals/update", body)
		if err != nil {
			lg.Errorw("goals update: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// FavoriteAddFromBarcode saves a scanned product to the user's favorites.
func FavoriteAddFromBarcode(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := decodeJSON(r, &body); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		resp, err := bc.Post(r.Context(), "/favorites/add-from-barcode", body)
		if err != nil {
			lg.Errorw("favorite add: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// FavoriteDetail fetches one favorite, scoped to its owner via user_id.
func FavoriteDetail(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favoriteID := chi.URLParam(r, "favoriteID")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			respondDetail(w, http.StatusBadRequest, "user_id parameter is required")
			return
		}

		resp, err := bc.Get(r.Context(), "/favorites/detail/"+url.PathEscape(favoriteID), url.Values{"user_id": {userID}})
		if err != nil {
			lg.Errorw("favorite detail: backend call failed", "error", err, "favorite", favoriteID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// FavoriteDelete removes a favorite, scoped to its owner via user_id.
func FavoriteDelete(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favoriteID := chi.URLParam(r, "favoriteID")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			respondDetail(w, http.StatusBadRequest, "user_id parameter is required")
			return
		}

		resp, err := bc.Do(r.Context(), http.MethodDelete, "/favorites/"+url.PathEscape(favoriteID), url.Values{"user_id": {userID}}, nil)
		if err != nil {
			lg.Errorw("favorite delete: backend call failed", "error", err, "favorite", favoriteID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func optFloat(v any) *float64 {
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}
