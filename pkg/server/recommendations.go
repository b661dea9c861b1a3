package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gridadvisor/gridadvisor/pkg/log"
)

// handleRecommendations runs the advisor against the site's device registry
// and tariff, records the result, and returns it. An optional soc query
// parameter overrides the battery state of charge from the registry.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := s.getSiteID(r)

	var batterySOC *float64
	if socStr := r.URL.Query().Get("soc"); socStr != "" {
		soc, err := strconv.ParseFloat(socStr, 64)
		if err != nil || soc < 0 || soc > 100 {
			writeJSONError(w, "invalid soc: must be a number between 0 and 100", http.StatusBadRequest)
			return
		}
		batterySOC = &soc
	}

	devices, err := s.storage.ListDevices(ctx, siteID)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list devices", slog.Any("error", err))
		writeJSONError(w, "failed to list devices", http.StatusInternalServerError)
		return
	}

	set := s.advisor.Generate(ctx, siteID, devices, batterySOC, time.Now())

	// record what was advised; the advice itself is still returned if this
	// fails
	if len(set.Recommendations) > 0 {
		if err := s.storage.InsertRecommendations(ctx, siteID, set); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to record recommendations", slog.Any("error", err))
		}
	}

	writeJSON(w, set)
}

func (s *Server) handleRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := s.getSiteID(r)
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSONError(w, "invalid time range: "+err.Error(), http.StatusBadRequest)
		return
	}

	sets, err := s.storage.GetRecommendationHistory(ctx, siteID, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get recommendation history", slog.Any("error", err))
		writeJSONError(w, "failed to get recommendation history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, sets)
}

// parseTimeRange reads RFC3339 start/end query parameters, defaulting to the
// last 24 hours.
func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}
