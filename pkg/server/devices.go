package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gridadvisor/gridadvisor/pkg/log"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := s.getSiteID(r)

	devices, err := s.storage.ListDevices(ctx, siteID)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list devices", slog.Any("error", err))
		writeJSONError(w, "failed to list devices", http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []types.Device{}
	}
	writeJSON(w, devices)
}

func (s *Server) handleUpsertDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := s.getSiteID(r)

	var req struct {
		SiteID string       `json:"siteID"`
		Device types.Device `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Device.ID == "" {
		writeJSONError(w, "device missing id", http.StatusBadRequest)
		return
	}
	if !types.IsKnownDeviceType(req.Device.Type) {
		writeJSONError(w, "unknown device type: "+string(req.Device.Type), http.StatusBadRequest)
		return
	}

	if err := s.storage.UpsertDevice(ctx, siteID, req.Device); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to upsert device", slog.Any("error", err))
		writeJSONError(w, "failed to upsert device", http.StatusInternalServerError)
		return
	}
	writeJSON(w, req.Device)
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sites, err := s.storage.ListSites(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list sites", slog.Any("error", err))
		writeJSONError(w, "failed to list sites", http.StatusInternalServerError)
		return
	}
	if sites == nil {
		sites = []types.Site{}
	}
	writeJSON(w, sites)
}
