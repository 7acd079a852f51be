package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wxgate/wxgate/internal/gateway"
	"github.com/wxgate/wxgate/internal/hwo"
	"github.com/wxgate/wxgate/internal/models"
)

// maxQueryLen caps location query payloads. Queries are tiny; anything
// larger is a misbehaving client.
const maxQueryLen = 128

// maxAlertLen caps alert payloads, which carry arbitrary fields that are
// echoed into webhook bodies.
const maxAlertLen = 64 << 10

func decodeQuery(w http.ResponseWriter, r *http.Request) (gateway.Query, bool) {
	var q gateway.Query
	body := http.MaxBytesReader(w, r.Body, maxQueryLen)
	if err := json.NewDecoder(body).Decode(&q); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusBadRequest, "Payload too large")
		} else {
			writeStatus(w, http.StatusBadRequest, "JSON decoding error")
		}
		return gateway.Query{}, false
	}
	return q, true
}

type allResponse struct {
	models.ForecastBundle
	HWO []hwo.Entry `json:"hwo"`
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	bundle, err := s.gw.ResolveAndForecast(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.gw.HazardOutlook(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allResponse{ForecastBundle: bundle, HWO: entries})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	bundle, err := s.gw.ResolveAndForecast(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle.Daily)
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	bundle, err := s.gw.ResolveAndForecast(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle.Hourly)
}

func (s *Server) handleHWO(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	entries, err := s.gw.HazardOutlook(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSpotter(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	entries, err := s.gw.HazardOutlook(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	spotter := make([]string, 0, len(entries))
	for _, e := range entries {
		spotter = append(spotter, e.Spotter)
	}
	writeJSON(w, http.StatusOK, spotter)
}

// alertPayload is the subset of the inbound alert the router needs; the raw
// body is preserved verbatim for webhook forwarding.
type alertPayload struct {
	Type string   `json:"type"`
	SAME []string `json:"same"`
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAlertLen))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusBadRequest, "Payload too large")
		} else {
			writeStatus(w, http.StatusBadRequest, "Unable to read payload")
		}
		return
	}

	var payload alertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeStatus(w, http.StatusBadRequest, "JSON decoding error")
		return
	}

	event := models.AlertEvent{Type: payload.Type, Codes: payload.SAME, Raw: raw}
	count, err := s.gw.ClassifyAndDispatch(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"actions": count})
}

func (s *Server) handleCacheDump(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gw.CacheState())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.gw.ClearCaches()
	w.WriteHeader(http.StatusNoContent)
}
