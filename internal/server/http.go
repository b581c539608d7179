package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
	"github.com/zeusync/autopilot/internal/core/trajectory/factory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
)

// maxRequestBody bounds factory request payloads.
const maxRequestBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type factoryInfo struct {
	Name    string `json:"name"`
	Service string `json:"service"`
}

func (s *Server) routes() http.Handler {
	prefix := s.config.Vehicle.Prefix()
	mux := http.NewServeMux()

	for _, f := range s.factories.All() {
		mux.Handle("POST "+prefix+f.Service(), s.handleFactory(f))
	}
	mux.HandleFunc("GET "+prefix+"factories", s.handleFactories)
	mux.HandleFunc("GET "+prefix+"path", s.handleList)
	mux.HandleFunc("DELETE "+prefix+"path", s.handleClear)
	mux.HandleFunc("GET "+prefix+"path/{id}", s.handleGet)
	mux.HandleFunc("DELETE "+prefix+"path/{id}", s.handleRemove)
	mux.HandleFunc("GET "+prefix+"path/{id}/sample", s.handleSample)
	mux.HandleFunc("GET "+prefix+"ws/track", s.handleTrack)
	mux.HandleFunc("GET "+prefix+"ws/events", s.handleEvents)

	return mux
}

func (s *Server) handleFactory(f factory.Factory) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := f.Handle(r.Context(), payload)
		if err != nil {
			s.logger.Warn("Factory request failed",
				log.String("factory", f.Name()),
				log.Error(err))
			writeJSON(w, statusFor(err), resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func (s *Server) handleFactories(w http.ResponseWriter, _ *http.Request) {
	all := s.factories.All()
	out := make([]factoryInfo, 0, len(all))
	for _, f := range all {
		out = append(out, factoryInfo{Name: f.Name(), Service: f.Service()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.path.List())
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	n := s.path.Clear()
	s.logger.Info("Path cleared", log.Int("segments", n))
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	seg, err := s.segment(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.path.Remove(r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	seg, err := s.segment(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	gamma, err := queryFloat(r, "gamma", seg.Trajectory.Bounds().Min)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, trajectory.Evaluate(seg.Trajectory, gamma))
}

func (s *Server) segment(r *http.Request) (manager.Segment, error) {
	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	seg, ok := s.path.Get(id)
	if !ok {
		return manager.Segment{}, fmt.Errorf("%w: %q", manager.ErrSegmentNotFound, id)
	}
	return seg, nil
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadQuery, key, raw)
	}
	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, factory.ErrInvalidRequest),
		errors.Is(err, trajectory.ErrUnknownKind),
		errors.Is(err, ErrBadQuery):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrSegmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrDuplicateSegment):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes before writing the header so an encoding failure is
// reported as a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorBody{Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
