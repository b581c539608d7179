package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/autopilot/internal/core/events/bus"
	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
	"github.com/zeusync/autopilot/internal/core/trajectory/tracker"
)

const (
	writeWait        = 5 * time.Second
	maxTrackTick     = time.Minute
	eventsBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TrackMessage is one reference sample pushed to a tracking client.
type TrackMessage struct {
	SegmentID string            `json:"segment_id"`
	Sample    trajectory.Sample `json:"sample"`
}

// EventMessage is one path change pushed to an events client.
type EventMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// handleTrack streams the reference of one segment at the requested rate.
// Query: id (required), rate in Hz, loop, start (initial gamma).
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	seg, err := s.segment(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	tick, opts, err := s.trackOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	s.streams.Add(1)
	defer s.streams.Done()
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go drain(conn, cancel)

	logger := s.logger.With(log.String("segment", seg.ID), log.String("remote", r.RemoteAddr))
	logger.Info("Tracking stream opened", log.Duration("tick", tick))

	tr := tracker.New(seg.Trajectory, opts...)
	err = tr.Run(ctx, tick, func(sample trajectory.Sample) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(TrackMessage{SegmentID: seg.ID, Sample: sample})
	})
	switch {
	case err == nil:
		closeNormal(conn, "segment complete")
	case errors.Is(err, context.Canceled):
		closeNormal(conn, "stream closed")
	default:
		logger.Debug("Tracking stream ended", log.Error(err))
	}
	logger.Info("Tracking stream closed", log.Float64("gamma", tr.Gamma()))
}

func (s *Server) trackOptions(r *http.Request) (time.Duration, []tracker.Option, error) {
	cfg := s.config.Tracker
	rate, err := queryFloat(r, "rate", cfg.DefaultRateHz)
	if err != nil {
		return 0, nil, err
	}
	tick := time.Duration(float64(time.Second) / rate)
	if rate <= 0 || rate > cfg.MaxRateHz || tick <= 0 || tick > maxTrackTick {
		return 0, nil, fmt.Errorf("%w: rate must be in [%g, %g]", ErrBadQuery, 1/maxTrackTick.Seconds(), cfg.MaxRateHz)
	}

	var opts []tracker.Option
	if raw := r.URL.Query().Get("loop"); raw != "" {
		loop, err := strconv.ParseBool(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: loop=%q", ErrBadQuery, raw)
		}
		opts = append(opts, tracker.WithLoop(loop))
	}
	if r.URL.Query().Has("start") {
		start, err := queryFloat(r, "start", 0)
		if err != nil {
			return 0, nil, err
		}
		opts = append(opts, tracker.WithStartGamma(start))
	}

	return tick, opts, nil
}

// handleEvents forwards path changes to the client until it disconnects.
// Events are dropped for clients that cannot keep up.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	s.streams.Add(1)
	defer s.streams.Done()
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go drain(conn, cancel)

	queue := make(chan EventMessage, eventsBufferSize)
	forward := func(e bus.Event) error {
		select {
		case queue <- EventMessage{Type: e.Type(), Timestamp: e.Timestamp(), Data: e.Data()}:
		default:
			s.logger.Warn("Dropping path event for slow client", log.String("type", e.Type()))
		}
		return nil
	}

	for _, typ := range []string{manager.EventSegmentAdded, manager.EventSegmentRemoved, manager.EventPathCleared} {
		sub, err := s.events.Subscribe(typ, forward)
		if err != nil {
			s.logger.Error("Event subscription failed", log.Error(err))
			return
		}
		defer func() { _ = s.events.Unsubscribe(sub) }()
	}

	for {
		select {
		case <-ctx.Done():
			closeNormal(conn, "stream closed")
			return
		case msg := <-queue:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("Events stream ended", log.Error(err))
				return
			}
		}
	}
}

// drain reads until the peer goes away, then cancels the stream.
func drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func closeNormal(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
