// Package client is a Go SDK for the autopilot path service: it submits
// circle and line requests to a vehicle's factories, inspects and samples
// the path, and follows reference streams over websockets.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/autopilot/internal/config"
	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
	"github.com/zeusync/autopilot/internal/core/trajectory/factory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
	"github.com/zeusync/autopilot/internal/server"
)

// Config holds configuration for the client
type Config struct {
	// BaseURL is the server root, e.g. http://127.0.0.1:8080.
	BaseURL string
	Vehicle config.VehicleConfig
	Token   string

	CircleService string
	LineService   string

	RequestTimeout time.Duration
	DialTimeout    time.Duration
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	def := config.Default()
	return Config{
		BaseURL:        "http://" + def.Server.ListenAddr,
		Vehicle:        def.Vehicle,
		CircleService:  def.Services.Circle,
		LineService:    def.Services.Line,
		RequestTimeout: 10 * time.Second,
		DialTimeout:    5 * time.Second,
	}
}

// TrackOptions tune a reference stream.
type TrackOptions struct {
	RateHz float64
	Loop   bool
	// Start is the initial gamma; nil starts at the segment's lower bound.
	Start *float64
}

type Client struct {
	base   *url.URL
	config Config
	http   *http.Client
	dialer *websocket.Dialer
	logger log.Log
}

// NewClient validates cfg and builds a client. A nil logger disables logging.
func NewClient(cfg Config, logger log.Log) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidConfig, cfg.BaseURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidConfig, base.Scheme)
	}
	if cfg.CircleService == "" || cfg.LineService == "" {
		return nil, fmt.Errorf("%w: factory services must be set", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		base:   base,
		config: cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout},
		logger: logger.With(log.String("component", "client")),
	}, nil
}

// AddCircle submits a circle to the vehicle's circle factory and returns the
// new segment ID.
func (c *Client) AddCircle(ctx context.Context, req factory.AddCircleRequest) (string, error) {
	return c.submit(ctx, c.config.CircleService, req)
}

func (c *Client) AddLine(ctx context.Context, req factory.AddLineRequest) (string, error) {
	return c.submit(ctx, c.config.LineService, req)
}

func (c *Client) submit(ctx context.Context, service string, req any) (string, error) {
	var resp factory.Response
	if err := c.do(ctx, http.MethodPost, service, nil, req, &resp); err != nil {
		return "", err
	}
	c.logger.Debug("Segment added", log.String("service", service), log.String("id", resp.ID))
	return resp.ID, nil
}

func (c *Client) Segments(ctx context.Context) ([]manager.Segment, error) {
	var out []manager.Segment
	err := c.do(ctx, http.MethodGet, "path", nil, nil, &out)
	return out, err
}

func (c *Client) Segment(ctx context.Context, id string) (manager.Segment, error) {
	var out manager.Segment
	err := c.do(ctx, http.MethodGet, "path/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Sample evaluates segment id at gamma on the server.
func (c *Client) Sample(ctx context.Context, id string, gamma float64) (trajectory.Sample, error) {
	var out trajectory.Sample
	q := url.Values{"gamma": {strconv.FormatFloat(gamma, 'g', -1, 64)}}
	err := c.do(ctx, http.MethodGet, "path/"+url.PathEscape(id)+"/sample", q, nil, &out)
	return out, err
}

func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "path/"+url.PathEscape(id), nil, nil, nil)
}

// Clear empties the path and returns how many segments were removed.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var out struct {
		Removed int `json:"removed"`
	}
	err := c.do(ctx, http.MethodDelete, "path", nil, nil, &out)
	return out.Removed, err
}

// Track follows segment id, calling fn for every reference sample until the
// segment completes, ctx is canceled, or fn returns an error.
func (c *Client) Track(ctx context.Context, id string, opts TrackOptions, fn func(trajectory.Sample) error) error {
	q := url.Values{"id": {id}}
	if opts.RateHz > 0 {
		q.Set("rate", strconv.FormatFloat(opts.RateHz, 'g', -1, 64))
	}
	if opts.Loop {
		q.Set("loop", "true")
	}
	if opts.Start != nil {
		q.Set("start", strconv.FormatFloat(*opts.Start, 'g', -1, 64))
	}

	conn, err := c.dial(ctx, "ws/track", q)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var msg server.TrackMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := fn(msg.Sample); err != nil {
			return err
		}
	}
}

// Events delivers path changes to fn until ctx is canceled or fn fails.
func (c *Client) Events(ctx context.Context, fn func(server.EventMessage) error) error {
	conn, err := c.dial(ctx, "ws/events", nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var msg server.EventMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}

func (c *Client) dial(ctx context.Context, route string, q url.Values) (*websocket.Conn, error) {
	u := c.url(route, q)
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), c.header())
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, apiError(resp)
		}
		c.logger.Warn("Websocket dial failed", log.String("route", route), log.Error(err))
		return nil, err
	}
	return conn, nil
}

func (c *Client) do(ctx context.Context, method, route string, q url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(route, q).String(), reader)
	if err != nil {
		return err
	}
	req.Header = c.header()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) url(route string, q url.Values) *url.URL {
	u := *c.base
	u.Path = c.base.Path + c.config.Vehicle.Prefix() + route
	u.RawQuery = q.Encode()
	return &u
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.config.Token != "" {
		h.Set("Authorization", "Bearer "+c.config.Token)
	}
	return h
}

func apiError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}

	kind := ErrServer
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		kind = ErrConflict
	case resp.StatusCode < http.StatusInternalServerError:
		kind = ErrRejected
	}
	return &APIError{Status: resp.StatusCode, Message: msg, kind: kind}
}
