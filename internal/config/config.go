// Package config loads the autopilot path service configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
	"github.com/zeusync/autopilot/internal/core/trajectory/factory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server   ServerConfig      `json:"server" yaml:"server"`
	Vehicle  VehicleConfig     `json:"vehicle" yaml:"vehicle"`
	Log      LogConfig         `json:"log" yaml:"log"`
	Auth     AuthConfig        `json:"auth" yaml:"auth"`
	Path     PathConfig        `json:"path" yaml:"path"`
	Services ServicesConfig    `json:"services" yaml:"services"`
	Tracker  TrackerConfig     `json:"tracker" yaml:"tracker"`
	Segments []trajectory.Spec `json:"segments" yaml:"segments"`
}

type ServerConfig struct {
	ListenAddr   string        `json:"listen_addr" yaml:"listen_addr"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// VehicleConfig namespaces every route, e.g. namespace "drone" and id 1 give "/drone1/".
type VehicleConfig struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	ID        int    `json:"id" yaml:"id"`
}

// Prefix is the route prefix for this vehicle, with leading and trailing slash.
func (v VehicleConfig) Prefix() string {
	if v.Namespace == "" {
		return "/"
	}
	return "/" + v.Namespace + strconv.Itoa(v.ID) + "/"
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// AuthConfig enables token checks when Token is set.
type AuthConfig struct {
	Token string `json:"token" yaml:"token"`
}

type PathConfig struct {
	RejectDuplicates bool `json:"reject_duplicates" yaml:"reject_duplicates"`
}

// ServicesConfig holds the route each factory answers on.
type ServicesConfig struct {
	Circle string `json:"circle" yaml:"circle"`
	Line   string `json:"line" yaml:"line"`
}

type TrackerConfig struct {
	DefaultRateHz float64 `json:"default_rate_hz" yaml:"default_rate_hz"`
	MaxRateHz     float64 `json:"max_rate_hz" yaml:"max_rate_hz"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Vehicle: VehicleConfig{
			Namespace: "drone",
			ID:        1,
		},
		Log: LogConfig{Level: "info"},
		Services: ServicesConfig{
			Circle: factory.DefaultCircleService,
			Line:   factory.DefaultLineService,
		},
		Tracker: TrackerConfig{
			DefaultRateHz: 50,
			MaxRateHz:     500,
		},
	}
}

// Load reads a YAML or JSON file, chosen by extension, on top of Default.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config extension %q", ErrInvalidConfig, filepath.Ext(path))
	}
}

// LoadYAML loads config from a YAML reader. Durations use Go syntax ("5s").
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, c.Validate()
}

// LoadJSON loads config from a JSON reader. Durations are nanoseconds.
func LoadJSON(r io.Reader) (Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is empty"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Vehicle.ID < 0 {
		errs = append(errs, errors.New("vehicle.id must not be negative"))
	}
	if strings.Contains(c.Vehicle.Namespace, "/") {
		errs = append(errs, errors.New("vehicle.namespace must not contain '/'"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Services.Circle == "" || c.Services.Line == "" {
		errs = append(errs, errors.New("services routes must not be empty"))
	} else if c.Services.Circle == c.Services.Line {
		errs = append(errs, errors.New("services.circle and services.line must differ"))
	}
	if c.Tracker.DefaultRateHz <= 0 || c.Tracker.MaxRateHz < c.Tracker.DefaultRateHz {
		errs = append(errs, errors.New("tracker rates must satisfy 0 < default_rate_hz <= max_rate_hz"))
	}
	for i, s := range c.Segments {
		if _, err := s.Build(); err != nil {
			errs = append(errs, fmt.Errorf("segments[%d]: %w", i, err))
		} else if err = s.CheckFinite(); err != nil {
			errs = append(errs, fmt.Errorf("segments[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the parsed log level, falling back to info.
func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}
