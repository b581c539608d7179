// Package manager keeps the segments registered for a vehicle's path.
//
// The manager only stores segments in the order they were added. Deciding
// which segment is active and mapping global progress onto it is left to the
// path follower.
package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/autopilot/internal/core/events/bus"
	"github.com/zeusync/autopilot/internal/core/trajectory"
)

// Event types published on the bus when the path changes.
const (
	EventSegmentAdded   = "path.segment_added"
	EventSegmentRemoved = "path.segment_removed"
	EventPathCleared    = "path.cleared"
)

const eventSource = "path.manager"

// Segment is a trajectory together with the spec it was built from.
type Segment struct {
	ID          string                          `json:"id"`
	Spec        trajectory.Spec                 `json:"spec"`
	Fingerprint uint64                          `json:"fingerprint"`
	AddedAt     time.Time                       `json:"added_at"`
	Trajectory  trajectory.ParametricTrajectory `json:"-"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithRejectDuplicates makes Add refuse a spec whose fingerprint is already on the path.
func WithRejectDuplicates(reject bool) Option {
	return func(m *Manager) { m.rejectDuplicates = reject }
}

// WithEventBus publishes path changes on b.
func WithEventBus(b bus.EventBus) Option {
	return func(m *Manager) { m.events = b }
}

// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	order    []string            // segment IDs in insertion order
	segments map[string]*Segment // keyed by ID
	prints   map[uint64]int      // fingerprint -> number of segments

	rejectDuplicates bool
	events           bus.EventBus
	now              func() time.Time
}

func New(opts ...Option) *Manager {
	m := &Manager{
		segments: make(map[string]*Segment),
		prints:   make(map[uint64]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends a segment to the path.
func (m *Manager) Add(spec trajectory.Spec, traj trajectory.ParametricTrajectory) (Segment, error) {
	if traj == nil {
		return Segment{}, ErrNilTrajectory
	}

	fp := spec.Fingerprint()

	m.mu.Lock()
	if m.rejectDuplicates && m.prints[fp] > 0 {
		m.mu.Unlock()
		return Segment{}, fmt.Errorf("%w: %s %016x", ErrDuplicateSegment, spec.Kind, fp)
	}
	seg := &Segment{
		ID:          uuid.NewString(),
		Spec:        spec,
		Fingerprint: fp,
		AddedAt:     m.now(),
		Trajectory:  traj,
	}
	m.segments[seg.ID] = seg
	m.order = append(m.order, seg.ID)
	m.prints[fp]++
	m.mu.Unlock()

	m.publish(EventSegmentAdded, *seg)
	return *seg, nil
}

// AddSpec builds the segment described by spec and adds it.
func (m *Manager) AddSpec(spec trajectory.Spec) (Segment, error) {
	traj, err := spec.Build()
	if err != nil {
		return Segment{}, err
	}
	return m.Add(spec, traj)
}

func (m *Manager) Get(id string) (Segment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seg, ok := m.segments[id]
	if !ok {
		return Segment{}, false
	}
	return *seg, true
}

// List returns the segments in insertion order.
func (m *Manager) List() []Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Segment, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.segments[id])
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	seg, ok := m.segments[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	delete(m.segments, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.prints[seg.Fingerprint]--
	if m.prints[seg.Fingerprint] <= 0 {
		delete(m.prints, seg.Fingerprint)
	}
	m.mu.Unlock()

	m.publish(EventSegmentRemoved, *seg)
	return nil
}

// Clear removes every segment and returns how many were dropped.
func (m *Manager) Clear() int {
	m.mu.Lock()
	n := len(m.order)
	m.order = nil
	m.segments = make(map[string]*Segment)
	m.prints = make(map[uint64]int)
	m.mu.Unlock()

	m.publish(EventPathCleared, n)
	return n
}

func (m *Manager) publish(eventType string, data any) {
	if m.events == nil {
		return
	}
	// Subscribers run synchronously; their errors are theirs to report.
	_ = m.events.Publish(bus.NewEvent(eventType, eventSource, data, nil))
}
