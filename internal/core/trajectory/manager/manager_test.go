package manager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/autopilot/internal/core/events/bus"
	"github.com/zeusync/autopilot/internal/core/systems/physics"
	"github.com/zeusync/autopilot/internal/core/trajectory"
)

func circleSpec(radius float64) trajectory.Spec {
	return trajectory.CircleSpec(physics.V(0, 0, 0), physics.V(0, 0, 1), radius, 2)
}

func TestManagerAddGetList(t *testing.T) {
	m := New()

	a, err := m.AddSpec(circleSpec(5))
	require.NoError(t, err)
	b, err := m.AddSpec(trajectory.LineSpec(physics.V(0, 0, 0), physics.V(1, 0, 0), 1))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, circleSpec(5).Fingerprint(), got.Fingerprint)
	assert.IsType(t, &trajectory.Circle{}, got.Trajectory)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestManagerRejectsUnknownKind(t *testing.T) {
	_, err := New().AddSpec(trajectory.Spec{Kind: "spiral"})
	assert.ErrorIs(t, err, trajectory.ErrUnknownKind)

	_, err = New().Add(circleSpec(1), nil)
	assert.ErrorIs(t, err, ErrNilTrajectory)
}

func TestManagerDuplicates(t *testing.T) {
	m := New()
	_, err := m.AddSpec(circleSpec(5))
	require.NoError(t, err)
	_, err = m.AddSpec(circleSpec(5))
	assert.NoError(t, err, "duplicates allowed by default")

	m = New(WithRejectDuplicates(true))
	seg, err := m.AddSpec(circleSpec(5))
	require.NoError(t, err)
	_, err = m.AddSpec(circleSpec(5))
	assert.ErrorIs(t, err, ErrDuplicateSegment)

	require.NoError(t, m.Remove(seg.ID))
	_, err = m.AddSpec(circleSpec(5))
	assert.NoError(t, err, "fingerprint released on removal")
}

func TestManagerRemoveClear(t *testing.T) {
	m := New()
	a, _ := m.AddSpec(circleSpec(1))
	b, _ := m.AddSpec(circleSpec(2))
	c, _ := m.AddSpec(circleSpec(3))

	require.NoError(t, m.Remove(b.ID))
	assert.ErrorIs(t, m.Remove(b.ID), ErrSegmentNotFound)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	assert.Equal(t, 2, m.Clear())
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get(a.ID)
	assert.False(t, ok)
}

func TestManagerPublishesEvents(t *testing.T) {
	b := bus.New()
	m := New(WithEventBus(b))

	var got []string
	for _, typ := range []string{EventSegmentAdded, EventSegmentRemoved, EventPathCleared} {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			got = append(got, e.Type())
			return nil
		})
		require.NoError(t, err)
	}

	seg, err := m.AddSpec(circleSpec(1))
	require.NoError(t, err)
	require.NoError(t, m.Remove(seg.ID))
	m.Clear()

	assert.Equal(t, []string{EventSegmentAdded, EventSegmentRemoved, EventPathCleared}, got)
}

func TestManagerConcurrentAdd(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.AddSpec(circleSpec(float64(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}
