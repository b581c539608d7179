package injector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/autopilot/internal/config"
	"github.com/zeusync/autopilot/internal/core/trajectory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
)

func TestInitializeAppPreloadsSegments(t *testing.T) {
	cfg := config.Default()
	cfg.Segments = []trajectory.Spec{
		{Kind: trajectory.KindCircle, Normal: [3]float64{0, 0, 1}, Radius: 5, Speed: 2},
		{Kind: trajectory.KindLine, End: [3]float64{1, 0, 0}, Speed: 1},
	}

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, app.Path.Len())
	assert.NotNil(t, app.Server.Handler())
}

func TestInitializeAppRejectsDuplicatePreload(t *testing.T) {
	cfg := config.Default()
	cfg.Path.RejectDuplicates = true
	spec := trajectory.Spec{Kind: trajectory.KindCircle, Normal: [3]float64{0, 0, 1}, Radius: 5, Speed: 2}
	cfg.Segments = []trajectory.Spec{spec, spec}

	_, err := InitializeApp(cfg)
	assert.ErrorIs(t, err, manager.ErrDuplicateSegment)
}

func TestInitializeAppRejectsNonFinitePreload(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		cfg := config.Default()
		cfg.Segments = []trajectory.Spec{
			{Kind: trajectory.KindLine, End: [3]float64{1, 0, 0}, Speed: 1},
			{Kind: trajectory.KindCircle, Normal: [3]float64{0, 0, 1}, Radius: v, Speed: 2},
		}

		_, err := InitializeApp(cfg)
		assert.ErrorIs(t, err, trajectory.ErrNonFinite)
		assert.ErrorContains(t, err, "preload segment 1")
	}
}

func TestProvideFactoriesRouteClash(t *testing.T) {
	cfg := config.Default()
	cfg.Services.Line = cfg.Services.Circle

	_, err := ProvideFactories(cfg, manager.New(), ProvideLogger(cfg))
	assert.Error(t, err)
}
