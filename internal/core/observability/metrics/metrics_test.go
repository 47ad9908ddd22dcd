package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/physics"
)

type fixedCount int

func (f fixedCount) Len() int { return int(f) }

func TestObserverCounters(t *testing.T) {
	m := New(false)
	m.TickObserved()
	m.TickObserved()
	m.TickSkipped()
	m.NudgeApplied(perturb.Nudge{
		Delta: physics.Velocity3{0.03, 0, 0.04},
		After: physics.Velocity3{3, 4, 0},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nudges))
	assert.InDelta(t, 5.0, testutil.ToFloat64(m.speed), 1e-12)
	assert.Equal(t, 1, testutil.CollectAndCount(m.nudgeMagnitude))
}

func TestWatchSceneAndHandler(t *testing.T) {
	m := New(true)
	require.NoError(t, m.WatchScene(fixedCount(3)))
	assert.Error(t, m.WatchScene(fixedCount(1)), "duplicate registration")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	count, err := testutil.GatherAndCount(m.Registry(), "jitterball_scene_entities")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP jitterball_scene_entities Entities currently registered in the scene.
# TYPE jitterball_scene_entities gauge
jitterball_scene_entities 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "jitterball_scene_entities"))
}

func TestWatchBusCountsDeliveries(t *testing.T) {
	m := New(false)
	b := bus.New()
	m.WatchBus(b)

	_, err := b.Subscribe(perturb.EventNudge, func(bus.Event) error { return nil })
	require.NoError(t, err)
	_, err = b.Subscribe(perturb.EventNudge, func(bus.Event) error { return errors.New("viewer gone") })
	require.NoError(t, err)

	assert.Error(t, b.Publish(bus.NewEvent(perturb.EventNudge, "test", nil)))
	require.NoError(t, b.Publish(bus.NewEvent("view.appeared", "test", nil)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.busDeliveries.WithLabelValues(perturb.EventNudge)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.busDeliveries.WithLabelValues("view.appeared")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.busFailures.WithLabelValues(perturb.EventNudge)))
}
