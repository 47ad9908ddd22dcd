package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/observability/metrics"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/physics"
	"github.com/zeusync/jitterball/internal/core/scene"
)

func newScene(t *testing.T) (*scene.Scene, scene.EntityID) {
	t.Helper()
	sc, err := scene.New(scene.DefaultConfig())
	require.NoError(t, err)
	ball := scene.NewSphere("sphere", 0.05, physics.Position3{0, 0, -0.5}).
		GenerateCollisionShape().
		WithBody(scene.PhysicsBody{Mass: 1, Material: physics.Material{Friction: 0.5, Restitution: 0.8}, Mode: physics.ModeDynamic}).
		WithMotion(physics.Motion{Linear: physics.Velocity3{0.25, 0.2, 0.15}})
	id, err := sc.Add(ball)
	require.NoError(t, err)
	return sc, id
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err, "could not connect")
	return conn
}

func TestNewServerValidates(t *testing.T) {
	sc, _ := newScene(t)

	_, err := NewServer(Config{SnapshotInterval: time.Second}, sc, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewServer(Config{ListenAddr: ":0"}, sc, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewServer(DefaultConfig(), nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWebSocketSendsSnapshotThenNudges(t *testing.T) {
	sc, id := newScene(t)
	eb := bus.New()
	srv, err := NewServer(DefaultConfig(), sc, eb, nil, nil)
	require.NoError(t, err)
	_, err = eb.Subscribe(perturb.EventNudge, srv.onNudge)
	require.NoError(t, err)

	s := httptest.NewServer(srv.Handler())
	defer s.Close()

	conn := dial(t, s.URL)
	defer conn.Close()

	first := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, first.Type)
	require.Len(t, first.Entities, 1)
	assert.Equal(t, id, first.Entities[0].ID)
	assert.Equal(t, [3]float64{0.25, 0.2, 0.15}, first.Entities[0].LinearVelocity)

	require.Eventually(t, func() bool { return srv.hub.len() == 1 }, time.Second, time.Millisecond)

	nudge := perturb.Nudge{
		Tick:   7,
		At:     time.Now(),
		Before: physics.Velocity3{0.25, 0.2, 0.15},
		Delta:  physics.Velocity3{0.01, -0.02, 0.03},
		After:  physics.Velocity3{0.26, 0.18, 0.18},
	}
	require.NoError(t, eb.Publish(bus.NewEvent(perturb.EventNudge, "test", nudge)))

	f := readFrame(t, conn)
	assert.Equal(t, FrameNudge, f.Type)
	require.NotNil(t, f.Nudge)
	assert.Equal(t, uint64(7), f.Nudge.Tick)
	assert.Equal(t, nudge.Delta, f.Nudge.Delta)
	assert.Empty(t, f.Entities)
}

func TestNudgeRejectsForeignPayload(t *testing.T) {
	sc, _ := newScene(t)
	srv, err := NewServer(DefaultConfig(), sc, nil, nil, nil)
	require.NoError(t, err)
	assert.Error(t, srv.onNudge(bus.NewEvent(perturb.EventNudge, "test", "not a nudge")))
}

func TestHealthAndMetrics(t *testing.T) {
	sc, _ := newScene(t)
	m := metrics.New(false)
	require.NoError(t, m.WatchScene(sc))
	m.TickObserved()

	srv, err := NewServer(DefaultConfig(), sc, nil, m.Handler(), nil)
	require.NoError(t, err)
	s := httptest.NewServer(srv.Handler())
	defer s.Close()

	resp, err := http.Get(s.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "jitterball_ticks_total 1")
	assert.Contains(t, string(body), "jitterball_scene_entities 1")
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	sc, _ := newScene(t)
	srv, err := NewServer(DefaultConfig(), sc, nil, nil, nil)
	require.NoError(t, err)
	s := httptest.NewServer(srv.Handler())
	defer s.Close()

	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartStreamsAndStops(t *testing.T) {
	sc, _ := newScene(t)
	eb := bus.New()
	cfg := Config{ListenAddr: "127.0.0.1:0", SnapshotInterval: 5 * time.Millisecond}
	srv, err := NewServer(cfg, sc, eb, nil, nil)
	require.NoError(t, err)

	assert.Nil(t, srv.Addr())
	require.NoError(t, srv.Start(context.Background()))
	assert.ErrorIs(t, srv.Start(context.Background()), ErrServerAlreadyRunning)
	assert.True(t, srv.IsRunning())
	assert.Equal(t, uint64(1), eb.Metrics().SubscribersActive)

	conn := dial(t, "http://"+srv.Addr().String())
	defer conn.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, FrameSnapshot, readFrame(t, conn).Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.ErrorIs(t, srv.Stop(ctx), ErrServerNotRunning)
	assert.False(t, srv.IsRunning())
	assert.Equal(t, uint64(0), eb.Metrics().SubscribersActive)

	// The stream ends with a close frame once the server stops.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestStartFailsOnBusyAddress(t *testing.T) {
	sc, _ := newScene(t)
	first, err := NewServer(Config{ListenAddr: "127.0.0.1:0", SnapshotInterval: time.Second}, sc, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, first.Start(context.Background()))
	defer first.Stop(context.Background())

	second, err := NewServer(Config{ListenAddr: first.Addr().String(), SnapshotInterval: time.Second}, sc, nil, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, second.Start(context.Background()), ErrListenerFailed)
	assert.False(t, second.IsRunning())
}

func TestFrameJSONShape(t *testing.T) {
	raw, err := json.Marshal(nudgeFrame(perturb.Nudge{Tick: 1}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"nudge"`)
	assert.NotContains(t, string(raw), `"entities"`)
}
