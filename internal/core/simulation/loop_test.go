package simulation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	dto "github.com/prometheus/client_model/go"

	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/pkg/types"
)

type stubKernel struct {
	calls int
}

func (k *stubKernel) Step(nodes []types.Node, edges []types.Edge) []types.Node {
	k.calls++
	out := make([]types.Node, len(nodes))
	copy(out, nodes)
	return out
}

type stubBroadcaster struct {
	mu   sync.Mutex
	last []types.Node
	sent int
}

func (b *stubBroadcaster) BroadcastSnapshot(nodes []types.Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = nodes
	b.sent++
}

func (b *stubBroadcaster) sentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent
}

func newTestLoop(t *testing.T) (*Loop, *clock.Mock, *stubKernel, *stubBroadcaster) {
	t.Helper()
	mockClock := clock.NewMock()
	kernel := &stubKernel{}
	bcast := &stubBroadcaster{}
	cfg := DefaultConfig()
	cfg.UpdateRate = 10 // 100ms ticks, easy to reason about
	loop := New(kernel, bcast, cfg, mockClock, metrics.NewRegistry())
	loop.SetGraph([]types.Node{
		types.NewNode(0, types.Vec3{X: 1}),
		types.NewNode(1, types.Vec3{X: -1}),
	}, nil)
	return loop, mockClock, kernel, bcast
}

// TestScenarioS6 reproduces spec.md §8 Concrete Scenario S6.
func TestScenarioS6(t *testing.T) {
	loop, mockClock, _, _ := newTestLoop(t)
	loop.Resume()

	loop.Randomize()
	require.Equal(t, StateRandomizing, loop.State())

	accepted := loop.Nudge(0, types.Vec3{X: 42})
	require.False(t, accepted, "nudge during the ack window must be ignored")

	mockClock.Add(4 * time.Second)
	require.Equal(t, StateRandomizing, loop.State(), "still inside the 5s ack window")
	stillIgnored := loop.Nudge(0, types.Vec3{X: 42})
	require.False(t, stillIgnored)

	mockClock.Add(2 * time.Second)
	require.Equal(t, StateRunning, loop.State(), "ack window elapsed, back to running")

	accepted = loop.Nudge(0, types.Vec3{X: 7})
	require.True(t, accepted, "nudges accepted again once the window passes")
}

func TestPausedProcessesNudgesButSkipsPhysics(t *testing.T) {
	loop, mockClock, kernel, bcast := newTestLoop(t)
	loop.Pause()

	loop.Nudge(0, types.Vec3{X: 99})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	defer cancel()

	waitForTicks(mockClock) // let Run register its ticker before the clock moves
	mockClock.Add(100 * time.Millisecond)
	waitForTicks(mockClock)

	require.Equal(t, 0, kernel.calls, "paused must not advance physics")
	require.Equal(t, 0, bcast.sentCount(), "paused must not emit snapshots")

	snap := loop.Snapshot()
	require.Equal(t, float32(99), snap[0].Position.X, "nudge should still be applied while paused")
}

func TestRunningAdvancesPhysicsAndEmitsSnapshots(t *testing.T) {
	loop, mockClock, kernel, bcast := newTestLoop(t)
	loop.Resume()

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	defer cancel()

	waitForTicks(mockClock) // let Run register its ticker before the clock moves
	mockClock.Add(300 * time.Millisecond)
	waitForTicks(mockClock)

	require.GreaterOrEqual(t, kernel.calls, 1)
	require.GreaterOrEqual(t, bcast.sentCount(), 1)
}

// waitForTicks gives the goroutine driven by the mock clock a chance to
// observe fired timers before assertions run.
func waitForTicks(mockClock *clock.Mock) {
	time.Sleep(20 * time.Millisecond)
}

func TestRequestTickAdvancesPhysicsWithoutWaitingForTheTicker(t *testing.T) {
	loop, mockClock, kernel, _ := newTestLoop(t)
	loop.Resume()

	// A burst of requests before Run consumes any collapses into one.
	loop.RequestTick()
	loop.RequestTick()
	require.Equal(t, 0, kernel.calls)

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	defer cancel()

	waitForTicks(mockClock)

	require.Equal(t, 1, kernel.calls, "applyForces (§6.3) should schedule exactly one extra tick")

	loop.RequestTick()
	waitForTicks(mockClock)

	require.Equal(t, 2, kernel.calls)
}

func TestTickCountsMissedTicksAsSnapshotsSkipped(t *testing.T) {
	mockClock := clock.NewMock()
	kernel := &stubKernel{}
	bcast := &stubBroadcaster{}
	cfg := DefaultConfig()
	cfg.UpdateRate = 10 // 100ms interval
	reg := metrics.NewRegistry()
	loop := New(kernel, bcast, cfg, mockClock, reg)
	loop.SetGraph([]types.Node{types.NewNode(0, types.Vec3{})}, nil)
	loop.Resume()

	loop.tick()
	mockClock.Add(350 * time.Millisecond) // 3.5 intervals elapsed since the first tick
	loop.tick()

	var m dto.Metric
	require.NoError(t, reg.SnapshotsSkippedTotal.Write(&m))
	require.Equal(t, float64(2), m.GetCounter().GetValue())
}

func TestResumeResetsSkipDetectionSoAPauseIsNotCountedAsASkip(t *testing.T) {
	mockClock := clock.NewMock()
	kernel := &stubKernel{}
	bcast := &stubBroadcaster{}
	cfg := DefaultConfig()
	cfg.UpdateRate = 10
	reg := metrics.NewRegistry()
	loop := New(kernel, bcast, cfg, mockClock, reg)
	loop.SetGraph([]types.Node{types.NewNode(0, types.Vec3{})}, nil)

	loop.Resume()
	loop.tick()
	loop.Pause()
	mockClock.Add(time.Second) // well past several intervals while paused
	loop.Resume()
	loop.tick()

	var m dto.Metric
	require.NoError(t, reg.SnapshotsSkippedTotal.Write(&m))
	require.Equal(t, float64(0), m.GetCounter().GetValue())
}
