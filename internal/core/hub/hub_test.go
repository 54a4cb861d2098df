package hub

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/pkg/types"
)

func readySession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.DefaultConfig(), clock.NewMock(), metrics.NewRegistry(), nil)
	require.NoError(t, s.Transition(session.Connecting))
	require.NoError(t, s.Transition(session.Connected))
	require.NoError(t, s.Transition(session.Ready))
	return s
}

func identityEncoder(nodes []types.Node) []byte {
	return []byte{byte(len(nodes))}
}

// TestBroadcastFairness covers Testable Property 7: one saturated session
// must not prevent others from receiving the snapshot.
func TestBroadcastFairness(t *testing.T) {
	h := New(identityEncoder, metrics.NewRegistry())

	slow := session.New(session.Config{QueueCapacity: 1, RateLimit: session.DefaultConfig().RateLimit}, clock.NewMock(), metrics.NewRegistry(), nil)
	require.NoError(t, slow.Transition(session.Connecting))
	require.NoError(t, slow.Transition(session.Connected))
	require.NoError(t, slow.Transition(session.Ready))
	// fill the slow session's single-slot queue with a non-position message so
	// it is full when the snapshot arrives; the position broadcast then evicts
	// that text message instead of blocking.
	require.NoError(t, slow.Queue.Enqueue(session.Message{Kind: session.KindText, Payload: []byte("x")}))

	fast := readySession(t)

	h.Register(slow)
	h.Register(fast)

	h.BroadcastSnapshot([]types.Node{types.NewNode(0, types.Vec3{})})

	_, ok := fast.Queue.Dequeue()
	require.True(t, ok, "fast session must still receive the snapshot")
}

func TestUnregisteredSessionsAreNotDelivered(t *testing.T) {
	h := New(identityEncoder, metrics.NewRegistry())
	s := readySession(t)
	h.Register(s)
	h.Unregister(s.ID)

	h.BroadcastSnapshot([]types.Node{types.NewNode(0, types.Vec3{})})

	_, ok := s.Queue.Dequeue()
	require.False(t, ok)
}

func TestNonReadySessionsAreSkipped(t *testing.T) {
	h := New(identityEncoder, metrics.NewRegistry())
	s := session.New(session.DefaultConfig(), clock.NewMock(), metrics.NewRegistry(), nil)
	h.Register(s) // registered but never reached READY

	h.BroadcastSnapshot([]types.Node{types.NewNode(0, types.Vec3{})})

	_, ok := s.Queue.Dequeue()
	require.False(t, ok)
}

func TestGracefulCloseAfterConsecutiveDrops(t *testing.T) {
	h := New(identityEncoder, metrics.NewRegistry())
	// a zero-capacity queue can never accept a message, so every broadcast
	// after registration hits the saturated path deterministically.
	s := session.New(session.Config{QueueCapacity: 0, RateLimit: session.DefaultConfig().RateLimit}, clock.NewMock(), metrics.NewRegistry(), nil)
	require.NoError(t, s.Transition(session.Connecting))
	require.NoError(t, s.Transition(session.Connected))
	require.NoError(t, s.Transition(session.Ready))

	var closed *session.Session
	h.OnGracefulClose(func(cs *session.Session) { closed = cs })
	h.Register(s)

	for i := 0; i < 10; i++ {
		h.BroadcastSnapshot([]types.Node{types.NewNode(0, types.Vec3{})})
	}

	require.NotNil(t, closed, "session should be marked for graceful close after sustained saturation")
	require.Equal(t, s.ID, closed.ID)
}
