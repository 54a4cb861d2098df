package session

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/pkg/types"
)

func TestStateMachineHappyPath(t *testing.T) {
	s := New(DefaultConfig(), clock.NewMock(), metrics.NewRegistry(), nil)

	require.NoError(t, s.Transition(Connecting))
	require.NoError(t, s.Transition(Connected))
	require.NoError(t, s.Transition(Ready))
	require.True(t, s.IsReady())
	require.NoError(t, s.Transition(Closed))
}

func TestStateMachineRejectsIllegalTransitions(t *testing.T) {
	s := New(DefaultConfig(), clock.NewMock(), metrics.NewRegistry(), nil)

	err := s.Transition(Ready)
	require.Error(t, err)
	require.Equal(t, Disconnected, s.State())
}

func TestBinaryTrafficGatedUntilReady(t *testing.T) {
	s := New(DefaultConfig(), clock.NewMock(), metrics.NewRegistry(), nil)
	require.False(t, s.IsReady())

	require.NoError(t, s.Transition(Connecting))
	require.NoError(t, s.Transition(Connected))
	require.False(t, s.IsReady(), "CONNECTED alone must not permit binary traffic")

	require.NoError(t, s.Transition(Ready))
	require.True(t, s.IsReady())
}

func TestReconnectPolicyExhaustsAfterFiveAttempts(t *testing.T) {
	p := NewReconnectPolicy(clock.NewMock())

	var delays []time.Duration
	for i := 0; i < 5; i++ {
		d, ok := p.NextAttempt()
		require.True(t, ok)
		delays = append(delays, d)
	}

	_, ok := p.NextAttempt()
	require.False(t, ok, "a 6th attempt must be refused")

	require.True(t, delays[1] >= 2*time.Second)
	require.True(t, delays[4] <= reconnectCap+reconnectJitter)
}

func TestReconnectPolicyResetsAfterReadyOnSuccess(t *testing.T) {
	p := NewReconnectPolicy(clock.NewMock())
	p.MarkReady()

	for i := 0; i < 3; i++ {
		_, ok := p.NextAttempt()
		require.True(t, ok)
	}
	require.Equal(t, 3, p.Attempts())

	p.OnReconnectSuccess()
	require.Equal(t, 0, p.Attempts())
}

func TestOutboundQueueReplacesPositionMessages(t *testing.T) {
	q := NewOutboundQueue(4)
	require.NoError(t, q.Enqueue(Message{Kind: KindPosition, Payload: []byte{1}}))
	require.NoError(t, q.Enqueue(Message{Kind: KindPosition, Payload: []byte{2}}))
	require.Equal(t, 1, q.Len(), "second position message should replace, not append")

	msg, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, []byte{2}, msg.Payload)
}

func TestOutboundQueueDropsOldestNonPositionWhenSaturated(t *testing.T) {
	q := NewOutboundQueue(2)
	require.NoError(t, q.Enqueue(Message{Kind: KindText, Payload: []byte("a")}))
	require.NoError(t, q.Enqueue(Message{Kind: KindText, Payload: []byte("b")}))
	require.NoError(t, q.Enqueue(Message{Kind: KindText, Payload: []byte("c")}))

	require.Equal(t, 2, q.Len())
	first, _ := q.Dequeue()
	require.Equal(t, []byte("b"), first.Payload, "oldest text message should have been dropped")
}

func TestDebouncerCoalescesLatestWins(t *testing.T) {
	mockClock := clock.NewMock()
	flushed := make(chan map[types.Slot]types.Vec3, 1)
	d := NewDebouncer(mockClock, func(batch map[types.Slot]types.Vec3) {
		flushed <- batch
	})

	d.Add(0, types.Vec3{X: 1})
	d.Add(0, types.Vec3{X: 2})
	d.Add(0, types.Vec3{X: 3})

	mockClock.Add(debounceWindow)

	select {
	case batch := <-flushed:
		require.Len(t, batch, 1)
		require.Equal(t, float32(3), batch[0].X, "only the latest update per slot should survive")
	case <-time.After(time.Second):
		t.Fatal("debouncer never flushed")
	}
}

func TestTruncateBatchDropsExcess(t *testing.T) {
	updates := []NudgeUpdate{{Slot: 0}, {Slot: 1}, {Slot: 2}}
	truncated, dropped := TruncateBatch(updates)
	require.Len(t, truncated, 2)
	require.True(t, dropped)

	truncated, dropped = TruncateBatch(updates[:2])
	require.Len(t, truncated, 2)
	require.False(t, dropped)
}
