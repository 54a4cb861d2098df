package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/graphstream/pkg/types"
)

// TestRoundTripTwoNodes covers S1: encoding two records yields 56 bytes and
// decodes back to an identical pair.
func TestRoundTripTwoNodes(t *testing.T) {
	nodes := []types.Node{
		{Slot: 7, Position: types.Vec3{X: 1, Y: 2, Z: 3}},
		{Slot: 9, Position: types.Vec3{X: -1, Y: -2, Z: -3}, Velocity: types.Vec3{X: 0.01}},
	}

	frame := Encode(nodes)
	require.Len(t, frame, 56)

	result, err := Decode(frame)
	require.NoError(t, err)
	require.False(t, result.Clamped)
	require.Len(t, result.Nodes, 2)
	require.Equal(t, types.Slot(7), result.Nodes[0].Slot)
	require.Equal(t, types.Vec3{X: 1, Y: 2, Z: 3}, result.Nodes[0].Position)
	require.Equal(t, types.Slot(9), result.Nodes[1].Slot)
	require.Equal(t, types.Vec3{X: -1, Y: -2, Z: -3}, result.Nodes[1].Position)
	require.Equal(t, types.Vec3{X: 0.01}, result.Nodes[1].Velocity)
}

// TestMalformedLength covers S2: a 29-byte frame is rejected wholesale.
func TestMalformedLength(t *testing.T) {
	result, err := Decode(make([]byte, 29))
	require.ErrorIs(t, err, ErrMalformedFrame)
	require.Nil(t, result.Nodes)
}

// TestEmptyFrameIsLegal covers the "empty frames are legal no-ops" rule of §6.1.
func TestEmptyFrameIsLegal(t *testing.T) {
	result, err := Decode(nil)
	require.NoError(t, err)
	require.Empty(t, result.Nodes)
	require.False(t, result.Clamped)
}

// TestClamping covers S3: NaN coerces to 0, out-of-range values (including
// -Inf) clamp, and the decoder reports that clamping occurred.
func TestClamping(t *testing.T) {
	raw := make([]byte, RecordSize)
	nodes := []types.Node{{
		Slot:     1,
		Position: types.Vec3{X: 2000, Y: float32(math.NaN()), Z: float32(math.Inf(-1))},
		Velocity: types.Vec3{X: 0.5},
	}}
	copy(raw, Encode(nodes))

	result, err := Decode(raw)
	require.NoError(t, err)
	require.True(t, result.Clamped)
	require.Len(t, result.Nodes, 1)
	require.Equal(t, types.Vec3{X: 1000, Y: 0, Z: -1000}, result.Nodes[0].Position)
	require.Equal(t, types.Vec3{X: 0.05}, result.Nodes[0].Velocity)
}

// TestRoundTripAnyLength covers Testable Property 3: for any L with L mod 28
// == 0, decode(encode(x)) == x when x already satisfies the §3 invariants.
func TestRoundTripAnyLength(t *testing.T) {
	nodes := make([]types.Node, 5)
	for i := range nodes {
		nodes[i] = types.Node{
			Slot:     types.Slot(i * 3),
			Position: types.Vec3{X: float32(i), Y: float32(-i), Z: 0.5},
			Velocity: types.Vec3{X: 0.01, Y: -0.01, Z: 0},
		}
	}

	frame := Encode(nodes)
	require.Equal(t, 0, len(frame)%RecordSize)

	result, err := Decode(frame)
	require.NoError(t, err)
	require.False(t, result.Clamped)
	for i, n := range result.Nodes {
		require.Equal(t, nodes[i].Slot, n.Slot)
		require.Equal(t, nodes[i].Position, n.Position)
		require.Equal(t, nodes[i].Velocity, n.Velocity)
	}
}

// TestDecodeBatchAggregatesErrors verifies DecodeBatch keeps decoding
// well-formed frames even when a sibling frame in the same batch is malformed.
func TestDecodeBatchAggregatesErrors(t *testing.T) {
	good := Encode([]types.Node{{Slot: 1, Position: types.Vec3{X: 1}}})
	bad := make([]byte, 13)

	results, err := DecodeBatch([][]byte{good, bad})
	require.Error(t, err)
	require.Len(t, results, 2)
	require.Len(t, results[0].Nodes, 1)
	require.Nil(t, results[1].Nodes)
}
