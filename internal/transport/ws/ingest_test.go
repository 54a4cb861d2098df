package ws

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	appconfig "github.com/dep2p/graphstream/internal/config"
	"github.com/dep2p/graphstream/internal/core/hub"
	"github.com/dep2p/graphstream/internal/core/identity"
	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/physics"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/internal/core/simulation"
	"github.com/dep2p/graphstream/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := metrics.NewRegistry()
	kernel := physics.ScalarKernel{Params: physics.DefaultParams()}
	h := hub.New(func(nodes []types.Node) []byte { return nil }, reg)
	loop := simulation.New(kernel, h, simulation.DefaultConfig(), clock.NewMock(), reg)
	provider := appconfig.NewProvider(appconfig.NewConfig())
	return NewServer(loop, h, identity.NewTable(), appconfig.DefaultTransportConfig(), session.DefaultConfig(), reg, provider)
}

func TestIngestHandlerInternsExternalIDsAndBuildsGraph(t *testing.T) {
	s := newTestServer(t)

	body := `{
		"nodes": [
			{"id": "alpha", "position": {"x": 1, "y": 0, "z": 0}},
			{"id": "beta", "position": {"x": -1, "y": 0, "z": 0}}
		],
		"edges": [
			{"source": "alpha", "target": "beta", "weight": 1}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/graph", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.IngestHandler(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	snapshot := s.loop.Snapshot()
	require.Len(t, snapshot, 2)
	for _, n := range snapshot {
		require.True(t, n.Flags.Connected(), "node %d should be marked connected by the edge", n.Slot)
	}

	alphaSlot, ok := s.identity.Reverse("alpha")
	require.True(t, ok)
	betaSlot, ok := s.identity.Reverse("beta")
	require.True(t, ok)
	require.NotEqual(t, alphaSlot, betaSlot)
}

func TestIngestHandlerRejectsUnknownEdgeEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"nodes": [{"id": "alpha"}], "edges": [{"source": "alpha", "target": "ghost"}]}`
	req := httptest.NewRequest(http.MethodPost, "/graph", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.IngestHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestHandlerRejectsNonPost(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/graph", nil)
	rec := httptest.NewRecorder()
	s.IngestHandler(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestHandlerRejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)

	body := `{"nodes": [{"id": "alpha", "bogus": true}]}`
	req := httptest.NewRequest(http.MethodPost, "/graph", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.IngestHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
