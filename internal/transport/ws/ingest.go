package ws

import (
	"encoding/json"
	"net/http"

	"github.com/dep2p/graphstream/pkg/types"
)

// ingestNode is the JSON shape an external ingestion collaborator posts to
// seed or replace the graph (§6, "file ingestion... external collaborators").
// graphstream itself never parses source files; this struct is the boundary
// it accepts once that collaborator has already produced a node/edge list.
type ingestNode struct {
	ID       string            `json:"id"`
	Position types.Vec3        `json:"position"`
	Label    string            `json:"label"`
	Color    string            `json:"color"`
	NodeType string            `json:"node_type"`
	Group    string            `json:"group"`
	Weight   float64           `json:"weight"`
	Metadata map[string]string `json:"metadata"`
}

type ingestEdge struct {
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Weight   float64           `json:"weight"`
	Directed bool              `json:"directed"`
	EdgeType string            `json:"edge_type"`
	Metadata map[string]string `json:"metadata"`
}

type ingestGraph struct {
	Nodes []ingestNode `json:"nodes"`
	Edges []ingestEdge `json:"edges"`
}

// IngestHandler accepts a full graph replacement: it interns every external ID
// into the identity table, builds the node/edge slices the simulation loop
// consumes, and calls SetGraph. This is the one place the identity table's
// forward mapping is exercised outside of tests — every other component only
// ever sees Slot.
func (s *Server) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload ingestGraph
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, "malformed graph payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	nodes := make([]types.Node, 0, len(payload.Nodes))
	for _, n := range payload.Nodes {
		slot := s.identity.Intern(types.ExternalID(n.ID))
		nodes = append(nodes, types.Node{
			Slot:     slot,
			Position: n.Position,
			Mass:     types.DefaultMass,
			Flags:    types.FlagActive,
		})
	}

	edges := make([]types.Edge, 0, len(payload.Edges))
	for _, e := range payload.Edges {
		source, ok := s.identity.Reverse(types.ExternalID(e.Source))
		if !ok {
			http.Error(w, "unknown edge source id: "+e.Source, http.StatusBadRequest)
			return
		}
		target, ok := s.identity.Reverse(types.ExternalID(e.Target))
		if !ok {
			http.Error(w, "unknown edge target id: "+e.Target, http.StatusBadRequest)
			return
		}
		edges = append(edges, types.Edge{
			Source:   source,
			Target:   target,
			Weight:   e.Weight,
			Directed: e.Directed,
			EdgeType: e.EdgeType,
			Metadata: e.Metadata,
		})
	}

	markConnected(nodes, edges)
	s.loop.SetGraph(nodes, edges)

	logger.Info("graph replaced via ingestion endpoint", "nodes", len(nodes), "edges", len(edges))
	w.WriteHeader(http.StatusNoContent)
}

// markConnected sets FlagConnected on every node that is an endpoint of at
// least one edge, mirroring how the physics kernel decides which nodes take
// part in spring forces (§4.4).
func markConnected(nodes []types.Node, edges []types.Edge) {
	index := make(map[types.Slot]int, len(nodes))
	for i, n := range nodes {
		index[n.Slot] = i
	}
	connected := make(map[types.Slot]bool, len(edges)*2)
	for _, e := range edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	for slot := range connected {
		if i, ok := index[slot]; ok {
			nodes[i].Flags |= types.FlagConnected
		}
	}
}
