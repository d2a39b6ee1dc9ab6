package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraph_AcceptsWellFormedGraph(t *testing.T) {
	nodes := []Node{
		makeNode("t1", KindTrigger),
		makeNode("c1", KindCondition),
		makeNode("a1", KindAction),
		makeNode("a2", KindAction),
		makeNode("end1", KindEnd),
	}
	edges := []Edge{
		makeEdge("k1", "t1", "c1"),
		{ID: "k2", Source: "c1", Target: "a1", SourceHandle: "true"},
		{ID: "k3", Source: "c1", Target: "a2", SourceHandle: "false"},
		makeEdge("k4", "a1", "end1"),
		makeEdge("k5", "a2", "end1"),
	}

	assert.NoError(t, ValidateGraph(nodes, edges))
}

func TestValidateGraph_Violations(t *testing.T) {
	trigger := makeNode("t1", KindTrigger)
	action := makeNode("a1", KindAction)
	end := makeNode("end1", KindEnd)

	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  error
	}{
		{
			name:  "duplicate node id",
			nodes: []Node{action, action},
			want:  ErrDuplicateNodeID,
		},
		{
			name:  "duplicate edge id",
			nodes: []Node{trigger, action, end},
			edges: []Edge{makeEdge("k1", "t1", "a1"), makeEdge("k1", "a1", "end1")},
			want:  ErrDuplicateEdgeID,
		},
		{
			name:  "missing source node",
			nodes: []Node{action},
			edges: []Edge{makeEdge("k1", "ghost", "a1")},
			want:  ErrSourceNodeNotFound,
		},
		{
			name:  "missing target node",
			nodes: []Node{action},
			edges: []Edge{makeEdge("k1", "a1", "ghost")},
			want:  ErrTargetNodeNotFound,
		},
		{
			name:  "trigger with incoming edge",
			nodes: []Node{trigger, action},
			edges: []Edge{makeEdge("k1", "a1", "t1")},
			want:  ErrMaxInputs,
		},
		{
			name:  "end with outgoing edge",
			nodes: []Node{end, action},
			edges: []Edge{makeEdge("k1", "end1", "a1")},
			want:  ErrMaxOutputs,
		},
		{
			name:  "action with two outgoing edges",
			nodes: []Node{action, makeNode("a2", KindAction), end},
			edges: []Edge{makeEdge("k1", "a1", "a2"), makeEdge("k2", "a1", "end1")},
			want:  ErrMaxOutputs,
		},
		{
			name: "loop with three outgoing edges",
			nodes: []Node{
				makeNode("l1", KindLoop),
				action,
				makeNode("a2", KindAction),
				makeNode("a3", KindAction),
			},
			edges: []Edge{
				{ID: "k1", Source: "l1", Target: "a1", SourceHandle: "body"},
				{ID: "k2", Source: "l1", Target: "a2", SourceHandle: "exit"},
				{ID: "k3", Source: "l1", Target: "a3", SourceHandle: "extra"},
			},
			want: ErrMaxOutputs,
		},
		{
			name:  "condition branches sharing a handle",
			nodes: []Node{makeNode("c1", KindCondition), action, makeNode("a2", KindAction)},
			edges: []Edge{
				{ID: "k1", Source: "c1", Target: "a1", SourceHandle: "true"},
				{ID: "k2", Source: "c1", Target: "a2", SourceHandle: "true"},
			},
			want: ErrDuplicateBranch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGraph(tc.nodes, tc.edges)

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.ID)
			assert.NotEmpty(t, verr.Element)
		})
	}
}

func TestValidateGraph_UnlabeledBranchesDoNotCollide(t *testing.T) {
	// Decoding a document drops source handles, so a branching node whose
	// edges come back unlabeled must still validate.
	nodes := []Node{
		makeNode("c1", KindCondition),
		makeNode("a1", KindAction),
		makeNode("a2", KindAction),
	}
	edges := []Edge{makeEdge("k1", "c1", "a1"), makeEdge("k2", "c1", "a2")}

	assert.NoError(t, ValidateGraph(nodes, edges))
}

func TestValidateGraph_UnknownKindUsesActionLimits(t *testing.T) {
	nodes := []Node{
		makeNode("x1", "approval_gate"),
		makeNode("a1", KindAction),
		makeNode("a2", KindAction),
	}
	edges := []Edge{makeEdge("k1", "x1", "a1")}

	assert.NoError(t, ValidateGraph(nodes, edges))

	edges = append(edges, makeEdge("k2", "x1", "a2"))
	assert.ErrorIs(t, ValidateGraph(nodes, edges), ErrMaxOutputs)
}

func TestValidateDocument_DecodesThenValidates(t *testing.T) {
	doc := Document{
		Nodes:       []DocumentNode{{ID: "t1", Type: KindTrigger, Name: "Start"}},
		Connections: []Connection{{ID: "k1", Source: "t1", Target: "ghost"}},
	}

	assert.ErrorIs(t, ValidateDocument(doc), ErrTargetNodeNotFound)
}

func TestCanConnect(t *testing.T) {
	nodes := []Node{
		makeNode("t1", KindTrigger),
		makeNode("a1", KindAction),
		makeNode("a2", KindAction),
	}
	edges := []Edge{makeEdge("k1", "t1", "a1")}

	assert.NoError(t, CanConnect(nodes, edges, makeEdge("k2", "a1", "a2")))
	assert.ErrorIs(t, CanConnect(nodes, edges, makeEdge("k2", "t1", "a2")), ErrMaxOutputs)
	assert.Len(t, edges, 1)
}
