package designer

import (
	"errors"
	"fmt"
)

// Structural violations reported by ValidateGraph.
var (
	ErrDuplicateNodeID    = errors.New("duplicate node id")
	ErrDuplicateEdgeID    = errors.New("duplicate edge id")
	ErrSourceNodeNotFound = errors.New("source node not found")
	ErrTargetNodeNotFound = errors.New("target node not found")
	ErrMaxInputs          = errors.New("incoming edges exceed the node kind limit")
	ErrMaxOutputs         = errors.New("outgoing edges exceed the node kind limit")
	ErrDuplicateBranch    = errors.New("outgoing edges reuse the same branch handle")
)

// ValidationError reports which graph element violated which structural rule.
// It unwraps to one of the sentinel errors above.
type ValidationError struct {
	Element string // "node" or "edge"
	ID      string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Element, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateGraph checks the structural invariants of an editable graph: ids
// must be unique, edges must reference existing nodes, per-kind connection
// limits must hold, and no two outgoing edges may claim the same named
// branch handle. Unlabeled edges never collide, since decoding a workflow
// document drops handles. Unknown node kinds are checked under the action
// limits, matching the catalog fallback.
//
// The first violation in node-list then edge-list order is returned; nil
// means the graph is structurally sound. The store never calls this; it is
// meant for save-time checks and for vetting candidate edges.
func ValidateGraph(nodes []Node, edges []Edge) error {
	kinds := make(map[string]NodeKind, len(nodes))
	for _, n := range nodes {
		if _, ok := kinds[n.ID]; ok {
			return &ValidationError{Element: "node", ID: n.ID, Err: ErrDuplicateNodeID}
		}
		kinds[n.ID] = n.Kind
	}

	inDegree := make(map[string]int, len(nodes))
	outDegree := make(map[string]int, len(nodes))
	branches := make(map[string]map[string]bool)
	seenEdges := make(map[string]bool, len(edges))
	duplicateBranch := make(map[string]bool)

	for _, e := range edges {
		if seenEdges[e.ID] {
			return &ValidationError{Element: "edge", ID: e.ID, Err: ErrDuplicateEdgeID}
		}
		seenEdges[e.ID] = true
		if _, ok := kinds[e.Source]; !ok {
			return &ValidationError{Element: "edge", ID: e.ID, Err: ErrSourceNodeNotFound}
		}
		if _, ok := kinds[e.Target]; !ok {
			return &ValidationError{Element: "edge", ID: e.ID, Err: ErrTargetNodeNotFound}
		}
		outDegree[e.Source]++
		inDegree[e.Target]++

		if e.SourceHandle == "" {
			continue
		}
		handles := branches[e.Source]
		if handles == nil {
			handles = make(map[string]bool)
			branches[e.Source] = handles
		}
		if handles[e.SourceHandle] {
			duplicateBranch[e.Source] = true
		}
		handles[e.SourceHandle] = true
	}

	for _, n := range nodes {
		limits := n.Kind.Config().MaxConnections
		if limits.Inputs != Unbounded && inDegree[n.ID] > limits.Inputs {
			return &ValidationError{Element: "node", ID: n.ID, Err: ErrMaxInputs}
		}
		if limits.Outputs != Unbounded && outDegree[n.ID] > limits.Outputs {
			return &ValidationError{Element: "node", ID: n.ID, Err: ErrMaxOutputs}
		}
		if duplicateBranch[n.ID] {
			return &ValidationError{Element: "node", ID: n.ID, Err: ErrDuplicateBranch}
		}
	}
	return nil
}

// ValidateDocument decodes a workflow document and validates the resulting
// graph.
func ValidateDocument(doc Document) error {
	nodes, edges := DecodeDocument(doc)
	return ValidateGraph(nodes, edges)
}

// CanConnect reports whether adding the edge would keep the graph
// structurally sound. It vets the whole resulting graph, so a pre-existing
// violation is reported as well.
func CanConnect(nodes []Node, edges []Edge, edge Edge) error {
	candidate := make([]Edge, 0, len(edges)+1)
	candidate = append(candidate, edges...)
	candidate = append(candidate, edge)
	return ValidateGraph(nodes, candidate)
}
