// Package designer implements the workflow designer's editing core: the node
// kind catalog, the codec between the editable graph and the portable
// workflow document, and the per-session graph state store with bounded
// undo/redo history. The package performs no I/O; loading and saving
// documents is the caller's concern.
package designer

// NodeKind identifies the structural role of a workflow step.
type NodeKind string

// Node kinds understood by the designer.
const (
	KindTrigger   NodeKind = "trigger"
	KindAction    NodeKind = "action"
	KindCondition NodeKind = "condition"
	KindParallel  NodeKind = "parallel"
	KindDelay     NodeKind = "delay"
	KindLoop      NodeKind = "loop"
	KindEnd       NodeKind = "end"
)

// Position holds x/y coordinates for rendering a node on the canvas. It has
// no execution meaning.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport describes the visible canvas region, kept for session restore.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// NodeData holds the display and configuration data for a node. Config is a
// kind-specific parameter bag; its shape is owned by the editing UI.
type NodeData struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// Node represents a single step in the editable workflow graph. Kind is fixed
// at creation; no store operation changes it.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// EdgeData holds the optional edge payload such as a branch condition.
type EdgeData struct {
	Condition map[string]any `json:"condition,omitempty"`
}

// Edge represents a directed connection between two nodes. SourceHandle
// carries the branch identifier when the source is a condition or parallel
// node.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	SourceHandle string   `json:"sourceHandle,omitempty"`
	Label        string   `json:"label,omitempty"`
	Data         EdgeData `json:"data"`
}

// NodeUpdate is a partial node edit. Nil fields are left untouched.
type NodeUpdate struct {
	Position *Position       `json:"position,omitempty"`
	Data     *NodeDataUpdate `json:"data,omitempty"`
}

// NodeDataUpdate patches individual NodeData fields. Config entries are
// merged key-wise into the existing config rather than replacing it.
type NodeDataUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// DocumentNode is the persisted form of a node inside a workflow document.
// Next points at the default successor and is null for terminal nodes.
type DocumentNode struct {
	ID          string         `json:"id"`
	Type        NodeKind       `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config"`
	Position    Position       `json:"position"`
	Next        *string        `json:"next"`
}

// Connection is the persisted form of an edge inside a workflow document.
type Connection struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Target    string         `json:"target"`
	Condition map[string]any `json:"condition,omitempty"`
	Label     string         `json:"label,omitempty"`
}

// Document is the portable workflow representation exchanged with the
// backend. Connections are the authoritative record of branching; a node's
// Next pointer keeps only one outgoing edge and is a denormalized
// convenience, not a routing table.
type Document struct {
	Nodes       []DocumentNode `json:"nodes"`
	Connections []Connection   `json:"connections"`
}
