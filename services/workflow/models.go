package workflow

import (
	"time"

	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/designer"
)

// WorkflowRecord is a persisted workflow definition with its portable
// document.
type WorkflowRecord struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Document  designer.Document `json:"document"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// WorkflowSummary is the list view of a persisted workflow.
type WorkflowSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveWorkflowRequest is the JSON body for replacing a workflow document.
type SaveWorkflowRequest struct {
	Name     string            `json:"name"`
	Document designer.Document `json:"document"`
}

// SaveSessionRequest is the JSON body for persisting a session's graph. An
// empty name keeps the stored one.
type SaveSessionRequest struct {
	Name string `json:"name"`
}

// Operation is a single designer edit applied to a session. Op selects the
// action; the remaining fields are read per op.
type Operation struct {
	Op       string               `json:"op"`
	Node     *designer.Node       `json:"node,omitempty"`
	Edge     *designer.Edge       `json:"edge,omitempty"`
	ID       string               `json:"id,omitempty"`
	Update   *designer.NodeUpdate `json:"update,omitempty"`
	Nodes    []designer.Node      `json:"nodes,omitempty"`
	Edges    []designer.Edge      `json:"edges,omitempty"`
	Zoom     *float64             `json:"zoom,omitempty"`
	Viewport *designer.Viewport   `json:"viewport,omitempty"`
}

// OperationsRequest is the JSON body for applying a batch of edits.
// Operations run in order and the first invalid one aborts the rest. When
// Snapshot is set, one undo snapshot is recorded after the batch.
type OperationsRequest struct {
	Operations []Operation `json:"operations"`
	Snapshot   bool        `json:"snapshot"`
}

// SessionState is the designer session view returned to the frontend.
type SessionState struct {
	SessionID    string            `json:"sessionId"`
	WorkflowID   string            `json:"workflowId"`
	Nodes        []designer.Node   `json:"nodes"`
	Edges        []designer.Edge   `json:"edges"`
	SelectedNode *designer.Node    `json:"selectedNode,omitempty"`
	SelectedEdge *designer.Edge    `json:"selectedEdge,omitempty"`
	Zoom         float64           `json:"zoom"`
	Viewport     designer.Viewport `json:"viewport"`
	Dirty        bool              `json:"dirty"`
	CanUndo      bool              `json:"canUndo"`
	CanRedo      bool              `json:"canRedo"`
	Resumed      bool              `json:"resumed,omitempty"`
}

// SessionCheckpoint is the autosaved designer state written between explicit
// saves so a crashed browser can pick up where it left off. Undo history is
// not part of it.
type SessionCheckpoint struct {
	WorkflowID string            `json:"workflowId"`
	Nodes      []designer.Node   `json:"nodes"`
	Edges      []designer.Edge   `json:"edges"`
	Zoom       float64           `json:"zoom"`
	Viewport   designer.Viewport `json:"viewport"`
	Dirty      bool              `json:"dirty"`
	SavedAt    time.Time         `json:"savedAt"`
}

// KindInfo describes one node kind for the designer palette.
type KindInfo struct {
	Kind   designer.NodeKind   `json:"kind"`
	Config designer.KindConfig `json:"config"`
}
