package designer

// maxHistory bounds the undo/redo snapshot list. When full, recording a new
// snapshot drops the oldest one.
const maxHistory = 50

// snapshot is a deep copy of the graph at one point in time.
type snapshot struct {
	nodes []Node
	edges []Edge
}

// Store is the single source of truth for one editing session. Mutations are
// plain method calls with no error returns: references to unknown ids are
// silently ignored so stale UI events cannot crash a session. The Store does
// not validate graph shape; see ValidateGraph for the save-time checks.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
type Store struct {
	nodes []Node
	edges []Edge

	selectedNode *Node
	selectedEdge *Edge

	zoom     float64
	viewport Viewport

	history      []snapshot
	historyIndex int

	dirty bool
}

// NewStore creates an empty store with no history and a neutral viewport.
func NewStore() *Store {
	return &Store{
		zoom:         1,
		viewport:     Viewport{Zoom: 1},
		historyIndex: -1,
	}
}

// Nodes returns the live node list. Callers must treat it as read-only.
func (s *Store) Nodes() []Node { return s.nodes }

// Edges returns the live edge list. Callers must treat it as read-only.
func (s *Store) Edges() []Edge { return s.edges }

// SelectedNode returns a copy of the selected node, or nil when no node is
// selected.
func (s *Store) SelectedNode() *Node {
	if s.selectedNode == nil {
		return nil
	}
	n := *s.selectedNode
	return &n
}

// SelectedEdge returns a copy of the selected edge, or nil when no edge is
// selected.
func (s *Store) SelectedEdge() *Edge {
	if s.selectedEdge == nil {
		return nil
	}
	e := *s.selectedEdge
	return &e
}

// Zoom returns the stored canvas zoom level.
func (s *Store) Zoom() float64 { return s.zoom }

// Viewport returns the stored canvas viewport.
func (s *Store) Viewport() Viewport { return s.viewport }

// IsDirty reports whether the graph changed since the last load or MarkClean.
func (s *Store) IsDirty() bool { return s.dirty }

// SetNodes replaces the node list and marks the session dirty.
func (s *Store) SetNodes(nodes []Node) {
	s.nodes = nodes
	s.dirty = true
}

// SetEdges replaces the edge list and marks the session dirty.
func (s *Store) SetEdges(edges []Edge) {
	s.edges = edges
	s.dirty = true
}

// AddNode appends a node to the graph. The caller is responsible for a
// unique id; no uniqueness check is performed.
func (s *Store) AddNode(node Node) {
	s.nodes = append(s.nodes, node)
	s.dirty = true
}

// UpdateNode merges a partial update into the node with the given id.
// Position is replaced when present. Data fields patch individually, with
// config merged key-wise so updating one parameter preserves the rest.
// Unknown ids are a no-op.
func (s *Store) UpdateNode(id string, update NodeUpdate) {
	for i := range s.nodes {
		if s.nodes[i].ID != id {
			continue
		}
		if update.Position != nil {
			s.nodes[i].Position = *update.Position
		}
		if update.Data != nil {
			if update.Data.Name != nil {
				s.nodes[i].Data.Name = *update.Data.Name
			}
			if update.Data.Description != nil {
				s.nodes[i].Data.Description = *update.Data.Description
			}
			if update.Data.Config != nil {
				s.nodes[i].Data.Config = mergeConfig(s.nodes[i].Data.Config, update.Data.Config)
			}
		}
		s.dirty = true
		return
	}
}

// RemoveNode deletes the node and every edge that references it, so the
// graph never holds dangling edges. Selection pointing at the node or at a
// cascaded edge is cleared. Unknown ids are a no-op.
func (s *Store) RemoveNode(id string) {
	nodes := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == len(s.nodes) {
		return
	}
	s.nodes = nodes

	edges := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if e.Source == id || e.Target == id {
			if s.selectedEdge != nil && s.selectedEdge.ID == e.ID {
				s.selectedEdge = nil
			}
			continue
		}
		edges = append(edges, e)
	}
	s.edges = edges

	if s.selectedNode != nil && s.selectedNode.ID == id {
		s.selectedNode = nil
	}
	s.dirty = true
}

// AddEdge appends an edge to the graph. Endpoint existence and connection
// limits are the caller's responsibility; see CanConnect.
func (s *Store) AddEdge(edge Edge) {
	s.edges = append(s.edges, edge)
	s.dirty = true
}

// RemoveEdge deletes the edge and clears it from selection. Unknown ids are
// a no-op.
func (s *Store) RemoveEdge(id string) {
	edges := make([]Edge, 0, len(s.edges))
	removed := false
	for _, e := range s.edges {
		if e.ID == id {
			removed = true
			continue
		}
		edges = append(edges, e)
	}
	if !removed {
		return
	}
	s.edges = edges
	if s.selectedEdge != nil && s.selectedEdge.ID == id {
		s.selectedEdge = nil
	}
	s.dirty = true
}

// SelectNode marks the node as selected and clears any edge selection. At
// most one element is ever selected. Selection does not affect the dirty
// flag.
func (s *Store) SelectNode(node Node) {
	n := node
	s.selectedNode = &n
	s.selectedEdge = nil
}

// SelectEdge marks the edge as selected and clears any node selection.
func (s *Store) SelectEdge(edge Edge) {
	e := edge
	s.selectedEdge = &e
	s.selectedNode = nil
}

// ClearSelection drops both node and edge selection.
func (s *Store) ClearSelection() {
	s.selectedNode = nil
	s.selectedEdge = nil
}

// SetZoom stores the canvas zoom level. View state never marks the session
// dirty.
func (s *Store) SetZoom(zoom float64) {
	s.zoom = zoom
}

// SetViewport stores the visible canvas region.
func (s *Store) SetViewport(v Viewport) {
	s.viewport = v
}

// SaveToHistory records a deep-cloned snapshot of the current nodes and
// edges. Redo entries past the cursor are discarded, so a new edit after an
// undo starts a fresh future. The list is capped at maxHistory with the
// oldest snapshot dropped first.
func (s *Store) SaveToHistory() {
	snap := snapshot{nodes: cloneNodes(s.nodes), edges: cloneEdges(s.edges)}

	history := append(s.history[:s.historyIndex+1], snap)
	if len(history) > maxHistory {
		history = history[1:]
	}
	s.history = history
	s.historyIndex = len(history) - 1
}

// Undo steps the cursor back one snapshot and restores it. Calling at the
// oldest snapshot, or with no history, is a no-op.
func (s *Store) Undo() {
	if s.historyIndex <= 0 {
		return
	}
	s.historyIndex--
	s.restore(s.history[s.historyIndex])
}

// Redo steps the cursor forward one snapshot and restores it. Calling at the
// newest snapshot is a no-op.
func (s *Store) Redo() {
	if s.historyIndex >= len(s.history)-1 {
		return
	}
	s.historyIndex++
	s.restore(s.history[s.historyIndex])
}

// restore replaces the live graph with a deep clone of the snapshot, keeping
// stored history isolated from later edits. Selection is cleared because the
// restored graph may no longer contain the selected element.
func (s *Store) restore(snap snapshot) {
	s.nodes = cloneNodes(snap.nodes)
	s.edges = cloneEdges(snap.edges)
	s.selectedNode = nil
	s.selectedEdge = nil
	s.dirty = true
}

// CanUndo reports whether an older snapshot exists.
func (s *Store) CanUndo() bool {
	return s.historyIndex > 0
}

// CanRedo reports whether a newer snapshot exists.
func (s *Store) CanRedo() bool {
	return s.historyIndex < len(s.history)-1
}

// LoadWorkflow decodes a workflow document into the store, replacing all
// prior state. History and selection are cleared and the session starts
// clean.
func (s *Store) LoadWorkflow(doc Document) {
	nodes, edges := DecodeDocument(doc)
	s.nodes = nodes
	s.edges = edges
	s.selectedNode = nil
	s.selectedEdge = nil
	s.history = nil
	s.historyIndex = -1
	s.dirty = false
}

// ExportWorkflow encodes the current graph as a workflow document. The store
// is not mutated; the dirty flag stays set until the caller confirms the
// save with MarkClean.
func (s *Store) ExportWorkflow() Document {
	return EncodeDocument(s.nodes, s.edges)
}

// MarkClean clears the dirty flag after a successful save.
func (s *Store) MarkClean() {
	s.dirty = false
}

// Reset returns the store to its initial empty state, history included.
func (s *Store) Reset() {
	*s = *NewStore()
}
