package designer

// DecodeDocument converts a workflow document into editable nodes and edges.
// It is total: missing optional fields become empty values, a nil config
// becomes an empty map, and unrecognized node types pass through unchanged.
// Config and condition maps are cloned so the store never aliases the
// caller's document.
func DecodeDocument(doc Document) ([]Node, []Edge) {
	nodes := make([]Node, len(doc.Nodes))
	for i, dn := range doc.Nodes {
		config := cloneConfig(dn.Config)
		if config == nil {
			config = map[string]any{}
		}
		nodes[i] = Node{
			ID:       dn.ID,
			Kind:     dn.Type,
			Position: dn.Position,
			Data: NodeData{
				Name:        dn.Name,
				Description: dn.Description,
				Config:      config,
			},
		}
	}

	edges := make([]Edge, len(doc.Connections))
	for i, conn := range doc.Connections {
		edges[i] = Edge{
			ID:     conn.ID,
			Source: conn.Source,
			Target: conn.Target,
			Label:  conn.Label,
			Data:   EdgeData{Condition: cloneConfig(conn.Condition)},
		}
	}
	return nodes, edges
}

// EncodeDocument converts editable nodes and edges into a workflow document.
// A node's Next pointer follows its first outgoing edge in edge-list order
// and is nil when the node has none; branching stays fully described by the
// connections list. Encoding never fails and never mutates its inputs.
func EncodeDocument(nodes []Node, edges []Edge) Document {
	doc := Document{
		Nodes:       make([]DocumentNode, len(nodes)),
		Connections: make([]Connection, len(edges)),
	}

	for i, n := range nodes {
		var next *string
		for _, e := range edges {
			if e.Source == n.ID {
				target := e.Target
				next = &target
				break
			}
		}
		config := cloneConfig(n.Data.Config)
		if config == nil {
			config = map[string]any{}
		}
		doc.Nodes[i] = DocumentNode{
			ID:          n.ID,
			Type:        n.Kind,
			Name:        n.Data.Name,
			Description: n.Data.Description,
			Config:      config,
			Position:    n.Position,
			Next:        next,
		}
	}

	for i, e := range edges {
		doc.Connections[i] = Connection{
			ID:        e.ID,
			Source:    e.Source,
			Target:    e.Target,
			Condition: cloneConfig(e.Data.Condition),
			Label:     e.Label,
		}
	}
	return doc
}
