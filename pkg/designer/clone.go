package designer

// cloneNodes deep-copies a node list so snapshots stay isolated from later
// edits.
func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Data.Config = cloneConfig(n.Data.Config)
		out[i] = n
	}
	return out
}

// cloneEdges deep-copies an edge list.
func cloneEdges(edges []Edge) []Edge {
	if edges == nil {
		return nil
	}
	out := make([]Edge, len(edges))
	for i, e := range edges {
		e.Data.Condition = cloneConfig(e.Data.Condition)
		out[i] = e
	}
	return out
}

// cloneConfig deep-copies a JSON-shaped map, recursing into nested maps and
// slices. A nil map stays nil.
func cloneConfig(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneConfig(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// mergeConfig merges src into dst key-wise. Nested maps merge recursively;
// any other value replaces the existing entry. Incoming values are cloned so
// dst never aliases the caller's payload. A nil dst is allocated.
func mergeConfig(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if cur, ok := dst[k].(map[string]any); ok {
				dst[k] = mergeConfig(cur, sub)
				continue
			}
			dst[k] = cloneConfig(sub)
			continue
		}
		dst[k] = cloneValue(v)
	}
	return dst
}
