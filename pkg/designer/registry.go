package designer

// Unbounded marks a connection limit with no upper bound.
const Unbounded = -1

// ConnectionLimits caps how many incoming and outgoing edges a node kind
// accepts.
type ConnectionLimits struct {
	Inputs  int `json:"inputs"`
	Outputs int `json:"outputs"`
}

// KindConfig describes the display metadata and structural limits of a node
// kind.
type KindConfig struct {
	Name           string           `json:"name"`
	Color          string           `json:"color"`
	Description    string           `json:"description"`
	MaxConnections ConnectionLimits `json:"maxConnections"`
}

// kindConfigs is the static node kind catalog.
var kindConfigs = map[NodeKind]KindConfig{
	KindTrigger: {
		Name:           "Trigger",
		Color:          "#10b981",
		Description:    "Starts the workflow when an event occurs",
		MaxConnections: ConnectionLimits{Inputs: 0, Outputs: 1},
	},
	KindAction: {
		Name:           "Action",
		Color:          "#3b82f6",
		Description:    "Performs a single task",
		MaxConnections: ConnectionLimits{Inputs: Unbounded, Outputs: 1},
	},
	KindCondition: {
		Name:           "Condition",
		Color:          "#f59e0b",
		Description:    "Routes the flow down one of several branches",
		MaxConnections: ConnectionLimits{Inputs: Unbounded, Outputs: Unbounded},
	},
	KindParallel: {
		Name:           "Parallel",
		Color:          "#8b5cf6",
		Description:    "Fans out to several branches at once",
		MaxConnections: ConnectionLimits{Inputs: Unbounded, Outputs: Unbounded},
	},
	KindDelay: {
		Name:           "Delay",
		Color:          "#06b6d4",
		Description:    "Pauses the flow for a configured duration",
		MaxConnections: ConnectionLimits{Inputs: Unbounded, Outputs: 1},
	},
	KindLoop: {
		Name:           "Loop",
		Color:          "#ec4899",
		Description:    "Repeats a section, with a body and an exit branch",
		MaxConnections: ConnectionLimits{Inputs: Unbounded, Outputs: 2},
	},
	KindEnd: {
		Name:           "End",
		Color:          "#6b7280",
		Description:    "Terminates the workflow",
		MaxConnections: ConnectionLimits{Inputs: Unbounded, Outputs: 0},
	},
}

// kindOrder fixes the palette ordering exposed by Kinds.
var kindOrder = []NodeKind{
	KindTrigger,
	KindAction,
	KindCondition,
	KindParallel,
	KindDelay,
	KindLoop,
	KindEnd,
}

// Config returns the catalog entry for the kind. Unrecognized kinds fall back
// to the action entry so documents from newer backends stay renderable.
func (k NodeKind) Config() KindConfig {
	if cfg, ok := kindConfigs[k]; ok {
		return cfg
	}
	return kindConfigs[KindAction]
}

// Known reports whether the kind has its own catalog entry.
func (k NodeKind) Known() bool {
	_, ok := kindConfigs[k]
	return ok
}

// Kinds lists every registered node kind in palette order.
func Kinds() []NodeKind {
	out := make([]NodeKind, len(kindOrder))
	copy(out, kindOrder)
	return out
}
