package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/designer"
)

// ErrNotFound is returned by Delete when the workflow does not exist.
var ErrNotFound = errors.New("workflow not found")

// Repository handles workflow and checkpoint persistence in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// InitSchema creates the workflows and session_checkpoints tables if they do
// not exist. Checkpoints are dropped with their workflow.
func (r *Repository) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflows (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			document   JSONB NOT NULL DEFAULT '{"nodes":[],"connections":[]}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("init workflows schema: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS session_checkpoints (
			workflow_id UUID PRIMARY KEY REFERENCES workflows(id) ON DELETE CASCADE,
			format      TEXT NOT NULL,
			state       BYTEA NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("init checkpoints schema: %w", err)
	}
	return nil
}

// Seed inserts the sample invoice-approval workflow if it does not already
// exist.
func (r *Repository) Seed(ctx context.Context) error {
	docJSON, err := json.Marshal(sampleDocument)
	if err != nil {
		return fmt.Errorf("marshal seed document: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO workflows (id, name, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, sampleWorkflowID, "Invoice Approval", docJSON)
	if err != nil {
		return fmt.Errorf("seed workflow: %w", err)
	}
	return nil
}

// Get retrieves a workflow by ID. Returns nil, nil if not found.
func (r *Repository) Get(ctx context.Context, id string) (*WorkflowRecord, error) {
	var rec WorkflowRecord
	var docJSON []byte

	err := r.db.QueryRow(ctx, `
		SELECT id, name, document, created_at, updated_at
		FROM workflows WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Name, &docJSON, &rec.CreatedAt, &rec.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	if err := json.Unmarshal(docJSON, &rec.Document); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &rec, nil
}

// Save upserts a workflow document under the given ID and returns the stored
// record with its fresh timestamps.
func (r *Repository) Save(ctx context.Context, id, name string, doc designer.Document) (*WorkflowRecord, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	var rec WorkflowRecord
	var stored []byte
	err = r.db.QueryRow(ctx, `
		INSERT INTO workflows (id, name, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, document = EXCLUDED.document, updated_at = NOW()
		RETURNING id, name, document, created_at, updated_at
	`, id, name, docJSON).Scan(&rec.ID, &rec.Name, &stored, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save workflow: %w", err)
	}

	if err := json.Unmarshal(stored, &rec.Document); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &rec, nil
}

// List returns summaries of all workflows, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]WorkflowSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, updated_at
		FROM workflows ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	summaries := []WorkflowSummary{}
	for rows.Next() {
		var s WorkflowSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete removes a workflow and, through the FK cascade, its checkpoint.
// Returns ErrNotFound when no workflow has the given ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveCheckpoint upserts the serialized session state for a workflow.
func (r *Repository) SaveCheckpoint(ctx context.Context, workflowID, format string, state []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO session_checkpoints (workflow_id, format, state, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (workflow_id) DO UPDATE
		SET format = EXCLUDED.format, state = EXCLUDED.state, updated_at = NOW()
	`, workflowID, format, state)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves the stored session state for a workflow. Returns
// empty values if no checkpoint exists.
func (r *Repository) LoadCheckpoint(ctx context.Context, workflowID string) (string, []byte, error) {
	var format string
	var state []byte

	err := r.db.QueryRow(ctx, `
		SELECT format, state FROM session_checkpoints WHERE workflow_id = $1
	`, workflowID).Scan(&format, &state)
	if err == pgx.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return format, state, nil
}

// DeleteCheckpoint removes the stored session state for a workflow. Deleting
// a missing checkpoint is not an error.
func (r *Repository) DeleteCheckpoint(ctx context.Context, workflowID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM session_checkpoints WHERE workflow_id = $1`, workflowID)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// InitDB creates the schema and seeds initial data. Called from main on startup.
func InitDB(ctx context.Context, pool *pgxpool.Pool) error {
	repo := NewRepository(pool)
	if err := repo.InitSchema(ctx); err != nil {
		return err
	}
	return repo.Seed(ctx)
}

const sampleWorkflowID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func nextTo(id string) *string { return &id }

// sampleDocument is an invoice-approval flow: invoices over the limit detour
// through manager approval before posting to the ledger.
var sampleDocument = designer.Document{
	Nodes: []designer.DocumentNode{
		{
			ID: "t1", Type: designer.KindTrigger,
			Name:        "Invoice Received",
			Description: "Fires when a supplier invoice arrives",
			Config: map[string]any{
				"event":  "invoice.received",
				"source": "purchasing",
			},
			Position: designer.Position{X: -120, Y: 240},
			Next:     nextTo("a1"),
		},
		{
			ID: "a1", Type: designer.KindAction,
			Name:        "Fetch Invoice Details",
			Description: "Loads supplier, totals and currency",
			Config: map[string]any{
				"action": "fetch_invoice",
				"fields": []any{"supplier", "total", "currency"},
			},
			Position: designer.Position{X: 160, Y: 240},
			Next:     nextTo("c1"),
		},
		{
			ID: "c1", Type: designer.KindCondition,
			Name:        "Over Approval Limit?",
			Description: "Routes large invoices through manager approval",
			Config: map[string]any{
				"field":    "invoice.total",
				"operator": "greater_than",
				"value":    5000,
			},
			Position: designer.Position{X: 440, Y: 240},
			Next:     nextTo("a2"),
		},
		{
			ID: "a2", Type: designer.KindAction,
			Name:     "Request Manager Approval",
			Config:   map[string]any{"action": "request_approval", "role": "finance_manager"},
			Position: designer.Position{X: 720, Y: 120},
			Next:     nextTo("d1"),
		},
		{
			ID: "d1", Type: designer.KindDelay,
			Name:        "Approval Window",
			Description: "Waits for the approval decision",
			Config:      map[string]any{"duration": 2, "unit": "days"},
			Position:    designer.Position{X: 1000, Y: 120},
			Next:        nextTo("a3"),
		},
		{
			ID: "a3", Type: designer.KindAction,
			Name:     "Post To Ledger",
			Config:   map[string]any{"action": "post_ledger_entry", "ledger": "accounts_payable"},
			Position: designer.Position{X: 1000, Y: 360},
			Next:     nextTo("end1"),
		},
		{
			ID: "end1", Type: designer.KindEnd,
			Name:     "Done",
			Config:   map[string]any{},
			Position: designer.Position{X: 1280, Y: 240},
		},
	},
	Connections: []designer.Connection{
		{ID: "k1", Source: "t1", Target: "a1"},
		{ID: "k2", Source: "a1", Target: "c1"},
		{ID: "k3", Source: "c1", Target: "a2", Condition: map[string]any{"branch": "true"}, Label: "Over limit"},
		{ID: "k4", Source: "c1", Target: "a3", Condition: map[string]any{"branch": "false"}, Label: "Within limit"},
		{ID: "k5", Source: "a2", Target: "d1"},
		{ID: "k6", Source: "d1", Target: "a3"},
		{ID: "k7", Source: "a3", Target: "end1"},
	},
}
