package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/designer"
	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/serialization"
)

// stubRepo implements WorkflowRepo in memory for handler tests.
type stubRepo struct {
	records     map[string]*WorkflowRecord
	checkpoints map[string]stubCheckpoint
	err         error
}

type stubCheckpoint struct {
	format string
	state  []byte
}

func newStubRepo(records ...*WorkflowRecord) *stubRepo {
	r := &stubRepo{
		records:     make(map[string]*WorkflowRecord),
		checkpoints: make(map[string]stubCheckpoint),
	}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *stubRepo) Get(_ context.Context, id string) (*WorkflowRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.records[id], nil
}

func (r *stubRepo) Save(_ context.Context, id, name string, doc designer.Document) (*WorkflowRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	rec := &WorkflowRecord{ID: id, Name: name, Document: doc, UpdatedAt: time.Now()}
	if existing, ok := r.records[id]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = rec.UpdatedAt
	}
	r.records[id] = rec
	return rec, nil
}

func (r *stubRepo) List(_ context.Context) ([]WorkflowSummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []WorkflowSummary{}
	for _, rec := range r.records {
		out = append(out, WorkflowSummary{ID: rec.ID, Name: rec.Name, UpdatedAt: rec.UpdatedAt})
	}
	return out, nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.records[id]; !ok {
		return ErrNotFound
	}
	delete(r.records, id)
	delete(r.checkpoints, id)
	return nil
}

func (r *stubRepo) SaveCheckpoint(_ context.Context, workflowID, format string, state []byte) error {
	if r.err != nil {
		return r.err
	}
	r.checkpoints[workflowID] = stubCheckpoint{format: format, state: state}
	return nil
}

func (r *stubRepo) LoadCheckpoint(_ context.Context, workflowID string) (string, []byte, error) {
	if r.err != nil {
		return "", nil, r.err
	}
	cp, ok := r.checkpoints[workflowID]
	if !ok {
		return "", nil, nil
	}
	return cp.format, cp.state, nil
}

func (r *stubRepo) DeleteCheckpoint(_ context.Context, workflowID string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.checkpoints, workflowID)
	return nil
}

func newTestService(t *testing.T, records ...*WorkflowRecord) (*Service, *stubRepo) {
	t.Helper()
	repo := newStubRepo(records...)
	svc := &Service{
		repo:       repo,
		sessions:   NewSessionManager(time.Hour),
		serializer: serialization.DefaultSerializer(),
	}
	t.Cleanup(svc.Shutdown)
	return svc, repo
}

func setupRouter(svc *Service) *mux.Router {
	router := mux.NewRouter()
	svc.LoadRoutes(router.PathPrefix("/api/v1").Subrouter())
	return router
}

const testWorkflowID = "550e8400-e29b-41d4-a716-446655440000"

// testDocument is a small invoice-approval flow whose next pointers follow
// the first-connection rule, so exporting a freshly loaded session
// reproduces it exactly.
func testDocument() designer.Document {
	return designer.Document{
		Nodes: []designer.DocumentNode{
			{
				ID: "t1", Type: designer.KindTrigger,
				Name:   "Invoice Received",
				Config: map[string]any{"event": "invoice.received"},
				Next:   nextTo("c1"),
			},
			{
				ID: "c1", Type: designer.KindCondition,
				Name:   "Over Limit?",
				Config: map[string]any{"field": "invoice.total", "operator": "greater_than", "value": 5000.0},
				Next:   nextTo("a1"),
			},
			{
				ID: "a1", Type: designer.KindAction,
				Name:   "Request Approval",
				Config: map[string]any{},
				Next:   nextTo("end1"),
			},
			{
				ID: "a2", Type: designer.KindAction,
				Name:   "Post To Ledger",
				Config: map[string]any{},
				Next:   nextTo("end1"),
			},
			{
				ID: "end1", Type: designer.KindEnd,
				Name:   "Done",
				Config: map[string]any{},
			},
		},
		Connections: []designer.Connection{
			{ID: "k1", Source: "t1", Target: "c1"},
			{ID: "k2", Source: "c1", Target: "a1", Condition: map[string]any{"branch": "true"}, Label: "Over limit"},
			{ID: "k3", Source: "c1", Target: "a2", Condition: map[string]any{"branch": "false"}, Label: "Within limit"},
			{ID: "k4", Source: "a1", Target: "end1"},
			{ID: "k5", Source: "a2", Target: "end1"},
		},
	}
}

func testRecord() *WorkflowRecord {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &WorkflowRecord{
		ID:        testWorkflowID,
		Name:      "Invoice Approval",
		Document:  testDocument(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestHandleListWorkflows(t *testing.T) {
	svc, _ := newTestService(t, testRecord())
	router := setupRouter(svc)

	req := httptest.NewRequest("GET", "/api/v1/workflows", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result []WorkflowSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.Len(t, result, 1)
	assert.Equal(t, testWorkflowID, result[0].ID)
	assert.Equal(t, "Invoice Approval", result[0].Name)
}

func TestHandleGetWorkflow_Success(t *testing.T) {
	svc, _ := newTestService(t, testRecord())
	router := setupRouter(svc)

	req := httptest.NewRequest("GET", "/api/v1/workflows/"+testWorkflowID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result WorkflowRecord
	err := json.NewDecoder(w.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, testWorkflowID, result.ID)
	assert.Len(t, result.Document.Nodes, 5)
	assert.Len(t, result.Document.Connections, 5)
}

func TestHandleGetWorkflow_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(svc)

	req := httptest.NewRequest("GET", "/api/v1/workflows/00000000-0000-0000-0000-000000000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var result map[string]string
	json.NewDecoder(w.Body).Decode(&result)
	assert.Equal(t, "workflow not found", result["message"])
}

func TestHandleGetWorkflow_InvalidID(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(svc)

	req := httptest.NewRequest("GET", "/api/v1/workflows/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result map[string]string
	json.NewDecoder(w.Body).Decode(&result)
	assert.Equal(t, "invalid workflow id", result["message"])
}

func TestHandleSaveWorkflow_Success(t *testing.T) {
	svc, repo := newTestService(t)
	router := setupRouter(svc)

	body, _ := json.Marshal(SaveWorkflowRequest{
		Name:     "Expense Reimbursement",
		Document: testDocument(),
	})

	req := httptest.NewRequest("PUT", "/api/v1/workflows/"+testWorkflowID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result WorkflowRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, testWorkflowID, result.ID)
	assert.Equal(t, "Expense Reimbursement", result.Name)

	stored, ok := repo.records[testWorkflowID]
	require.True(t, ok)
	assert.Len(t, stored.Document.Nodes, 5)
}

func TestHandleSaveWorkflow_MissingName(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(svc)

	body, _ := json.Marshal(SaveWorkflowRequest{Document: testDocument()})

	req := httptest.NewRequest("PUT", "/api/v1/workflows/"+testWorkflowID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result map[string]string
	json.NewDecoder(w.Body).Decode(&result)
	assert.Contains(t, result["message"], "required")
}

func TestHandleSaveWorkflow_RejectsInvalidGraph(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(svc)

	doc := testDocument()
	doc.Connections = append(doc.Connections, designer.Connection{ID: "k9", Source: "t1", Target: "ghost"})
	body, _ := json.Marshal(SaveWorkflowRequest{Name: "Broken", Document: doc})

	req := httptest.NewRequest("PUT", "/api/v1/workflows/"+testWorkflowID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result map[string]string
	json.NewDecoder(w.Body).Decode(&result)
	assert.Contains(t, result["message"], "target node not found")
}

func TestHandleSaveWorkflow_InvalidJSON(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(svc)

	req := httptest.NewRequest("PUT", "/api/v1/workflows/"+testWorkflowID, bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDeleteWorkflow(t *testing.T) {
	svc, repo := newTestService(t, testRecord())
	router := setupRouter(svc)

	req := httptest.NewRequest("DELETE", "/api/v1/workflows/"+testWorkflowID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.records)

	req = httptest.NewRequest("DELETE", "/api/v1/workflows/"+testWorkflowID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListNodeKinds(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(svc)

	req := httptest.NewRequest("GET", "/api/v1/node-kinds", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result []KindInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.Len(t, result, 7)
	assert.Equal(t, designer.KindTrigger, result[0].Kind)
	assert.Equal(t, 0, result[0].Config.MaxConnections.Inputs)
	assert.Equal(t, 1, result[0].Config.MaxConnections.Outputs)
}
