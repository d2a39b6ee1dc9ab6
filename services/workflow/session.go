package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/designer"
)

// HandleOpenSession creates an editing session for a workflow and loads its
// document. With ?resume=true a stored checkpoint is applied on top,
// restoring unsaved edits from a previous session.
func (s *Service) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	workflowID := mux.Vars(r)["id"]
	slog.Debug("Opening session", "workflowId", workflowID)

	if _, err := uuid.Parse(workflowID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid workflow id")
		return
	}

	rec, err := s.repo.Get(r.Context(), workflowID)
	if err != nil {
		slog.Error("Failed to get workflow for session", "workflowId", workflowID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	sess := s.sessions.Open(workflowID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.Store.LoadWorkflow(rec.Document)

	resumed := false
	if r.URL.Query().Get("resume") == "true" {
		resumed = s.resumeFromCheckpoint(r.Context(), sess)
	}

	// Baseline snapshot: the first undo after an edit lands back here.
	sess.Store.SaveToHistory()

	state := sessionState(sess)
	state.Resumed = resumed

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(state)
}

// resumeFromCheckpoint overlays stored checkpoint state onto a freshly
// loaded session. An unreadable or incompatible checkpoint is skipped, never
// fatal.
func (s *Service) resumeFromCheckpoint(ctx context.Context, sess *Session) bool {
	format, blob, err := s.repo.LoadCheckpoint(ctx, sess.WorkflowID)
	if err != nil {
		slog.Error("Failed to load checkpoint", "workflowId", sess.WorkflowID, "error", err)
		return false
	}
	if blob == nil {
		return false
	}
	if format != s.serializer.Format() {
		slog.Warn("Skipping checkpoint with incompatible format", "workflowId", sess.WorkflowID, "format", format)
		return false
	}

	var cp SessionCheckpoint
	if err := s.serializer.Deserialize(blob, &cp); err != nil {
		slog.Warn("Skipping unreadable checkpoint", "workflowId", sess.WorkflowID, "error", err)
		return false
	}

	store := sess.Store
	store.SetNodes(cp.Nodes)
	store.SetEdges(cp.Edges)
	store.SetZoom(cp.Zoom)
	store.SetViewport(cp.Viewport)
	if !cp.Dirty {
		store.MarkClean()
	}
	return true
}

// HandleGetSession returns the current designer state of a session.
func (s *Service) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	state := sessionState(sess)
	sess.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(state)
}

// HandleCloseSession discards a session without saving. Closing an unknown
// session is a no-op.
func (s *Service) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Closing session", "sessionId", id)

	s.sessions.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleApplyOperations applies a batch of designer edits to a session.
// Operations run in order; the first invalid one aborts the rest and the
// response names its position. Edits applied before the failure stay
// applied.
func (s *Service) HandleApplyOperations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req OperationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, errMissing("operations").Error())
		return
	}

	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	for i, op := range req.Operations {
		if err := applyOperation(sess.Store, op); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("operation %d: %v", i, err))
			return
		}
	}
	if req.Snapshot {
		sess.Store.SaveToHistory()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(sessionState(sess))
}

// HandleUndo steps the session back one snapshot. At the oldest snapshot it
// is a no-op that still returns the current state.
func (s *Service) HandleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	sess.Store.Undo()
	state := sessionState(sess)
	sess.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(state)
}

// HandleRedo steps the session forward one snapshot. At the newest snapshot
// it is a no-op that still returns the current state.
func (s *Service) HandleRedo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	sess.Store.Redo()
	state := sessionState(sess)
	sess.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(state)
}

// HandleExportSession encodes the session's current graph as a workflow
// document without persisting it or touching the dirty flag.
func (s *Service) HandleExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	doc := sess.Store.ExportWorkflow()
	sess.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(doc)
}

// HandleSaveSession validates the session graph, persists it as the
// workflow's document, marks the session clean, and drops the now stale
// checkpoint.
func (s *Service) HandleSaveSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Saving session", "sessionId", id)

	var req SaveSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := designer.ValidateGraph(sess.Store.Nodes(), sess.Store.Edges()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.repo.Get(r.Context(), sess.WorkflowID)
	if err != nil {
		slog.Error("Failed to get workflow for save", "workflowId", sess.WorkflowID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	name := rec.Name
	if req.Name != "" {
		name = req.Name
	}

	saved, err := s.repo.Save(r.Context(), sess.WorkflowID, name, sess.Store.ExportWorkflow())
	if err != nil {
		slog.Error("Failed to save workflow", "workflowId", sess.WorkflowID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sess.Store.MarkClean()
	if err := s.repo.DeleteCheckpoint(r.Context(), sess.WorkflowID); err != nil {
		slog.Warn("Failed to drop checkpoint after save", "workflowId", sess.WorkflowID, "error", err)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(saved)
}

// HandleCheckpointSession serializes the session state and stores it as the
// workflow's crash-recovery checkpoint. Undo history is not included.
func (s *Service) HandleCheckpointSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Checkpointing session", "sessionId", id)

	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.mu.Lock()
	cp := SessionCheckpoint{
		WorkflowID: sess.WorkflowID,
		Nodes:      sess.Store.Nodes(),
		Edges:      sess.Store.Edges(),
		Zoom:       sess.Store.Zoom(),
		Viewport:   sess.Store.Viewport(),
		Dirty:      sess.Store.IsDirty(),
		SavedAt:    time.Now().UTC(),
	}
	blob, err := s.serializer.Serialize(cp)
	sess.mu.Unlock()

	if err != nil {
		slog.Error("Failed to serialize checkpoint", "sessionId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.repo.SaveCheckpoint(r.Context(), sess.WorkflowID, s.serializer.Format(), blob); err != nil {
		slog.Error("Failed to store checkpoint", "sessionId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// sessionState builds the wire view of a session. Callers must hold the
// session lock.
func sessionState(sess *Session) SessionState {
	store := sess.Store
	return SessionState{
		SessionID:    sess.ID,
		WorkflowID:   sess.WorkflowID,
		Nodes:        store.Nodes(),
		Edges:        store.Edges(),
		SelectedNode: store.SelectedNode(),
		SelectedEdge: store.SelectedEdge(),
		Zoom:         store.Zoom(),
		Viewport:     store.Viewport(),
		Dirty:        store.IsDirty(),
		CanUndo:      store.CanUndo(),
		CanRedo:      store.CanRedo(),
	}
}

// applyOperation dispatches one designer edit onto the store. Unknown ids
// inside an operation follow the store's silent no-op behavior; only a
// malformed operation or an edge that breaks connection limits is an error.
func applyOperation(store *designer.Store, op Operation) error {
	switch op.Op {
	case "addNode":
		if op.Node == nil {
			return errMissing("node")
		}
		store.AddNode(*op.Node)
	case "updateNode":
		if op.ID == "" {
			return errMissing("id")
		}
		if op.Update == nil {
			return errMissing("update")
		}
		store.UpdateNode(op.ID, *op.Update)
	case "removeNode":
		if op.ID == "" {
			return errMissing("id")
		}
		store.RemoveNode(op.ID)
	case "addEdge":
		if op.Edge == nil {
			return errMissing("edge")
		}
		if err := designer.CanConnect(store.Nodes(), store.Edges(), *op.Edge); err != nil {
			return err
		}
		store.AddEdge(*op.Edge)
	case "removeEdge":
		if op.ID == "" {
			return errMissing("id")
		}
		store.RemoveEdge(op.ID)
	case "setNodes":
		store.SetNodes(op.Nodes)
	case "setEdges":
		store.SetEdges(op.Edges)
	case "selectNode":
		if op.ID == "" {
			return errMissing("id")
		}
		for _, n := range store.Nodes() {
			if n.ID == op.ID {
				store.SelectNode(n)
				break
			}
		}
	case "selectEdge":
		if op.ID == "" {
			return errMissing("id")
		}
		for _, e := range store.Edges() {
			if e.ID == op.ID {
				store.SelectEdge(e)
				break
			}
		}
	case "clearSelection":
		store.ClearSelection()
	case "setZoom":
		if op.Zoom == nil {
			return errMissing("zoom")
		}
		store.SetZoom(*op.Zoom)
	case "setViewport":
		if op.Viewport == nil {
			return errMissing("viewport")
		}
		store.SetViewport(*op.Viewport)
	default:
		return errInvalid("op")
	}
	return nil
}
