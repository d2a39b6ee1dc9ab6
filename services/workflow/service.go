package workflow

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/designer"
	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/serialization"
)

// WorkflowRepo abstracts workflow persistence for testability.
type WorkflowRepo interface {
	Get(ctx context.Context, id string) (*WorkflowRecord, error)
	Save(ctx context.Context, id, name string, doc designer.Document) (*WorkflowRecord, error)
	List(ctx context.Context) ([]WorkflowSummary, error)
	Delete(ctx context.Context, id string) error
	SaveCheckpoint(ctx context.Context, workflowID, format string, state []byte) error
	LoadCheckpoint(ctx context.Context, workflowID string) (string, []byte, error)
	DeleteCheckpoint(ctx context.Context, workflowID string) error
}

// Service wires together the repository, the session manager, and the
// checkpoint serializer for the designer domain.
type Service struct {
	repo       WorkflowRepo
	sessions   *SessionManager
	serializer *serialization.Serializer
}

// NewService creates a Service with a real PostgreSQL repository and an
// in-memory session manager using the given idle TTL.
func NewService(pool *pgxpool.Pool, sessionTTL time.Duration) (*Service, error) {
	return &Service{
		repo:       NewRepository(pool),
		sessions:   NewSessionManager(sessionTTL),
		serializer: serialization.DefaultSerializer(),
	}, nil
}

// Shutdown stops the background session janitor.
func (s *Service) Shutdown() {
	s.sessions.Shutdown()
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers designer HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	workflows := parentRouter.PathPrefix("/workflows").Subrouter()
	workflows.StrictSlash(false)
	workflows.Use(jsonMiddleware)

	workflows.HandleFunc("", s.HandleListWorkflows).Methods("GET")
	workflows.HandleFunc("/{id}", s.HandleGetWorkflow).Methods("GET")
	workflows.HandleFunc("/{id}", s.HandleSaveWorkflow).Methods("PUT")
	workflows.HandleFunc("/{id}", s.HandleDeleteWorkflow).Methods("DELETE")
	workflows.HandleFunc("/{id}/sessions", s.HandleOpenSession).Methods("POST")

	sessions := parentRouter.PathPrefix("/sessions").Subrouter()
	sessions.StrictSlash(false)
	sessions.Use(jsonMiddleware)

	sessions.HandleFunc("/{id}", s.HandleGetSession).Methods("GET")
	sessions.HandleFunc("/{id}", s.HandleCloseSession).Methods("DELETE")
	sessions.HandleFunc("/{id}/operations", s.HandleApplyOperations).Methods("POST")
	sessions.HandleFunc("/{id}/undo", s.HandleUndo).Methods("POST")
	sessions.HandleFunc("/{id}/redo", s.HandleRedo).Methods("POST")
	sessions.HandleFunc("/{id}/export", s.HandleExportSession).Methods("GET")
	sessions.HandleFunc("/{id}/save", s.HandleSaveSession).Methods("POST")
	sessions.HandleFunc("/{id}/checkpoint", s.HandleCheckpointSession).Methods("POST")

	kinds := parentRouter.PathPrefix("/node-kinds").Subrouter()
	kinds.Use(jsonMiddleware)
	kinds.HandleFunc("", s.HandleListNodeKinds).Methods("GET")
}
