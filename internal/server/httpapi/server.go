// Package httpapi exposes the capsule and account operations as a JSON REST
// API on a net/http ServeMux.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
)

// CapsuleService is the part of services.CapsuleService the API calls.
type CapsuleService interface {
	Create(ctx context.Context, ownerID, message string, unlockAt time.Time) (*models.Capsule, error)
	Read(ctx context.Context, ownerID, id, code string) (*models.OpenedCapsule, error)
	List(ctx context.Context, ownerID string, page, limit int) (*models.CapsulePage, error)
	Update(ctx context.Context, ownerID, id, code string, in services.UpdateInput) (string, error)
	Delete(ctx context.Context, ownerID, id, code string) (string, error)
	AttachmentUploadURL(ctx context.Context, ownerID, id, code string) (*models.AttachmentUpload, error)
}

// UserService is the part of services.UserService the API calls.
type UserService interface {
	Register(ctx context.Context, username, password string) (*services.Session, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
}

type Server struct {
	capsules  CapsuleService
	users     UserService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(capsules CapsuleService, users UserService, jwtSecret []byte, logger logging.Logger) *Server {
	return &Server{
		capsules:  capsules,
		users:     users,
		jwtSecret: jwtSecret,
		logger:    logger.With("module", "httpapi"),
	}
}

// Handler returns the routed API wrapped in the request-id middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.Handle("POST /capsules", s.requireAuth(s.handleCreateCapsule))
	mux.Handle("GET /capsules", s.requireAuth(s.handleListCapsules))
	mux.Handle("GET /capsules/{id}", s.requireAuth(s.handleGetCapsule))
	mux.Handle("PUT /capsules/{id}", s.requireAuth(s.handleUpdateCapsule))
	mux.Handle("DELETE /capsules/{id}", s.requireAuth(s.handleDeleteCapsule))
	mux.Handle("POST /capsules/{id}/attachment", s.requireAuth(s.handleAttachmentUpload))

	return s.withRequestID(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
