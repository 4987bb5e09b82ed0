package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	"google.golang.org/grpc"
)

type CapsuleService interface {
	Create(ctx context.Context, ownerID, message string, unlockAt time.Time) (*models.Capsule, error)
	Read(ctx context.Context, ownerID, id, code string) (*models.OpenedCapsule, error)
	List(ctx context.Context, ownerID string, page, limit int) (*models.CapsulePage, error)
	Update(ctx context.Context, ownerID, id, code string, in services.UpdateInput) (string, error)
	Delete(ctx context.Context, ownerID, id, code string) (string, error)
}

type UserService interface {
	Register(ctx context.Context, username, password string) (*services.Session, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
}

type GRPCServer struct {
	address   string
	capsules  CapsuleService
	users     UserService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, cs CapsuleService, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		capsules:  cs,
		jwtSecret: []byte(secretKey),
	}, nil
}

// newServer builds the grpc.Server with the token interceptor and the
// capsule service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterCapsuleServiceServer(srv, s)
	return srv
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}
