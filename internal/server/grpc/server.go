// Package grpc exposes the auth, subscription and entry services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/clipboardhistoryio/companion/internal/logging"
	pb "github.com/clipboardhistoryio/companion/internal/proto"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/services"
	"google.golang.org/grpc"
)

type AuthService interface {
	SendMagicCode(ctx context.Context, email string) error
	SignInWithMagicCode(ctx context.Context, email, code string) (*services.SignInResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.SignInResult, error)
}

type SubscriptionService interface {
	List(ctx context.Context, userID string) ([]*models.Subscription, error)
}

type EntryService interface {
	List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error)
	Add(ctx context.Context, userID, content string, tags []string, favorited bool) (*models.Entry, error)
	SetFavorite(ctx context.Context, userID, id string, favorited bool) error
}

type GRPCServer struct {
	address   string
	logger    logging.Logger
	jwtSecret []byte

	auth          *authHandler
	subscriptions *subscriptionsHandler
	entries       *entriesHandler
}

func NewGRPCServer(a string, l logging.Logger, as AuthService, ss SubscriptionService, es EntryService, secretKey string) *GRPCServer {
	logger := l.With("module", "grpc_server")
	return &GRPCServer{
		address:       a,
		logger:        logger,
		jwtSecret:     []byte(secretKey),
		auth:          &authHandler{svc: as, logger: logger},
		subscriptions: &subscriptionsHandler{svc: ss, logger: logger},
		entries:       &entriesHandler{svc: es, logger: logger},
	}
}

// newServer builds a grpc.Server with interceptors and all services
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterAuthServer(srv, s.auth)
	pb.RegisterSubscriptionsServer(srv, s.subscriptions)
	pb.RegisterEntriesServer(srv, s.entries)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())
	return srv.Serve(listen)
}
