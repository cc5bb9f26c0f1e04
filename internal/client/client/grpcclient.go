package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/common"
	pb "github.com/clipboardhistoryio/companion/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const pingTimeout = 5 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	auth          pb.AuthClient
	subscriptions pb.SubscriptionsClient
	entries       pb.EntriesClient

	mu        sync.Mutex
	tokens    Tokens
	onRefresh func(Tokens)

	// state reports the transport state; nil means no connection.
	state       func() connectivity.State
	unreachable atomic.Bool
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	tokens := s.Tokens()

	err := invoker(withAccessToken(ctx, tokens.AccessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if tokens.RefreshToken == "" || method == pb.Auth_RefreshToken_FullMethodName {
		return err
	}

	resp, rerr := s.auth.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if rerr != nil {
		return rerr
	}
	refreshed := Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	s.SetTokens(refreshed)
	if fn := s.refreshHook(); fn != nil {
		fn(refreshed)
	}

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.state = conn.GetState
	s.auth = pb.NewAuthClient(conn)
	s.subscriptions = pb.NewSubscriptionsClient(conn)
	s.entries = pb.NewEntriesClient(conn)
	return nil
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

// OnRefresh registers fn to run after the interceptor rotated the tokens.
func (s *GRPCClient) OnRefresh(fn func(Tokens)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) refreshHook() func(Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onRefresh
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SendMagicCode(ctx context.Context, email string) error {
	_, err := s.auth.SendMagicCode(ctx, &pb.SendMagicCodeRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) SignInWithMagicCode(ctx context.Context, email, code string) (*models.User, error) {
	resp, err := s.auth.SignInWithMagicCode(ctx, &pb.SignInWithMagicCodeRequest{Email: email, Code: code})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.SetTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return toUser(resp.User), nil
}

func (s *GRPCClient) RefreshSession(ctx context.Context) (*models.User, error) {
	tokens := s.Tokens()
	if tokens.RefreshToken == "" {
		return nil, ErrNoSession
	}

	resp, err := s.auth.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.SetTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return toUser(resp.User), nil
}

// Ping probes the server. Its outcome also feeds ConnectionStatus.
func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := s.auth.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		err = s.mapError(err)
		s.unreachable.Store(err == ErrUnavailable)
		return err
	}

	if resp.Status != "OK" {
		s.unreachable.Store(true)
		return ErrUnavailable
	}

	s.unreachable.Store(false)
	return nil
}

func (s *GRPCClient) ConnectionStatus() models.ConnectionStatus {
	if s.state == nil {
		return models.ConnectionClosed
	}

	switch s.state() {
	case connectivity.Connecting:
		return models.ConnectionConnecting
	case connectivity.TransientFailure, connectivity.Shutdown:
		return models.ConnectionClosed
	case connectivity.Idle, connectivity.Ready:
		if s.unreachable.Load() {
			return models.ConnectionClosed
		}
		return models.ConnectionOpened
	}
	return models.ConnectionClosed
}

func (s *GRPCClient) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	resp, err := s.subscriptions.List(ctx, &pb.ListSubscriptionsRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make([]models.Subscription, 0, len(resp.Subscriptions))
	for _, sub := range resp.Subscriptions {
		out = append(out, models.Subscription{
			ID:               sub.Id,
			UserID:           sub.UserId,
			Status:           sub.Status,
			CurrentPeriodEnd: time.UnixMilli(sub.CurrentPeriodEnd).UTC(),
		})
	}
	return out, nil
}

func entryFilter(f models.EntryFilter) (string, error) {
	switch f {
	case models.EntryFilterAll:
		return pb.EntryFilterAll, nil
	case models.EntryFilterFavorited:
		return pb.EntryFilterFavorited, nil
	case models.EntryFilterTagged:
		return pb.EntryFilterTagged, nil
	}
	return "", fmt.Errorf("unknown entry filter %d", f)
}

func (s *GRPCClient) ListEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	f, err := entryFilter(filter)
	if err != nil {
		return nil, err
	}

	resp, err := s.entries.List(ctx, &pb.ListEntriesRequest{Filter: f})
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make([]models.Entry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		out = append(out, toEntry(e))
	}
	return out, nil
}

func (s *GRPCClient) AddEntry(ctx context.Context, content string, tags []string, favorited bool) (*models.Entry, error) {
	resp, err := s.entries.Add(ctx, &pb.AddEntryRequest{Content: content, Tags: tags, IsFavorited: favorited})
	if err != nil {
		return nil, s.mapError(err)
	}
	e := toEntry(resp.Entry)
	return &e, nil
}

func (s *GRPCClient) SetFavorite(ctx context.Context, id string, favorited bool) error {
	_, err := s.entries.SetFavorite(ctx, &pb.SetFavoriteRequest{Id: id, IsFavorited: favorited})
	return s.mapError(err)
}

func toUser(u *pb.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{ID: u.Id, Email: u.Email}
}

func toEntry(e *pb.Entry) models.Entry {
	if e == nil {
		return models.Entry{}
	}
	return models.Entry{
		ID:          e.Id,
		Content:     e.Content,
		CreatedAt:   time.UnixMilli(e.CreatedAt).UTC(),
		IsFavorited: e.IsFavorited,
		Tags:        e.Tags,
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.ResourceExhausted:
		return ErrRateLimited
	case codes.InvalidArgument, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
