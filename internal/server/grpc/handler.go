package grpc

import (
	"context"
	"errors"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/logging"
	pb "github.com/clipboardhistoryio/companion/internal/proto"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus translates service errors to gRPC statuses. Unknown errors are
// logged and reported as Internal without detail.
func toStatus(ctx context.Context, logger logging.Logger, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidEmail),
		errors.Is(err, common.ErrInvalidCode),
		errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func toUser(u *models.User) *pb.User {
	return &pb.User{Id: u.ID, Email: u.Email}
}

func toEntry(e *models.Entry) *pb.Entry {
	return &pb.Entry{
		Id:          e.ID,
		Content:     e.Content,
		CreatedAt:   e.CreatedAt.UnixMilli(),
		IsFavorited: e.IsFavorited,
		Tags:        e.Tags,
	}
}

func parseFilter(f string) (models.EntryFilter, error) {
	switch f {
	case "", pb.EntryFilterAll:
		return models.EntryFilterAll, nil
	case pb.EntryFilterFavorited:
		return models.EntryFilterFavorited, nil
	case pb.EntryFilterTagged:
		return models.EntryFilterTagged, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "unknown filter %q", f)
	}
}

func callerID(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, msgMissingToken)
	}
	return id, nil
}

// ---- Auth ----

type authHandler struct {
	svc    AuthService
	logger logging.Logger
}

func (h *authHandler) SendMagicCode(ctx context.Context, req *pb.SendMagicCodeRequest) (*pb.SendMagicCodeResponse, error) {
	if err := h.svc.SendMagicCode(ctx, req.Email); err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}
	return &pb.SendMagicCodeResponse{}, nil
}

func (h *authHandler) SignInWithMagicCode(ctx context.Context, req *pb.SignInWithMagicCodeRequest) (*pb.SignInWithMagicCodeResponse, error) {
	res, err := h.svc.SignInWithMagicCode(ctx, req.Email, req.Code)
	if err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}
	return &pb.SignInWithMagicCodeResponse{
		User:         toUser(res.User),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, nil
}

func (h *authHandler) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	res, err := h.svc.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}
	return &pb.RefreshTokenResponse{
		User:         toUser(res.User),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, nil
}

func (h *authHandler) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

// ---- Subscriptions ----

type subscriptionsHandler struct {
	svc    SubscriptionService
	logger logging.Logger
}

func (h *subscriptionsHandler) List(ctx context.Context, req *pb.ListSubscriptionsRequest) (*pb.ListSubscriptionsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := h.svc.List(ctx, userID)
	if err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}

	resp := &pb.ListSubscriptionsResponse{Subscriptions: make([]*pb.Subscription, 0, len(subs))}
	for _, s := range subs {
		resp.Subscriptions = append(resp.Subscriptions, &pb.Subscription{
			Id:               s.ID,
			UserId:           s.UserID,
			Status:           string(s.Status),
			CurrentPeriodEnd: s.CurrentPeriodEnd.UnixMilli(),
		})
	}
	return resp, nil
}

// ---- Entries ----

type entriesHandler struct {
	svc    EntryService
	logger logging.Logger
}

func (h *entriesHandler) List(ctx context.Context, req *pb.ListEntriesRequest) (*pb.ListEntriesResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := parseFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	list, err := h.svc.List(ctx, userID, filter)
	if err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}

	resp := &pb.ListEntriesResponse{Entries: make([]*pb.Entry, 0, len(list))}
	for _, e := range list {
		resp.Entries = append(resp.Entries, toEntry(e))
	}
	return resp, nil
}

func (h *entriesHandler) Add(ctx context.Context, req *pb.AddEntryRequest) (*pb.AddEntryResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	e, err := h.svc.Add(ctx, userID, req.Content, req.Tags, req.IsFavorited)
	if err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}
	return &pb.AddEntryResponse{Entry: toEntry(e)}, nil
}

func (h *entriesHandler) SetFavorite(ctx context.Context, req *pb.SetFavoriteRequest) (*pb.SetFavoriteResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.svc.SetFavorite(ctx, userID, req.Id, req.IsFavorited); err != nil {
		return nil, toStatus(ctx, h.logger, err)
	}
	return &pb.SetFavoriteResponse{}, nil
}

var _ AuthService = (*services.AuthService)(nil)
var _ SubscriptionService = (*services.SubscriptionService)(nil)
var _ EntryService = (*services.EntryService)(nil)
