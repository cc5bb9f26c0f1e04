package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/common"
	pb "github.com/clipboardhistoryio/companion/internal/proto"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeAuth struct {
	lastSend    *pb.SendMagicCodeRequest
	lastSignIn  *pb.SignInWithMagicCodeRequest
	lastRefresh *pb.RefreshTokenRequest

	sendErr     error
	signInResp  *pb.SignInWithMagicCodeResponse
	signInErr   error
	refreshResp *pb.RefreshTokenResponse
	refreshErr  error
	pingResp    *pb.PingResponse
	pingErr     error
}

func (f *fakeAuth) SendMagicCode(ctx context.Context, in *pb.SendMagicCodeRequest, opts ...grpc.CallOption) (*pb.SendMagicCodeResponse, error) {
	f.lastSend = in
	return &pb.SendMagicCodeResponse{}, f.sendErr
}

func (f *fakeAuth) SignInWithMagicCode(ctx context.Context, in *pb.SignInWithMagicCodeRequest, opts ...grpc.CallOption) (*pb.SignInWithMagicCodeResponse, error) {
	f.lastSignIn = in
	return f.signInResp, f.signInErr
}

func (f *fakeAuth) RefreshToken(ctx context.Context, in *pb.RefreshTokenRequest, opts ...grpc.CallOption) (*pb.RefreshTokenResponse, error) {
	f.lastRefresh = in
	return f.refreshResp, f.refreshErr
}

func (f *fakeAuth) Ping(ctx context.Context, in *pb.PingRequest, opts ...grpc.CallOption) (*pb.PingResponse, error) {
	return f.pingResp, f.pingErr
}

type fakeSubscriptions struct {
	resp *pb.ListSubscriptionsResponse
	err  error
}

func (f *fakeSubscriptions) List(ctx context.Context, in *pb.ListSubscriptionsRequest, opts ...grpc.CallOption) (*pb.ListSubscriptionsResponse, error) {
	return f.resp, f.err
}

type fakeEntries struct {
	lastList *pb.ListEntriesRequest
	lastAdd  *pb.AddEntryRequest
	lastFav  *pb.SetFavoriteRequest

	listResp *pb.ListEntriesResponse
	listErr  error
	addResp  *pb.AddEntryResponse
	addErr   error
	favErr   error
}

func (f *fakeEntries) List(ctx context.Context, in *pb.ListEntriesRequest, opts ...grpc.CallOption) (*pb.ListEntriesResponse, error) {
	f.lastList = in
	return f.listResp, f.listErr
}

func (f *fakeEntries) Add(ctx context.Context, in *pb.AddEntryRequest, opts ...grpc.CallOption) (*pb.AddEntryResponse, error) {
	f.lastAdd = in
	return f.addResp, f.addErr
}

func (f *fakeEntries) SetFavorite(ctx context.Context, in *pb.SetFavoriteRequest, opts ...grpc.CallOption) (*pb.SetFavoriteResponse, error) {
	f.lastFav = in
	return &pb.SetFavoriteResponse{}, f.favErr
}

func expired() error {
	return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
}

/*************
 * accessTokenInterceptor
 *************/

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	f := &fakeAuth{refreshResp: &pb.RefreshTokenResponse{AccessToken: "A2", RefreshToken: "R2"}}
	c := &GRPCClient{auth: f, tokens: Tokens{AccessToken: "A1", RefreshToken: "R1"}}
	var hooked Tokens
	c.OnRefresh(func(t Tokens) { hooked = t })

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Len(t, toks, 1)

		if callCount == 1 {
			require.Equal(t, "A1", toks[0])
			return expired()
		}
		require.Equal(t, "A2", toks[0])
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), pb.Entries_List_FullMethodName, nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.Equal(t, 2, callCount)
	assert.Equal(t, Tokens{AccessToken: "A2", RefreshToken: "R2"}, c.Tokens())
	assert.Equal(t, "R1", f.lastRefresh.RefreshToken)
	assert.Equal(t, c.Tokens(), hooked)
}

func TestInterceptor_RefreshesOnlyOnce(t *testing.T) {
	f := &fakeAuth{refreshResp: &pb.RefreshTokenResponse{AccessToken: "A2", RefreshToken: "R2"}}
	c := &GRPCClient{auth: f, tokens: Tokens{AccessToken: "A1", RefreshToken: "R1"}}

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		return expired()
	}

	err := c.accessTokenInterceptor(context.Background(), pb.Entries_List_FullMethodName, nil, nil, nil, invoker)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestInterceptor_NoRefresh(t *testing.T) {
	tests := []struct {
		name   string
		tokens Tokens
		method string
		err    error
	}{
		{name: "no refresh token", tokens: Tokens{AccessToken: "A1"}, method: pb.Entries_List_FullMethodName, err: expired()},
		{name: "other code", tokens: Tokens{AccessToken: "A1", RefreshToken: "R"}, method: pb.Entries_List_FullMethodName, err: status.Error(codes.Internal, "boom")},
		{name: "other message", tokens: Tokens{AccessToken: "A1", RefreshToken: "R"}, method: pb.Entries_List_FullMethodName, err: status.Error(codes.Unauthenticated, "invalid token")},
		{name: "refresh call itself", tokens: Tokens{AccessToken: "A1", RefreshToken: "R"}, method: pb.Auth_RefreshToken_FullMethodName, err: expired()},
		{name: "not a status", tokens: Tokens{AccessToken: "A1", RefreshToken: "R"}, method: pb.Entries_List_FullMethodName, err: errors.New("plain")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAuth{}
			c := &GRPCClient{auth: f, tokens: tt.tokens}
			invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
				return tt.err
			}

			err := c.accessTokenInterceptor(context.Background(), tt.method, nil, nil, nil, invoker)
			assert.Equal(t, tt.err, err)
			assert.Nil(t, f.lastRefresh)
		})
	}
}

func TestInterceptor_RefreshFailureReturned(t *testing.T) {
	refreshErr := status.Error(codes.Unauthenticated, "invalid token")
	f := &fakeAuth{refreshErr: refreshErr}
	c := &GRPCClient{auth: f, tokens: Tokens{AccessToken: "A1", RefreshToken: "R1"}}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return expired()
	}

	err := c.accessTokenInterceptor(context.Background(), pb.Entries_List_FullMethodName, nil, nil, nil, invoker)
	assert.Equal(t, refreshErr, err)
	assert.Equal(t, "A1", c.Tokens().AccessToken)
}

func TestWithAccessToken(t *testing.T) {
	ctx := metadata.NewOutgoingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "old", "x", "y"))

	md, _ := metadata.FromOutgoingContext(withAccessToken(ctx, "new"))
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"y"}, md.Get("x"))

	md, _ = metadata.FromOutgoingContext(withAccessToken(ctx, ""))
	assert.Empty(t, md.Get(common.AccessTokenHeaderName))
}

/*************
 * auth calls
 *************/

func TestSendMagicCode(t *testing.T) {
	f := &fakeAuth{}
	c := &GRPCClient{auth: f}
	require.NoError(t, c.SendMagicCode(context.Background(), "a@b.co"))
	assert.Equal(t, "a@b.co", f.lastSend.Email)

	f.sendErr = status.Error(codes.InvalidArgument, "invalid email")
	err := c.SendMagicCode(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "invalid email")

	f.sendErr = status.Error(codes.ResourceExhausted, "slow down")
	assert.ErrorIs(t, c.SendMagicCode(context.Background(), "a@b.co"), ErrRateLimited)
}

func TestSignInWithMagicCode_StoresTokens(t *testing.T) {
	f := &fakeAuth{signInResp: &pb.SignInWithMagicCodeResponse{
		User:        &pb.User{Id: "u1", Email: "a@b.co"},
		AccessToken: "A", RefreshToken: "R",
	}}
	c := &GRPCClient{auth: f}

	u, err := c.SignInWithMagicCode(context.Background(), "a@b.co", "123456")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "u1", Email: "a@b.co"}, u)
	assert.Equal(t, Tokens{AccessToken: "A", RefreshToken: "R"}, c.Tokens())
	assert.Equal(t, "123456", f.lastSignIn.Code)
}

func TestSignInWithMagicCode_MapsError(t *testing.T) {
	f := &fakeAuth{signInErr: status.Error(codes.InvalidArgument, "invalid code")}
	c := &GRPCClient{auth: f}

	_, err := c.SignInWithMagicCode(context.Background(), "a@b.co", "000000")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, c.Tokens())
}

func TestRefreshSession(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		c := &GRPCClient{auth: &fakeAuth{}}
		_, err := c.RefreshSession(context.Background())
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("rotates", func(t *testing.T) {
		f := &fakeAuth{refreshResp: &pb.RefreshTokenResponse{User: &pb.User{Id: "u1"}, AccessToken: "A2", RefreshToken: "R2"}}
		c := &GRPCClient{auth: f, tokens: Tokens{RefreshToken: "R1"}}

		u, err := c.RefreshSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "R1", f.lastRefresh.RefreshToken)
		assert.Equal(t, Tokens{AccessToken: "A2", RefreshToken: "R2"}, c.Tokens())
	})

	t.Run("revoked", func(t *testing.T) {
		f := &fakeAuth{refreshErr: status.Error(codes.Unauthenticated, "invalid token")}
		c := &GRPCClient{auth: f, tokens: Tokens{RefreshToken: "R1"}}

		_, err := c.RefreshSession(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

/*************
 * Ping / ConnectionStatus
 *************/

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		resp    *pb.PingResponse
		err     error
		wantErr error
		offline bool
	}{
		{name: "ok", resp: &pb.PingResponse{Status: "OK"}},
		{name: "bad status", resp: &pb.PingResponse{Status: "DEGRADED"}, wantErr: ErrUnavailable, offline: true},
		{name: "unavailable", err: status.Error(codes.Unavailable, "x"), wantErr: ErrUnavailable, offline: true},
		{name: "deadline", err: status.Error(codes.DeadlineExceeded, "x"), wantErr: ErrUnavailable, offline: true},
		{name: "unauthorized", err: status.Error(codes.PermissionDenied, "x"), wantErr: ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &GRPCClient{
				auth:  &fakeAuth{pingResp: tt.resp, pingErr: tt.err},
				state: func() connectivity.State { return connectivity.Ready },
			}

			err := c.Ping(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			want := models.ConnectionOpened
			if tt.offline {
				want = models.ConnectionClosed
			}
			assert.Equal(t, want, c.ConnectionStatus())
		})
	}
}

func TestConnectionStatus(t *testing.T) {
	tests := []struct {
		state connectivity.State
		want  models.ConnectionStatus
	}{
		{connectivity.Idle, models.ConnectionOpened},
		{connectivity.Ready, models.ConnectionOpened},
		{connectivity.Connecting, models.ConnectionConnecting},
		{connectivity.TransientFailure, models.ConnectionClosed},
		{connectivity.Shutdown, models.ConnectionClosed},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			c := &GRPCClient{state: func() connectivity.State { return tt.state }}
			assert.Equal(t, tt.want, c.ConnectionStatus())
		})
	}

	assert.Equal(t, models.ConnectionClosed, (&GRPCClient{}).ConnectionStatus(), "no connection")
}

func TestPing_RecoveryClearsOffline(t *testing.T) {
	f := &fakeAuth{pingErr: status.Error(codes.Unavailable, "x")}
	c := &GRPCClient{auth: f, state: func() connectivity.State { return connectivity.Idle }}

	_ = c.Ping(context.Background())
	require.Equal(t, models.ConnectionClosed, c.ConnectionStatus())

	f.pingErr = nil
	f.pingResp = &pb.PingResponse{Status: "OK"}
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, models.ConnectionOpened, c.ConnectionStatus())
}

/*************
 * queries
 *************/

func TestListSubscriptions(t *testing.T) {
	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeSubscriptions{resp: &pb.ListSubscriptionsResponse{Subscriptions: []*pb.Subscription{
		{Id: "sub_1", UserId: "u1", Status: "active", CurrentPeriodEnd: end.UnixMilli()},
	}}}
	c := &GRPCClient{subscriptions: f}

	got, err := c.ListSubscriptions(context.Background())
	require.NoError(t, err)
	want := []models.Subscription{{ID: "sub_1", UserID: "u1", Status: "active", CurrentPeriodEnd: end}}
	assert.Empty(t, cmp.Diff(want, got))

	f.resp = &pb.ListSubscriptionsResponse{}
	got, err = c.ListSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	f.err = status.Error(codes.Unauthenticated, "missing token")
	_, err = c.ListSubscriptions(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListEntries(t *testing.T) {
	created := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	f := &fakeEntries{listResp: &pb.ListEntriesResponse{Entries: []*pb.Entry{
		{Id: "e1", Content: "hello", CreatedAt: created.UnixMilli(), IsFavorited: true, Tags: []string{"work"}},
	}}}
	c := &GRPCClient{entries: f}

	for filter, wire := range map[models.EntryFilter]string{
		models.EntryFilterAll:       "all",
		models.EntryFilterFavorited: "favorited",
		models.EntryFilterTagged:    "tagged",
	} {
		got, err := c.ListEntries(context.Background(), filter)
		require.NoError(t, err)
		assert.Equal(t, wire, f.lastList.Filter)
		want := []models.Entry{{ID: "e1", Content: "hello", CreatedAt: created, IsFavorited: true, Tags: []string{"work"}}}
		assert.Empty(t, cmp.Diff(want, got))
	}

	_, err := c.ListEntries(context.Background(), models.EntryFilter(9))
	assert.ErrorContains(t, err, "unknown entry filter")
}

func TestAddEntryAndSetFavorite(t *testing.T) {
	f := &fakeEntries{addResp: &pb.AddEntryResponse{Entry: &pb.Entry{Id: "e9", Content: "x"}}}
	c := &GRPCClient{entries: f}

	e, err := c.AddEntry(context.Background(), "x", []string{"a"}, true)
	require.NoError(t, err)
	assert.Equal(t, "e9", e.ID)
	assert.Equal(t, &pb.AddEntryRequest{Content: "x", Tags: []string{"a"}, IsFavorited: true}, f.lastAdd)

	require.NoError(t, c.SetFavorite(context.Background(), "e9", false))
	assert.Equal(t, &pb.SetFavoriteRequest{Id: "e9"}, f.lastFav)

	f.favErr = status.Error(codes.NotFound, "not found")
	assert.ErrorIs(t, c.SetFavorite(context.Background(), "nope", true), ErrRejected)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}
	assert.NoError(t, c.mapError(nil))
	assert.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "x")), ErrUnauthorized)
	assert.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "x")), ErrUnavailable)
	assert.ErrorIs(t, c.mapError(status.Error(codes.ResourceExhausted, "x")), ErrRateLimited)
	assert.ErrorIs(t, c.mapError(status.Error(codes.NotFound, "x")), ErrRejected)

	err := c.mapError(status.Error(codes.Internal, "internal error"))
	assert.ErrorContains(t, err, "rpc error")
	for _, sentinel := range []error{ErrUnauthorized, ErrUnavailable, ErrRejected, ErrRateLimited} {
		assert.NotErrorIs(t, err, sentinel)
	}
}
