package proto

import (
	"context"

	"google.golang.org/grpc"
)

const (
	AuthServiceName          = "clipboard.v1.Auth"
	SubscriptionsServiceName = "clipboard.v1.Subscriptions"
	EntriesServiceName       = "clipboard.v1.Entries"

	Auth_SendMagicCode_FullMethodName       = "/" + AuthServiceName + "/SendMagicCode"
	Auth_SignInWithMagicCode_FullMethodName = "/" + AuthServiceName + "/SignInWithMagicCode"
	Auth_RefreshToken_FullMethodName        = "/" + AuthServiceName + "/RefreshToken"
	Auth_Ping_FullMethodName                = "/" + AuthServiceName + "/Ping"
	Subscriptions_List_FullMethodName       = "/" + SubscriptionsServiceName + "/List"
	Entries_List_FullMethodName             = "/" + EntriesServiceName + "/List"
	Entries_Add_FullMethodName              = "/" + EntriesServiceName + "/Add"
	Entries_SetFavorite_FullMethodName      = "/" + EntriesServiceName + "/SetFavorite"
)

// unary builds a grpc.MethodHandler that decodes Req, runs the optional
// interceptor and dispatches to call on the registered server S.
func unary[S any, Req any, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ---- Auth ----

type AuthServer interface {
	SendMagicCode(context.Context, *SendMagicCodeRequest) (*SendMagicCodeResponse, error)
	SignInWithMagicCode(context.Context, *SignInWithMagicCodeRequest) (*SignInWithMagicCodeResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

var Auth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendMagicCode", Handler: unary(Auth_SendMagicCode_FullMethodName, AuthServer.SendMagicCode)},
		{MethodName: "SignInWithMagicCode", Handler: unary(Auth_SignInWithMagicCode_FullMethodName, AuthServer.SignInWithMagicCode)},
		{MethodName: "RefreshToken", Handler: unary(Auth_RefreshToken_FullMethodName, AuthServer.RefreshToken)},
		{MethodName: "Ping", Handler: unary(Auth_Ping_FullMethodName, AuthServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clipboard/v1/auth",
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&Auth_ServiceDesc, srv)
}

type AuthClient interface {
	SendMagicCode(ctx context.Context, in *SendMagicCodeRequest, opts ...grpc.CallOption) (*SendMagicCodeResponse, error)
	SignInWithMagicCode(ctx context.Context, in *SignInWithMagicCodeRequest, opts ...grpc.CallOption) (*SignInWithMagicCodeResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type authClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) AuthClient {
	return &authClient{cc: cc}
}

func (c *authClient) SendMagicCode(ctx context.Context, in *SendMagicCodeRequest, opts ...grpc.CallOption) (*SendMagicCodeResponse, error) {
	out := new(SendMagicCodeResponse)
	if err := c.cc.Invoke(ctx, Auth_SendMagicCode_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authClient) SignInWithMagicCode(ctx context.Context, in *SignInWithMagicCodeRequest, opts ...grpc.CallOption) (*SignInWithMagicCodeResponse, error) {
	out := new(SignInWithMagicCodeResponse)
	if err := c.cc.Invoke(ctx, Auth_SignInWithMagicCode_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	out := new(RefreshTokenResponse)
	if err := c.cc.Invoke(ctx, Auth_RefreshToken_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, Auth_Ping_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Subscriptions ----

type SubscriptionsServer interface {
	List(context.Context, *ListSubscriptionsRequest) (*ListSubscriptionsResponse, error)
}

var Subscriptions_ServiceDesc = grpc.ServiceDesc{
	ServiceName: SubscriptionsServiceName,
	HandlerType: (*SubscriptionsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unary(Subscriptions_List_FullMethodName, SubscriptionsServer.List)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clipboard/v1/subscriptions",
}

func RegisterSubscriptionsServer(s grpc.ServiceRegistrar, srv SubscriptionsServer) {
	s.RegisterService(&Subscriptions_ServiceDesc, srv)
}

type SubscriptionsClient interface {
	List(ctx context.Context, in *ListSubscriptionsRequest, opts ...grpc.CallOption) (*ListSubscriptionsResponse, error)
}

type subscriptionsClient struct {
	cc grpc.ClientConnInterface
}

func NewSubscriptionsClient(cc grpc.ClientConnInterface) SubscriptionsClient {
	return &subscriptionsClient{cc: cc}
}

func (c *subscriptionsClient) List(ctx context.Context, in *ListSubscriptionsRequest, opts ...grpc.CallOption) (*ListSubscriptionsResponse, error) {
	out := new(ListSubscriptionsResponse)
	if err := c.cc.Invoke(ctx, Subscriptions_List_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Entries ----

type EntriesServer interface {
	List(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	Add(context.Context, *AddEntryRequest) (*AddEntryResponse, error)
	SetFavorite(context.Context, *SetFavoriteRequest) (*SetFavoriteResponse, error)
}

var Entries_ServiceDesc = grpc.ServiceDesc{
	ServiceName: EntriesServiceName,
	HandlerType: (*EntriesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unary(Entries_List_FullMethodName, EntriesServer.List)},
		{MethodName: "Add", Handler: unary(Entries_Add_FullMethodName, EntriesServer.Add)},
		{MethodName: "SetFavorite", Handler: unary(Entries_SetFavorite_FullMethodName, EntriesServer.SetFavorite)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clipboard/v1/entries",
}

func RegisterEntriesServer(s grpc.ServiceRegistrar, srv EntriesServer) {
	s.RegisterService(&Entries_ServiceDesc, srv)
}

type EntriesClient interface {
	List(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
	Add(ctx context.Context, in *AddEntryRequest, opts ...grpc.CallOption) (*AddEntryResponse, error)
	SetFavorite(ctx context.Context, in *SetFavoriteRequest, opts ...grpc.CallOption) (*SetFavoriteResponse, error)
}

type entriesClient struct {
	cc grpc.ClientConnInterface
}

func NewEntriesClient(cc grpc.ClientConnInterface) EntriesClient {
	return &entriesClient{cc: cc}
}

func (c *entriesClient) List(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	out := new(ListEntriesResponse)
	if err := c.cc.Invoke(ctx, Entries_List_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *entriesClient) Add(ctx context.Context, in *AddEntryRequest, opts ...grpc.CallOption) (*AddEntryResponse, error) {
	out := new(AddEntryResponse)
	if err := c.cc.Invoke(ctx, Entries_Add_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *entriesClient) SetFavorite(ctx context.Context, in *SetFavoriteRequest, opts ...grpc.CallOption) (*SetFavoriteResponse, error) {
	out := new(SetFavoriteResponse)
	if err := c.cc.Invoke(ctx, Entries_SetFavorite_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
