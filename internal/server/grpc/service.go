package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "timecapsule.CapsuleService"

const (
	MethodRegister      = "/" + ServiceName + "/Register"
	MethodLogin         = "/" + ServiceName + "/Login"
	MethodCreateCapsule = "/" + ServiceName + "/CreateCapsule"
	MethodGetCapsule    = "/" + ServiceName + "/GetCapsule"
	MethodListCapsules  = "/" + ServiceName + "/ListCapsules"
	MethodUpdateCapsule = "/" + ServiceName + "/UpdateCapsule"
	MethodDeleteCapsule = "/" + ServiceName + "/DeleteCapsule"
)

// CapsuleServiceServer is the server API for the capsule service.
type CapsuleServiceServer interface {
	Register(context.Context, *Credentials) (*Session, error)
	Login(context.Context, *Credentials) (*Session, error)
	CreateCapsule(context.Context, *CreateCapsuleRequest) (*CreateCapsuleResponse, error)
	GetCapsule(context.Context, *CapsuleRef) (*Capsule, error)
	ListCapsules(context.Context, *ListCapsulesRequest) (*ListCapsulesResponse, error)
	UpdateCapsule(context.Context, *UpdateCapsuleRequest) (*CapsuleID, error)
	DeleteCapsule(context.Context, *CapsuleRef) (*CapsuleID, error)
}

// unaryHandler adapts a typed method to grpc.MethodDesc.Handler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(CapsuleServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CapsuleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CapsuleServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CapsuleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CapsuleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, CapsuleServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, CapsuleServiceServer.Login)},
		{MethodName: "CreateCapsule", Handler: unaryHandler(MethodCreateCapsule, CapsuleServiceServer.CreateCapsule)},
		{MethodName: "GetCapsule", Handler: unaryHandler(MethodGetCapsule, CapsuleServiceServer.GetCapsule)},
		{MethodName: "ListCapsules", Handler: unaryHandler(MethodListCapsules, CapsuleServiceServer.ListCapsules)},
		{MethodName: "UpdateCapsule", Handler: unaryHandler(MethodUpdateCapsule, CapsuleServiceServer.UpdateCapsule)},
		{MethodName: "DeleteCapsule", Handler: unaryHandler(MethodDeleteCapsule, CapsuleServiceServer.DeleteCapsule)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timecapsule",
}

func RegisterCapsuleServiceServer(s grpc.ServiceRegistrar, srv CapsuleServiceServer) {
	s.RegisterService(&CapsuleServiceDesc, srv)
}

// Client is a thin typed client over a connection; every call uses the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodRegister, in, opts...)
}

func (c *Client) Login(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodLogin, in, opts...)
}

func (c *Client) CreateCapsule(ctx context.Context, in *CreateCapsuleRequest, opts ...grpc.CallOption) (*CreateCapsuleResponse, error) {
	return invoke[CreateCapsuleResponse](ctx, c.cc, MethodCreateCapsule, in, opts...)
}

func (c *Client) GetCapsule(ctx context.Context, in *CapsuleRef, opts ...grpc.CallOption) (*Capsule, error) {
	return invoke[Capsule](ctx, c.cc, MethodGetCapsule, in, opts...)
}

func (c *Client) ListCapsules(ctx context.Context, in *ListCapsulesRequest, opts ...grpc.CallOption) (*ListCapsulesResponse, error) {
	return invoke[ListCapsulesResponse](ctx, c.cc, MethodListCapsules, in, opts...)
}

func (c *Client) UpdateCapsule(ctx context.Context, in *UpdateCapsuleRequest, opts ...grpc.CallOption) (*CapsuleID, error) {
	return invoke[CapsuleID](ctx, c.cc, MethodUpdateCapsule, in, opts...)
}

func (c *Client) DeleteCapsule(ctx context.Context, in *CapsuleRef, opts ...grpc.CallOption) (*CapsuleID, error) {
	return invoke[CapsuleID](ctx, c.cc, MethodDeleteCapsule, in, opts...)
}
