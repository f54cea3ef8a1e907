package proto

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "storefront.v1.Storefront"

type StorefrontServer interface {
	GetSession(context.Context, *Empty) (*SessionReply, error)
	Login(context.Context, *LoginRequest) (*SessionReply, error)
	Register(context.Context, *RegisterRequest) (*RegisterReply, error)
	Logout(context.Context, *Empty) (*SessionReply, error)

	ListProducts(context.Context, *ListProductsRequest) (*ListProductsReply, error)

	GetCart(context.Context, *Empty) (*CartReply, error)
	AddToCart(context.Context, *AddToCartRequest) (*CartReply, error)
	UpdateCartItem(context.Context, *UpdateCartItemRequest) (*CartReply, error)
	RemoveCartItem(context.Context, *RemoveCartItemRequest) (*CartReply, error)
	ClearCart(context.Context, *Empty) (*CartReply, error)
	Checkout(context.Context, *Empty) (*OrderReply, error)

	ListMyOrders(context.Context, *Empty) (*ListOrdersReply, error)
	TrackOrder(context.Context, *TrackOrderRequest) (*TrackOrderReply, error)
	ListBoard(context.Context, *Empty) (*BoardReply, error)
	AdvanceOrder(context.Context, *AdvanceOrderRequest) (*OrderReply, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*OrderReply, error)
}

func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetSession", StorefrontServer.GetSession),
		unary("Login", StorefrontServer.Login),
		unary("Register", StorefrontServer.Register),
		unary("Logout", StorefrontServer.Logout),
		unary("ListProducts", StorefrontServer.ListProducts),
		unary("GetCart", StorefrontServer.GetCart),
		unary("AddToCart", StorefrontServer.AddToCart),
		unary("UpdateCartItem", StorefrontServer.UpdateCartItem),
		unary("RemoveCartItem", StorefrontServer.RemoveCartItem),
		unary("ClearCart", StorefrontServer.ClearCart),
		unary("Checkout", StorefrontServer.Checkout),
		unary("ListMyOrders", StorefrontServer.ListMyOrders),
		unary("TrackOrder", StorefrontServer.TrackOrder),
		unary("ListBoard", StorefrontServer.ListBoard),
		unary("AdvanceOrder", StorefrontServer.AdvanceOrder),
		unary("CancelOrder", StorefrontServer.CancelOrder),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/storefront.proto",
}

func unary[Req, Resp any](method string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StorefrontServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(StorefrontServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// StorefrontClient calls the service over a connection using the JSON
// codec.
type StorefrontClient struct {
	cc grpc.ClientConnInterface
}

func NewStorefrontClient(cc grpc.ClientConnInterface) *StorefrontClient {
	return &StorefrontClient{cc: cc}
}

// Invoke calls method (e.g. "Login") with in and decodes the reply into
// out.
func (c *StorefrontClient) Invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}
