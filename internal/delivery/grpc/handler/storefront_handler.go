package handler

import (
	"context"

	"storefront/internal/delivery/grpc/proto"
	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/domain/workflow"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/usecase"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StorefrontHandler exposes the client stores to view processes.
type StorefrontHandler struct {
	session  *usecase.SessionStore
	cart     *usecase.CartStore
	catalog  *usecase.Catalog
	checkout *usecase.Checkout
	tracker  *usecase.OrderTracker
	orders   *usecase.OrderUseCase
	logger   *logger.Logger
}

type Dependencies struct {
	Session  *usecase.SessionStore
	Cart     *usecase.CartStore
	Catalog  *usecase.Catalog
	Checkout *usecase.Checkout
	Tracker  *usecase.OrderTracker
	Orders   *usecase.OrderUseCase
	Logger   *logger.Logger
}

func NewStorefrontHandler(deps Dependencies) *StorefrontHandler {
	return &StorefrontHandler{
		session:  deps.Session,
		cart:     deps.Cart,
		catalog:  deps.Catalog,
		checkout: deps.Checkout,
		tracker:  deps.Tracker,
		orders:   deps.Orders,
		logger:   deps.Logger,
	}
}

func (h *StorefrontHandler) GetSession(ctx context.Context, _ *proto.Empty) (*proto.SessionReply, error) {
	if err := h.awaitSession(ctx); err != nil {
		return nil, err
	}
	return toSessionReply(h.session.Session()), nil
}

func (h *StorefrontHandler) Login(ctx context.Context, req *proto.LoginRequest) (*proto.SessionReply, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}
	if err := h.awaitSession(ctx); err != nil {
		return nil, err
	}

	if _, err := h.session.Login(ctx, usecase.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return toSessionReply(h.session.Session()), nil
}

func (h *StorefrontHandler) Register(ctx context.Context, req *proto.RegisterRequest) (*proto.RegisterReply, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	role, _ := entities.ParseRole(req.Role)
	result, err := h.session.Register(ctx, repositories.RegistrationRequest{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Password:   req.Password,
		Role:       role,
	})
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &proto.RegisterReply{TenantID: result.TenantID, UserID: result.UserID}, nil
}

func (h *StorefrontHandler) Logout(ctx context.Context, _ *proto.Empty) (*proto.SessionReply, error) {
	h.session.Logout(ctx)
	return toSessionReply(h.session.Session()), nil
}

func (h *StorefrontHandler) ListProducts(ctx context.Context, req *proto.ListProductsRequest) (*proto.ListProductsReply, error) {
	products, err := h.catalog.Browse(ctx, usecase.Filter{Category: req.Category, Query: req.Query})
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}

	reply := &proto.ListProductsReply{
		Products:   make([]*proto.Product, len(products)),
		Categories: h.catalog.Categories(),
	}
	for i, p := range products {
		reply.Products[i] = toProtoProduct(p)
	}
	return reply, nil
}

func (h *StorefrontHandler) GetCart(_ context.Context, _ *proto.Empty) (*proto.CartReply, error) {
	return h.cartReply(), nil
}

func (h *StorefrontHandler) AddToCart(ctx context.Context, req *proto.AddToCartRequest) (*proto.CartReply, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	product, err := h.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	if !product.Available {
		return nil, status.Errorf(codes.FailedPrecondition, "product %s is not available", product.ProductID)
	}

	h.cartSaved(h.cart.AddItem(ctx, product))
	return h.cartReply(), nil
}

func (h *StorefrontHandler) UpdateCartItem(ctx context.Context, req *proto.UpdateCartItemRequest) (*proto.CartReply, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	h.cartSaved(h.cart.UpdateQuantity(ctx, req.ProductID, int(req.Quantity)))
	return h.cartReply(), nil
}

func (h *StorefrontHandler) RemoveCartItem(ctx context.Context, req *proto.RemoveCartItemRequest) (*proto.CartReply, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	h.cartSaved(h.cart.RemoveItem(ctx, req.ProductID))
	return h.cartReply(), nil
}

func (h *StorefrontHandler) ClearCart(ctx context.Context, _ *proto.Empty) (*proto.CartReply, error) {
	h.cartSaved(h.cart.ClearCart(ctx))
	return h.cartReply(), nil
}

func (h *StorefrontHandler) Checkout(ctx context.Context, _ *proto.Empty) (*proto.OrderReply, error) {
	if err := h.awaitSession(ctx); err != nil {
		return nil, err
	}

	order, err := h.checkout.PlaceOrder(ctx)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &proto.OrderReply{Order: h.toProtoOrder(order)}, nil
}

func (h *StorefrontHandler) ListMyOrders(ctx context.Context, _ *proto.Empty) (*proto.ListOrdersReply, error) {
	if err := h.awaitSession(ctx); err != nil {
		return nil, err
	}

	orders, err := h.tracker.ListMine(ctx)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}

	reply := &proto.ListOrdersReply{Orders: make([]*proto.Order, len(orders))}
	for i := range orders {
		reply.Orders[i] = h.toProtoOrder(&orders[i])
	}
	return reply, nil
}

func (h *StorefrontHandler) TrackOrder(ctx context.Context, req *proto.TrackOrderRequest) (*proto.TrackOrderReply, error) {
	tracking, err := h.tracker.Track(ctx, req.OrderID)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}

	reply := &proto.TrackOrderReply{
		Order:     h.toProtoOrder(tracking.Order),
		Step:      int32(tracking.Step),
		Steps:     make([]string, len(tracking.Steps)),
		Cancelled: tracking.Cancelled,
		Label:     tracking.Label,
		History:   []*proto.StatusChange{},
	}
	for i, s := range tracking.Steps {
		reply.Steps[i] = s.String()
	}

	history, err := h.tracker.History(ctx, req.OrderID)
	if err != nil {
		h.logger.Warn("Order history unavailable", "order_id", req.OrderID, "error", err)
		return reply, nil
	}
	for _, change := range history {
		reply.History = append(reply.History, toProtoStatusChange(change))
	}
	return reply, nil
}

func (h *StorefrontHandler) ListBoard(ctx context.Context, _ *proto.Empty) (*proto.BoardReply, error) {
	if err := h.requireStaff(ctx); err != nil {
		return nil, err
	}

	board := h.tracker.Board(ctx)
	reply := &proto.BoardReply{Columns: make([]*proto.BoardColumn, 0, len(entities.Statuses))}
	for _, s := range entities.Statuses {
		column := &proto.BoardColumn{
			Status: s.String(),
			Label:  workflow.StatusLabel(s),
			Orders: make([]*proto.Order, len(board[s])),
		}
		for i := range board[s] {
			column.Orders[i] = h.toProtoOrder(&board[s][i])
		}
		reply.Columns = append(reply.Columns, column)
	}
	return reply, nil
}

func (h *StorefrontHandler) AdvanceOrder(ctx context.Context, req *proto.AdvanceOrderRequest) (*proto.OrderReply, error) {
	if err := h.awaitSession(ctx); err != nil {
		return nil, err
	}

	order, err := h.orders.Advance(ctx, req.OrderID)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &proto.OrderReply{Order: h.toProtoOrder(order)}, nil
}

func (h *StorefrontHandler) CancelOrder(ctx context.Context, req *proto.CancelOrderRequest) (*proto.OrderReply, error) {
	if err := h.awaitSession(ctx); err != nil {
		return nil, err
	}

	order, err := h.orders.Cancel(ctx, req.OrderID, req.Reason)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &proto.OrderReply{Order: h.toProtoOrder(order)}, nil
}

// awaitSession blocks until the persisted session has been restored.
func (h *StorefrontHandler) awaitSession(ctx context.Context) error {
	select {
	case <-h.session.Ready():
		return nil
	case <-ctx.Done():
		return status.FromContextError(ctx.Err()).Err()
	}
}

func (h *StorefrontHandler) requireStaff(ctx context.Context) error {
	if err := h.awaitSession(ctx); err != nil {
		return err
	}
	identity, ok := h.session.Identity()
	if !ok {
		return status.Error(codes.Unauthenticated, usecase.ErrAuthenticationRequired.Error())
	}
	if !identity.Role.IsStaff() {
		return status.Error(codes.PermissionDenied, "staff role required")
	}
	return nil
}

// cartSaved logs a cart that changed in memory but could not be persisted.
func (h *StorefrontHandler) cartSaved(err error) {
	if err != nil {
		h.logger.Warn("Cart change kept in memory only", "error", err)
	}
}

func (h *StorefrontHandler) cartReply() *proto.CartReply {
	lines := h.cart.Lines()
	reply := &proto.CartReply{
		Lines:     make([]*proto.CartLine, len(lines)),
		Total:     h.cart.Total().StringFixed(2),
		ItemCount: int32(h.cart.ItemCount()),
	}
	for i, line := range lines {
		reply.Lines[i] = &proto.CartLine{
			Product:  toProtoProduct(line.Product),
			Quantity: int32(line.Quantity),
			Subtotal: line.Subtotal().StringFixed(2),
		}
	}
	return reply
}
