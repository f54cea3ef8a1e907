package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
)

func (c *Client) Login(ctx context.Context, email, password string) (*repositories.LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, c.endpoints.Users, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &repositories.GatewayError{StatusCode: http.StatusBadGateway, Message: "login response carried no access token"}
	}

	result := &repositories.LoginResult{Credential: resp.AccessToken}
	if resp.User != nil {
		result.Profile, result.RoleKnown = resp.User.toIdentity()
	}
	return result, nil
}

func (c *Client) Register(ctx context.Context, req repositories.RegistrationRequest) (*repositories.RegistrationResult, error) {
	body := registerRequest{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role.WireValue(),
	}

	var resp registerResponse
	if err := c.do(ctx, http.MethodPost, c.endpoints.Users, "/users", body, &resp); err != nil {
		return nil, err
	}
	return &repositories.RegistrationResult{TenantID: resp.TenantID, UserID: resp.UserID}, nil
}

// ListProducts reads the menu from the order service, which also hosts the
// product listing.
func (c *Client) ListProducts(ctx context.Context) ([]entities.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoints.Orders, "/products", nil, &raw); err != nil {
		return nil, err
	}

	var dtos []productDTO
	if err := decodeList(raw, "products", &dtos); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]entities.Product, len(dtos))
	for i, dto := range dtos {
		products[i] = dto.toEntity()
	}
	return products, nil
}

func (c *Client) CreateOrder(ctx context.Context, customerID string, items []entities.Item) (*entities.Order, error) {
	body := createOrderRequest{CustomerID: customerID, Items: toItemDTOs(items)}

	var resp orderDTO
	if err := c.do(ctx, http.MethodPost, c.endpoints.Orders, "/orders", body, &resp); err != nil {
		return nil, err
	}
	if resp.OrderID == "" {
		return nil, &repositories.GatewayError{StatusCode: http.StatusBadGateway, Message: "order response carried no order_id"}
	}
	return resp.toEntity(), nil
}

func (c *Client) ListOrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	return c.listOrders(ctx, "/orders/customer/"+url.PathEscape(customerID))
}

func (c *Client) ListOrdersByStatus(ctx context.Context, status entities.Status) ([]entities.Order, error) {
	query := url.Values{"status": []string{status.WireValue()}}
	return c.listOrders(ctx, "/orders?"+query.Encode())
}

func (c *Client) listOrders(ctx context.Context, path string) ([]entities.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoints.Orders, path, nil, &raw); err != nil {
		return nil, err
	}

	var dtos []orderDTO
	if err := decodeList(raw, "orders", &dtos); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]entities.Order, len(dtos))
	for i, dto := range dtos {
		orders[i] = *dto.toEntity()
	}
	return orders, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID, cancelledBy, reason string) error {
	path := "/orders/" + url.PathEscape(orderID) + "/cancel"
	return c.do(ctx, http.MethodPatch, c.endpoints.Orders, path, cancelRequest{CancelledBy: cancelledBy, Reason: reason}, nil)
}

func (c *Client) AssignCook(ctx context.Context, orderID, staffID, staffName string) error {
	return c.fulfill(ctx, orderID, "assign-cook", staffID, staffName)
}

func (c *Client) MarkPacked(ctx context.Context, orderID, staffID, staffName string) error {
	return c.fulfill(ctx, orderID, "mark-packed", staffID, staffName)
}

func (c *Client) AssignDelivery(ctx context.Context, orderID, staffID, staffName string) error {
	return c.fulfill(ctx, orderID, "assign-delivery", staffID, staffName)
}

func (c *Client) MarkDelivered(ctx context.Context, orderID, staffID, staffName string) error {
	return c.fulfill(ctx, orderID, "mark-delivered", staffID, staffName)
}

func (c *Client) fulfill(ctx context.Context, orderID, action, staffID, staffName string) error {
	path := "/orders/" + url.PathEscape(orderID) + "/" + action
	return c.do(ctx, http.MethodPost, c.endpoints.Fulfillment, path, staffRequest{StaffID: staffID, StaffName: staffName}, nil)
}

func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*entities.Order, error) {
	var resp orderDTO
	if err := c.do(ctx, http.MethodGet, c.endpoints.Status, "/status/order/"+url.PathEscape(orderID), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	if resp.OrderID == "" {
		resp.OrderID = orderID
	}
	return resp.toEntity(), nil
}

func (c *Client) GetOrderHistory(ctx context.Context, orderID string) ([]entities.StatusChange, error) {
	var raw json.RawMessage
	path := "/status/order/" + url.PathEscape(orderID) + "/history"
	if err := c.do(ctx, http.MethodGet, c.endpoints.Status, path, nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
		}
		return nil, err
	}

	var dtos []historyEntryDTO
	if err := decodeList(raw, "history", &dtos); err != nil {
		return nil, fmt.Errorf("failed to decode order history: %w", err)
	}

	history := make([]entities.StatusChange, len(dtos))
	for i, dto := range dtos {
		history[i] = dto.toEntity()
	}
	return history, nil
}
