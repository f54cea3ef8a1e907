package proto

import "google.golang.org/protobuf/types/known/timestamppb"

type Empty struct{}

type User struct {
	UserID      string `json:"user_id"`
	TenantID    string `json:"tenant_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type SessionReply struct {
	Status string `json:"status"`
	User   *User  `json:"user,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	DocumentID string `json:"document_id"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

type RegisterReply struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

type Product struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url,omitempty"`
	Available   bool   `json:"available"`
}

type ListProductsRequest struct {
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}

type ListProductsReply struct {
	Products   []*Product `json:"products"`
	Categories []string   `json:"categories"`
}

type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int32    `json:"quantity"`
	Subtotal string   `json:"subtotal"`
}

type CartReply struct {
	Lines     []*CartLine `json:"lines"`
	Total     string      `json:"total"`
	ItemCount int32       `json:"item_count"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"product_id"`
}

type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
}

type Order struct {
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Items      []*Item                `json:"items"`
	Total      string                 `json:"total"`
	Status     string                 `json:"status"`
	RawStatus  string                 `json:"raw_status"`
	CreatedAt  *timestamppb.Timestamp `json:"created_at,omitempty"`
	// NextAction and ActionLabel describe what staff could do next;
	// CanAdvance says whether the signed-in role may do it.
	NextAction  string `json:"next_action"`
	ActionLabel string `json:"action_label,omitempty"`
	CanAdvance  bool   `json:"can_advance"`
}

type OrderReply struct {
	Order *Order `json:"order"`
}

type ListOrdersReply struct {
	Orders []*Order `json:"orders"`
}

type StatusChange struct {
	Status    string                 `json:"status"`
	ChangedAt *timestamppb.Timestamp `json:"changed_at,omitempty"`
	StaffID   string                 `json:"staff_id,omitempty"`
	StaffName string                 `json:"staff_name,omitempty"`
}

type TrackOrderRequest struct {
	OrderID string `json:"order_id"`
}

type TrackOrderReply struct {
	Order     *Order          `json:"order"`
	Step      int32           `json:"step"`
	Steps     []string        `json:"steps"`
	Cancelled bool            `json:"cancelled"`
	Label     string          `json:"label"`
	History   []*StatusChange `json:"history"`
}

type BoardColumn struct {
	Status string   `json:"status"`
	Label  string   `json:"label"`
	Orders []*Order `json:"orders"`
}

type BoardReply struct {
	Columns []*BoardColumn `json:"columns"`
}

type AdvanceOrderRequest struct {
	OrderID string `json:"order_id"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}
