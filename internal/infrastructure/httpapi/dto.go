package httpapi

import (
	"encoding/json"
	"time"

	"storefront/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	User        *userDTO `json:"user"`
}

type userDTO struct {
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
	Email      string `json:"correo"`
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellidos"`
	DocumentID string `json:"dni"`
	Role       string `json:"rol"`
}

type registerRequest struct {
	GivenName  string `json:"nombres"`
	FamilyName string `json:"apellidos"`
	DocumentID string `json:"dni"`
	Email      string `json:"correo"`
	Password   string `json:"password"`
	Role       string `json:"rol"`
}

type registerResponse struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

type productDTO struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Available   *bool           `json:"available"`
}

type orderItemDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type createOrderRequest struct {
	CustomerID string         `json:"customer_id"`
	Items      []orderItemDTO `json:"items"`
}

type orderDTO struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Items      []orderItemDTO  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  string          `json:"created_at"`
}

type cancelRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason"`
}

type staffRequest struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
}

type historyEntryDTO struct {
	Status    string `json:"status"`
	ChangedAt string `json:"changed_at"`
	Timestamp string `json:"timestamp"`
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
}

// toIdentity also reports whether rol held a recognised role.
func (u *userDTO) toIdentity() (*entities.Identity, bool) {
	role, known := entities.ParseRole(u.Role)
	return &entities.Identity{
		TenantID:   u.TenantID,
		UserID:     u.UserID,
		Email:      u.Email,
		Role:       role,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
		DocumentID: u.DocumentID,
	}, known
}

func (p productDTO) toEntity() entities.Product {
	available := true
	if p.Available != nil {
		available = *p.Available
	}
	return entities.Product{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Available:   available,
	}
}

func toItemDTOs(items []entities.Item) []orderItemDTO {
	out := make([]orderItemDTO, len(items))
	for i, item := range items {
		out[i] = orderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return out
}

func (o orderDTO) toEntity() *entities.Order {
	items := make([]entities.Item, len(o.Items))
	for i, item := range o.Items {
		items[i] = entities.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	total := o.Total
	if total.IsZero() && len(items) > 0 {
		total = entities.ComputeTotal(items)
	}

	order := &entities.Order{
		OrderID:    o.OrderID,
		CustomerID: o.CustomerID,
		Items:      items,
		Total:      total,
		CreatedAt:  parseTime(o.CreatedAt),
	}
	order.SetStatus(o.Status)
	return order
}

func (h historyEntryDTO) toEntity() entities.StatusChange {
	at := h.ChangedAt
	if at == "" {
		at = h.Timestamp
	}
	return entities.StatusChange{
		Status:    entities.ParseStatus(h.Status),
		RawStatus: h.Status,
		ChangedAt: parseTime(at),
		StaffID:   h.StaffID,
		StaffName: h.StaffName,
	}
}

// decodeList accepts a bare array or an object holding the array under
// key.
func decodeList(raw json.RawMessage, key string, out interface{}) error {
	if err := json.Unmarshal(raw, out); err == nil {
		return nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	inner, ok := wrapped[key]
	if !ok {
		return json.Unmarshal([]byte("[]"), out)
	}
	return json.Unmarshal(inner, out)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTime(raw string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
