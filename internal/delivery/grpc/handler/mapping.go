package handler

import (
	"errors"
	"net/http"

	"storefront/internal/delivery/grpc/proto"
	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/usecase"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func toSessionReply(session entities.Session) *proto.SessionReply {
	reply := &proto.SessionReply{Status: session.Status.String()}
	if session.Identity != nil {
		reply.User = &proto.User{
			UserID:      session.Identity.UserID,
			TenantID:    session.Identity.TenantID,
			Email:       session.Identity.Email,
			Role:        session.Identity.Role.String(),
			DisplayName: session.Identity.DisplayName(),
		}
	}
	return reply
}

func toProtoProduct(p entities.Product) *proto.Product {
	return &proto.Product{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		ImageURL:    p.ImageURL,
		Available:   p.Available,
	}
}

func (h *StorefrontHandler) toProtoOrder(order *entities.Order) *proto.Order {
	items := make([]*proto.Item, len(order.Items))
	for i, item := range order.Items {
		items[i] = &proto.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  int32(item.Quantity),
			Price:     item.Price.StringFixed(2),
		}
	}

	offer := h.orders.Offer(order)
	out := &proto.Order{
		OrderID:     order.OrderID,
		CustomerID:  order.CustomerID,
		Items:       items,
		Total:       order.Total.StringFixed(2),
		Status:      order.Status.String(),
		RawStatus:   order.RawStatus,
		NextAction:  offer.Action.String(),
		ActionLabel: offer.Label,
		CanAdvance:  offer.Allowed,
	}
	if !order.CreatedAt.IsZero() {
		out.CreatedAt = timestamppb.New(order.CreatedAt)
	}
	return out
}

func toProtoStatusChange(change entities.StatusChange) *proto.StatusChange {
	out := &proto.StatusChange{
		Status:    change.Status.String(),
		StaffID:   change.StaffID,
		StaffName: change.StaffName,
	}
	if !change.ChangedAt.IsZero() {
		out.ChangedAt = timestamppb.New(change.ChangedAt)
	}
	return out
}

func (h *StorefrontHandler) mapErrorToStatus(err error) error {
	switch {
	case errors.Is(err, usecase.ErrAuthenticationRequired),
		errors.Is(err, usecase.ErrAuthenticationFailed),
		errors.Is(err, usecase.ErrExpiredCredential):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, usecase.ErrNotAuthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, usecase.ErrActionInFlight),
		errors.Is(err, usecase.ErrActionRejected),
		errors.Is(err, usecase.ErrLoginSuperseded):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, usecase.ErrNoActionAvailable),
		errors.Is(err, usecase.ErrOrderNotCancellable),
		errors.Is(err, usecase.ErrEmptyCart):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, usecase.ErrInvalidOrderID),
		errors.Is(err, usecase.ErrRegistrationFailed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, usecase.ErrUnknownProduct),
		errors.Is(err, repositories.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, repositories.ErrNetworkUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	}

	var gwErr *repositories.GatewayError
	if errors.As(err, &gwErr) {
		return status.Error(gatewayCode(gwErr.StatusCode), gwErr.Error())
	}

	h.logger.Error("Unmapped error", "error", err)
	return status.Error(codes.Internal, "internal server error")
}

func gatewayCode(httpStatus int) codes.Code {
	switch {
	case httpStatus == http.StatusBadRequest:
		return codes.InvalidArgument
	case httpStatus == http.StatusUnauthorized:
		return codes.Unauthenticated
	case httpStatus == http.StatusForbidden:
		return codes.PermissionDenied
	case httpStatus == http.StatusNotFound:
		return codes.NotFound
	case httpStatus == http.StatusConflict:
		return codes.Aborted
	case httpStatus >= http.StatusInternalServerError:
		return codes.Unavailable
	}
	return codes.Unknown
}
