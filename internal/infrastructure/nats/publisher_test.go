package nats

import (
	"testing"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStatusChanged(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    StatusChangedEvent
		wantErr bool
	}{
		{
			name: "valid",
			data: `{"order_id":" o-1 ","status":"EN_REPARTO"}`,
			want: StatusChangedEvent{OrderID: "o-1", Status: "EN_REPARTO"},
		},
		{name: "not json", data: `status=EN_REPARTO`, wantErr: true},
		{name: "missing order id", data: `{"status":"ENTREGADO"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeStatusChanged(&nats.Msg{Subject: "order.status", Data: []byte(tt.data)})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, event)
		})
	}
}

func TestNewOrderPlacedEvent(t *testing.T) {
	order := &entities.Order{
		OrderID:    "o-1",
		CustomerID: "u-1",
		Total:      decimal.RequireFromString("45.5"),
		CreatedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	order.SetStatus("PENDIENTE")

	event := newOrderPlacedEvent(order)

	assert.Equal(t, OrderPlacedEvent{
		OrderID:    "o-1",
		CustomerID: "u-1",
		Total:      "45.50",
		Status:     "PENDIENTE",
		CreatedAt:  "2024-05-01T12:00:00Z",
	}, event)
}

func TestEventBus_CloseWhileReconnecting(t *testing.T) {
	nc, err := nats.Connect("nats://127.0.0.1:1",
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Hour),
	)
	require.NoError(t, err)
	require.False(t, nc.IsConnected())

	bus := &EventBus{nc: nc, logger: logger.Discard()}
	bus.Close()

	assert.True(t, nc.IsClosed())
}
