package remote

import (
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
)

const EventTypeOrderCreated = "OrderCreated"

// OrderCreatedEvent is the message published for a synced sale on the
// orders topic. EventID is the transaction id.
type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID         string             `json:"id"`
	MerchantID string             `json:"merchant_id"`
	StoreID    string             `json:"store_id"`
	Items      []OrderItemPayload `json:"items"`
	Subtotal   string             `json:"subtotal"`
	Tax        string             `json:"tax"`
	Total      string             `json:"total"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func NewOrderCreatedEvent(tx *model.Transaction, merchantID, storeID string) OrderCreatedEvent {
	items := make([]OrderItemPayload, 0, len(tx.Items))
	for _, item := range tx.Items {
		items = append(items, OrderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
		})
	}
	return OrderCreatedEvent{
		EventID:   tx.ID,
		EventType: EventTypeOrderCreated,
		Payload: OrderPayload{
			ID:         tx.ID,
			MerchantID: merchantID,
			StoreID:    storeID,
			Items:      items,
			Subtotal:   tx.Subtotal.String(),
			Tax:        tx.Tax.String(),
			Total:      tx.Total.String(),
		},
		Timestamp: tx.CreatedAt,
	}
}
