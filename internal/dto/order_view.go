package dto

import (
	"time"

	"orderboard/internal/domain"
)

// OrderView is the externally visible projection of an order. It is rebuilt on
// every read so TimeToCook reflects the moment of the call.
type OrderView struct {
	ID          uint   `json:"id"`
	TableNumber int    `json:"table_number"`
	MenuItem    string `json:"menu_item"`
	Quantity    int    `json:"quantity"`
	TimeToCook  int64  `json:"time_to_cook"`
}

func NewOrderView(order domain.Order, now time.Time) OrderView {
	return OrderView{
		ID:          order.ID,
		TableNumber: order.TableNumber,
		MenuItem:    order.MenuItem,
		Quantity:    order.Quantity,
		TimeToCook:  order.TimeToCook(now),
	}
}
