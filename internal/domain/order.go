package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Title     string             `bson:"title" json:"title"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID       string             `bson:"session_id" json:"session_id"`
	CustomerName    string             `bson:"customer_name" json:"customer_name"`
	CustomerEmail   string             `bson:"customer_email" json:"customer_email"`
	CustomerAddress string             `bson:"customer_address" json:"customer_address"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Total           float64            `bson:"total" json:"total"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// OrderPlaced is emitted once an order has been persisted and its cart cleared.
type OrderPlaced struct {
	OrderID   string    `json:"order_id"`
	SessionID string    `json:"session_id"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotItems copies hydrated cart lines into order lines.
func SnapshotItems(view CartView) []OrderItem {
	items := make([]OrderItem, 0, len(view.Items))
	for _, it := range view.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}
	return items
}
