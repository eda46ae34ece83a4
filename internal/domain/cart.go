package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is one persisted (session, product) entry of a cart.
type CartLine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartItemView is a cart line joined with the current product data.
type CartItemView struct {
	ID        primitive.ObjectID `json:"id"`
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int                `json:"quantity"`
	Title     string             `json:"title"`
	Price     float64            `json:"price"`
	Image     string             `json:"image,omitempty"`
	Subtotal  float64            `json:"subtotal"`
}

type CartView struct {
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}

// LineIDs returns the identifiers of every line in the view.
func (v CartView) LineIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(v.Items))
	for _, it := range v.Items {
		ids = append(ids, it.ID)
	}
	return ids
}
