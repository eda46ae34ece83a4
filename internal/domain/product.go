package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRating is used for stored products that carry no rating.
const DefaultRating = 4.5

var (
	ErrInvalidPrice  = errors.New("price must be non-negative")
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
	ErrMissingTitle  = errors.New("title is required")
	ErrMissingCat    = errors.New("category is required")
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	InStock     bool               `bson:"in_stock" json:"in_stock"`
	Rating      float64            `bson:"rating" json:"rating"`
}

// Validate reports the first field that makes the product unfit for storage.
func (p Product) Validate() error {
	switch {
	case p.Title == "":
		return ErrMissingTitle
	case p.Category == "":
		return ErrMissingCat
	case p.Price < 0:
		return ErrInvalidPrice
	case p.Rating < 0 || p.Rating > 5:
		return ErrInvalidRating
	}
	return nil
}

// UnmarshalBSON fills in_stock and rating defaults for documents that omit them.
func (p *Product) UnmarshalBSON(data []byte) error {
	type plain Product
	if err := bson.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}

	raw := bson.Raw(data)
	if raw.Lookup("in_stock").Type == 0 {
		p.InStock = true
	}
	if raw.Lookup("rating").Type == 0 {
		p.Rating = DefaultRating
	}
	return nil
}
