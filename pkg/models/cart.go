package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine captures the unit price at the time the cart was submitted, so a
// later catalog price change does not alter an already-built cart.
type CartLine struct {
	Product primitive.ObjectID `bson:"product" json:"product"`
	Count   int                `bson:"count" json:"count"`
	Color   string             `bson:"color,omitempty" json:"color,omitempty"`
	Price   float64            `bson:"price" json:"price"`
}

// Cart is a user's pending purchase list. At most one cart exists per user;
// the orderBy field carries a unique index and every submit replaces the
// whole document.
type Cart struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Lines              []CartLine         `bson:"products" json:"products"`
	CartTotal          float64            `bson:"cartTotal" json:"cartTotal"`
	TotalAfterDiscount *float64           `bson:"totalAfterDiscount,omitempty" json:"totalAfterDiscount,omitempty"`
	OrderBy            primitive.ObjectID `bson:"orderBy" json:"orderBy"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
