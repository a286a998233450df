package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodCOD      = "COD"
	OrderStatusCOD        = "Cash on Delivery"
	PaymentCurrencyDollar = "USD"
)

type PaymentIntent struct {
	ID        string    `bson:"id" json:"id"`
	Method    string    `bson:"method" json:"method"`
	Amount    float64   `bson:"amount" json:"amount"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created" json:"created"`
	Currency  string    `bson:"currency" json:"currency"`
}

// Order is an immutable snapshot of a settled cart. Status updates touch
// OrderStatus and PaymentIntent.Status only, never the lines or the amount.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Lines         []CartLine         `bson:"products" json:"products"`
	PaymentIntent PaymentIntent      `bson:"paymentIntent" json:"paymentIntent"`
	OrderStatus   string             `bson:"orderStatus" json:"orderStatus"`
	OrderBy       primitive.ObjectID `bson:"orderBy" json:"orderBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
