package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NamedEntry is the shape shared by product categories, blog categories,
// brands and colors: a named document with timestamps.
type NamedEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
