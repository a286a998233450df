package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a single review entry embedded in a product. A user has at most
// one entry per product; a second submission replaces the first.
type Rating struct {
	Star     int                `bson:"star" json:"star"`
	Comment  string             `bson:"comment,omitempty" json:"comment,omitempty"`
	PostedBy primitive.ObjectID `bson:"postedBy" json:"postedBy"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Brand       string             `bson:"brand" json:"brand"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Sold        int                `bson:"sold" json:"sold"`
	Colors      []string           `bson:"color" json:"color"`
	Images      []string           `bson:"images" json:"images"`
	Ratings     []Rating           `bson:"ratings" json:"ratings"`
	TotalRating int                `bson:"totalRating" json:"totalRating"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
