package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultBlogImage = "https://images.example.com/placeholders/blog.jpg"

type Blog struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string               `bson:"title" json:"title"`
	Slug        string               `bson:"slug" json:"slug"`
	Description string               `bson:"description" json:"description"`
	Category    string               `bson:"category" json:"category"`
	NumViews    int                  `bson:"numViews" json:"numViews"`
	IsLiked     bool                 `bson:"isLiked" json:"isLiked"`
	IsDisliked  bool                 `bson:"isDisliked" json:"isDisliked"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes    []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	Image       string               `bson:"image" json:"image"`
	Author      string               `bson:"author" json:"author"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ApplyDefaults fills the fields the original schema defaulted.
func (b *Blog) ApplyDefaults() {
	if b.Image == "" {
		b.Image = defaultBlogImage
	}
	if b.Author == "" {
		b.Author = "Admin"
	}
}
