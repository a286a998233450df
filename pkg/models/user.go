package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName            string               `bson:"firstName" json:"firstName"`
	LastName             string               `bson:"lastName" json:"lastName"`
	Email                string               `bson:"email" json:"email"`
	Mobile               string               `bson:"mobile" json:"mobile"`
	Password             string               `bson:"password" json:"-"`
	Role                 string               `bson:"role" json:"role"`
	IsBlocked            bool                 `bson:"isBlocked" json:"isBlocked"`
	Address              string               `bson:"address,omitempty" json:"address,omitempty"`
	Wishlist             []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	RefreshToken         string               `bson:"refreshToken,omitempty" json:"-"`
	PasswordResetToken   string               `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time           `bson:"passwordResetExpires,omitempty" json:"-"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
