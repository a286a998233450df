package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EnquirySubmitted  = "Submitted"
	EnquiryContacted  = "Contacted"
	EnquiryInProgress = "In Progress"
	EnquiryResolved   = "Resolved"
)

func ValidEnquiryStatus(s string) bool {
	switch s {
	case EnquirySubmitted, EnquiryContacted, EnquiryInProgress, EnquiryResolved:
		return true
	}
	return false
}

type Enquiry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Mobile    string             `bson:"mobile" json:"mobile"`
	Comment   string             `bson:"comment" json:"comment"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
