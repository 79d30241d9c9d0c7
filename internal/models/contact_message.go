package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactMessage stores a public contact-form submission and the optional
// admin reply.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Message   string             `bson:"message" json:"message"`
	Reply     string             `bson:"reply,omitempty" json:"reply,omitempty"`
	IsReplied bool               `bson:"isReplied" json:"isReplied"`
	RepliedAt *time.Time         `bson:"repliedAt,omitempty" json:"repliedAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
