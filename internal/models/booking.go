package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking defines the persisted reservation document. Price is the agreed
// total charge captured at booking time; later edits to the place's nightly
// rate never touch existing bookings.
type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Place       primitive.ObjectID `bson:"place" json:"place"`
	CheckIn     time.Time          `bson:"checkIn" json:"checkIn"`
	CheckOut    time.Time          `bson:"checkOut" json:"checkOut"`
	NumOfGuests int                `bson:"numOfGuests" json:"numOfGuests"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone" json:"phone"`
	Price       float64            `bson:"price" json:"price"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
