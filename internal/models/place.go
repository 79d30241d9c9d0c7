package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply is a response to a review, embedded inside it.
type Reply struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Review is embedded in its place; reviews live and die with the listing.
type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Replies   []Reply            `bson:"replies" json:"replies"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Place defines a rentable listing document.
type Place struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Title       string             `bson:"title" json:"title"`
	Address     string             `bson:"address" json:"address"`
	Photos      StringList         `bson:"photos" json:"photos"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Perks       StringList         `bson:"perks" json:"perks"`
	ExtraInfo   string             `bson:"extraInfo,omitempty" json:"extraInfo,omitempty"`
	MaxGuests   int                `bson:"maxGuests" json:"maxGuests"`
	Price       float64            `bson:"price" json:"price"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlaceSummary is the slim shape embedded in booking responses.
type PlaceSummary struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Address string             `bson:"address" json:"address"`
	Photos  StringList         `bson:"photos" json:"photos"`
	Price   float64            `bson:"price" json:"price"`
}

// Summary projects the fields booking listings need.
func (p Place) Summary() PlaceSummary {
	return PlaceSummary{
		ID:      p.ID,
		Title:   p.Title,
		Address: p.Address,
		Photos:  p.Photos,
		Price:   p.Price,
	}
}
