package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}
	ownerStatusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerStatus", Value: 1}},
		Options: options.Index().SetName("ownerStatus_index"),
	}

	log.Println("EnsureUserIndexes: creating user indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{emailIndex, ownerStatusIndex})
	if err != nil {
		log.Println("EnsureUserIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsurePlaceIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("places").Indexes()

	ownerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}},
		Options: options.Index().SetName("owner_index"),
	}
	activeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "isActive", Value: 1}},
		Options: options.Index().SetName("isActive_index"),
	}

	log.Println("EnsurePlaceIndexes: creating place indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{ownerIndex, activeIndex})
	if err != nil {
		log.Println("EnsurePlaceIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureBookingIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("bookings").Indexes()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetName("user_index"),
	}
	placeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "place", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("place_createdAt_index"),
	}

	log.Println("EnsureBookingIndexes: creating booking indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{userIndex, placeIndex})
	if err != nil {
		log.Println("EnsureBookingIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureContactIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("contacts").Indexes()

	createdAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_index"),
	}

	log.Println("EnsureContactIndexes: creating contact indexes")
	_, err := indexes.CreateOne(ctx, createdAtIndex)
	if err != nil {
		log.Println("EnsureContactIndexes: createdAt index error:", err)
		return err
	}
	return nil
}
