package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "car-rental/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	ListingsCollection = "cars"
	BookingsCollection = "bookings"
)

// Connect opens the process-wide client and pings the primary.
func Connect(ctx context.Context, connString, dbName string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to the db: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("db is not available: %w", err)
	}

	return client, client.Database(dbName), nil
}

func Disconnect(client *mongo.Client, timeout time.Duration) error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from the db: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique index on
// bookings.carId keeps a listing from ever having two bookings.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	listingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "postDate", Value: -1}}},
		{Keys: bson.D{{Key: "dailyRentalPrice", Value: -1}}},
		{Keys: bson.D{{Key: "publisher.email", Value: 1}}},
	}
	if _, err := db.Collection(ListingsCollection).Indexes().CreateMany(ctx, listingIndexes); err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}

	bookingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userEmail", Value: 1}}},
		{Keys: bson.D{{Key: "carId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(BookingsCollection).Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	return nil
}

// translate maps driver errors onto the application sentinels.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", msg, apperrors.ErrConflict)
	}
	return fmt.Errorf("%s: %v: %w", msg, err, apperrors.ErrInternal)
}
