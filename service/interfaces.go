// Package service holds the listing repository and the booking orchestrator.
// Both work against the store interfaces below; the Mongo implementations
// live in package database.
package service

import (
	"context"
	"time"

	"car-rental/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingStore interface {
	Find(ctx context.Context, f model.ListingFilter) ([]model.Listing, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (model.Listing, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Listing, error)
	Insert(ctx context.Context, listing model.Listing) (model.Listing, error)
	Upsert(ctx context.Context, id primitive.ObjectID, upd model.ListingUpdate) (model.UpsertResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Reserve must check availability and mark the listing booked as one
	// atomic step, returning ErrConflict when the listing is not available.
	Reserve(ctx context.Context, id primitive.ObjectID) (model.Listing, error)
	Release(ctx context.Context, id primitive.ObjectID) error
	UndoReserve(ctx context.Context, id primitive.ObjectID) error
}

type BookingStore interface {
	Insert(ctx context.Context, booking model.Booking) (model.Booking, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (model.Booking, error)
	FindByUser(ctx context.Context, email string) ([]model.Booking, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	UpdateDate(ctx context.Context, id primitive.ObjectID, date time.Time) (matched int64, modified int64, err error)
}

// ViewCache holds the curated listing views.
type ViewCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}
