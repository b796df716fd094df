package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "car-rental/errors"
	"car-rental/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListingStore struct {
	collection *mongo.Collection
	timeout    time.Duration
	now        func() time.Time
}

func NewListingStore(db *mongo.Database, timeout time.Duration) *ListingStore {
	return &ListingStore{
		collection: db.Collection(ListingsCollection),
		timeout:    timeout,
		now:        time.Now,
	}
}

func (s *ListingStore) Find(ctx context.Context, f model.ListingFilter) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter, opts := listingQuery(f)
	cur, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "failed to query listings")
	}

	listings := []model.Listing{}
	if err := cur.All(ctx, &listings); err != nil {
		return nil, translate(err, "failed to decode listings")
	}
	return listings, nil
}

func (s *ListingStore) FindByID(ctx context.Context, id primitive.ObjectID) (model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var listing model.Listing
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		return model.Listing{}, translate(err, "listing %v", id.Hex())
	}
	return listing, nil
}

func (s *ListingStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "failed to query listings by ids")
	}

	listings := []model.Listing{}
	if err := cur.All(ctx, &listings); err != nil {
		return nil, translate(err, "failed to decode listings")
	}
	return listings, nil
}

func (s *ListingStore) Insert(ctx context.Context, listing model.Listing) (model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if listing.Id.IsZero() {
		listing.Id = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, listing); err != nil {
		return model.Listing{}, translate(err, "failed to insert listing")
	}
	return listing, nil
}

// Upsert applies the detail fields of upd to listing id, creating the listing
// when it does not exist. State fields are only written on insert.
func (s *ListingStore) Upsert(ctx context.Context, id primitive.ObjectID, upd model.ListingUpdate) (model.UpsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{
		"$set": updateFields(upd),
		"$setOnInsert": bson.M{
			"postDate":     s.now(),
			"availability": model.Available,
			"booked":       false,
			"bookingCount": 0,
		},
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return model.UpsertResult{}, translate(err, "failed to update listing %v", id.Hex())
	}

	result := model.UpsertResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
	if upserted, ok := res.UpsertedID.(primitive.ObjectID); ok {
		result.UpsertedId = upserted.Hex()
	}
	return result, nil
}

// Delete removes an unbooked listing. A booked listing is left in place and
// reported as a conflict.
func (s *ListingStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, unbookedFilter(id))
	if err != nil {
		return translate(err, "failed to delete listing %v", id.Hex())
	}
	if res.DeletedCount > 0 {
		return nil
	}

	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("listing %v is booked and cannot be deleted: %w", id.Hex(), apperrors.ErrConflict)
}

// Reserve flips an available listing to booked in a single conditional
// update and returns the listing as it is after the change.
func (s *ListingStore) Reserve(ctx context.Context, id primitive.ObjectID) (model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter, update := reserveQuery(id)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing model.Listing
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return model.Listing{}, translate(err, "failed to reserve listing %v", id.Hex())
	}

	if _, err := s.FindByID(ctx, id); err != nil {
		return model.Listing{}, err
	}
	return model.Listing{}, fmt.Errorf("car %v is not available for booking: %w", id.Hex(), apperrors.ErrConflict)
}

// Release makes a listing available again. bookingCount is a usage counter
// and is left alone.
func (s *ListingStore) Release(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter, update := releaseQuery(id)
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "failed to release listing %v", id.Hex())
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// UndoReserve reverts a Reserve whose booking could not be stored, including
// its bookingCount increment.
func (s *ListingStore) UndoReserve(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter, update := undoReserveQuery(id)
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "failed to undo reservation of listing %v", id.Hex())
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reserved listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// unbookedFilter matches listing id only while no booking holds it.
func unbookedFilter(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "booked": bson.M{"$ne": true}}
}

// reserveQuery matches listing id only while it is available, so at most
// one of several concurrent reservations can apply.
func reserveQuery(id primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"_id": id, "availability": model.Available}
	update := bson.M{
		"$set": bson.M{"availability": model.Unavailable, "booked": true},
		"$inc": bson.M{"bookingCount": 1},
	}
	return filter, update
}

func releaseQuery(id primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"availability": model.Available, "booked": false}}
	return filter, update
}

func undoReserveQuery(id primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"_id": id, "booked": true}
	update := bson.M{
		"$set": bson.M{"availability": model.Available, "booked": false},
		"$inc": bson.M{"bookingCount": -1},
	}
	return filter, update
}

func listingQuery(f model.ListingFilter) (bson.M, *options.FindOptions) {
	filter := bson.M{}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"carModel": pattern},
			bson.M{"location": pattern},
		}
	}
	if f.OwnerEmail != "" {
		filter["publisher.email"] = f.OwnerEmail
	}

	opts := options.Find()
	if sort := sortSpec(f.Sort); sort != nil {
		opts.SetSort(sort)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return filter, opts
}

func sortSpec(order model.SortOrder) bson.D {
	switch order {
	case model.SortPriceLowToHigh:
		return bson.D{{Key: "dailyRentalPrice", Value: 1}}
	case model.SortPriceHighToLow:
		return bson.D{{Key: "dailyRentalPrice", Value: -1}}
	case model.SortModelAZ:
		return bson.D{{Key: "carModel", Value: 1}}
	case model.SortModelZA:
		return bson.D{{Key: "carModel", Value: -1}}
	case model.SortRecent:
		return bson.D{{Key: "postDate", Value: -1}}
	}
	return nil
}

func updateFields(upd model.ListingUpdate) bson.M {
	set := bson.M{}
	if upd.CarModel != nil {
		set["carModel"] = strings.TrimSpace(*upd.CarModel)
	}
	if upd.Location != nil {
		set["location"] = strings.TrimSpace(*upd.Location)
	}
	if upd.DailyRentalPrice != nil {
		set["dailyRentalPrice"] = *upd.DailyRentalPrice
	}
	if upd.Publisher != nil {
		set["publisher"] = *upd.Publisher
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.ImageUrl != nil {
		set["imageUrl"] = *upd.ImageUrl
	}
	if upd.RegistrationNumber != nil {
		set["registrationNumber"] = *upd.RegistrationNumber
	}
	if upd.Features != nil {
		set["features"] = *upd.Features
	}
	return set
}
