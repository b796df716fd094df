package database

import (
	"context"
	"time"

	"car-rental/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingStore struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewBookingStore(db *mongo.Database, timeout time.Duration) *BookingStore {
	return &BookingStore{collection: db.Collection(BookingsCollection), timeout: timeout}
}

func (s *BookingStore) Insert(ctx context.Context, booking model.Booking) (model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if booking.Id.IsZero() {
		booking.Id = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, booking); err != nil {
		return model.Booking{}, translate(err, "failed to insert booking for car %v", booking.CarId.Hex())
	}
	return booking, nil
}

func (s *BookingStore) FindByID(ctx context.Context, id primitive.ObjectID) (model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var booking model.Booking
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return model.Booking{}, translate(err, "booking %v", id.Hex())
	}
	return booking, nil
}

func (s *BookingStore) FindByUser(ctx context.Context, email string) ([]model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "bookingDate", Value: -1}})
	cur, err := s.collection.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, translate(err, "failed to query bookings of %v", email)
	}

	bookings := []model.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, translate(err, "failed to decode bookings")
	}
	return bookings, nil
}

// Delete returns the number of removed bookings, which is zero when another
// request removed it first.
func (s *BookingStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, translate(err, "failed to delete booking %v", id.Hex())
	}
	return res.DeletedCount, nil
}

// UpdateDate reports matched and modified counts separately so callers can
// tell a missing booking from an unchanged date.
func (s *BookingStore) UpdateDate(ctx context.Context, id primitive.ObjectID, date time.Time) (int64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"bookingDate": date}})
	if err != nil {
		return 0, 0, translate(err, "failed to update booking %v", id.Hex())
	}
	return res.MatchedCount, res.ModifiedCount, nil
}
