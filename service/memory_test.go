package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "car-rental/errors"
	"car-rental/model"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memDB is an in-memory stand-in for the two Mongo collections. Every method
// holds the lock for its whole duration, which gives the same per-document
// atomicity the Mongo stores rely on.
type memDB struct {
	mu       sync.Mutex
	listings map[primitive.ObjectID]model.Listing
	bookings map[primitive.ObjectID]model.Booking

	insertBookingErr  error
	releaseErr        error
	deleteReportsZero bool
}

func newMemDB() *memDB {
	return &memDB{
		listings: map[primitive.ObjectID]model.Listing{},
		bookings: map[primitive.ObjectID]model.Booking{},
	}
}

type memListings struct{ db *memDB }

type memBookings struct{ db *memDB }

func (m memListings) Find(_ context.Context, f model.ListingFilter) ([]model.Listing, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := []model.Listing{}
	for _, l := range m.db.listings {
		if f.OwnerEmail != "" && l.Publisher.Email != f.OwnerEmail {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.CarModel), needle) &&
			!strings.Contains(strings.ToLower(l.Location), needle) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch f.Sort {
		case model.SortPriceLowToHigh:
			return out[i].DailyRentalPrice < out[j].DailyRentalPrice
		case model.SortPriceHighToLow:
			return out[i].DailyRentalPrice > out[j].DailyRentalPrice
		case model.SortModelAZ:
			return out[i].CarModel < out[j].CarModel
		case model.SortModelZA:
			return out[i].CarModel > out[j].CarModel
		case model.SortRecent:
			return out[i].PostDate.After(out[j].PostDate)
		}
		return out[i].Id.Hex() < out[j].Id.Hex()
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m memListings) FindByID(_ context.Context, id primitive.ObjectID) (model.Listing, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	l, ok := m.db.listings[id]
	if !ok {
		return model.Listing{}, fmt.Errorf("listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return l, nil
}

func (m memListings) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Listing, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	out := []model.Listing{}
	for _, id := range ids {
		if l, ok := m.db.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m memListings) Insert(_ context.Context, l model.Listing) (model.Listing, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if l.Id.IsZero() {
		l.Id = primitive.NewObjectID()
	}
	m.db.listings[l.Id] = l
	return l, nil
}

func (m memListings) Upsert(_ context.Context, id primitive.ObjectID, upd model.ListingUpdate) (model.UpsertResult, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	l, exists := m.db.listings[id]
	if !exists {
		l = model.Listing{Id: id, PostDate: time.Now(), Availability: model.Available}
	}
	before := fmt.Sprint(l)
	if upd.CarModel != nil {
		l.CarModel = *upd.CarModel
	}
	if upd.Location != nil {
		l.Location = *upd.Location
	}
	if upd.DailyRentalPrice != nil {
		l.DailyRentalPrice = *upd.DailyRentalPrice
	}
	if upd.Publisher != nil {
		l.Publisher = *upd.Publisher
	}
	m.db.listings[id] = l

	if !exists {
		return model.UpsertResult{UpsertedId: id.Hex()}, nil
	}
	res := model.UpsertResult{Matched: 1}
	if fmt.Sprint(l) != before {
		res.Modified = 1
	}
	return res, nil
}

func (m memListings) Delete(_ context.Context, id primitive.ObjectID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	l, ok := m.db.listings[id]
	if !ok {
		return fmt.Errorf("listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if l.Booked {
		return fmt.Errorf("listing %v is booked: %w", id.Hex(), apperrors.ErrConflict)
	}
	delete(m.db.listings, id)
	return nil
}

func (m memListings) Reserve(_ context.Context, id primitive.ObjectID) (model.Listing, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	l, ok := m.db.listings[id]
	if !ok {
		return model.Listing{}, fmt.Errorf("listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if l.Availability != model.Available {
		return model.Listing{}, fmt.Errorf("car %v is not available for booking: %w", id.Hex(), apperrors.ErrConflict)
	}
	l.Availability = model.Unavailable
	l.Booked = true
	l.BookingCount++
	m.db.listings[id] = l
	return l, nil
}

func (m memListings) Release(_ context.Context, id primitive.ObjectID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.releaseErr != nil {
		return m.db.releaseErr
	}
	l, ok := m.db.listings[id]
	if !ok {
		return fmt.Errorf("listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	l.Availability = model.Available
	l.Booked = false
	m.db.listings[id] = l
	return nil
}

func (m memListings) UndoReserve(_ context.Context, id primitive.ObjectID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	l, ok := m.db.listings[id]
	if !ok || !l.Booked {
		return fmt.Errorf("reserved listing %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	l.Availability = model.Available
	l.Booked = false
	l.BookingCount--
	m.db.listings[id] = l
	return nil
}

func (m memBookings) Insert(_ context.Context, b model.Booking) (model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.insertBookingErr != nil {
		return model.Booking{}, m.db.insertBookingErr
	}
	for _, existing := range m.db.bookings {
		if existing.CarId == b.CarId {
			return model.Booking{}, fmt.Errorf("duplicate booking for %v: %w", b.CarId.Hex(), apperrors.ErrConflict)
		}
	}
	if b.Id.IsZero() {
		b.Id = primitive.NewObjectID()
	}
	m.db.bookings[b.Id] = b
	return b, nil
}

func (m memBookings) FindByID(_ context.Context, id primitive.ObjectID) (model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	b, ok := m.db.bookings[id]
	if !ok {
		return model.Booking{}, fmt.Errorf("booking %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return b, nil
}

func (m memBookings) FindByUser(_ context.Context, email string) ([]model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	out := []model.Booking{}
	for _, b := range m.db.bookings {
		if b.UserEmail == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memBookings) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.deleteReportsZero {
		return 0, nil
	}
	if _, ok := m.db.bookings[id]; !ok {
		return 0, nil
	}
	delete(m.db.bookings, id)
	return 1, nil
}

func (m memBookings) UpdateDate(_ context.Context, id primitive.ObjectID, date time.Time) (int64, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	b, ok := m.db.bookings[id]
	if !ok {
		return 0, 0, nil
	}
	if b.BookingDate.Equal(date) {
		return 1, 0, nil
	}
	b.BookingDate = date
	m.db.bookings[id] = b
	return 1, 1, nil
}

// assertBookingInvariant checks that every listing is unavailable and booked
// exactly when one booking references it.
func assertBookingInvariant(t *testing.T, db *memDB) {
	t.Helper()
	db.mu.Lock()
	defer db.mu.Unlock()

	refs := map[primitive.ObjectID]int{}
	for _, b := range db.bookings {
		refs[b.CarId]++
	}
	for id, l := range db.listings {
		locked := l.Availability == model.Unavailable && l.Booked
		assert.Equalf(t, locked, refs[id] == 1, "listing %v: locked=%v bookings=%d", id.Hex(), locked, refs[id])
		assert.LessOrEqualf(t, refs[id], 1, "listing %v has %d bookings", id.Hex(), refs[id])
	}
}
