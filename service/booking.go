package service

import (
	"context"
	"fmt"
	"time"

	apperrors "car-rental/errors"
	"car-rental/logger"
	"car-rental/model"
)

// BookingService moves a listing and its booking between states together:
// a listing is unavailable exactly while one booking references it.
type BookingService struct {
	listings ListingStore
	bookings BookingStore
	cache    ViewCache
	now      func() time.Time
}

func NewBookingService(listings ListingStore, bookings BookingStore, cache ViewCache) *BookingService {
	return &BookingService{listings: listings, bookings: bookings, cache: cache, now: time.Now}
}

// Book reserves the requested car for the caller and records the booking
// with the car's current price and model.
func (s *BookingService) Book(ctx context.Context, identity string, req model.BookingRequest) (model.Booking, error) {
	if err := requireIdentity(identity, req.UserEmail); err != nil {
		return model.Booking{}, err
	}
	carID, err := parseID("car", req.CarId)
	if err != nil {
		return model.Booking{}, err
	}

	listing, err := s.listings.FindByID(ctx, carID)
	if err != nil {
		return model.Booking{}, err
	}
	if listing.Availability == model.Unavailable {
		return model.Booking{}, fmt.Errorf("car %v is not available for booking: %w", carID.Hex(), apperrors.ErrConflict)
	}

	// The availability check above is only a fast path; Reserve repeats it
	// atomically and is what decides between concurrent bookers.
	reserved, err := s.listings.Reserve(ctx, carID)
	if err != nil {
		return model.Booking{}, err
	}

	bookingDate := req.BookingDate
	if bookingDate.IsZero() {
		bookingDate = s.now()
	}
	booking := model.Booking{
		CarId:       carID,
		UserEmail:   req.UserEmail,
		BookingDate: bookingDate,
		RentFee:     reserved.DailyRentalPrice,
		CarModel:    reserved.CarModel,
		Location:    reserved.Location,
		ImageUrl:    reserved.ImageUrl,
	}

	log := logger.FromContext(ctx)
	created, err := s.bookings.Insert(ctx, booking)
	if err != nil {
		if undoErr := s.listings.UndoReserve(context.WithoutCancel(ctx), carID); undoErr != nil {
			log.Error().Err(undoErr).Str("car_id", carID.Hex()).
				Msg("car left reserved without a booking")
		}
		return model.Booking{}, fmt.Errorf("failed to book car %v: %v: %w", carID.Hex(), err, apperrors.ErrInternal)
	}
	invalidateViews(ctx, s.cache)

	log.Info().Str("car_id", carID.Hex()).Str("booking_id", created.Id.Hex()).Msg("car booked")
	return created, nil
}

// Cancel removes the caller's booking and makes the car available again.
func (s *BookingService) Cancel(ctx context.Context, identity, bookingID string) error {
	id, err := parseID("booking", bookingID)
	if err != nil {
		return err
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireIdentity(identity, booking.UserEmail); err != nil {
		return err
	}
	if _, err := s.listings.FindByID(ctx, booking.CarId); err != nil {
		return err
	}

	// The booking goes first: a second cancel of the same booking then
	// fails here instead of releasing a car that was booked again meanwhile.
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("failed to cancel booking %v: %w", id.Hex(), apperrors.ErrInternal)
	}

	log := logger.FromContext(ctx)
	if err := s.listings.Release(context.WithoutCancel(ctx), booking.CarId); err != nil {
		// Put the booking back so the pair stays consistent and the cancel
		// can be retried.
		if _, restoreErr := s.bookings.Insert(context.WithoutCancel(ctx), booking); restoreErr != nil {
			log.Error().Err(restoreErr).Str("car_id", booking.CarId.Hex()).Str("booking_id", id.Hex()).
				Msg("car left reserved without a booking")
		}
		return fmt.Errorf("failed to cancel booking %v: car %v not released: %v: %w",
			id.Hex(), booking.CarId.Hex(), err, apperrors.ErrInternal)
	}
	invalidateViews(ctx, s.cache)

	log.Info().Str("car_id", booking.CarId.Hex()).Str("booking_id", id.Hex()).Msg("booking cancelled")
	return nil
}

// ListByUser returns the bookings of email. A user without bookings gets
// ErrNotFound rather than an empty list.
func (s *BookingService) ListByUser(ctx context.Context, identity, email string) ([]model.Booking, error) {
	if err := requireIdentity(identity, email); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("no bookings for %s: %w", email, apperrors.ErrNotFound)
	}
	return bookings, nil
}

// UpdateDate moves the caller's booking to date. It reports false when the
// booking already had that date.
func (s *BookingService) UpdateDate(ctx context.Context, identity, bookingID string, date time.Time) (bool, error) {
	if date.IsZero() {
		return false, fmt.Errorf("bookingDate is required: %w", apperrors.ErrBadRequest)
	}
	id, err := parseID("booking", bookingID)
	if err != nil {
		return false, err
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if err := requireIdentity(identity, booking.UserEmail); err != nil {
		return false, err
	}

	matched, modified, err := s.bookings.UpdateDate(ctx, id, date)
	if err != nil {
		return false, err
	}
	if matched == 0 {
		return false, fmt.Errorf("booking %v: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return modified > 0, nil
}
