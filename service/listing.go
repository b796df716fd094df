package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "car-rental/errors"
	"car-rental/logger"
	"car-rental/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingService struct {
	store ListingStore
	cache ViewCache
	now   func() time.Time
}

func NewListingService(store ListingStore, cache ViewCache) *ListingService {
	return &ListingService{store: store, cache: cache, now: time.Now}
}

// List returns every listing whose model or location contains search,
// ignoring case, in the requested order.
func (s *ListingService) List(ctx context.Context, search, sort string) ([]model.Listing, error) {
	order, err := model.ParseSortOrder(sort)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrBadRequest)
	}
	return s.store.Find(ctx, model.ListingFilter{Search: search, Sort: order})
}

func (s *ListingService) Recent(ctx context.Context) ([]model.Listing, error) {
	return s.curated(ctx, recentViewKey, model.ListingFilter{Sort: model.SortRecent, Limit: recentLimit})
}

func (s *ListingService) TopPriced(ctx context.Context) ([]model.Listing, error) {
	return s.curated(ctx, topPricedViewKey, model.ListingFilter{Sort: model.SortPriceHighToLow, Limit: topPricedLimit})
}

func (s *ListingService) curated(ctx context.Context, key string, f model.ListingFilter) ([]model.Listing, error) {
	log := logger.FromContext(ctx)

	var cached []model.Listing
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("view", key).Msg("listing view cache unavailable")
	}
	if hit {
		return cached, nil
	}

	listings, err := s.store.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, listings); err != nil {
		log.Warn().Err(err).Str("view", key).Msg("failed to cache listing view")
	}
	return listings, nil
}

// ByOwner lists the cars published by email. Only that user may ask.
func (s *ListingService) ByOwner(ctx context.Context, identity, email string) ([]model.Listing, error) {
	if err := requireIdentity(identity, email); err != nil {
		return nil, err
	}
	return s.store.Find(ctx, model.ListingFilter{OwnerEmail: email, Sort: model.SortRecent})
}

// ByIDs fetches a batch of listings. A nil slice means the id list was
// missing from the request.
func (s *ListingService) ByIDs(ctx context.Context, ids []string) ([]model.Listing, error) {
	if ids == nil {
		return nil, fmt.Errorf("id list is missing: %w", apperrors.ErrBadRequest)
	}
	if len(ids) == 0 {
		return []model.Listing{}, nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, raw := range ids {
		id, err := parseID("car", raw)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, id)
	}
	return s.store.FindByIDs(ctx, objectIDs)
}

// Create stores a new listing. Every new listing starts available with no
// bookings, whatever the request says.
func (s *ListingService) Create(ctx context.Context, listing model.Listing) (model.Listing, error) {
	listing.CarModel = strings.TrimSpace(listing.CarModel)
	listing.Location = strings.TrimSpace(listing.Location)
	listing.Publisher.Email = strings.TrimSpace(listing.Publisher.Email)
	if err := validateListing(listing); err != nil {
		return model.Listing{}, err
	}

	listing.Id = primitive.NilObjectID
	listing.PostDate = s.now()
	listing.Availability = model.Available
	listing.Booked = false
	listing.BookingCount = 0

	created, err := s.store.Insert(ctx, listing)
	if err != nil {
		return model.Listing{}, err
	}
	invalidateViews(ctx, s.cache)

	logger.FromContext(ctx).Info().Str("car_id", created.Id.Hex()).Msg("listing created")
	return created, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (model.Listing, error) {
	carID, err := parseID("car", id)
	if err != nil {
		return model.Listing{}, err
	}
	return s.store.FindByID(ctx, carID)
}

// Update edits a listing with upsert semantics: an id that does not exist
// yet is created from the given fields.
func (s *ListingService) Update(ctx context.Context, id string, upd model.ListingUpdate) (model.UpsertResult, error) {
	carID, err := parseID("car", id)
	if err != nil {
		return model.UpsertResult{}, err
	}
	if err := validateUpdate(upd); err != nil {
		return model.UpsertResult{}, err
	}

	result, err := s.store.Upsert(ctx, carID, upd)
	if err != nil {
		return model.UpsertResult{}, err
	}
	invalidateViews(ctx, s.cache)
	return result, nil
}

func (s *ListingService) Delete(ctx context.Context, id string) error {
	carID, err := parseID("car", id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, carID); err != nil {
		return err
	}
	invalidateViews(ctx, s.cache)

	logger.FromContext(ctx).Info().Str("car_id", carID.Hex()).Msg("listing deleted")
	return nil
}

func validateListing(l model.Listing) error {
	switch {
	case l.CarModel == "":
		return fmt.Errorf("carModel is required: %w", apperrors.ErrBadRequest)
	case l.Location == "":
		return fmt.Errorf("location is required: %w", apperrors.ErrBadRequest)
	case l.DailyRentalPrice <= 0:
		return fmt.Errorf("dailyRentalPrice must be positive: %w", apperrors.ErrBadRequest)
	case l.Publisher.Email == "":
		return fmt.Errorf("publisher email is required: %w", apperrors.ErrBadRequest)
	}
	return nil
}

func validateUpdate(upd model.ListingUpdate) error {
	if upd == (model.ListingUpdate{}) {
		return fmt.Errorf("nothing to update: %w", apperrors.ErrBadRequest)
	}
	if upd.CarModel != nil && strings.TrimSpace(*upd.CarModel) == "" {
		return fmt.Errorf("carModel cannot be empty: %w", apperrors.ErrBadRequest)
	}
	if upd.Location != nil && strings.TrimSpace(*upd.Location) == "" {
		return fmt.Errorf("location cannot be empty: %w", apperrors.ErrBadRequest)
	}
	if upd.DailyRentalPrice != nil && *upd.DailyRentalPrice <= 0 {
		return fmt.Errorf("dailyRentalPrice must be positive: %w", apperrors.ErrBadRequest)
	}
	if upd.Publisher != nil && strings.TrimSpace(upd.Publisher.Email) == "" {
		return fmt.Errorf("publisher email cannot be empty: %w", apperrors.ErrBadRequest)
	}
	return nil
}
