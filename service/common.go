package service

import (
	"context"
	"fmt"

	apperrors "car-rental/errors"
	"car-rental/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	recentViewKey    = "listings:recent"
	topPricedViewKey = "listings:top-priced"

	recentLimit    = 8
	topPricedLimit = 10
)

var curatedViewKeys = []string{recentViewKey, topPricedViewKey}

func parseID(kind, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("malformed %s id %q: %w", kind, raw, apperrors.ErrBadRequest)
	}
	return id, nil
}

func requireIdentity(identity, email string) error {
	if identity == "" || identity != email {
		return fmt.Errorf("identity %q may not act for %q: %w", identity, email, apperrors.ErrUnauthorized)
	}
	return nil
}

// invalidateViews drops the curated views after any change that can alter
// them. A cache failure is logged and otherwise ignored; entries expire on
// their own.
func invalidateViews(ctx context.Context, cache ViewCache) {
	if err := cache.Invalidate(ctx, curatedViewKeys...); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("failed to invalidate listing views")
	}
}
