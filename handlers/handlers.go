package handlers

import (
	"context"
	"time"

	"car-rental/model"

	"github.com/gofiber/fiber/v2"
)

type ListingService interface {
	List(ctx context.Context, search, sort string) ([]model.Listing, error)
	Recent(ctx context.Context) ([]model.Listing, error)
	TopPriced(ctx context.Context) ([]model.Listing, error)
	ByOwner(ctx context.Context, identity, email string) ([]model.Listing, error)
	ByIDs(ctx context.Context, ids []string) ([]model.Listing, error)
	Create(ctx context.Context, listing model.Listing) (model.Listing, error)
	Get(ctx context.Context, id string) (model.Listing, error)
	Update(ctx context.Context, id string, upd model.ListingUpdate) (model.UpsertResult, error)
	Delete(ctx context.Context, id string) error
}

type BookingService interface {
	Book(ctx context.Context, identity string, req model.BookingRequest) (model.Booking, error)
	Cancel(ctx context.Context, identity, bookingID string) error
	ListByUser(ctx context.Context, identity, email string) ([]model.Booking, error)
	UpdateDate(ctx context.Context, identity, bookingID string, date time.Time) (bool, error)
}

type TokenIssuer interface {
	Issue(email string) (string, time.Time, error)
}

type Handler struct {
	listings ListingService
	bookings BookingService
	tokens   TokenIssuer
	// secureCookies switches the session cookie to Secure and SameSite=None
	// for production deployments.
	secureCookies bool
}

func New(listings ListingService, bookings BookingService, tokens TokenIssuer, secureCookies bool) *Handler {
	return &Handler{
		listings:      listings,
		bookings:      bookings,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

func GetHello(c *fiber.Ctx) error {
	return c.SendString("car rental server is ready")
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data})
}
