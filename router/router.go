package router

import (
	"car-rental/handlers"
	"car-rental/logger"
	"car-rental/middleware"
	"car-rental/token"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, h *handlers.Handler, tokens *token.Service, log *logger.Logger) {
	api := app.Group("/", middleware.RequestLogger(log), middleware.Identify(tokens))
	guard := middleware.Authorize(tokens)

	api.Get("/", handlers.GetHello)

	//Session
	api.Post("/jwt", h.IssueToken)
	api.Get("/logout", h.Logout)

	//Listings
	api.Get("/cars", h.GetCars)
	api.Get("/cars/recent", h.GetRecentCars)
	api.Get("/cars/topPrice", h.GetTopPricedCars)
	api.Get("/cars/:email", guard, h.GetCarsByOwner)
	api.Delete("/cars/:id", h.DeleteCar)
	api.Post("/cars-by-ids", h.GetCarsByIDs)
	api.Post("/add-car", h.AddCar)
	api.Get("/car/:id", h.GetCar)
	api.Put("/update-car/:id", h.UpdateCar)

	//Bookings
	api.Post("/book-car", guard, h.BookCar)
	api.Delete("/cancel-booking/:id", guard, h.CancelBooking)
	api.Get("/my-bookings/:email", guard, h.GetMyBookings)
	api.Put("/update-booking/:id", guard, h.UpdateBooking)
}
