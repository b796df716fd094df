package handlers

import (
	"fmt"
	"time"

	apperrors "car-rental/errors"
	"car-rental/middleware"
	"car-rental/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) BookCar(c *fiber.Ctx) error {
	req := new(model.BookingRequest)
	if err := c.BodyParser(req); err != nil {
		return apperrors.RaiseBadRequestError(c, fmt.Sprintf("incorrect input for booking parameters: %v", err))
	}

	identity, _ := middleware.Identity(c)
	booking, err := h.bookings.Book(c.UserContext(), identity, *req)
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return respond(c, fiber.StatusCreated, "car booked", booking)
}

func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	identity, _ := middleware.Identity(c)
	if err := h.bookings.Cancel(c.UserContext(), identity, c.Params("id")); err != nil {
		return apperrors.Raise(c, err)
	}
	return respond(c, fiber.StatusOK, "booking cancelled",
		fmt.Sprintf("booking with id %v was cancelled", c.Params("id")))
}

func (h *Handler) GetMyBookings(c *fiber.Ctx) error {
	identity, _ := middleware.Identity(c)
	bookings, err := h.bookings.ListByUser(c.UserContext(), identity, c.Params("email"))
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(bookings)
}

func (h *Handler) UpdateBooking(c *fiber.Ctx) error {
	type dateUpdate struct {
		BookingDate time.Time `json:"bookingDate"`
	}

	body := new(dateUpdate)
	if err := c.BodyParser(body); err != nil {
		return apperrors.RaiseBadRequestError(c, fmt.Sprintf("incorrect input for booking parameters: %v", err))
	}

	identity, _ := middleware.Identity(c)
	changed, err := h.bookings.UpdateDate(c.UserContext(), identity, c.Params("id"), body.BookingDate)
	if err != nil {
		return apperrors.Raise(c, err)
	}

	message := "booking date updated"
	if !changed {
		message = "booking date unchanged"
	}
	return respond(c, fiber.StatusOK, message, fiber.Map{"modified": changed})
}
