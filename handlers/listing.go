package handlers

import (
	"fmt"

	apperrors "car-rental/errors"
	"car-rental/middleware"
	"car-rental/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetCars(c *fiber.Ctx) error {
	listings, err := h.listings.List(c.UserContext(), c.Query("search"), c.Query("sort"))
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(listings)
}

func (h *Handler) GetRecentCars(c *fiber.Ctx) error {
	listings, err := h.listings.Recent(c.UserContext())
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(listings)
}

func (h *Handler) GetTopPricedCars(c *fiber.Ctx) error {
	listings, err := h.listings.TopPriced(c.UserContext())
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(listings)
}

func (h *Handler) GetCarsByOwner(c *fiber.Ctx) error {
	identity, _ := middleware.Identity(c)
	listings, err := h.listings.ByOwner(c.UserContext(), identity, c.Params("email"))
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(listings)
}

func (h *Handler) GetCarsByIDs(c *fiber.Ctx) error {
	type idList struct {
		Ids []string `json:"ids"`
	}

	body := new(idList)
	if err := c.BodyParser(body); err != nil {
		return apperrors.RaiseBadRequestError(c, fmt.Sprintf("ids must be an array of car ids: %v", err))
	}

	listings, err := h.listings.ByIDs(c.UserContext(), body.Ids)
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(listings)
}

func (h *Handler) AddCar(c *fiber.Ctx) error {
	newCar := new(model.Listing)
	if err := c.BodyParser(newCar); err != nil {
		return apperrors.RaiseBadRequestError(c, fmt.Sprintf("unacceptable car parameters: %v", err))
	}

	created, err := h.listings.Create(c.UserContext(), *newCar)
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return respond(c, fiber.StatusCreated, "car added", created)
}

func (h *Handler) GetCar(c *fiber.Ctx) error {
	listing, err := h.listings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.Raise(c, err)
	}
	return c.JSON(listing)
}

func (h *Handler) UpdateCar(c *fiber.Ctx) error {
	upd := new(model.ListingUpdate)
	if err := c.BodyParser(upd); err != nil {
		return apperrors.RaiseBadRequestError(c, fmt.Sprintf("unacceptable car parameters: %v", err))
	}

	result, err := h.listings.Update(c.UserContext(), c.Params("id"), *upd)
	if err != nil {
		return apperrors.Raise(c, err)
	}

	message := "car updated"
	if result.UpsertedId != "" {
		message = "car created"
	}
	return respond(c, fiber.StatusOK, message, result)
}

func (h *Handler) DeleteCar(c *fiber.Ctx) error {
	if err := h.listings.Delete(c.UserContext(), c.Params("id")); err != nil {
		return apperrors.Raise(c, err)
	}
	return respond(c, fiber.StatusOK, "entity deleted",
		fmt.Sprintf("car with id %v was deleted", c.Params("id")))
}
