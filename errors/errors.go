package errors

import (
	stderrors "errors"

	"car-rental/logger"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrUnauthorized = stderrors.New("unauthorized access")
	ErrBadRequest   = stderrors.New("bad request")
	ErrNotFound     = stderrors.New("resource not found")
	ErrConflict     = stderrors.New("conflict")
	ErrInternal     = stderrors.New("internal error")
)

func RaiseError(context *fiber.Ctx, status int, message string, data string) error {
	return context.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    data})
}

func RaisePermissionsError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusUnauthorized, "lack of permissions", data)
}

func RaiseInternalServerError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusInternalServerError, "internal error", data)
}

func RaiseBadRequestError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusBadRequest, "bad request", data)
}

func RaiseNotFoundError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusNotFound, "resource not found", data)
}

func RaiseConflictError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusConflict, "conflict", data)
}

// Raise converts err into the error envelope, choosing the status from the
// sentinel it wraps. Errors that wrap no sentinel are logged and reported as
// a bare internal error.
func Raise(context *fiber.Ctx, err error) error {
	switch {
	case stderrors.Is(err, ErrUnauthorized):
		return RaisePermissionsError(context, err.Error())
	case stderrors.Is(err, ErrBadRequest):
		return RaiseBadRequestError(context, err.Error())
	case stderrors.Is(err, ErrNotFound):
		return RaiseNotFoundError(context, err.Error())
	case stderrors.Is(err, ErrConflict):
		return RaiseConflictError(context, err.Error())
	case stderrors.Is(err, ErrInternal):
		logger.FromCtx(context).Err(err).Msg("request failed")
		return RaiseInternalServerError(context, err.Error())
	}

	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		return RaiseError(context, fiberErr.Code, fiberErr.Message, "")
	}

	logger.FromCtx(context).Err(err).Msg("unclassified request failure")
	return RaiseInternalServerError(context, "server side problem occured")
}

// Handler is a fiber.ErrorHandler that routes framework errors and recovered
// panics through Raise.
func Handler(context *fiber.Ctx, err error) error {
	return Raise(context, err)
}
