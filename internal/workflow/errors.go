package workflow

import (
	"errors"

	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrForbidden         = errors.New("not allowed to act on this resource")
	ErrInvalidTransition = errors.New("status does not allow this transition")
	ErrDuplicateRequest  = errors.New("an open pickup request already exists for this entry")
	ErrInvalidInput      = errors.New("invalid input")
)

// HTTPError maps workflow and store errors onto fiber errors. Unknown errors
// pass through and become a 500 in the app's error handler.
func HTTPError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrDuplicateRequest):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
