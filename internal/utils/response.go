package utils

import "github.com/gofiber/fiber/v2"

// Respond writes data as JSON under the given status. Every handler
// answer goes through here so the wire shape stays uniform.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success answers 200 with the payload.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// BadRequest answers 400 with an error message.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, errorBody(message))
}

// Unauthorized answers 401 with an error message.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, errorBody(message))
}

// Forbidden answers 403 with an error message.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, errorBody(message))
}

// NotFound answers 404 with an error message.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, errorBody(message))
}

// InternalError answers 500 with an error message.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, errorBody(message))
}

func errorBody(message string) fiber.Map {
	return fiber.Map{"error": message}
}
