package middlewares

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// OperatorAuth guards the engine's operator surface with the shared key
// from the environment.
func OperatorAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Operator-Key")
		expected := os.Getenv("OPERATOR_KEY")

		if expected == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "INVALID_OPERATOR_KEY",
			})
		}

		return c.Next()
	}
}
