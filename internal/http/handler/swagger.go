package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"library/docs"
)

// Swagger serves the Swagger UI, pointing doc.json at the host and scheme the client used.
func Swagger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
