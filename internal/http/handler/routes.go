package handler

import (
	"github.com/gofiber/fiber/v2"

	"library/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, store Pinger, books service.BookService) {
	app.Get("/swagger/*", Swagger())

	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	app.Get("/books", ListBooks(books))
	app.Post("/books", CreateBook(books))
	app.Get("/books/:id", GetBook(books))
	app.Patch("/books/:id", UpdateBook(books))
	app.Delete("/books/:id", DeleteBook(books))
}
