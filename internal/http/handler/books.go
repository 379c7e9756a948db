package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"library/internal/model"
	"library/internal/repository"
	"library/internal/service"
)

// bookListResponse is the body of GET /books.
type bookListResponse struct {
	Items []model.Book `json:"data"`
	Total int          `json:"total"`
}

// createBookRequest is the body of POST /books.
type createBookRequest struct {
	Title         string `json:"title"`
	PublishedYear string `json:"published_year"`
	Author        string `json:"author"`
}

// updateBookRequest is the body of PATCH /books/{id}. Only the title can change.
type updateBookRequest struct {
	Title *string `json:"title"`
}

// ListBooks godoc
// @Summary      List books
// @Tags         books
// @Produce      json
// @Success      200  {object}  bookListResponse
// @Failure      500  {object}  errorPayload
// @Router       /books [get]
func ListBooks(books service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := repository.Collect(books.List(c.UserContext()))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(bookListResponse{Items: items, Total: len(items)})
	}
}

// CreateBook godoc
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book  body      createBookRequest  true  "Book"
// @Success      201   {object}  model.Book
// @Failure      400   {object}  errorPayload
// @Failure      422   {object}  errorPayload
// @Router       /books [post]
func CreateBook(books service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createBookRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		b, err := books.Create(c.UserContext(), req.Title, req.PublishedYear, req.Author)
		if err != nil {
			if errors.Is(err, service.ErrInvalidID) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_AUTHOR_ID", "author must be a 24-character hex string")
			}
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

// GetBook godoc
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID (24 hex characters)"
// @Success      200  {object}  model.Book
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /books/{id} [get]
func GetBook(books service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := books.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// UpdateBook godoc
// @Summary      Rename a book
// @Tags         books
// @Accept       json
// @Param        id    path  string             true  "Book ID (24 hex characters)"
// @Param        book  body  updateBookRequest  true  "New title"
// @Success      204
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /books/{id} [patch]
func UpdateBook(books service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateBookRequest
		if err := c.BodyParser(&req); err != nil || req.Title == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "title is required")
		}
		if err := books.UpdateTitle(c.UserContext(), c.Params("id"), *req.Title); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteBook godoc
// @Summary      Delete a book
// @Tags         books
// @Param        id   path  string  true  "Book ID (24 hex characters)"
// @Success      204
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /books/{id} [delete]
func DeleteBook(books service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := books.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
