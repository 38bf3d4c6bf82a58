package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leedaaye/redink-ziyong/storage/model"
)

// registerUsers wires the user CRUD handlers on top of a UsersStore.
// Listings return summaries without tokens; the full record including the
// plaintext token is only returned on creation and from the by-id lookup.
func registerUsers(r fiber.Router, users model.UsersStore) {
	g := r.Group("/users")

	g.Get("/", func(c *fiber.Ctx) error {
		list, err := users.List()
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(list)
	})

	type createReq struct {
		Username string `json:"username"`
	}
	g.Post("/", func(c *fiber.Ctx) error {
		var req createReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid body"))
		}
		if req.Username == "" {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody("username is required"))
		}
		u, err := users.Create(req.Username)
		if err != nil {
			if _, ok := err.(model.AlreadyExistsError); ok {
				return c.Status(fiber.StatusConflict).JSON(errorBody("user already exists"))
			}
			return serverError(c, err)
		}
		// The one canonical moment the plaintext token is surfaced.
		return c.Status(fiber.StatusCreated).JSON(u)
	})

	g.Get("/:id", func(c *fiber.Ctx) error {
		u, err := users.GetByID(c.Params("id"))
		if err != nil {
			return serverError(c, err)
		}
		if u == nil {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("user not found"))
		}
		return c.JSON(u)
	})

	g.Post("/:id/token", func(c *fiber.Ctx) error {
		tok, ok, err := users.RegenerateToken(c.Params("id"))
		if err != nil {
			return serverError(c, err)
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("user not found"))
		}
		return c.JSON(fiber.Map{"access_token": tok})
	})

	g.Post("/:id/toggle", func(c *fiber.Ctx) error {
		enabled, ok, err := users.Toggle(c.Params("id"))
		if err != nil {
			return serverError(c, err)
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("user not found"))
		}
		return c.JSON(fiber.Map{"enabled": enabled})
	})

	g.Delete("/:id", func(c *fiber.Ctx) error {
		deleted, err := users.Delete(c.Params("id"))
		if err != nil {
			return serverError(c, err)
		}
		if !deleted {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("user not found"))
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
