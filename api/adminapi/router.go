package adminapi

import (
	"embed"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/leedaaye/redink-ziyong/storage/model"
)

//go:embed swagger.html openapi.yaml
var assets embed.FS

// Register mounts the admin API under the provided group: docs and login
// stay reachable without a session, everything else sits behind the session
// middleware.
func Register(r fiber.Router, users model.UsersStore, sessions *SessionIssuer) {
	r.Get(
		"/openapi.yaml", func(c *fiber.Ctx) error {
			data, err := assets.ReadFile("openapi.yaml")
			if err != nil {
				return serverError(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/yaml")
			return c.Send(data)
		},
	)
	r.Get(
		"/docs", func(c *fiber.Ctx) error {
			html, err := assets.ReadFile("swagger.html")
			if err != nil {
				return serverError(c, err)
			}
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
			return c.Send(html)
		},
	)

	registerLogin(r, users, sessions)

	r.Use(authMiddleware(sessions))

	registerAdminPassword(r, users)
	registerUsers(r, users)
}

func errorBody(msg string) fiber.Map {
	return fiber.Map{
		"success": false,
		"error":   msg,
	}
}

// serverError logs the underlying error and answers with an opaque 500.
func serverError(c *fiber.Ctx, err error) error {
	log.WithError(err).Error("admin api request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody("server error"))
}
