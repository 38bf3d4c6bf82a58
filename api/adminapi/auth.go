package adminapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/leedaaye/redink-ziyong/storage/model"
)

// registerLogin mounts the admin login endpoint. It is the only admin route
// reachable without a session: a correct admin password yields a signed
// session token the UI presents as a bearer token on every other call.
func registerLogin(r fiber.Router, users model.UsersStore, sessions *SessionIssuer) {
	type loginReq struct {
		Password string `json:"password"`
	}
	r.Post(
		"/login", func(c *fiber.Ctx) error {
			var req loginReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid body"))
			}
			ok, err := users.VerifyAdminPassword(req.Password)
			if err != nil {
				return serverError(c, err)
			}
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(errorBody("invalid admin password"))
			}
			tok, expiry, err := sessions.Issue()
			if err != nil {
				return serverError(c, err)
			}
			log.Info("admin logged in")
			return c.JSON(
				fiber.Map{
					"token":      tok,
					"expires_at": expiry,
				},
			)
		},
	)
}

// registerAdminPassword mounts the password-change endpoint. A wrong old
// password yields 401 without mutating anything.
func registerAdminPassword(r fiber.Router, users model.UsersStore) {
	type changeReq struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	r.Put(
		"/password", func(c *fiber.Ctx) error {
			var req changeReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid body"))
			}
			if req.NewPassword == "" {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("new password is required"))
			}
			ok, err := users.ChangeAdminPassword(req.OldPassword, req.NewPassword)
			if err != nil {
				return serverError(c, err)
			}
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(errorBody("invalid admin password"))
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}

// authMiddleware enforces a valid admin session for all admin routes mounted
// after it.
func authMiddleware(sessions *SessionIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := sessionToken(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody("missing session token"))
		}
		if err := sessions.Verify(raw); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody("invalid or expired session"))
		}
		return c.Next()
	}
}

// sessionToken extracts the bearer session token from the request.
func sessionToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
