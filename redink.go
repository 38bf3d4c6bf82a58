// Package redink implements the RedInk authentication and user-management
// backend: a bearer-token validation endpoint for API callers plus an admin
// API for managing the API-access users behind it.
package redink

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/leedaaye/redink-ziyong/api/adminapi"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

// AccessLogWriter is the destination of the http access log.
// When nil the middleware's default (stdout) is used.
var AccessLogWriter io.Writer

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

func handleError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return ctx.Status(code).JSON(
		fiber.Map{
			"success": false,
			"error":   err.Error(),
		},
	)
}

// RedInk is the http server serving the token validation endpoint and the
// admin API on top of a model.UsersStore backend.
type RedInk struct {
	server     *fiber.App
	serverConf ServerConf
	users      model.UsersStore
}

// New creates a new RedInk server for the passed backend. The validation
// endpoint is mounted under /api/auth/validate; the admin API is mounted
// under /api/admin unless sessions is nil.
func New(serverConf ServerConf, users model.UsersStore, sessions *adminapi.SessionIssuer) *RedInk {
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = tps
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	server := fiber.New(FiberServerConfig)
	server.Use(recover.New())
	server.Use(compress.New())
	accessConf := logger.ConfigDefault
	if AccessLogWriter != nil {
		accessConf.Output = AccessLogWriter
	}
	server.Use(logger.New(accessConf))
	server.Use(requestid.New())

	r := &RedInk{
		server:     server,
		serverConf: serverConf,
		users:      users,
	}
	r.addValidateEndpoint()
	if sessions != nil {
		adminapi.Register(server.Group("/api/admin"), users, sessions)
	}
	return r
}

// addValidateEndpoint mounts GET|POST /api/auth/validate. The token comes
// from either an `Authorization: Bearer` header or an `X-Access-Token`
// header; an empty token is rejected before the store is ever touched.
func (r *RedInk) addValidateEndpoint() {
	handler := func(ctx *fiber.Ctx) error {
		tok := extractBearerToken(ctx)
		if tok == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(
				fiber.Map{
					"success": false,
					"error":   "no access token provided",
				},
			)
		}
		identity, err := r.users.ValidateToken(tok)
		if err != nil {
			log.WithError(err).Error("token validation failed")
			return ctx.Status(fiber.StatusInternalServerError).JSON(
				fiber.Map{
					"success": false,
					"error":   "server error",
				},
			)
		}
		if identity == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(
				fiber.Map{
					"success": false,
					"error":   "access token invalid or disabled",
				},
			)
		}
		return ctx.JSON(
			fiber.Map{
				"success": true,
				"user":    identity,
			},
		)
	}
	r.server.Get("/api/auth/validate", handler)
	r.server.Post("/api/auth/validate", handler)
}

// extractBearerToken returns the bearer token of the request, preferring the
// Authorization header over X-Access-Token.
func extractBearerToken(ctx *fiber.Ctx) string {
	auth := ctx.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ctx.Get("X-Access-Token")
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (r *RedInk) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(r.server)
}

// Listen starts an http server at the specific address for serving all the
// necessary endpoints
func (r *RedInk) Listen(addr string) error {
	return r.server.Listen(addr)
}

// Start serves the app according to the ServerConf, handling TLS and the
// optional http-to-https redirect.
func (r *RedInk) Start() {
	conf := r.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		log.WithError(r.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))).Fatal()
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	time.Sleep(time.Millisecond) // This is just for a more pretty output with the tls header printed after the http one
	log.Info("TLS enabled, starting https server on port 443")
	log.WithError(r.server.ListenTLS(":443", conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
