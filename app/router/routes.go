// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/app/handlers"
	"github.com/amirphl/notification-hub/app/middleware"
	"github.com/amirphl/notification-hub/config"
	"github.com/amirphl/notification-hub/docs"
	"github.com/amirphl/notification-hub/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const healthPath = "/api/v1/health"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app                 *fiber.App
	cfg                 *config.ProductionConfig
	accessLog           io.Writer
	notificationHandler handlers.NotificationHandlerInterface
	draftHandler        handlers.DraftHandlerInterface
	sessionMiddleware   *middleware.SessionMiddleware
}

// NewFiberRouter creates a new Fiber router. Access logs go to accessLog, or stdout when nil.
func NewFiberRouter(
	cfg *config.ProductionConfig,
	accessLog io.Writer,
	notificationHandler handlers.NotificationHandlerInterface,
	draftHandler handlers.DraftHandlerInterface,
	sessionMiddleware *middleware.SessionMiddleware,
) Router {
	if accessLog == nil {
		accessLog = os.Stdout
	}

	appConfig := fiber.Config{
		AppName:      "Notification Hub API",
		ServerHeader: "Notification-Hub",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	}
	if len(cfg.Server.TrustedProxies) > 0 {
		appConfig.TrustProxy = true
		appConfig.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: cfg.Server.TrustedProxies}
		appConfig.ProxyHeader = cfg.Server.ProxyHeader
	}

	return &FiberRouter{
		app:                 fiber.New(appConfig),
		cfg:                 cfg,
		accessLog:           accessLog,
		notificationHandler: notificationHandler,
		draftHandler:        draftHandler,
		sessionMiddleware:   sessionMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.cfg.Deployment.IsDevelopment() {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Println("API documentation enabled for development")
	}

	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == healthPath
	}))
	estimateLimiter := r.rateLimiter(r.cfg.Security.EstimateRateLimit, nil)
	requireSession := r.sessionMiddleware.RequireSession()

	api.Post("/sessions", r.draftHandler.OpenSession)

	// Notification history; static segments before :uuid
	notifications := api.Group("/notifications")
	notifications.Get("/", r.notificationHandler.ListNotifications)
	notifications.Post("/", r.notificationHandler.CreateNotification)
	notifications.Get("/export", r.notificationHandler.ExportNotifications)
	notifications.Get("/audience/options", r.notificationHandler.ListAudienceOptions)
	notifications.Post("/audience/estimate", estimateLimiter, r.notificationHandler.EstimateAudience)
	notifications.Get("/:uuid", r.notificationHandler.GetNotification)
	notifications.Post("/:uuid/clone", requireSession, r.draftHandler.CloneNotification)

	// Working draft of the session
	draft := api.Group("/draft", requireSession)
	draft.Get("/", r.draftHandler.GetDraft)
	draft.Patch("/", r.draftHandler.UpdateDraft)
	draft.Delete("/", r.draftHandler.ResetDraft)
	draft.Patch("/audience", r.draftHandler.UpdateAudience)
	draft.Put("/audience/user-ids", r.draftHandler.SetUserIDs)
	draft.Put("/audience/user-types/:type", r.draftHandler.SetUserType)
	draft.Put("/audience/classifications/:classification", r.draftHandler.SetUserClassification)
	draft.Delete("/filters", r.draftHandler.ClearFilters)
	draft.Patch("/filters/inventory", r.draftHandler.UpdateInventory)
	draft.Patch("/filters/leads", r.draftHandler.UpdateLeads)
	draft.Post("/filters/zones/:zone/toggle", r.draftHandler.ToggleZone)
	draft.Get("/preview", r.draftHandler.PreviewDraft)
	draft.Get("/estimate", r.draftHandler.GetEstimate)
	draft.Post("/estimate", estimateLimiter, r.draftHandler.EstimateDraftAudience)
	draft.Post("/submit", r.draftHandler.SubmitDraft)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: generateRequestID,
	}))

	// Recovery wraps everything below it
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics(r.cfg.Metrics.Path))
	}

	sec := r.cfg.Security
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        sec.XContentTypeOptions,
		XFrameOptions:             sec.XFrameOptions,
		HSTSMaxAge:                sec.HSTSMaxAge,
		ContentSecurityPolicy:     sec.CSPPolicy,
		ReferrerPolicy:            sec.ReferrerPolicy,
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: sec.AllowedOrigins,
		AllowMethods: sec.AllowedMethods,
		AllowHeaders: sec.AllowedHeaders,
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: sec.AllowCredentials && !slices.Contains(sec.AllowedOrigins, "*"),
		MaxAge:           sec.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.Level(r.cfg.Server.CompressionLevel),
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.accessLog,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath
			},
		}))
	}
}

// rateLimiter limits requests per IP within the configured window
func (r *FiberRouter) rateLimiter(max int, next func(c fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber app
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"timestamp":   utils.UTCNow().Format(time.RFC3339),
			"version":     r.cfg.Deployment.Version,
			"environment": r.cfg.Deployment.Environment,
		},
	})
}

func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Notification Hub API</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true
            });
        };
    </script>
</body>
</html>`

	c.Set("Content-Type", "text/html")
	return c.SendString(html)
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// errorHandler renders errors that escaped the handlers
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")),
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return utils.UTCNow().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(bytes)
}
