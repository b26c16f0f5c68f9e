package routes

import (
	controller "gearguard/controllers"
	"gearguard/middleware"
	"gearguard/services"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Auth           *services.AuthService
	Users          *services.UserService
	Registry       *services.EquipmentRegistry
	Lifecycle      *services.RequestLifecycle
	Teams          *services.TeamDirectory
	Hub            *utils.BoardHub
	Issuer         *utils.TokenIssuer
	Origins        []string
	ResetRateLimit int
	// RateLimitStorage is shared by limiter instances; nil means in-memory.
	RateLimitStorage fiber.Storage
}

func SetupAuthRoutes(api fiber.Router, d Deps) {
	authController := controller.NewAuthController(d.Auth, d.Users, d.Issuer)
	protected := middleware.Protected(d.Auth, d.Issuer)
	resetLimiter := middleware.ResetRateLimiter(d.ResetRateLimit, d.RateLimitStorage)

	auth := api.Group("/auth")
	auth.Post("/signup", authController.Signup)
	auth.Post("/login", authController.Login)
	auth.Post("/logout", authController.Logout)
	auth.Post("/forgot-password", resetLimiter, authController.ForgotPassword)
	auth.Post("/verify-otp", resetLimiter, authController.VerifyOTP)
	auth.Post("/reset-password", resetLimiter, authController.ResetPassword)
	auth.Post("/reset-password-with-login", protected, authController.ResetPasswordWithLogin)

	userController := controller.NewUserController(d.Users, d.Issuer)
	user := api.Group("/user", protected)
	user.Get("/getProfile", userController.GetProfile)
	user.Patch("/update-name", userController.UpdateName)
	user.Patch("/change-password", userController.ChangePassword)
	user.Delete("/delete-account", userController.DeleteAccount)
}

func SetupAPIRoutes(api fiber.Router, d Deps) {
	equipmentController := controller.NewEquipmentController(d.Registry)
	requestController := controller.NewRequestController(d.Lifecycle)
	teamController := controller.NewTeamController(d.Teams)
	boardController := controller.NewBoardController(d.Hub)

	protected := middleware.Protected(d.Auth, d.Issuer)
	managerOnly := middleware.ManagerOnly()

	// Equipment routes
	equipment := api.Group("/equipment", protected)
	equipment.Post("/", managerOnly, equipmentController.CreateEquipment)
	equipment.Get("/", equipmentController.GetEquipment)
	equipment.Get("/:id", equipmentController.GetEquipmentByID)
	equipment.Patch("/:id/scrap", managerOnly, equipmentController.ScrapEquipment)

	// Request routes
	requests := api.Group("/requests", protected)
	requests.Post("/", requestController.CreateRequest)
	requests.Get("/", requestController.GetRequests)
	requests.Post("/assign", managerOnly, requestController.AssignTechnician)
	requests.Get("/export", managerOnly, requestController.ExportRequests)
	requests.Get("/board", boardController.Upgrade, websocket.New(boardController.Stream))
	requests.Patch("/:id/status", requestController.UpdateStatus)
	requests.Get("/:id/history", requestController.GetHistory)

	// Team routes
	teams := api.Group("/teams", protected)
	teams.Post("/", managerOnly, teamController.CreateTeam)
	teams.Post("/assign", managerOnly, teamController.AddMember)
	teams.Get("/", teamController.GetTeams)
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Use(middleware.RequestID())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   d.Origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:           3600,
	}))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Setup health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(api, d)
	SetupAPIRoutes(api, d)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "The requested resource was not found")
	})

	utils.Logger("routes").Info("routes initialized")
}
