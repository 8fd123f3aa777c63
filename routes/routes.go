package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "minevent/controllers"
	"minevent/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging and per-IP rate limiting
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}), middleware.AuthRateLimiter())

	// Public auth endpoints (no session required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Get("/new-verification", controller.NewVerification)
	auth.Post("/resend-verification", controller.ResendVerification)

	// Protected auth endpoints (require a valid session)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentAccount)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// API group: session required, email verified, request logging
	api := app.Group("/api/v1", middleware.Protected(), middleware.VerifiedOnly(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	comp := api.Group("/competitions/:competition")

	// Team competitions (hackathon, mining, paper)
	comp.Post("/teams", controller.CreateTeam)
	comp.Post("/teams/join", controller.JoinTeam)
	comp.Get("/team", controller.GetMyTeam)
	comp.Delete("/team/member", controller.LeaveTeam)
	comp.Put("/member", controller.UpdateMemberProfile)
	comp.Post("/member/documents/:doc", controller.UploadMemberDocument)
	comp.Post("/team/submission", controller.UploadTeamSubmission)

	// Individual competitions (poster, photo)
	comp.Post("/registration", controller.RegisterParticipant)
	comp.Get("/registration", controller.GetMyRegistration)
	comp.Put("/registration", controller.UpdateParticipantProfile)
	comp.Post("/registration/documents/:doc", controller.UploadParticipantDocument)
	comp.Delete("/registration", controller.WithdrawParticipant)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
