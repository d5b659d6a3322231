package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/olopez/tasknest/internal/api/http/handler"
	"github.com/olopez/tasknest/internal/api/http/middleware"
)

// Register mounts all endpoints under /api/v1. Routes behind the gate
// require a valid session token.
func Register(
	app *fiber.App,
	auth *handler.Auth,
	profile *handler.Profile,
	task *handler.Task,
	gate *middleware.Gate,
) {
	api := app.Group("/api/v1")

	api.Post("/register", auth.Register)
	api.Post("/login", auth.Login)
	api.Post("/logout", auth.Logout)
	api.Get("/verify-token", auth.VerifyToken)
	api.Get("/verify-email", auth.VerifyEmail)
	api.Post("/request-password-reset", auth.RequestPasswordReset)
	api.Post("/reset-password/:token", auth.ResetPassword)

	protected := api.Group("", gate.Handle)
	protected.Get("/profile", auth.Profile)
	protected.Post("/upload-profile-image", profile.UploadImage)
	protected.Get("/profile-image", profile.GetImage)
	protected.Post("/tasks", task.Create)
	protected.Get("/tasks", task.List)
	protected.Get("/tasks/:id", task.Get)
	protected.Put("/tasks/:id", task.Update)
	protected.Delete("/tasks/:id", task.Delete)
}
