package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RUDRA212003/Career-mock/app/controllers"
	"github.com/RUDRA212003/Career-mock/internal/pkg/constants"
	"github.com/RUDRA212003/Career-mock/internal/pkg/middleware"
	"github.com/RUDRA212003/Career-mock/internal/pkg/oauth"
	"github.com/RUDRA212003/Career-mock/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	session.NewSessionStore()
	oauth.Setup()

	app.Use(middleware.UserContextMiddleware)

	// auth
	app.Post("/register", controllers.HandleAuthRegister)
	app.Get(constants.ActivateRoute, controllers.HandleAuthActivate)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Post("/logout", controllers.HandleAuthLogout)
	app.Post(constants.ForgotPasswordRoute, controllers.HandleForgotPassword)
	app.Post(constants.ResetPasswordRoute, controllers.HandleResetPassword)

	// oauth (google)
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// candidate side, reachable without an account via the interview slug
	app.Get(constants.InterviewRoute+"/:slug", controllers.HandleGetPublicInterview)
	app.Post(constants.InterviewRoute+"/:slug/results", controllers.HandleSubmitInterviewResult)

	// payment provider callbacks, authenticated by signature instead of session
	app.Post(constants.WebhookRoute, controllers.HandleRazorpayWebhook)

	// account
	user := app.Group("/user", middleware.RequireAuth)
	user.Get("/account", controllers.HandleGetUserAccount)
	user.Get("/credits", controllers.HandleGetUserCredits)
	user.Put("/profile", controllers.HandleUpdateUserProfile)
	user.Put("/password", controllers.HandleUpdateUserPassword)

	// billing
	billing := app.Group("/billing", middleware.RequireAuth)
	billing.Get("/packages", controllers.HandleListPackages)
	billing.Post("/orders", controllers.HandleCreateOrder)
	billing.Get("/orders", controllers.HandleListOrders)

	// interview management for recruiters
	interviews := app.Group("/interviews", middleware.RequireAuth, middleware.RequireRecruiter)
	interviews.Post("/", controllers.HandleCreateInterview)
	interviews.Get("/", controllers.HandleListInterviews)
	interviews.Get("/:id", controllers.HandleGetInterview)
	interviews.Post("/:id/invite", controllers.HandleSendInterviewInvite)
	interviews.Post("/:id/archive", controllers.HandleArchiveInterview)

	// admin area
	admin := app.Group("/admin", middleware.RequireAuth, middleware.RequireAdmin)
	admin.Get("/dashboard", controllers.HandleAdminDashboard)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/interviews", controllers.HandleAdminListInterviews)
	admin.Get("/settlement-issues", controllers.HandleAdminSettlementIssues)
	admin.Post("/credit-adjustments", controllers.HandleAdminAdjustCredits)
	admin.Get("/credit-adjustments", controllers.HandleAdminListAdjustments)
	admin.Post("/orders/sweep", controllers.HandleAdminSweepOrders)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
